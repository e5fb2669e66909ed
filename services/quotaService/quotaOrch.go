package quotaService

import (
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	"pickLabsEngine/models"
)

// MaxFreeUses is the free-tier allowance for AI recommendations within
// one rolling window.
const MaxFreeUses = 20

// WindowDays is the rolling window length; once more than this many
// days have elapsed since the window started, the counter resets.
const WindowDays = 7

var ErrQuotaExceeded = errors.New("free tier quota exceeded for this week")

// Service persists the dashboard's small key-value state: the free-tier
// recommendation quota and the last selected view.
type Service struct {
	db  *gorm.DB
	now func() time.Time
}

func New(db *gorm.DB) *Service {
	return &Service{db: db, now: time.Now}
}

// State loads the quota record, resetting it to {0, now} if the window
// has lapsed. A missing or unreadable record also starts fresh.
func (s *Service) State() (models.QuotaState, error) {
	var entry models.StoreEntry
	err := s.db.Where("`key` = ?", models.StoreKeyFreeQuota).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.reset()
	}
	if err != nil {
		return models.QuotaState{}, err
	}

	var state models.QuotaState
	if err := json.Unmarshal([]byte(entry.Value), &state); err != nil {
		return s.reset()
	}
	if s.now().Sub(state.WindowStart) > WindowDays*24*time.Hour {
		return s.reset()
	}
	return state, nil
}

// Increment consumes one use. ErrQuotaExceeded is returned without
// consuming anything once the allowance is spent.
func (s *Service) Increment() (models.QuotaState, error) {
	state, err := s.State()
	if err != nil {
		return models.QuotaState{}, err
	}
	if state.Uses >= MaxFreeUses {
		return state, ErrQuotaExceeded
	}

	state.Uses++
	if err := s.save(state); err != nil {
		return models.QuotaState{}, err
	}
	return state, nil
}

// CurrentView returns the persisted view key, or the default when none
// was saved yet.
func (s *Service) CurrentView(defaultView string) string {
	var entry models.StoreEntry
	err := s.db.Where("`key` = ?", models.StoreKeyCurrentView).First(&entry).Error
	if err != nil || entry.Value == "" {
		return defaultView
	}
	return entry.Value
}

func (s *Service) SetCurrentView(view string) error {
	return s.upsert(models.StoreKeyCurrentView, view)
}

func (s *Service) reset() (models.QuotaState, error) {
	state := models.QuotaState{Uses: 0, WindowStart: s.now()}
	if err := s.save(state); err != nil {
		return models.QuotaState{}, err
	}
	return state, nil
}

func (s *Service) save(state models.QuotaState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.upsert(models.StoreKeyFreeQuota, string(raw))
}

func (s *Service) upsert(key, value string) error {
	var entry models.StoreEntry
	err := s.db.Where("`key` = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.db.Create(&models.StoreEntry{Key: key, Value: value}).Error
	}
	if err != nil {
		return err
	}
	entry.Value = value
	return s.db.Save(&entry).Error
}
