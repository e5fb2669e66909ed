package apiService

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pickLabsEngine/models"
	"pickLabsEngine/models/external"
	"pickLabsEngine/services/aiService"
	"pickLabsEngine/services/extService"
	"pickLabsEngine/services/quotaService"
	"pickLabsEngine/services/slipService"
	"pickLabsEngine/services/ticketService"
)

func assertEqual(t *testing.T, expected, actual interface{}, msg string) {
	t.Helper()
	if expected != actual {
		t.Errorf("%s: expected %v, got %v", msg, expected, actual)
	}
}

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared&_pragma=busy_timeout(5000)"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	if err := db.AutoMigrate(&models.StoreEntry{}, &models.ErrorLog{}); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}
	t.Cleanup(func() {
		db.Exec("DELETE FROM store_entries")
		db.Exec("DELETE FROM error_logs")
	})
	return db
}

// blockingFeed parks every scoreboard fetch until released, keeping a
// refresh in flight for as long as the test needs.
type blockingFeed struct {
	release chan struct{}
}

func (f *blockingFeed) GetScoreboard(sport extService.Sport, date string) ([]external.Game, error) {
	<-f.release
	return nil, nil
}

// singleGameFeed serves one NBA game so a refresh completes normally.
type singleGameFeed struct{}

func (singleGameFeed) GetScoreboard(sport extService.Sport, date string) ([]external.Game, error) {
	if sport.Label != "NBA" {
		return nil, nil
	}
	return []external.Game{{
		ID:       "g1",
		Status:   "pre",
		HomeTeam: external.Team{DisplayName: "Lakers", Record: "30-10"},
		AwayTeam: external.Team{DisplayName: "Celtics", Record: "20-20"},
	}}, nil
}

type stubModel struct{}

func (stubModel) Predict(games []external.PredictionRequestGame) (map[string]external.GamePrediction, error) {
	return map[string]external.GamePrediction{
		"g1": {
			AIProbability: 62,
			Edge:          5,
			Suggestions:   external.StakeSuggestions{Kelly: 25},
		},
	}, nil
}

func TestAddPickConcurrentRequests(t *testing.T) {
	h := &Handler{
		Slip: slipService.New(),
		Mu:   &sync.Mutex{},
	}

	const requests = 50
	statuses := make([]int, requests)

	var wg sync.WaitGroup
	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			pick := models.Pick{
				GameID:    fmt.Sprintf("g%d", i),
				Kind:      models.Moneyline,
				Selection: fmt.Sprintf("Team %d", i),
				Odds:      "-110",
			}
			body, _ := json.Marshal(pick)
			rec := httptest.NewRecorder()
			h.AddPick(rec, httptest.NewRequest(http.MethodPost, "/api/slip/picks", bytes.NewReader(body)))
			statuses[i] = rec.Code
		}(i)
	}
	wg.Wait()

	accepted, rejected := 0, 0
	for _, code := range statuses {
		switch code {
		case http.StatusOK:
			accepted++
		case http.StatusConflict:
			rejected++
		default:
			t.Errorf("unexpected status %d", code)
		}
	}

	assertEqual(t, slipService.MaxPicks, h.Slip.Len(), "slip filled to the cap")
	assertEqual(t, slipService.MaxPicks, accepted, "accepted adds")
	assertEqual(t, requests-slipService.MaxPicks, rejected, "rejected adds")
}

func TestRefreshWhileBusyDoesNotConsumeQuota(t *testing.T) {
	db := testDB(t)
	feed := &blockingFeed{release: make(chan struct{})}
	engine := aiService.New(feed, stubModel{}, nil)

	h := &Handler{
		Slip:   slipService.New(),
		Engine: engine,
		Quota:  quotaService.New(db),
		Mu:     &sync.Mutex{},
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = engine.Recommend("20260115")
	}()
	for !engine.Busy() {
		time.Sleep(time.Millisecond)
	}

	rec := httptest.NewRecorder()
	h.RefreshAIPicks(rec, httptest.NewRequest(http.MethodPost, "/api/slip/ai-refresh", nil))
	assertEqual(t, http.StatusConflict, rec.Code, "busy refresh rejected")

	state, err := h.Quota.State()
	if err != nil {
		t.Fatalf("reading quota: %v", err)
	}
	assertEqual(t, 0, state.Uses, "rejected refresh must not burn a use")

	close(feed.release)
	<-done
}

func TestRefreshConsumesOneQuotaUse(t *testing.T) {
	db := testDB(t)
	engine := aiService.New(singleGameFeed{}, stubModel{}, nil)

	h := &Handler{
		Slip:   slipService.New(),
		Engine: engine,
		Quota:  quotaService.New(db),
		Mu:     &sync.Mutex{},
	}

	rec := httptest.NewRecorder()
	h.RefreshAIPicks(rec, httptest.NewRequest(http.MethodPost, "/api/slip/ai-refresh", nil))
	assertEqual(t, http.StatusOK, rec.Code, "refresh succeeds")

	state, err := h.Quota.State()
	if err != nil {
		t.Fatalf("reading quota: %v", err)
	}
	assertEqual(t, 1, state.Uses, "one use consumed")

	if h.Slip.Len() == 0 {
		t.Error("refresh should have placed AI picks on the slip")
	}
	for _, pick := range h.Slip.Picks() {
		if !pick.IsAIPick() {
			t.Errorf("refresh pick %q missing the AI id tag", pick.ID)
		}
	}
}

func TestRefreshExhaustedQuotaRejected(t *testing.T) {
	db := testDB(t)
	engine := aiService.New(singleGameFeed{}, stubModel{}, nil)
	quota := quotaService.New(db)

	for i := 0; i < quotaService.MaxFreeUses; i++ {
		if _, err := quota.Increment(); err != nil {
			t.Fatalf("seeding quota: %v", err)
		}
	}

	h := &Handler{
		Slip:   slipService.New(),
		Engine: engine,
		Quota:  quota,
		Mu:     &sync.Mutex{},
	}

	rec := httptest.NewRecorder()
	h.RefreshAIPicks(rec, httptest.NewRequest(http.MethodPost, "/api/slip/ai-refresh", nil))
	assertEqual(t, http.StatusForbidden, rec.Code, "spent quota rejects the refresh")
	assertEqual(t, 0, h.Slip.Len(), "no picks applied")
}

func TestPlaceAndResolveSerialized(t *testing.T) {
	bankroll := ticketService.NewBankroll(1000)
	ledger := ticketService.NewLedger(bankroll, nil, nil)

	h := &Handler{
		Slip:     slipService.New(),
		Bankroll: bankroll,
		Ledger:   ledger,
		Mu:       &sync.Mutex{},
	}

	addBody, _ := json.Marshal(models.Pick{GameID: "g1", Kind: models.Moneyline, Selection: "Lakers", Odds: "-110"})
	rec := httptest.NewRecorder()
	h.AddPick(rec, httptest.NewRequest(http.MethodPost, "/api/slip/picks", bytes.NewReader(addBody)))
	assertEqual(t, http.StatusOK, rec.Code, "add pick")

	var wg sync.WaitGroup
	codes := make([]int, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			body, _ := json.Marshal(placeTicketRequest{Stake: 10})
			rec := httptest.NewRecorder()
			h.PlaceTicket(rec, httptest.NewRequest(http.MethodPost, "/api/tickets", bytes.NewReader(body)))
			codes[i] = rec.Code
		}(i)
	}
	wg.Wait()

	// Exactly one placement can win the slip; the rest find it empty.
	created, rejected := 0, 0
	for _, code := range codes {
		switch code {
		case http.StatusCreated:
			created++
		case http.StatusBadRequest:
			rejected++
		default:
			t.Errorf("unexpected status %d", code)
		}
	}
	assertEqual(t, 1, created, "one ticket placed")
	assertEqual(t, 9, rejected, "empty-slip placements rejected")
	assertEqual(t, 1, len(ledger.Active()), "one active ticket")
	assertEqual(t, 990.0, bankroll.Balance(), "one stake debited")
}
