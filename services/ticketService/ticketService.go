package ticketService

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pickLabsEngine/models"
	"pickLabsEngine/services/common"
)

var (
	ErrEmptyTicket   = errors.New("a ticket needs at least one pick")
	ErrTicketIndex   = errors.New("no active ticket at that index")
	ErrInvalidStatus = errors.New("resolution status must be WON or LOST")
)

// Bankroll is the session's virtual balance. Debit and credit are
// unconditional; insufficient-funds policy belongs to the caller.
type Bankroll struct {
	balance float64
}

func NewBankroll(start float64) *Bankroll {
	return &Bankroll{balance: start}
}

func (b *Bankroll) Debit(amount float64) {
	b.balance -= amount
}

func (b *Bankroll) Credit(amount float64) {
	b.balance += amount
}

func (b *Bankroll) Balance() float64 {
	return b.balance
}

// Notifier is told about every resolution. The Discord announcer in
// messageService implements it; tests use a recording stub.
type Notifier interface {
	TicketResolved(ticket models.ResolvedTicket)
}

// Ledger owns every ticket from placement to resolution. Active tickets
// and history are both most-recent-first. Resolved tickets are also
// archived to the database when one is attached.
type Ledger struct {
	bankroll *Bankroll
	db       *gorm.DB
	notifier Notifier

	active  []models.Ticket
	history []models.ResolvedTicket
}

func NewLedger(bankroll *Bankroll, db *gorm.DB, notifier Notifier) *Ledger {
	return &Ledger{bankroll: bankroll, db: db, notifier: notifier}
}

// Place creates an Active ticket from the given picks and debits the
// stake. The picks are copied; the caller's slip stays untouched.
func (l *Ledger) Place(picks []models.Pick, stake float64) (models.Ticket, error) {
	if len(picks) == 0 {
		return models.Ticket{}, ErrEmptyTicket
	}

	ticket := models.Ticket{
		ID:       uuid.NewString(),
		Picks:    append([]models.Pick(nil), picks...),
		Stake:    stake,
		PlacedAt: time.Now(),
	}

	l.active = append([]models.Ticket{ticket}, l.active...)
	l.bankroll.Debit(stake)
	return ticket, nil
}

// Resolve moves the active ticket at index into history with the given
// outcome. The bankroll is credited only on a win; a lost ticket's
// payout is recorded as zero regardless of what the caller passed.
func (l *Ledger) Resolve(index int, status string, stake, payout float64) (models.ResolvedTicket, error) {
	if index < 0 || index >= len(l.active) {
		return models.ResolvedTicket{}, fmt.Errorf("%w: %d", ErrTicketIndex, index)
	}
	if status != models.TicketWon && status != models.TicketLost {
		return models.ResolvedTicket{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if status == models.TicketLost {
		payout = 0
	}

	ticket := l.active[index]
	l.active = append(l.active[:index], l.active[index+1:]...)

	resolved := models.ResolvedTicket{
		TicketID:   ticket.ID,
		Status:     status,
		Stake:      stake,
		Payout:     payout,
		ResolvedAt: time.Now(),
		Picks:      resolvedPicks(ticket.Picks),
	}

	if status == models.TicketWon {
		l.bankroll.Credit(payout)
	}

	l.history = append([]models.ResolvedTicket{resolved}, l.history...)

	if l.db != nil {
		if err := l.db.Create(&resolved).Error; err != nil {
			common.LogError(l.db, "ticketLedger", err)
		}
	}
	if l.notifier != nil {
		l.notifier.TicketResolved(resolved)
	}

	return resolved, nil
}

// Active returns the unresolved tickets, most recent first.
func (l *Ledger) Active() []models.Ticket {
	out := make([]models.Ticket, len(l.active))
	copy(out, l.active)
	return out
}

// History returns the resolved tickets, most recent first.
func (l *Ledger) History() []models.ResolvedTicket {
	out := make([]models.ResolvedTicket, len(l.history))
	copy(out, l.history)
	return out
}

func resolvedPicks(picks []models.Pick) []models.ResolvedPick {
	out := make([]models.ResolvedPick, 0, len(picks))
	for _, pick := range picks {
		out = append(out, models.ResolvedPick{
			PickID:       pick.ID,
			GameID:       pick.GameID,
			Kind:         string(pick.Kind),
			Selection:    pick.Selection,
			Odds:         pick.Odds,
			MatchupLabel: pick.MatchupLabel,
			Stake:        pick.Stake,
		})
	}
	return out
}
