package ticketService

import (
	"errors"
	"testing"

	"pickLabsEngine/models"
)

func assertEqual(t *testing.T, expected, actual interface{}, msg string) {
	t.Helper()
	if expected != actual {
		t.Errorf("%s: expected %v, got %v", msg, expected, actual)
	}
}

type recordingNotifier struct {
	resolved []models.ResolvedTicket
}

func (n *recordingNotifier) TicketResolved(ticket models.ResolvedTicket) {
	n.resolved = append(n.resolved, ticket)
}

func twoLegPicks() []models.Pick {
	return []models.Pick{
		{ID: "p1", GameID: "espn-1", Kind: models.Moneyline, Selection: "Lakers ML", Odds: "+140"},
		{ID: "p2", GameID: "espn-2", Kind: models.Spread, Selection: "Heat -3.5", Odds: "-110"},
	}
}

func TestPlaceDebitsAndTracks(t *testing.T) {
	bankroll := NewBankroll(1000)
	ledger := NewLedger(bankroll, nil, nil)

	ticket, err := ledger.Place(twoLegPicks(), 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertEqual(t, 950.0, bankroll.Balance(), "stake debited")
	assertEqual(t, 1, len(ledger.Active()), "one active ticket")
	assertEqual(t, 2, len(ticket.Picks), "both legs carried")
	assertEqual(t, 50.0, ticket.Stake, "ticket stake")
	assertEqual(t, true, ticket.IsParlay(), "two legs is a parlay")
}

func TestPlaceEmptyFails(t *testing.T) {
	bankroll := NewBankroll(1000)
	ledger := NewLedger(bankroll, nil, nil)

	_, err := ledger.Place(nil, 50)
	if !errors.Is(err, ErrEmptyTicket) {
		t.Fatalf("expected ErrEmptyTicket, got %v", err)
	}
	assertEqual(t, 1000.0, bankroll.Balance(), "no debit on failure")
}

func TestPlaceMostRecentFirst(t *testing.T) {
	ledger := NewLedger(NewBankroll(1000), nil, nil)

	first, _ := ledger.Place(twoLegPicks()[:1], 10)
	second, _ := ledger.Place(twoLegPicks()[:1], 20)

	active := ledger.Active()
	assertEqual(t, second.ID, active[0].ID, "newest ticket first")
	assertEqual(t, first.ID, active[1].ID, "older ticket second")
}

func TestResolveWonCreditsPayout(t *testing.T) {
	bankroll := NewBankroll(1000)
	notifier := &recordingNotifier{}
	ledger := NewLedger(bankroll, nil, notifier)
	_, _ = ledger.Place(twoLegPicks(), 50)

	resolved, err := ledger.Resolve(0, models.TicketWon, 50, 130)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertEqual(t, 1080.0, bankroll.Balance(), "1000 - 50 + 130")
	assertEqual(t, 0, len(ledger.Active()), "active cleared")
	assertEqual(t, 1, len(ledger.History()), "history appended")
	assertEqual(t, models.TicketWon, resolved.Status, "status recorded")
	assertEqual(t, 130.0, resolved.Payout, "payout recorded")
	assertEqual(t, 1, len(notifier.resolved), "notifier told once")
}

func TestResolveLostCreditsNothing(t *testing.T) {
	bankroll := NewBankroll(1000)
	ledger := NewLedger(bankroll, nil, nil)
	_, _ = ledger.Place(twoLegPicks(), 50)

	// Payout passed by a confused caller must not survive a loss.
	resolved, err := ledger.Resolve(0, models.TicketLost, 50, 130)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertEqual(t, 950.0, bankroll.Balance(), "nothing credited on loss")
	assertEqual(t, 0.0, resolved.Payout, "payout forced to zero")
}

func TestResolveOutOfRange(t *testing.T) {
	bankroll := NewBankroll(1000)
	ledger := NewLedger(bankroll, nil, nil)
	_, _ = ledger.Place(twoLegPicks(), 50)

	for _, index := range []int{-1, 1, 5} {
		_, err := ledger.Resolve(index, models.TicketWon, 50, 130)
		if !errors.Is(err, ErrTicketIndex) {
			t.Fatalf("index %d: expected ErrTicketIndex, got %v", index, err)
		}
	}

	assertEqual(t, 1, len(ledger.Active()), "active untouched")
	assertEqual(t, 0, len(ledger.History()), "history untouched")
	assertEqual(t, 950.0, bankroll.Balance(), "balance untouched")
}

func TestResolveInvalidStatus(t *testing.T) {
	ledger := NewLedger(NewBankroll(1000), nil, nil)
	_, _ = ledger.Place(twoLegPicks(), 50)

	_, err := ledger.Resolve(0, "PUSH", 50, 0)
	if !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	assertEqual(t, 1, len(ledger.Active()), "active untouched on bad status")
}

func TestHistoryMostRecentFirst(t *testing.T) {
	ledger := NewLedger(NewBankroll(1000), nil, nil)
	first, _ := ledger.Place(twoLegPicks()[:1], 10)
	second, _ := ledger.Place(twoLegPicks()[:1], 20)

	// Active order is [second, first]; resolve oldest then newest.
	_, _ = ledger.Resolve(1, models.TicketLost, 10, 0)
	_, _ = ledger.Resolve(0, models.TicketWon, 20, 60)

	history := ledger.History()
	assertEqual(t, second.ID, history[0].TicketID, "latest resolution first")
	assertEqual(t, first.ID, history[1].TicketID, "earlier resolution second")
}

func TestBankrollUnconditional(t *testing.T) {
	bankroll := NewBankroll(10)
	bankroll.Debit(25)
	assertEqual(t, -15.0, bankroll.Balance(), "balance may go negative")
	bankroll.Credit(40)
	assertEqual(t, 25.0, bankroll.Balance(), "credit adds")
}
