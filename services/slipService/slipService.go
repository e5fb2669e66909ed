package slipService

import (
	"errors"

	"github.com/google/uuid"

	"pickLabsEngine/models"
)

// MaxPicks caps the slip; a parlay past 20 legs is unplaceable anyway.
const MaxPicks = 20

var (
	ErrSlipFull     = errors.New("bet slip is full: no more than 20 picks")
	ErrGameFinished = errors.New("cannot add a pick for a game that has already finished")
)

// BetSlip holds the session's not-yet-submitted picks. It is owned by a
// single session and is not safe for concurrent writers; the UI call
// stack is the only mutator.
type BetSlip struct {
	picks []models.Pick
}

func New() *BetSlip {
	return &BetSlip{}
}

// Add appends a pick with a freshly generated id. Adding a pick that is
// already in the slip (same game, kind, and selection) removes it
// instead; that toggle is the intended interaction contract, not an
// error. Returns true when the call removed an existing pick.
func (b *BetSlip) Add(pick models.Pick) (bool, error) {
	if pick.GameFinished() {
		return false, ErrGameFinished
	}

	for idx, existing := range b.picks {
		if existing.DedupKey() == pick.DedupKey() {
			b.picks = append(b.picks[:idx], b.picks[idx+1:]...)
			return true, nil
		}
	}

	if len(b.picks) >= MaxPicks {
		return false, ErrSlipFull
	}

	pick.ID = uuid.NewString()
	b.picks = append(b.picks, pick)
	return false, nil
}

// Remove deletes a pick by id. Removing an absent id is a no-op.
func (b *BetSlip) Remove(id string) {
	for idx, existing := range b.picks {
		if existing.ID == id {
			b.picks = append(b.picks[:idx], b.picks[idx+1:]...)
			return
		}
	}
}

// ReplaceAIPicks swaps out every engine-generated pick for the new batch
// while leaving manually added picks untouched. Each new pick gets a
// fresh AI-tagged id so the next refresh can find it again.
func (b *BetSlip) ReplaceAIPicks(newPicks []models.Pick) {
	kept := b.picks[:0]
	for _, existing := range b.picks {
		if !existing.IsAIPick() {
			kept = append(kept, existing)
		}
	}
	b.picks = kept

	for _, pick := range newPicks {
		pick.ID = models.AIPickPrefix + uuid.NewString()
		b.picks = append(b.picks, pick)
	}
}

// Picks returns a copy of the slip in insertion order.
func (b *BetSlip) Picks() []models.Pick {
	out := make([]models.Pick, len(b.picks))
	copy(out, b.picks)
	return out
}

func (b *BetSlip) Len() int {
	return len(b.picks)
}

func (b *BetSlip) Clear() {
	b.picks = nil
}
