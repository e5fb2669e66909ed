package models

import "time"

const (
	TicketWon  = "WON"
	TicketLost = "LOST"
)

// Ticket is an active (unresolved) ticket. It lives in memory for the
// session; only resolved tickets are written to the database.
type Ticket struct {
	ID       string    `json:"id"`
	Picks    []Pick    `json:"picks"`
	Stake    float64   `json:"stake"`
	PlacedAt time.Time `json:"placedAt"`
}

func (t Ticket) IsParlay() bool {
	return len(t.Picks) > 1
}

// ResolvedTicket is the immutable history record created when an active
// ticket resolves. Payout is the total returned, 0 when lost.
type ResolvedTicket struct {
	ID         uint           `gorm:"primaryKey" json:"-"`
	CreatedAt  time.Time      `json:"-"`
	TicketID   string         `gorm:"size:64" json:"id"`
	Status     string         `gorm:"size:8" json:"status"`
	Stake      float64        `json:"stake"`
	Payout     float64        `json:"payout"`
	ResolvedAt time.Time      `json:"resolvedAt"`
	Picks      []ResolvedPick `gorm:"foreignKey:ResolvedTicketID" json:"picks"`
}

type ResolvedPick struct {
	ID               uint    `gorm:"primaryKey" json:"-"`
	ResolvedTicketID uint    `json:"-"`
	PickID           string  `gorm:"size:64" json:"id"`
	GameID           string  `gorm:"size:64" json:"gameId"`
	Kind             string  `gorm:"size:16" json:"kind"`
	Selection        string  `json:"selection"`
	Odds             string  `gorm:"size:16" json:"odds"`
	MatchupLabel     string  `json:"matchupLabel"`
	Stake            float64 `json:"stake"`
}
