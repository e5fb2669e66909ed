package models

import "strings"

type PickKind string

const (
	Moneyline PickKind = "ML"
	Spread    PickKind = "Spread"
	Over      PickKind = "Over"
	Under     PickKind = "Under"
	Prop      PickKind = "Prop"
)

// AIPickPrefix tags picks generated by the recommendation engine so a
// refresh can replace them without touching manually added picks.
const AIPickPrefix = "ai-"

type Pick struct {
	ID              string   `json:"id"`
	GameID          string   `json:"gameId"`
	Kind            PickKind `json:"kind"`
	Selection       string   `json:"selection"` // e.g. "Lakers -8.5", "Over 224.5"
	Odds            string   `json:"odds"`      // American format, "+150" / "-110"
	MatchupLabel    string   `json:"matchupLabel"`
	Stake           float64  `json:"stake"`
	GameStatus      string   `json:"gameStatus,omitempty"`
	GameStatusLabel string   `json:"gameStatusLabel,omitempty"`
	GameDate        string   `json:"gameDate,omitempty"`
}

// DedupKey is the slip's uniqueness key. Two picks with the same key are
// the same selection regardless of their generated ids.
func (p Pick) DedupKey() string {
	return p.GameID + "|" + string(p.Kind) + "|" + p.Selection
}

func (p Pick) IsAIPick() bool {
	return strings.HasPrefix(p.ID, AIPickPrefix)
}

// GameFinished reports whether the pick's game status snapshot indicates
// a concluded game. The feed uses "post", older snapshots use "FINAL".
func (p Pick) GameFinished() bool {
	switch p.GameStatus {
	case "FINAL", "post", "STATUS_FINAL":
		return true
	}
	return false
}
