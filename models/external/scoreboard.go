package external

// Scoreboard is the game feed's per-sport, per-date response.
type Scoreboard struct {
	Day    string `json:"day"`
	Events []Game `json:"events"`
}

type Game struct {
	ID         string `json:"id"`
	Date       string `json:"date"`
	Status     string `json:"status"`     // "pre", "in", "post"
	StatusName string `json:"statusName"` // e.g. "STATUS_FINAL"
	HomeTeam   Team   `json:"homeTeam"`
	AwayTeam   Team   `json:"awayTeam"`
	HomeScore  *int   `json:"homeScore,omitempty"`
	AwayScore  *int   `json:"awayScore,omitempty"`
}

type Team struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Abbrev      string `json:"abbreviation"`
	Record      string `json:"record"` // "W-L", e.g. "12-4"
}

func (g Game) Finished() bool {
	return g.Status == "post" || g.StatusName == "STATUS_FINAL"
}
