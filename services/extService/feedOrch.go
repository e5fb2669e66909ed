package extService

import (
	"fmt"
	"net/http"
	"time"

	"pickLabsEngine/models/external"
	"pickLabsEngine/services/common"
)

// Sport identifies one league on the game feed.
type Sport struct {
	Label string // display label, e.g. "NBA"
	Path  string // feed path segment, e.g. "basketball/nba"
}

// Sports lists every league the recommendation engine gathers. Order
// only affects gather order, not ranking.
var Sports = []Sport{
	{Label: "NBA", Path: "basketball/nba"},
	{Label: "NFL", Path: "football/nfl"},
	{Label: "MLB", Path: "baseball/mlb"},
	{Label: "NHL", Path: "hockey/nhl"},
	{Label: "CBB", Path: "basketball/mens-college-basketball"},
	{Label: "CFB", Path: "football/college-football"},
}

// FeedClient talks to the scoreboard feed. The feed is a black box to
// this engine; we only depend on the shapes in models/external.
type FeedClient struct {
	BaseURL string
	Client  *http.Client
}

func NewFeedClient(baseURL string) *FeedClient {
	return &FeedClient{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// GetScoreboard fetches one sport's games for a date (YYYYMMDD).
// An empty scoreboard is not an error; callers distinguish "no games"
// from a fetch failure.
func (c *FeedClient) GetScoreboard(sport Sport, date string) ([]external.Game, error) {
	requestURL := fmt.Sprintf("%s/sports/%s/scoreboard?dates=%s", c.BaseURL, sport.Path, date)

	var scoreboard external.Scoreboard
	if err := common.FetchJSON(c.Client, requestURL, &scoreboard); err != nil {
		return nil, fmt.Errorf("scoreboard fetch for %s: %w", sport.Label, err)
	}

	return scoreboard.Events, nil
}
