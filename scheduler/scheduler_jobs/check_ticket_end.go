package scheduler_jobs

import (
	"fmt"
	"log"
	"runtime/debug"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"pickLabsEngine/models"
	"pickLabsEngine/models/external"
	"pickLabsEngine/services/common"
	"pickLabsEngine/services/extService"
	"pickLabsEngine/services/oddsService"
	"pickLabsEngine/services/ticketService"
)

// Feed is the slice of the game feed this job needs.
type Feed interface {
	GetScoreboard(sport extService.Sport, date string) ([]external.Game, error)
}

type resolution struct {
	index  int
	status string
	stake  float64
	payout float64
}

// CheckTicketEnd sweeps the active tickets and resolves every one whose
// legs can all be graded against a finished game. A parlay wins only if
// every leg wins; the payout returns the stake plus winnings at the
// combined line. mu is the session lock the HTTP handlers hold; the
// feed fetch runs outside it, ledger access inside it.
func CheckTicketEnd(db *gorm.DB, ledger *ticketService.Ledger, feed Feed, mu *sync.Mutex) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Println("Recovered in CheckTicketEnd", r)
			debug.PrintStack()
			err = fmt.Errorf("panic recovered in CheckTicketEnd: %v", r)
		}
	}()

	mu.Lock()
	hasActive := len(ledger.Active()) > 0
	mu.Unlock()
	if !hasActive {
		return nil
	}

	games := gatherFinishedGames(db, feed)
	if len(games) == 0 {
		return nil
	}

	// Re-read under the lock; tickets may have been placed or resolved
	// while the scoreboards were fetched.
	mu.Lock()
	defer mu.Unlock()

	active := ledger.Active()
	var resolutions []resolution
	for index, ticket := range active {
		status, ok := gradeTicket(ticket, games)
		if !ok {
			continue
		}

		payout := 0.0
		if status == models.TicketWon {
			combined := oddsService.CombinedOdds(ticket.Picks)
			payout = ticket.Stake + oddsService.Winnings(ticket.Stake, combined)
		}
		resolutions = append(resolutions, resolution{
			index:  index,
			status: status,
			stake:  ticket.Stake,
			payout: payout,
		})
	}

	// Resolve back-to-front so earlier indices stay valid as the
	// active list shrinks.
	sort.Slice(resolutions, func(i, j int) bool {
		return resolutions[i].index > resolutions[j].index
	})
	for _, res := range resolutions {
		if _, err := ledger.Resolve(res.index, res.status, res.stake, res.payout); err != nil {
			common.LogError(db, "checkTicketEnd", err)
		}
	}

	return nil
}

func gatherFinishedGames(db *gorm.DB, feed Feed) map[string]external.Game {
	date := time.Now().Format("20060102")
	games := make(map[string]external.Game)

	for _, sport := range extService.Sports {
		events, err := feed.GetScoreboard(sport, date)
		if err != nil {
			common.LogError(db, "checkTicketEnd", err)
			continue
		}
		for _, game := range events {
			games[game.ID] = game
		}
	}
	return games
}

// gradeTicket returns the ticket's outcome once every leg is gradable.
// A single lost leg sinks the whole ticket.
func gradeTicket(ticket models.Ticket, games map[string]external.Game) (string, bool) {
	for _, pick := range ticket.Picks {
		game, found := games[pick.GameID]
		if !found {
			return "", false
		}
		won, gradable := GradePick(pick, game)
		if !gradable {
			return "", false
		}
		if !won {
			return models.TicketLost, true
		}
	}
	return models.TicketWon, true
}

// GradePick grades one leg against a final game. Not gradable when the
// game is still running, scores are missing, or the selection cannot be
// matched to a side. Pushes grade as losses; this book keeps the juice.
func GradePick(pick models.Pick, game external.Game) (won bool, gradable bool) {
	if !game.Finished() || game.HomeScore == nil || game.AwayScore == nil {
		return false, false
	}

	homeScore := *game.HomeScore
	awayScore := *game.AwayScore
	scoreDiff := homeScore - awayScore

	switch pick.Kind {
	case models.Moneyline:
		pickedHome := strings.HasPrefix(pick.Selection, game.HomeTeam.DisplayName)
		pickedAway := strings.HasPrefix(pick.Selection, game.AwayTeam.DisplayName)
		if !pickedHome && !pickedAway {
			return false, false
		}
		// Ties lose on the moneyline.
		if pickedHome {
			return scoreDiff > 0, true
		}
		return scoreDiff < 0, true

	case models.Spread:
		spread, ok := parseLineValue(pick.Selection)
		if !ok {
			return false, false
		}
		pickedHome := strings.HasPrefix(pick.Selection, game.HomeTeam.DisplayName)
		pickedAway := strings.HasPrefix(pick.Selection, game.AwayTeam.DisplayName)
		if !pickedHome && !pickedAway {
			return false, false
		}
		if pickedHome {
			return float64(scoreDiff)+spread > 0, true
		}
		return float64(-scoreDiff)+spread > 0, true

	case models.Over:
		line, ok := parseLineValue(pick.Selection)
		if !ok {
			return false, false
		}
		return float64(homeScore+awayScore) > line, true

	case models.Under:
		line, ok := parseLineValue(pick.Selection)
		if !ok {
			return false, false
		}
		return float64(homeScore+awayScore) < line, true
	}

	// Props have no feed-derived result; they stay manual.
	return false, false
}

// parseLineValue pulls the numeric line off the end of a selection such
// as "Lakers -8.5" or "Over 224.5". "PK" is a zero spread.
func parseLineValue(selection string) (float64, bool) {
	fields := strings.Fields(selection)
	if len(fields) == 0 {
		return 0, false
	}
	last := fields[len(fields)-1]
	if last == "PK" {
		return 0, true
	}
	value, err := strconv.ParseFloat(strings.TrimPrefix(last, "+"), 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
