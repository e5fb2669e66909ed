package aiService

import (
	"errors"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pickLabsEngine/models"
	"pickLabsEngine/models/external"
	"pickLabsEngine/services/common"
	"pickLabsEngine/services/extService"
	"pickLabsEngine/services/oddsService"
)

// MaxRecommendations caps one refresh's output.
const MaxRecommendations = 5

var (
	ErrRefreshInFlight = errors.New("a recommendation refresh is already running")
	ErrNoGames         = errors.New("no games found for the query window")
)

// GameSource is the per-sport scoreboard feed.
type GameSource interface {
	GetScoreboard(sport extService.Sport, date string) ([]external.Game, error)
}

// PredictionSource is the model server. An error means "no AI
// candidates available", never a hard failure.
type PredictionSource interface {
	Predict(games []external.PredictionRequestGame) (map[string]external.GamePrediction, error)
}

// Engine turns a day's games plus model signals into at most five
// ranked picks, one per game. A busy flag makes overlapping refreshes
// no-ops; refreshes are fully serialized, so the one that ran is the
// one whose result gets applied.
type Engine struct {
	feed  GameSource
	model PredictionSource
	db    *gorm.DB

	busy atomic.Bool
}

func New(feed GameSource, model PredictionSource, db *gorm.DB) *Engine {
	return &Engine{feed: feed, model: model, db: db}
}

type gatheredGame struct {
	game  external.Game
	sport extService.Sport
}

type candidate struct {
	models.Pick
	score float64
}

// Recommend gathers every sport's scoreboard for the date (YYYYMMDD),
// scores the model's suggestions, and returns the deduplicated top
// picks with fresh AI-tagged ids. An empty slice with a nil error means
// the model had nothing usable; ErrNoGames means the feed itself was
// empty, which callers surface differently.
func (e *Engine) Recommend(date string) ([]models.Pick, error) {
	if !e.busy.CompareAndSwap(false, true) {
		return nil, ErrRefreshInFlight
	}
	defer e.busy.Store(false)

	games := e.gatherGames(date)
	if len(games) == 0 {
		return nil, ErrNoGames
	}

	predictions, err := e.model.Predict(predictionPayload(games))
	if err != nil {
		common.LogError(e.db, "aiEngine", err)
		return []models.Pick{}, nil
	}

	return rankCandidates(buildCandidates(games, predictions)), nil
}

// gatherGames fans out one fetch per sport and keeps whatever succeeds.
// A failed sport is logged and skipped; the refresh carries on with
// partial results.
func (e *Engine) gatherGames(date string) []gatheredGame {
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		gathered []gatheredGame
	)

	for _, sport := range extService.Sports {
		wg.Add(1)
		go func(sport extService.Sport) {
			defer wg.Done()
			events, err := e.feed.GetScoreboard(sport, date)
			if err != nil {
				common.LogError(e.db, "aiFeed", err)
				return
			}
			mu.Lock()
			for _, game := range events {
				gathered = append(gathered, gatheredGame{game: game, sport: sport})
			}
			mu.Unlock()
		}(sport)
	}
	wg.Wait()

	return gathered
}

func predictionPayload(games []gatheredGame) []external.PredictionRequestGame {
	payload := make([]external.PredictionRequestGame, 0, len(games))
	for _, entry := range games {
		decimal := 1.90
		local := PredictLocal(entry.game.HomeTeam.Record, entry.game.AwayTeam.Record, entry.sport.Label)
		if local.MoneylineHome != "N/A" {
			decimal = oddsService.ToDecimal(local.MoneylineHome)
		}
		payload = append(payload, external.PredictionRequestGame{ID: entry.game.ID, Odds: decimal})
	}
	return payload
}

// buildCandidates emits up to three scored candidates per game, one per
// stake-sizing strategy the model funded.
func buildCandidates(games []gatheredGame, predictions map[string]external.GamePrediction) []candidate {
	var candidates []candidate

	for _, entry := range games {
		game := entry.game
		aiData, ok := predictions[game.ID]
		if !ok {
			continue
		}

		local := PredictLocal(game.HomeTeam.Record, game.AwayTeam.Record, entry.sport.Label)
		matchup := game.AwayTeam.DisplayName + " vs " + game.HomeTeam.DisplayName
		favoredHome := aiData.AIProbability >= 50

		base := models.Pick{
			GameID:          game.ID,
			MatchupLabel:    matchup,
			GameStatus:      game.Status,
			GameStatusLabel: game.StatusName,
			GameDate:        game.Date,
		}

		if aiData.Suggestions.Kelly > 0 {
			pick := base
			pick.Kind = models.Moneyline
			if favoredHome {
				pick.Selection = game.HomeTeam.DisplayName + " ML"
				pick.Odds = local.MoneylineHome
			} else {
				pick.Selection = game.AwayTeam.DisplayName + " ML"
				pick.Odds = local.MoneylineAway
			}
			pick.Stake = aiData.Suggestions.Kelly
			candidates = append(candidates, candidate{Pick: pick, score: aiData.AIProbability + aiData.Edge*2})
		}

		if aiData.Suggestions.Target > 0 {
			pick := base
			pick.Kind = local.OverUnderLean
			pick.Selection = string(local.OverUnderLean) + " " + FormatTotal(local.Total)
			pick.Odds = "-110"
			pick.Stake = aiData.Suggestions.Target
			candidates = append(candidates, candidate{Pick: pick, score: 50 + aiData.Edge})
		}

		if aiData.Suggestions.Fixed > 0 {
			pick := base
			pick.Kind = models.Spread
			spread := local.HomeSpread
			team := game.HomeTeam.DisplayName
			if !favoredHome {
				spread = -spread
				team = game.AwayTeam.DisplayName
			}
			pick.Selection = team + " " + FormatSpread(spread)
			pick.Odds = "-110"
			pick.Stake = aiData.Suggestions.Fixed
			candidates = append(candidates, candidate{Pick: pick, score: aiData.AIProbability + aiData.Edge*1.5})
		}
	}

	return candidates
}

// rankCandidates sorts by score descending, keeps at most one candidate
// per game and at most MaxRecommendations overall, then strips the
// score and assigns fresh AI-tagged ids.
func rankCandidates(candidates []candidate) []models.Pick {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	seenGames := make(map[string]bool)
	picks := make([]models.Pick, 0, MaxRecommendations)
	for _, cand := range candidates {
		if seenGames[cand.GameID] {
			continue
		}
		seenGames[cand.GameID] = true

		pick := cand.Pick
		pick.ID = models.AIPickPrefix + uuid.NewString()
		picks = append(picks, pick)

		if len(picks) == MaxRecommendations {
			break
		}
	}
	return picks
}

// Busy reports whether a refresh is in flight, for the caller-side
// busy indicator.
func (e *Engine) Busy() bool {
	return e.busy.Load()
}
