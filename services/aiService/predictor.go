package aiService

import (
	"math"
	"strconv"
	"strings"

	"pickLabsEngine/models"
	"pickLabsEngine/services/oddsService"
)

// LocalPrediction is the record-derived fallback line for one game. It
// exists to keep the UI supplied with displayable odds strings when the
// prediction service has nothing for a game.
type LocalPrediction struct {
	HomeProbability float64 // 0..1, home side
	MoneylineHome   string
	MoneylineAway   string
	HomeSpread      float64 // negative when home is favored
	Total           float64
	OverUnderLean   models.PickKind
}

// homeEdge is a flat home-court/field bump applied to the record-based
// estimate.
const homeEdge = 0.035

var spreadScale = map[string]float64{
	"NBA": 25,
	"CBB": 25,
	"NFL": 27,
	"CFB": 30,
	"MLB": 4,
	"NHL": 3,
}

var baseTotal = map[string]float64{
	"NBA": 224.5,
	"CBB": 145.5,
	"NFL": 44.5,
	"CFB": 55.5,
	"MLB": 8.5,
	"NHL": 6.5,
}

// PredictLocal derives a moneyline, spread and total from two teams'
// win-loss records. It always produces something displayable; garbage
// records collapse to a coin flip with home edge.
func PredictLocal(homeRecord, awayRecord, sportLabel string) LocalPrediction {
	homePct := recordPct(homeRecord)
	awayPct := recordPct(awayRecord)

	// log5 matchup probability, then the home bump.
	prob := homePct * (1 - awayPct) / (homePct*(1-awayPct) + awayPct*(1-homePct))
	prob = clamp(prob+homeEdge, 0.05, 0.95)

	scale, ok := spreadScale[sportLabel]
	if !ok {
		scale = 10
	}
	spread := -roundHalf((prob - 0.5) * scale)

	total, ok := baseTotal[sportLabel]
	if !ok {
		total = 140.5
	}

	lean := models.Under
	if homePct+awayPct > 1 {
		lean = models.Over
	}

	return LocalPrediction{
		HomeProbability: prob,
		MoneylineHome:   oddsService.ProbabilityToAmerican(prob),
		MoneylineAway:   oddsService.ProbabilityToAmerican(1 - prob),
		HomeSpread:      spread,
		Total:           total,
		OverUnderLean:   lean,
	}
}

// FormatSpread renders a signed spread for display. Zero is a pick-'em
// ("PK") rather than a signless number; sign flipping for the other
// side of the line is numeric negation, never string rewriting.
func FormatSpread(spread float64) string {
	if spread == 0 {
		return "PK"
	}
	formatted := strconv.FormatFloat(math.Abs(spread), 'f', -1, 64)
	if spread > 0 {
		return "+" + formatted
	}
	return "-" + formatted
}

func FormatTotal(total float64) string {
	return strconv.FormatFloat(total, 'f', -1, 64)
}

// recordPct turns a "W-L" record into a Laplace-smoothed win
// percentage, so 0-0 teams read as 0.5 rather than dividing by zero.
func recordPct(record string) float64 {
	parts := strings.SplitN(strings.TrimSpace(record), "-", 2)
	if len(parts) != 2 {
		return 0.5
	}
	wins, errW := strconv.Atoi(parts[0])
	losses, errL := strconv.Atoi(parts[1])
	if errW != nil || errL != nil || wins < 0 || losses < 0 {
		return 0.5
	}
	return (float64(wins) + 1) / (float64(wins+losses) + 2)
}

func roundHalf(value float64) float64 {
	return math.Round(value*2) / 2
}

func clamp(value, low, high float64) float64 {
	return math.Min(high, math.Max(low, value))
}
