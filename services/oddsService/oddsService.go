package oddsService

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"pickLabsEngine/models"
)

// NeutralDecimal is the fallback multiplier for odds we cannot parse,
// equivalent to a standard -110 line. Upstream feeds hand us "N/A" and
// malformed strings often enough that every caller must tolerate them,
// so parsing never returns an error; it degrades to this value.
const NeutralDecimal = 1.909

// ToDecimal converts an American odds string to a decimal multiplier.
// "+150" -> 2.50, "-200" -> 1.50. Malformed input yields NeutralDecimal.
func ToDecimal(american string) float64 {
	odds, ok := parseAmerican(american)
	if !ok {
		return NeutralDecimal
	}
	if odds > 0 {
		return float64(odds)/100.0 + 1.0
	}
	return 100.0/float64(-odds) + 1.0
}

// ToAmerican converts a decimal multiplier back to an American odds
// string. Values at or below even money (<= 1) have no American
// representation and return "N/A".
func ToAmerican(decimal float64) string {
	if math.IsNaN(decimal) || math.IsInf(decimal, 0) || decimal <= 1 {
		return "N/A"
	}
	if decimal >= 2 {
		return fmt.Sprintf("+%d", int(math.Round((decimal-1)*100)))
	}
	return strconv.Itoa(int(math.Round(-100 / (decimal - 1))))
}

// Winnings returns the profit (excluding the returned stake) for a stake
// at the given American odds. Zero for non-positive stakes or
// unparseable odds.
func Winnings(stake float64, american string) float64 {
	if stake <= 0 {
		return 0
	}
	odds, ok := parseAmerican(american)
	if !ok {
		return 0
	}
	if odds > 0 {
		return stake * float64(odds) / 100.0
	}
	return stake / (float64(-odds) / 100.0)
}

// CombinedOdds multiplies each pick's decimal equivalent into a single
// parlay line. Legs are treated as independent events; no correlation
// adjustment is applied. A single pick passes through unchanged so a
// straight bet displays the book's own line.
func CombinedOdds(picks []models.Pick) string {
	if len(picks) == 0 {
		return "N/A"
	}
	if len(picks) == 1 {
		return picks[0].Odds
	}
	combined := 1.0
	for _, pick := range picks {
		combined *= ToDecimal(pick.Odds)
	}
	return ToAmerican(combined)
}

// ImpliedProbability returns the win probability implied by an American
// odds string, in [0,1].
func ImpliedProbability(american string) float64 {
	return 1.0 / ToDecimal(american)
}

// ProbabilityToAmerican converts a win probability to the American odds
// string a fair book would post. Out-of-range probabilities return "N/A".
func ProbabilityToAmerican(probability float64) string {
	if probability <= 0 || probability >= 1 {
		return "N/A"
	}
	return ToAmerican(1.0 / probability)
}

func parseAmerican(american string) (int, bool) {
	trimmed := strings.TrimSpace(american)
	if trimmed == "" || trimmed == "N/A" {
		return 0, false
	}
	odds, err := strconv.Atoi(strings.TrimPrefix(trimmed, "+"))
	if err != nil || odds == 0 {
		return 0, false
	}
	return odds, true
}
