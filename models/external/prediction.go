package external

// PredictionRequest is the payload for the prediction service's
// POST /api/predict endpoint: one entry per gathered game with the best
// decimal odds we could derive for it.
type PredictionRequest struct {
	Games []PredictionRequestGame `json:"games"`
}

type PredictionRequestGame struct {
	ID   string  `json:"id"`
	Odds float64 `json:"odds"`
}

type PredictionResponse struct {
	Status      string                    `json:"status"`
	Predictions map[string]GamePrediction `json:"predictions"`
}

// GamePrediction carries the model's win-probability estimate (0-100, for
// the home side), its edge signal, and the three stake-sizing suggestions.
type GamePrediction struct {
	AIProbability float64          `json:"ai_probability"`
	Edge          float64          `json:"edge"`
	Suggestions   StakeSuggestions `json:"suggestions"`
}

type StakeSuggestions struct {
	Kelly  float64 `json:"kelly"`
	Target float64 `json:"target"`
	Fixed  float64 `json:"fixed"`
}
