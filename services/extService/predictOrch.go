package extService

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"pickLabsEngine/models/external"
)

var ErrPredictionUnavailable = errors.New("prediction service unavailable")

// PredictionClient calls the model server. Any failure mode (transport,
// bad status, malformed body, non-"success" status field) collapses to
// ErrPredictionUnavailable; the engine degrades to no candidates rather
// than guessing.
type PredictionClient struct {
	BaseURL string
	Client  *http.Client
}

func NewPredictionClient(baseURL string) *PredictionClient {
	return &PredictionClient{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *PredictionClient) Predict(games []external.PredictionRequestGame) (map[string]external.GamePrediction, error) {
	payload, err := json.Marshal(external.PredictionRequest{Games: games})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPredictionUnavailable, err)
	}

	resp, err := c.Client.Post(c.BaseURL+"/api/predict", "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPredictionUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrPredictionUnavailable, resp.StatusCode)
	}

	var decoded external.PredictionResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPredictionUnavailable, err)
	}
	if decoded.Status != "success" || decoded.Predictions == nil {
		return nil, fmt.Errorf("%w: status %q", ErrPredictionUnavailable, decoded.Status)
	}

	return decoded.Predictions, nil
}
