package common

import (
	"encoding/json"
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"pickLabsEngine/models"
)

// LogError records a degraded-path failure without surfacing it. The
// engine favors availability: upstream problems land here and the
// affected feature returns an empty result.
func LogError(db *gorm.DB, source string, err error) {
	log.WithField("source", source).Error(err)

	if db == nil {
		return
	}
	entry := models.ErrorLog{
		Source:  source,
		Message: fmt.Sprintf("%v", err),
	}
	db.Create(&entry)
}

// FetchJSON issues a GET and decodes the body into out. Non-200
// responses are errors; callers decide whether to degrade or retry.
func FetchJSON(client *http.Client, requestURL string, out interface{}) error {
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Get(requestURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, requestURL)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
