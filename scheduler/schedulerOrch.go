package scheduler

import (
	"sync"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"pickLabsEngine/scheduler/scheduler_jobs"
	"pickLabsEngine/services/ticketService"
)

// SetupCron starts the background jobs: a frequent sweep that resolves
// tickets whose games have finished. mu is the session lock shared with
// the HTTP handlers; the ledger is single-writer. The returned cron can
// be stopped on shutdown.
func SetupCron(db *gorm.DB, ledger *ticketService.Ledger, feed scheduler_jobs.Feed, mu *sync.Mutex) *cron.Cron {
	cronService := cron.New(cron.WithSeconds())

	_, err := cronService.AddFunc("0 */5 * * * *", func() {
		// Every 5 minutes.
		if err := scheduler_jobs.CheckTicketEnd(db, ledger, feed, mu); err != nil {
			log.Errorf("ticket resolution sweep: %v", err)
		}
	})
	if err != nil {
		log.Errorf("registering cron jobs: %v", err)
	}

	cronService.Start()
	return cronService
}
