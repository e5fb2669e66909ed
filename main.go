package main

import (
	"log"
	"net/http"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pickLabsEngine/models"
	"pickLabsEngine/scheduler"
	"pickLabsEngine/services/aiService"
	"pickLabsEngine/services/apiService"
	"pickLabsEngine/services/extService"
	"pickLabsEngine/services/messageService"
	"pickLabsEngine/services/quotaService"
	"pickLabsEngine/services/slipService"
	"pickLabsEngine/services/ticketService"
)

type config struct {
	MySQLURL         string  `envconfig:"MYSQL_URL" required:"true"`
	HTTPAddr         string  `envconfig:"HTTP_ADDR" default:":8080"`
	FeedBaseURL      string  `envconfig:"FEED_BASE_URL" default:"https://site.api.espn.com/apis/site/v2"`
	PredictionURL    string  `envconfig:"PREDICTION_URL" default:"http://localhost:8000"`
	StartingBankroll float64 `envconfig:"STARTING_BANKROLL" default:"1000"`
	DiscordToken     string  `envconfig:"DISCORD_BOT_TOKEN"`
	DiscordChannelID string  `envconfig:"DISCORD_CHANNEL_ID"`
	EnableScheduler  bool    `envconfig:"ENABLE_SCHEDULER" default:"true"`
	Premium          bool    `envconfig:"PREMIUM" default:"false"`
}

var (
	cfg config
	db  *gorm.DB
)

func init() {
	// .env is optional in deployed environments.
	_ = godotenv.Load()

	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("reading configuration: %v", err)
	}

	var err error
	db, err = gorm.Open(mysql.Open(cfg.MySQLURL+"?charset=utf8mb4&parseTime=True&loc=Local"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	err = db.AutoMigrate(&models.ResolvedTicket{}, &models.ResolvedPick{}, &models.StoreEntry{}, &models.ErrorLog{})
	if err != nil {
		log.Fatalf("Error migrating database: %v", err)
	}
}

func main() {
	feed := extService.NewFeedClient(cfg.FeedBaseURL)
	model := extService.NewPredictionClient(cfg.PredictionURL)

	bankroll := ticketService.NewBankroll(cfg.StartingBankroll)
	ledger := ticketService.NewLedger(bankroll, db, setupNotifier())
	slip := slipService.New()
	engine := aiService.New(feed, model, db)
	quota := quotaService.New(db)

	// One lock for the session's slip, bankroll and ledger, shared by
	// the HTTP handlers and the resolution sweep.
	var sessionMu sync.Mutex

	if cfg.EnableScheduler {
		cronService := scheduler.SetupCron(db, ledger, feed, &sessionMu)
		defer cronService.Stop()
	}

	handler := &apiService.Handler{
		Slip:     slip,
		Bankroll: bankroll,
		Ledger:   ledger,
		Engine:   engine,
		Quota:    quota,
		Mu:       &sessionMu,
		Premium:  cfg.Premium,
	}

	log.Printf("Engine listening on %s", cfg.HTTPAddr)
	if err := http.ListenAndServe(cfg.HTTPAddr, apiService.Router(handler)); err != nil {
		log.Fatalf("http server: %v", err)
	}
}

// setupNotifier opens the Discord session when a token and channel are
// configured. Resolutions work fine without one.
func setupNotifier() ticketService.Notifier {
	if cfg.DiscordToken == "" || cfg.DiscordChannelID == "" {
		return nil
	}

	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		log.Printf("Error creating Discord session: %v", err)
		return nil
	}
	if err := dg.Open(); err != nil {
		log.Printf("Error opening Discord session: %v", err)
		return nil
	}

	return messageService.NewDiscordNotifier(dg, cfg.DiscordChannelID)
}
