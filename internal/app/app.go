package app

import (
	"fmt"
	"net/http"

	"github.com/boxlax/fantasy-core/external/boxstats"
	"github.com/boxlax/fantasy-core/internal/config"
	"github.com/boxlax/fantasy-core/internal/domain/draft"
	"github.com/boxlax/fantasy-core/internal/domain/fantasy"
	domaingame "github.com/boxlax/fantasy-core/internal/domain/game"
	"github.com/boxlax/fantasy-core/internal/domain/player"
	"github.com/boxlax/fantasy-core/internal/domain/scoring"
	"github.com/boxlax/fantasy-core/internal/domain/stats"
	"github.com/boxlax/fantasy-core/internal/domain/week"
	"github.com/boxlax/fantasy-core/internal/infrastructure/repository/memory"
	"github.com/boxlax/fantasy-core/internal/infrastructure/repository/postgres"
	"github.com/boxlax/fantasy-core/internal/interfaces/httpapi"
	"github.com/boxlax/fantasy-core/internal/platform/cache"
	"github.com/boxlax/fantasy-core/internal/platform/logging"
	"github.com/boxlax/fantasy-core/internal/usecase"
	_ "github.com/lib/pq"
)

type repositories struct {
	games   domaingame.Repository
	weeks   week.Repository
	players player.Repository
	stats   stats.Repository
	scoring scoring.Repository
	drafts  draft.Repository
	close   func() error
}

// NewHTTPServer wires the full service. With DB_URL set it runs against
// postgres; without it the seeded in-memory repositories back everything,
// which is how dev and the test suite run.
func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}

	repos, err := buildRepositories(cfg)
	if err != nil {
		return nil, nil, err
	}

	var store *cache.Store
	if cfg.CacheEnabled {
		store = cache.NewStore()
	}

	rules := fantasy.DefaultRules()
	rules.DrawPolicy = cfg.DrawBonusPolicy

	scheduleSvc := usecase.NewScheduleService(repos.games, repos.weeks, store, logger)
	lockSvc := usecase.NewRosterLockService(scheduleSvc, cfg.RosterUnlockBuffer, logger)
	scoringSvc := usecase.NewScoringService(repos.games, repos.players, repos.stats, repos.scoring, rules, logger)
	draftSvc := usecase.NewDraftService(repos.drafts, logger)

	feed := boxstats.NewClient(boxstats.ClientConfig{
		BaseURL:        cfg.ProviderBaseURL,
		Token:          cfg.ProviderToken,
		Timeout:        cfg.ProviderTimeout,
		MaxRetries:     cfg.ProviderMaxRetries,
		Logger:         logger,
		CircuitBreaker: cfg.ProviderCircuit,
	})
	syncSvc := usecase.NewSyncService(feed, scheduleSvc, cfg.SyncFetchTimeout, cfg.SyncWorkerCount, logger)

	handler := httpapi.NewHandler(scheduleSvc, lockSvc, scoringSvc, draftSvc, syncSvc, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, repos.close, nil
}

func buildRepositories(cfg config.Config) (repositories, error) {
	if cfg.DBURL == "" {
		scheduleStore := memory.NewScheduleStore(memory.SeedGames(), memory.SeedWeeks())
		return repositories{
			games:   scheduleStore.Games(),
			weeks:   scheduleStore.Weeks(),
			players: memory.NewPlayerRepository(memory.SeedPlayers()),
			stats:   memory.NewStatsRepository(memory.SeedStatLines()),
			scoring: memory.NewScoringRepository(),
			drafts:  memory.NewDraftRepository(memory.SeedDrafts(), memory.SeedPicks()),
			close:   func() error { return nil },
		}, nil
	}

	db, err := openDB(cfg)
	if err != nil {
		return repositories{}, err
	}
	return repositories{
		games:   postgres.NewGameRepository(db),
		weeks:   postgres.NewWeekRepository(db),
		players: postgres.NewPlayerRepository(db),
		stats:   postgres.NewStatsRepository(db),
		scoring: postgres.NewScoringRepository(db),
		drafts:  postgres.NewDraftRepository(db),
		close:   db.Close,
	}, nil
}
