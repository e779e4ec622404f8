package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/Keanutjardim/FRPadelLeague/internal/config"
	"github.com/Keanutjardim/FRPadelLeague/internal/domain/challenge"
	"github.com/Keanutjardim/FRPadelLeague/internal/domain/division"
	"github.com/Keanutjardim/FRPadelLeague/internal/domain/joinrequest"
	"github.com/Keanutjardim/FRPadelLeague/internal/domain/team"
	"github.com/Keanutjardim/FRPadelLeague/internal/domain/user"
	"github.com/Keanutjardim/FRPadelLeague/internal/infrastructure/account/clubauth"
	"github.com/Keanutjardim/FRPadelLeague/internal/infrastructure/notify"
	"github.com/Keanutjardim/FRPadelLeague/internal/infrastructure/repository/cache"
	"github.com/Keanutjardim/FRPadelLeague/internal/infrastructure/repository/memory"
	"github.com/Keanutjardim/FRPadelLeague/internal/infrastructure/repository/postgres"
	"github.com/Keanutjardim/FRPadelLeague/internal/interfaces/httpapi"
	basecache "github.com/Keanutjardim/FRPadelLeague/internal/platform/cache"
	"github.com/Keanutjardim/FRPadelLeague/internal/platform/changefeed"
	idgen "github.com/Keanutjardim/FRPadelLeague/internal/platform/id"
	"github.com/Keanutjardim/FRPadelLeague/internal/platform/logging"
	"github.com/Keanutjardim/FRPadelLeague/internal/platform/resilience"
	"github.com/Keanutjardim/FRPadelLeague/internal/usecase"
)

// App owns the wired service: the HTTP server plus the resources that need
// an orderly release on shutdown (database pool, webhook worker pool).
type App struct {
	Server *http.Server

	db        *sqlx.DB
	forwarder *notify.WebhookForwarder
	logger    *logging.Logger
}

type repositories struct {
	divisions  division.Repository
	settings   division.SettingsRepository
	users      user.Repository
	teams      team.Repository
	challenges challenge.Repository
	joins      joinrequest.Repository
}

// New wires repositories, use cases, the notification pipeline, and the HTTP
// surface from configuration. With an empty DB_URL it runs entirely against
// the seeded in-memory store.
func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	feed := changefeed.NewBus()

	var forwarder *notify.WebhookForwarder
	if cfg.WebhookEnabled {
		var err error
		forwarder, err = notify.NewWebhookForwarder(notify.WebhookForwarderConfig{
			TargetURL: cfg.WebhookURL,
			AuthToken: cfg.WebhookToken,
			Timeout:   cfg.WebhookTimeout,
			Workers:   cfg.WebhookWorkers,
			Retries:   cfg.WebhookRetries,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.WebhookCircuitEnabled,
				FailureThreshold: cfg.WebhookCircuitFailureCount,
				OpenTimeout:      cfg.WebhookCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.WebhookCircuitHalfOpenMaxReq,
			},
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("build webhook forwarder: %w", err)
		}
	}
	notifier := notify.NewDispatcher(feed, forwarder, logger)

	var db *sqlx.DB
	var repos repositories
	if cfg.MemoryStore() {
		logger.Info("using in-memory store", "reason", "DB_URL is empty")
		repos = newMemoryRepositories()
	} else {
		var err error
		db, err = openDB(ctx, cfg)
		if err != nil {
			if forwarder != nil {
				forwarder.Close()
			}
			return nil, err
		}
		if cfg.DBBootstrapSeed {
			if err := postgres.BootstrapSeed(ctx, db); err != nil {
				if forwarder != nil {
					forwarder.Close()
				}
				_ = db.Close()
				return nil, fmt.Errorf("bootstrap seed: %w", err)
			}
		}
		repos = newPostgresRepositories(db)
	}

	if cfg.CacheEnabled {
		store := basecache.NewStore(cfg.CacheTTL)
		repos.divisions = cache.NewDivisionRepository(repos.divisions, store)
		repos.settings = cache.NewSettingsRepository(repos.settings, store)
		repos.teams = cache.NewTeamRepository(repos.teams, store)
	}

	ids := idgen.NewRandomGenerator()

	rankingSvc := usecase.NewRankingService(repos.teams, notifier, logger)
	divisionSvc := usecase.NewDivisionService(repos.divisions, repos.settings, notifier)
	userSvc := usecase.NewUserService(repos.users, repos.divisions, ids)
	teamSvc := usecase.NewTeamService(repos.teams, repos.users, repos.divisions, repos.joins, notifier, ids)
	challengeSvc := usecase.NewChallengeService(repos.challenges, repos.teams, repos.settings, rankingSvc, notifier, ids)

	verifier := clubauth.NewClient(
		&http.Client{Timeout: cfg.ClubAuthTimeout},
		cfg.ClubAuthBaseURL,
		cfg.ClubAuthIntrospectPath,
		cfg.ClubAuthAdminKey,
		clubauth.CircuitBreakerConfig{
			Enabled:          cfg.ClubAuthCircuitEnabled,
			FailureThreshold: cfg.ClubAuthCircuitFailureCount,
			OpenTimeout:      cfg.ClubAuthCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.ClubAuthCircuitHalfOpenMaxReq,
		},
		logger,
	)

	handler := httpapi.NewHandler(divisionSvc, userSvc, teamSvc, challengeSvc, feed, logger)
	router := httpapi.NewRouter(
		handler,
		verifier,
		logger,
		cfg.SwaggerEnabled,
		cfg.CORSAllowedOrigins,
		cfg.InternalAdminToken,
		cfg.ActionTimeout,
	)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		if forwarder != nil {
			forwarder.Close()
		}
		if db != nil {
			_ = db.Close()
		}
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return &App{
		Server:    server,
		db:        db,
		forwarder: forwarder,
		logger:    logger,
	}, nil
}

// Close releases resources the HTTP server does not own. Call it after
// Server.Shutdown so in-flight requests keep their repositories.
func (a *App) Close() {
	if a.forwarder != nil {
		a.forwarder.Close()
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("close db pool", "error", err.Error())
		}
	}
}

func newMemoryRepositories() repositories {
	users := memory.NewUserRepository(memory.SeedUsers())
	return repositories{
		divisions:  memory.NewDivisionRepository(memory.SeedDivisions()),
		settings:   memory.NewSeededSettingsRepository(memory.SeedSettings()),
		users:      users,
		teams:      memory.NewTeamRepository(memory.SeedTeams(), users),
		challenges: memory.NewChallengeRepository(),
		joins:      memory.NewJoinRequestRepository(),
	}
}

func newPostgresRepositories(db *sqlx.DB) repositories {
	return repositories{
		divisions:  postgres.NewDivisionRepository(db),
		settings:   postgres.NewSettingsRepository(db),
		users:      postgres.NewUserRepository(db),
		teams:      postgres.NewTeamRepository(db),
		challenges: postgres.NewChallengeRepository(db),
		joins:      postgres.NewJoinRequestRepository(db),
	}
}

func openDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)

	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return db, nil
}
