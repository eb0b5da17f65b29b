package commands

import (
	"fmt"

	"github.com/dkrao/fiipulse/internal/external/nse"
	"github.com/dkrao/fiipulse/internal/pipeline"
	"github.com/dkrao/fiipulse/internal/store"
	"github.com/dkrao/fiipulse/pkg/config"
	"github.com/dkrao/fiipulse/pkg/database"
	"github.com/dkrao/fiipulse/pkg/httputil"
	"github.com/dkrao/fiipulse/pkg/logger"
	"github.com/dkrao/fiipulse/pkg/redis"
)

// deps holds the shared wiring the commands build on.
type deps struct {
	cfg      *config.Config
	log      *logger.Logger
	db       *database.DB
	redis    *redis.Client
	pipeline *pipeline.Pipeline
}

// close releases connections in reverse construction order.
func (d *deps) close() {
	if d.redis != nil {
		d.redis.Close()
	}
	if d.db != nil {
		d.db.Close()
	}
}

// buildDeps loads config and wires the database, cache, NSE client and
// pipeline together.
func buildDeps() (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	redisClient, err := redis.New(cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	var cache *redis.Cache
	if redisClient.Enabled() {
		cache = redis.NewCache(redisClient, "fiipulse")
	}

	httpClient := httputil.New(log, cfg.NSE.RequestTimeout).
		WithRateLimit(cfg.NSE.RatePerSecond)
	nseClient := nse.NewClient(httpClient, log, cfg.NSE.BaseURL, cfg.NSE.ArchivesBaseURL)

	p := pipeline.New(
		store.NewFlowRepository(db.Pool),
		store.NewIndexRepository(db.Pool),
		store.NewStrengthRepository(db.Pool),
		nseClient,
		cache,
		cfg.Engine,
		log,
	)

	return &deps{
		cfg:      cfg,
		log:      log,
		db:       db,
		redis:    redisClient,
		pipeline: p,
	}, nil
}
