// Package app assembles the service from configuration: store selection,
// domain services, metrics and housekeeping jobs.
package app

import (
	"context"
	"fmt"

	"linksoc/internal/config"
	"linksoc/internal/core/idempotency"
	"linksoc/internal/core/labelcode"
	"linksoc/internal/core/tx"
	"linksoc/internal/domain/audit"
	"linksoc/internal/domain/auth"
	"linksoc/internal/domain/labels"
	"linksoc/internal/domain/reprint"
	"linksoc/internal/domain/rules"
	"linksoc/internal/domain/tasks"
	"linksoc/internal/infrastructure/metrics"
	"linksoc/internal/infrastructure/storage/memory"
	"linksoc/internal/infrastructure/storage/postgres"
	"linksoc/internal/infrastructure/storage/postgres/auth_repo"
	"linksoc/internal/infrastructure/storage/postgres/label_repo"
	"linksoc/internal/infrastructure/storage/postgres/queue_repo"
	"linksoc/internal/infrastructure/storage/postgres/rule_repo"
	"linksoc/internal/infrastructure/worker"
	"linksoc/pkg/logger"
)

// AuditReader reads back the audit trail.
type AuditReader interface {
	Recent(ctx context.Context, limit int) ([]audit.Entry, error)
}

// App holds the assembled services.
type App struct {
	Config *config.Config

	// Pool is nil when running on the in-memory store.
	Pool      *postgres.Pool
	TxManager tx.Manager

	JWT     *auth.JWTService
	Auth    *auth.Service
	Labels  *labels.Service
	Reprint *reprint.Service
	Tasks   *tasks.Service
	Rules   *rules.Service

	Audit       AuditReader
	Idempotency idempotency.Store
	Metrics     *metrics.Metrics

	// Housekeeping lists the cleanup jobs of the selected store.
	Housekeeping []worker.Job
}

type stores struct {
	txManager   tx.Manager
	recorder    audit.Recorder
	reader      AuditReader
	labels      labels.Repository
	reprint     reprint.Repository
	tasks       tasks.Repository
	rules       rules.Repository
	auth        auth.Repository
	idempotency idempotency.Store
	cleaner     worker.Cleaner
}

// New builds the application. An empty database URL selects the in-memory
// store seeded with the demo password.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	var (
		st  *stores
		err error
	)
	if cfg.MemoryStore() {
		st, err = a.memoryStores(ctx)
	} else {
		st, err = a.postgresStores(ctx)
	}
	if err != nil {
		a.Close()
		return nil, err
	}

	jwtConfig := auth.DefaultJWTConfig(cfg.JWT.Secret)
	if jwtConfig.Secret == "" {
		jwtConfig.Secret = "linksoc-development-secret"
	}
	if cfg.JWT.Issuer != "" {
		jwtConfig.Issuer = cfg.JWT.Issuer
	}
	if cfg.JWT.TTL > 0 {
		jwtConfig.AccessTokenTTL = cfg.JWT.TTL
	}

	a.TxManager = st.txManager
	a.JWT = auth.NewJWTService(jwtConfig)
	a.Auth = auth.NewService(st.auth, a.JWT)
	a.Labels = labels.NewService(st.labels, st.txManager, st.recorder, labelConfig(cfg))
	a.Reprint = reprint.NewService(st.reprint, a.Labels, st.txManager, st.recorder)
	a.Tasks = tasks.NewService(st.tasks, a.Labels)
	a.Audit = st.reader

	if a.Rules, err = rules.NewService(st.rules); err != nil {
		a.Close()
		return nil, fmt.Errorf("rules: %w", err)
	}

	if cfg.Idempotency.Enabled {
		a.Idempotency = st.idempotency
		if cfg.Idempotency.CleanupInterval > 0 {
			a.Housekeeping = append(a.Housekeeping, worker.Job{Name: "idempotency", Cleaner: st.cleaner})
		}
	}

	a.Metrics = metrics.New()
	a.Labels.WithObserver(a.Metrics)
	if a.Pool != nil {
		a.Metrics.RegisterPool(a.Pool)
	}

	return a, nil
}

func (a *App) memoryStores(ctx context.Context) (*stores, error) {
	store := memory.NewStore()
	if err := memory.SeedDemo(ctx, store); err != nil {
		return nil, fmt.Errorf("seed demo data: %w", err)
	}
	logger.Warn(ctx, "no database configured, using in-memory store",
		"demo_password", memory.DemoPassword)

	idem := memory.NewIdempotencyStore(a.Config.Idempotency.TTL)
	return &stores{
		txManager:   store,
		recorder:    store,
		reader:      store,
		labels:      store.Labels(),
		reprint:     store.Reprint(),
		tasks:       store.Tasks(),
		rules:       store.Rules(),
		auth:        store.Auth(),
		idempotency: idem,
		cleaner:     idem,
	}, nil
}

func (a *App) postgresStores(ctx context.Context) (*stores, error) {
	db := a.Config.Database

	poolConfig := postgres.DefaultPoolConfig(db.URL)
	if db.MaxConns > 0 {
		poolConfig.MaxConns = db.MaxConns
	}
	if db.MinConns > 0 {
		poolConfig.MinConns = db.MinConns
	}
	if db.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = db.MaxConnLifetime
	}

	pool, err := postgres.NewPool(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	a.Pool = pool

	txm := postgres.NewTxManager(pool)
	if db.Migrate {
		if err := postgres.Migrate(ctx, txm); err != nil {
			return nil, err
		}
	}
	if err := postgres.ValidateSchema(ctx, txm); err != nil {
		return nil, err
	}

	recorder, err := postgres.NewAuditRecorder(txm, a.Config.Audit.CompressThreshold)
	if err != nil {
		return nil, fmt.Errorf("audit recorder: %w", err)
	}

	idem := postgres.NewIdempotencyStore(txm, a.Config.Idempotency.TTL)
	return &stores{
		txManager:   txm,
		recorder:    recorder,
		reader:      recorder,
		labels:      label_repo.NewLabelRepo(txm),
		reprint:     queue_repo.NewReprintRepo(txm),
		tasks:       queue_repo.NewTaskRepo(txm),
		rules:       rule_repo.NewRuleRepo(txm),
		auth:        auth_repo.NewPasswordRepo(txm),
		idempotency: idem,
		cleaner:     idem,
	}, nil
}

func labelConfig(cfg *config.Config) labels.ServiceConfig {
	c := labels.DefaultServiceConfig()
	c.Format = labelcode.Format{
		Prefix:        cfg.Labels.Prefix,
		SeriePadWidth: cfg.Labels.SeriePadWidth,
	}
	if cfg.Labels.MaxCode > 0 {
		c.MaxCode = cfg.Labels.MaxCode
	}
	if cfg.Labels.MaxBatch > 0 {
		c.MaxBatch = cfg.Labels.MaxBatch
	}
	return c
}

// Close releases the database pool, if any.
func (a *App) Close() {
	if a.Pool != nil {
		a.Pool.Close()
	}
}
