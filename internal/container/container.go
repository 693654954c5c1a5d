package container

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	database "github.com/FACorreiaa/owt-boats/app/db"
	"github.com/FACorreiaa/owt-boats/config"
	"github.com/FACorreiaa/owt-boats/internal/api/auth"
	"github.com/FACorreiaa/owt-boats/internal/api/boat"
	"github.com/FACorreiaa/owt-boats/internal/router"
)

// Container holds all application dependencies
type Container struct {
	Config         *config.Config
	Logger         *slog.Logger
	Pool           *pgxpool.Pool
	TokenIssuer    *auth.TokenIssuer
	PrincipalStore auth.PrincipalStore
	AuthHandler    *auth.HandlerImpl
	BoatRepository boat.Repository
	BoatService    boat.Service
	BoatHandler    *boat.HandlerImpl
}

// NewContainer wires every dependency. With the postgres driver it runs
// migrations and waits for the database before returning.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger}

	issuer, err := auth.NewTokenIssuer(cfg.JWT)
	if err != nil {
		return nil, err
	}
	c.TokenIssuer = issuer

	store, err := auth.NewConfigPrincipalStore(cfg.Auth.Users, cfg.Auth.CredentialTTL, logger)
	if err != nil {
		return nil, err
	}
	c.PrincipalStore = store
	c.AuthHandler = auth.NewAuthHandlerImpl(issuer, logger)

	switch cfg.Storage.Driver {
	case config.StorageMemory:
		logger.Warn("Using in-memory boat store, data is lost on restart")
		c.BoatRepository = boat.NewMemoryRepository(logger)
	default:
		repo, err := c.initPostgres(ctx)
		if err != nil {
			return nil, err
		}
		c.BoatRepository = repo
	}

	c.BoatService = boat.NewServiceImpl(c.BoatRepository, logger)
	c.BoatHandler = boat.NewHandler(c.BoatService, logger)
	return c, nil
}

func (c *Container) initPostgres(ctx context.Context) (*boat.RepositoryImpl, error) {
	dbConfig, err := database.NewDatabaseConfig(c.Config, c.Logger)
	if err != nil {
		return nil, err
	}
	if err = database.RunMigrations(dbConfig.ConnectionURL, c.Logger); err != nil {
		return nil, err
	}
	pool, err := database.Init(ctx, dbConfig.ConnectionURL, c.Logger)
	if err != nil {
		return nil, err
	}
	c.Pool = pool
	if !database.WaitForDB(ctx, pool, c.Logger) {
		pool.Close()
		return nil, fmt.Errorf("database not ready")
	}
	return boat.NewRepository(pool, c.Logger), nil
}

// RouterConfig returns the router dependencies held by the container.
func (c *Container) RouterConfig() *router.Config {
	return &router.Config{
		Logger:         c.Logger,
		AuthHandler:    c.AuthHandler,
		BoatHandler:    c.BoatHandler,
		PrincipalStore: c.PrincipalStore,
		TokenIssuer:    c.TokenIssuer,
		AllowedOrigins: c.Config.CORS.AllowedOrigins,
	}
}

// Close releases all resources held by the container
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}
