package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/aircnc/aircnc-server/internal/config"
	"github.com/aircnc/aircnc-server/internal/database"
	"github.com/aircnc/aircnc-server/internal/server"
	"github.com/aircnc/aircnc-server/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

const mongoConnectAttempts = 5

// Deps are the connections a service holds for its lifetime.
type Deps struct {
	Mongo *mongo.Client
	DB    *mongo.Database
	// Redis is nil when REDIS_HOST is unset or unreachable at startup.
	Redis *redis.Client
}

// Connect opens MongoDB (with retries) and Redis when configured. A Redis that does
// not answer a ping is logged and left out.
func Connect(ctx context.Context, cfg *config.Config) (*Deps, error) {
	client, err := database.ConnectMongoWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, mongoConnectAttempts)
	if err != nil {
		return nil, err
	}
	d := &Deps{Mongo: client, DB: client.Database(cfg.MongoDB.Database)}

	if addr := cfg.Redis.Addr(); addr != "" {
		rc := redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := rc.Ping(pingCtx).Err(); err != nil {
			logger.Warnf("redis %s unavailable, continuing without it: %v", addr, err)
			_ = rc.Close()
		} else {
			d.Redis = rc
		}
	}
	return d, nil
}

// Checks returns the readiness probes for the held connections.
func (d *Deps) Checks() map[string]server.Check {
	checks := map[string]server.Check{
		"mongodb": func(ctx context.Context) error { return d.Mongo.Ping(ctx, nil) },
	}
	if d.Redis != nil {
		checks["redis"] = func(ctx context.Context) error { return d.Redis.Ping(ctx).Err() }
	}
	return checks
}

// Close releases every connection.
func (d *Deps) Close(ctx context.Context) {
	if d.Redis != nil {
		_ = d.Redis.Close()
	}
	if err := d.Mongo.Disconnect(ctx); err != nil {
		logger.Warnf("mongo disconnect: %v", err)
	}
}

// CheckDependencies connects once and runs every probe. It backs the healthcheck command.
func CheckDependencies(ctx context.Context, cfg *config.Config) error {
	client, err := database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
	if err != nil {
		return err
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	if addr := cfg.Redis.Addr(); addr != "" {
		rc := redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rc.Close()
		if err := rc.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
	}
	return nil
}
