// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/learnportal/internal/app/system/apiclient"
	"github.com/dalemusser/learnportal/internal/app/system/indexes"
	"github.com/dalemusser/learnportal/internal/app/system/timeouts"
	"github.com/dalemusser/learnportal/internal/app/system/validators"
	"github.com/dalemusser/waffle/config"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB connects MongoDB, the optional Redis cache and builds the REST
// client. A backend that is down at startup is not fatal: /health reports it.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	client, err := connectMongo(ctx, appCfg.MongoURI, logger)
	if err != nil {
		return DBDeps{}, err
	}
	deps := DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
		bg:            &background{},
	}

	if appCfg.RedisAddr != "" {
		rdb, err := connectRedis(ctx, appCfg, logger)
		if err != nil {
			_ = client.Disconnect(ctx)
			return DBDeps{}, err
		}
		deps.Redis = rdb
	} else {
		logger.Info("redis_addr not set; catalog cache disabled")
	}

	deps.API, err = newAPIClient(coreCfg, appCfg, logger)
	if err != nil {
		closeBackends(ctx, deps, logger)
		return DBDeps{}, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	if err := deps.API.Health(pingCtx); err != nil {
		logger.Warn("REST backend not reachable at startup",
			zap.String("api_base_url", appCfg.APIBaseURL), zap.Error(err))
	}

	return deps, nil
}

func connectMongo(ctx context.Context, uri string, logger *zap.Logger) (*mongo.Client, error) {
	cctx, cancel := context.WithTimeout(ctx, timeouts.Medium())
	defer cancel()

	client, err := mongo.Connect(cctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(cctx, readpref.Primary()); err != nil {
		if discErr := client.Disconnect(ctx); discErr != nil {
			err = errors.Join(err, fmt.Errorf("disconnect mongo: %w", discErr))
		}
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	logger.Info("mongo connected")
	return client, nil
}

func connectRedis(ctx context.Context, appCfg AppConfig, logger *zap.Logger) (redis.UniversalClient, error) {
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    []string{appCfg.RedisAddr},
		Password: appCfg.RedisPassword,
		DB:       appCfg.RedisDB,
	})

	pctx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	if err := client.Ping(pctx).Err(); err != nil {
		if closeErr := client.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close redis client: %w", closeErr))
		}
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	logger.Info("redis connected", zap.String("addr", appCfg.RedisAddr), zap.Int("db", appCfg.RedisDB))
	return client, nil
}

func newAPIClient(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (*apiclient.Client, error) {
	interceptors := []apiclient.Interceptor{
		apiclient.RequestID(),
		apiclient.Logging(logger),
	}
	if coreCfg.Env != "prod" && appCfg.DevSuppressHMRErrors {
		interceptors = append(interceptors, apiclient.SuppressDevErrors(logger))
	}
	api, err := apiclient.New(apiclient.Options{
		BaseURL:      appCfg.APIBaseURL,
		Timeout:      appCfg.APITimeout,
		Interceptors: interceptors,
		Log:          logger,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("REST client configured",
		zap.String("api_base_url", appCfg.APIBaseURL),
		zap.Duration("timeout", appCfg.APITimeout),
		zap.Int("interceptors", len(interceptors)))
	return api, nil
}

// EnsureSchema creates collections, validators and indexes. Each step is
// idempotent.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := validators.EnsureAll(ctx, deps.MongoDatabase, logger); err != nil {
		return fmt.Errorf("ensure validators: %w", err)
	}
	if err := indexes.EnsureAll(ctx, deps.MongoDatabase, logger); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}
	return nil
}
