package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"fleetflow/internal/config"
)

// NewRedisClient connects to Redis with the configured pool. When nrApp is
// set every command is recorded as a datastore segment named after the key
// family it touches.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig, nrApp *newrelic.Application, logger *zap.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
	})

	if nrApp != nil {
		client.AddHook(datastoreHook{})
	}

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Addr, err)
	}

	logger.Info("connected to Redis",
		zap.String("addr", cfg.Addr),
		zap.Int("db", cfg.DB),
		zap.Int("pool_size", cfg.PoolSize),
		zap.Bool("instrumented", nrApp != nil),
	)
	return client, nil
}

// keyFamilies are the key prefixes written by this service, most specific
// first.
var keyFamilies = []string{
	"cache:carrier",
	"cache:driver",
	"lock:driver",
	"lock:account",
	"lock:load",
	"drivers:locations",
	"quota",
	"idempotency",
}

// keyFamily maps a Redis key to the collection reported to New Relic.
func keyFamily(key string) string {
	for _, family := range keyFamilies {
		if key == family || strings.HasPrefix(key, family+":") {
			return family
		}
	}
	return "other"
}

// commandCollection returns the key family of a command's first key.
func commandCollection(cmd redis.Cmder) string {
	args := cmd.Args()
	if len(args) < 2 {
		return "other"
	}
	key, ok := args[1].(string)
	if !ok {
		return "other"
	}
	return keyFamily(key)
}

// datastoreHook records Redis commands on the request's New Relic
// transaction.
type datastoreHook struct{}

func (datastoreHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (datastoreHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		if txn := newrelic.FromContext(ctx); txn != nil {
			defer startSegment(txn, cmd.Name(), commandCollection(cmd)).End()
		}
		return next(ctx, cmd)
	}
}

// ProcessPipelineHook names the pipeline after its first command's key
// family; quota reservations are the only pipelines and touch one family.
func (datastoreHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		if txn := newrelic.FromContext(ctx); txn != nil {
			collection := "other"
			if len(cmds) > 0 {
				collection = commandCollection(cmds[0])
			}
			defer startSegment(txn, "pipeline", collection).End()
		}
		return next(ctx, cmds)
	}
}

func startSegment(txn *newrelic.Transaction, operation, collection string) *newrelic.DatastoreSegment {
	return &newrelic.DatastoreSegment{
		StartTime:  txn.StartSegmentNow(),
		Product:    newrelic.DatastoreRedis,
		Operation:  operation,
		Collection: collection,
	}
}
