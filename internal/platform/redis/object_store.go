package redis

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/qsl-cards-backend/internal/platform/logger"
	"github.com/yungbote/qsl-cards-backend/internal/platform/objstore"
)

const backendName = "redis"

type Config struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// ObjectStore keeps each collection document under one string key.
type ObjectStore struct {
	log    *logger.Logger
	rdb    goredis.UniversalClient
	prefix string
}

var _ objstore.ObjectStore = (*ObjectStore)(nil)

func NewObjectStore(ctx context.Context, log *logger.Logger, cfg Config) (*ObjectStore, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, classifyError(objstore.OpRead, "PING", fmt.Errorf("redis ping: %w", err))
	}

	return NewObjectStoreWithClient(log, rdb, cfg.KeyPrefix), nil
}

func NewObjectStoreWithClient(log *logger.Logger, rdb goredis.UniversalClient, prefix string) *ObjectStore {
	return &ObjectStore{
		log:    log.With("service", "RedisObjectStore"),
		rdb:    rdb,
		prefix: prefix,
	}
}

func (s *ObjectStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.rdb.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, objstore.ErrNotFound
	}
	if err != nil {
		return nil, classifyError(objstore.OpRead, key, err)
	}
	return data, nil
}

func (s *ObjectStore) Put(ctx context.Context, key string, data []byte) error {
	if err := s.rdb.Set(ctx, s.prefix+key, data, 0).Err(); err != nil {
		return classifyError(objstore.OpWrite, key, err)
	}
	return nil
}

func (s *ObjectStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *ObjectStore) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}

func classifyError(op objstore.Op, key string, err error) error {
	return objstore.AsAccessError(backendName, op, key, accessErrorKind(err), err)
}

func accessErrorKind(err error) objstore.AccessErrorKind {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return objstore.AccessErrorEndpoint
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "NOAUTH"), strings.Contains(msg, "WRONGPASS"):
		return objstore.AccessErrorCredentials
	case strings.Contains(msg, "NOPERM"):
		return objstore.AccessErrorPermission
	case strings.Contains(msg, "DB index is out of range"):
		return objstore.AccessErrorBucket
	default:
		return objstore.AccessErrorUnknown
	}
}
