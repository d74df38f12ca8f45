package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yungbote/qsl-cards-backend/internal/data/collection"
	"github.com/yungbote/qsl-cards-backend/internal/data/db"
	cardrepo "github.com/yungbote/qsl-cards-backend/internal/data/repos/cards"
	httpH "github.com/yungbote/qsl-cards-backend/internal/http/handlers"
	"github.com/yungbote/qsl-cards-backend/internal/observability"
	"github.com/yungbote/qsl-cards-backend/internal/platform/gcp"
	"github.com/yungbote/qsl-cards-backend/internal/platform/logger"
	"github.com/yungbote/qsl-cards-backend/internal/platform/objstore"
	"github.com/yungbote/qsl-cards-backend/internal/platform/redis"
	svc "github.com/yungbote/qsl-cards-backend/internal/services/cards"
)

type Backend string

const (
	BackendGCS      Backend = "gcs"
	BackendRedis    Backend = "redis"
	BackendMemory   Backend = "memory"
	BackendPostgres Backend = "postgres"
	BackendSQLite   Backend = "sqlite"
)

var (
	newGCSObjectStore   = gcp.NewObjectStore
	newRedisObjectStore = redis.NewObjectStore
)

type StorageProviderBootstrapErrorCode string

const (
	StorageProviderBootstrapErrorInvalidBackend      StorageProviderBootstrapErrorCode = "invalid_backend"
	StorageProviderBootstrapErrorInvalidMode         StorageProviderBootstrapErrorCode = "invalid_mode"
	StorageProviderBootstrapErrorMissingEmulatorHost StorageProviderBootstrapErrorCode = "missing_emulator_host"
	StorageProviderBootstrapErrorInvalidEmulatorHost StorageProviderBootstrapErrorCode = "invalid_emulator_host"
	StorageProviderBootstrapErrorMissingBucket       StorageProviderBootstrapErrorCode = "missing_bucket"
	StorageProviderBootstrapErrorMissingDSN          StorageProviderBootstrapErrorCode = "missing_dsn"
	StorageProviderBootstrapErrorConnectFailed       StorageProviderBootstrapErrorCode = "connect_failed"
)

type StorageProviderBootstrapError struct {
	Code    StorageProviderBootstrapErrorCode
	Backend string
	Mode    string
	Cause   error
}

func (e *StorageProviderBootstrapError) Error() string {
	if e == nil {
		return "card store bootstrap failed"
	}
	return fmt.Sprintf(
		"card store bootstrap failed (code=%s backend=%q mode=%q): %v",
		e.Code,
		e.Backend,
		e.Mode,
		e.Cause,
	)
}

func (e *StorageProviderBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// CardStore is the selected collection backend plus what the app needs to
// probe and release it.
type CardStore struct {
	Backend Backend
	Store   svc.CollectionStore
	Health  map[string]httpH.Pinger
	closers []func() error
}

func (s *CardStore) Close() error {
	if s == nil {
		return nil
	}
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func resolveCardStore(ctx context.Context, log *logger.Logger, cfg Config, metrics *observability.Metrics) (*CardStore, error) {
	backend := Backend(strings.ToLower(strings.TrimSpace(cfg.CardStoreBackend)))
	log.Info("Selecting card store backend", "backend", backend)

	var (
		out *CardStore
		err error
	)
	switch backend {
	case BackendMemory:
		out = blobStore(log, backend, objstore.NewMemory(), metrics)
	case BackendGCS:
		out, err = resolveGCS(ctx, log, cfg, metrics)
	case BackendRedis:
		out, err = resolveRedis(ctx, log, cfg, metrics)
	case BackendPostgres:
		out, err = resolveSQL(log, backend, db.Config{Driver: db.DriverPostgres, DSN: cfg.PostgresDSN}, metrics)
	case BackendSQLite:
		out, err = resolveSQL(log, backend, db.Config{Driver: db.DriverSQLite, DSN: cfg.SQLitePath}, metrics)
	default:
		err = &StorageProviderBootstrapError{
			Code:    StorageProviderBootstrapErrorInvalidBackend,
			Backend: string(backend),
			Cause:   fmt.Errorf("unsupported card store backend %q", backend),
		}
	}
	if err != nil {
		log.Error("Card store bootstrap failed", "backend", backend, "error_code", storageProviderBootstrapErrorCode(err), "error", err)
		return nil, err
	}
	return out, nil
}

func blobStore(log *logger.Logger, backend Backend, objects objstore.ObjectStore, metrics *observability.Metrics) *CardStore {
	var opts []collection.Option
	if metrics != nil {
		opts = append(opts, collection.WithObserver(metrics))
	}
	return &CardStore{
		Backend: backend,
		Store:   collection.New(log, objects, string(backend), opts...),
		Health:  map[string]httpH.Pinger{},
	}
}

func resolveGCS(ctx context.Context, log *logger.Logger, cfg Config, metrics *observability.Metrics) (*CardStore, error) {
	storageCfg, err := gcp.ResolveObjectStorageConfig(cfg.ObjectStorageMode, cfg.StorageEmulatorHost, cfg.CardsBucket)
	if err != nil {
		return nil, classifyStorageProviderBootstrapError(storageCfg, err)
	}
	log.Info(
		"Selecting object storage provider",
		"mode", storageCfg.Mode,
		"mode_source", storageCfg.ModeSource(),
		"emulator_host", storageCfg.EmulatorHost,
		"bucket", storageCfg.Bucket,
	)
	objects, err := newGCSObjectStore(ctx, log, storageCfg)
	if err != nil {
		return nil, classifyStorageProviderBootstrapError(storageCfg, err)
	}
	out := blobStore(log, BackendGCS, objects, metrics)
	out.closers = append(out.closers, objects.Close)
	return out, nil
}

func resolveRedis(ctx context.Context, log *logger.Logger, cfg Config, metrics *observability.Metrics) (*CardStore, error) {
	objects, err := newRedisObjectStore(ctx, log, redis.Config{
		Addr:      cfg.Redis.Addr,
		Password:  cfg.Redis.Password,
		DB:        cfg.Redis.DB,
		KeyPrefix: cfg.Redis.KeyPrefix,
	})
	if err != nil {
		return nil, &StorageProviderBootstrapError{
			Code:    StorageProviderBootstrapErrorConnectFailed,
			Backend: string(BackendRedis),
			Cause:   err,
		}
	}
	out := blobStore(log, BackendRedis, objects, metrics)
	out.Health["redis"] = objects
	out.closers = append(out.closers, objects.Close)
	return out, nil
}

func resolveSQL(log *logger.Logger, backend Backend, dbCfg db.Config, metrics *observability.Metrics) (*CardStore, error) {
	if strings.TrimSpace(dbCfg.DSN) == "" {
		return nil, &StorageProviderBootstrapError{
			Code:    StorageProviderBootstrapErrorMissingDSN,
			Backend: string(backend),
			Cause:   fmt.Errorf("no DSN configured for %s", backend),
		}
	}
	sqlSvc, err := db.NewSQLService(log, dbCfg)
	if err != nil {
		return nil, &StorageProviderBootstrapError{Code: StorageProviderBootstrapErrorConnectFailed, Backend: string(backend), Cause: err}
	}
	if err := db.AutoMigrateAll(sqlSvc.DB()); err != nil {
		_ = sqlSvc.Close()
		return nil, &StorageProviderBootstrapError{Code: StorageProviderBootstrapErrorConnectFailed, Backend: string(backend), Cause: err}
	}

	var observer collection.Observer
	if metrics != nil {
		observer = metrics
	}
	return &CardStore{
		Backend: backend,
		Store:   cardrepo.NewStore(sqlSvc.DB(), log, string(backend), observer),
		Health:  map[string]httpH.Pinger{string(backend): sqlSvc},
		closers: []func() error{sqlSvc.Close},
	}, nil
}

func classifyStorageProviderBootstrapError(storageCfg gcp.ObjectStorageConfig, err error) error {
	code := StorageProviderBootstrapErrorConnectFailed
	var cfgErr *gcp.ObjectStorageConfigError
	if errors.As(err, &cfgErr) {
		switch cfgErr.Code {
		case gcp.ObjectStorageConfigErrorInvalidMode:
			code = StorageProviderBootstrapErrorInvalidMode
		case gcp.ObjectStorageConfigErrorMissingEmulatorHost:
			code = StorageProviderBootstrapErrorMissingEmulatorHost
		case gcp.ObjectStorageConfigErrorInvalidEmulatorHost:
			code = StorageProviderBootstrapErrorInvalidEmulatorHost
		case gcp.ObjectStorageConfigErrorMissingBucket:
			code = StorageProviderBootstrapErrorMissingBucket
		}
	}
	return &StorageProviderBootstrapError{
		Code:    code,
		Backend: string(BackendGCS),
		Mode:    string(storageCfg.Mode),
		Cause:   err,
	}
}

func storageProviderBootstrapErrorCode(err error) StorageProviderBootstrapErrorCode {
	var bootstrapErr *StorageProviderBootstrapError
	if errors.As(err, &bootstrapErr) {
		if bootstrapErr.Code != "" {
			return bootstrapErr.Code
		}
	}
	return StorageProviderBootstrapErrorConnectFailed
}
