package gcp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/yungbote/qsl-cards-backend/internal/platform/logger"
	"github.com/yungbote/qsl-cards-backend/internal/platform/objstore"
)

const (
	backendName = "gcs"

	readTimeout  = 30 * time.Second
	writeTimeout = 2 * time.Minute

	// Collections are small JSON documents; anything bigger is corrupt.
	maxObjectBytes = 32 << 20
)

// ObjectStore keeps each card collection as one JSON object in a bucket.
type ObjectStore struct {
	log           *logger.Logger
	storageClient *storage.Client
	httpClient    *http.Client
	storageMode   ObjectStorageMode
	emulatorHost  string
	bucket        string
}

var _ objstore.ObjectStore = (*ObjectStore)(nil)

func NewObjectStore(ctx context.Context, log *logger.Logger, storageCfg ObjectStorageConfig) (*ObjectStore, error) {
	if err := ValidateObjectStorageConfig(storageCfg); err != nil {
		return nil, fmt.Errorf("validate object storage config: %w", err)
	}
	serviceLog := log.With("service", "GCSObjectStore")

	stClient, err := newStorageClientForMode(ctx, storageCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	serviceLog.Info(
		"Object storage initialized",
		"mode", storageCfg.Mode,
		"mode_source", storageCfg.ModeSource(),
		"emulator_host", storageCfg.EmulatorHost,
		"bucket", storageCfg.Bucket,
	)

	return &ObjectStore{
		log:           serviceLog,
		storageClient: stClient,
		httpClient:    http.DefaultClient,
		storageMode:   storageCfg.Mode,
		emulatorHost:  strings.TrimRight(strings.TrimSpace(storageCfg.EmulatorHost), "/"),
		bucket:        storageCfg.Bucket,
	}, nil
}

func newStorageClientForMode(ctx context.Context, storageCfg ObjectStorageConfig) (*storage.Client, error) {
	switch storageCfg.Mode {
	case ObjectStorageModeGCS:
		opts := ClientOptionsFromEnv()
		opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
		return storage.NewClient(ctx, opts...)
	case ObjectStorageModeGCSEmulator:
		endpoint := strings.TrimRight(strings.TrimSpace(storageCfg.EmulatorHost), "/")
		_ = os.Setenv("STORAGE_EMULATOR_HOST", endpoint)
		return storage.NewClient(ctx, option.WithoutAuthentication())
	default:
		return nil, &ObjectStorageConfigError{
			Code: ObjectStorageConfigErrorInvalidMode,
			Mode: string(storageCfg.Mode),
		}
	}
}

func (s *ObjectStore) Close() error {
	if s == nil || s.storageClient == nil {
		return nil
	}
	return s.storageClient.Close()
}

func (s *ObjectStore) isEmulatorMode() bool {
	return s != nil && IsEmulatorObjectStorageMode(s.storageMode) && strings.TrimSpace(s.emulatorHost) != ""
}

func (s *ObjectStore) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	if s.isEmulatorMode() {
		return s.emulatorGet(ctx, key)
	}

	r, err := s.storageClient.Bucket(s.bucket).Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, objstore.ErrNotFound
		}
		return nil, classifyError(objstore.OpRead, key, err)
	}
	defer r.Close()

	data, err := io.ReadAll(io.LimitReader(r, maxObjectBytes))
	if err != nil {
		return nil, classifyError(objstore.OpRead, key, fmt.Errorf("read GCS object: %w", err))
	}
	return data, nil
}

func (s *ObjectStore) Put(ctx context.Context, key string, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	if s.isEmulatorMode() {
		return s.emulatorPut(ctx, key, data)
	}

	w := s.storageClient.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return classifyError(objstore.OpWrite, key, fmt.Errorf("failed to write data to GCS: %w", err))
	}
	if err := w.Close(); err != nil {
		return classifyError(objstore.OpWrite, key, fmt.Errorf("failed to close GCS writer: %w", err))
	}
	return nil
}

// The emulator is driven over its JSON API directly; the Go client's reader
// does not behave reliably against fake-gcs.
func (s *ObjectStore) emulatorObjectMediaURL(key string) string {
	return fmt.Sprintf(
		"%s/storage/v1/b/%s/o/%s?alt=media",
		s.emulatorHost,
		url.PathEscape(s.bucket),
		url.PathEscape(key),
	)
}

func (s *ObjectStore) emulatorUploadURL(key string) string {
	return fmt.Sprintf(
		"%s/upload/storage/v1/b/%s/o?uploadType=media&name=%s",
		s.emulatorHost,
		url.PathEscape(s.bucket),
		url.QueryEscape(key),
	)
}

func (s *ObjectStore) emulatorGet(ctx context.Context, key string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.emulatorObjectMediaURL(key), nil)
	if err != nil {
		return nil, classifyError(objstore.OpRead, key, fmt.Errorf("failed creating emulator download request: %w", err))
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, classifyError(objstore.OpRead, key, fmt.Errorf("failed emulator download request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, objstore.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, classifyError(objstore.OpRead, key, emulatorStatusError(resp))
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxObjectBytes))
	if err != nil {
		return nil, classifyError(objstore.OpRead, key, fmt.Errorf("read emulator object: %w", err))
	}
	return data, nil
}

func (s *ObjectStore) emulatorPut(ctx context.Context, key string, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.emulatorUploadURL(key), bytes.NewReader(data))
	if err != nil {
		return classifyError(objstore.OpWrite, key, fmt.Errorf("failed creating emulator upload request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return classifyError(objstore.OpWrite, key, fmt.Errorf("failed emulator upload request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return classifyError(objstore.OpWrite, key, emulatorStatusError(resp))
	}
	return nil
}

func emulatorStatusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return &googleapi.Error{
		Code:    resp.StatusCode,
		Message: strings.TrimSpace(string(body)),
	}
}
