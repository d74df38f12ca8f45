package gcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/yungbote/qsl-cards-backend/internal/platform/logger"
	"github.com/yungbote/qsl-cards-backend/internal/platform/objstore"
)

func TestObjectStoreEmulatorRoundTrip(t *testing.T) {
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("QSL_RUN_GCS_EMULATOR_INTEGRATION")), "true") {
		t.Skip("set QSL_RUN_GCS_EMULATOR_INTEGRATION=true to run emulator integration tests")
	}

	emulatorHost := strings.TrimSpace(os.Getenv("STORAGE_EMULATOR_HOST"))
	if emulatorHost == "" {
		emulatorHost = "http://127.0.0.1:4443"
	}
	emulatorHost = strings.TrimRight(emulatorHost, "/")

	if !isEmulatorReachable(t, emulatorHost) {
		t.Skipf("storage emulator not reachable at %s", emulatorHost)
	}

	bucket := fmt.Sprintf("qsl-it-%d", time.Now().UnixNano())
	createBucketIfMissing(t, emulatorHost, bucket)

	cfg, err := ResolveObjectStorageConfig(string(ObjectStorageModeGCSEmulator), emulatorHost, bucket)
	if err != nil {
		t.Fatalf("ResolveObjectStorageConfig: %v", err)
	}
	store, err := NewObjectStore(context.Background(), logger.Nop(), cfg)
	if err != nil {
		t.Fatalf("NewObjectStore: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if _, err := store.Get(ctx, "sent.json"); !errors.Is(err, objstore.ErrNotFound) {
		t.Fatalf("Get before write: want ErrNotFound got=%v", err)
	}

	body := []byte(`[{"id":"a","callSign":"JA1ABC"}]`)
	if err := store.Put(ctx, "sent.json", body); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := store.Get(ctx, "sent.json")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(got, body) {
		t.Fatalf("Get body: want=%q got=%q", body, got)
	}
}

func isEmulatorReachable(t *testing.T, emulatorHost string) bool {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(emulatorHost + "/storage/v1/b?project=local-dev")
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 500
}

func createBucketIfMissing(t *testing.T, emulatorHost string, bucket string) {
	t.Helper()
	payload, err := json.Marshal(map[string]string{"name": bucket})
	if err != nil {
		t.Fatalf("json.Marshal(bucket): %v", err)
	}

	client := &http.Client{Timeout: 5 * time.Second}
	req, err := http.NewRequest(
		http.MethodPost,
		emulatorHost+"/storage/v1/b?project=local-dev",
		bytes.NewReader(payload),
	)
	if err != nil {
		t.Fatalf("http.NewRequest(create bucket): %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("create bucket %q: %v", bucket, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated || resp.StatusCode == http.StatusConflict {
		return
	}
	b, _ := io.ReadAll(resp.Body)
	t.Fatalf("create bucket %q failed: status=%d body=%s", bucket, resp.StatusCode, strings.TrimSpace(string(b)))
}
