package gcp

import (
	"errors"
	"testing"
)

func TestResolveObjectStorageConfigDefaultGCS(t *testing.T) {
	cfg, err := ResolveObjectStorageConfig("", "", "qsl-cards")
	if err != nil {
		t.Fatalf("ResolveObjectStorageConfig: %v", err)
	}
	if cfg.Mode != ObjectStorageModeGCS {
		t.Fatalf("mode: want=%q got=%q", ObjectStorageModeGCS, cfg.Mode)
	}
	if cfg.CompatibilityFallback {
		t.Fatalf("compatibility fallback: want=false got=true")
	}
}

func TestResolveObjectStorageConfigExplicitGCS(t *testing.T) {
	cfg, err := ResolveObjectStorageConfig("GCS", "http://fake-gcs:4443", "qsl-cards")
	if err != nil {
		t.Fatalf("ResolveObjectStorageConfig: %v", err)
	}
	if cfg.Mode != ObjectStorageModeGCS {
		t.Fatalf("mode: want=%q got=%q", ObjectStorageModeGCS, cfg.Mode)
	}
	if cfg.CompatibilityFallback {
		t.Fatalf("compatibility fallback: want=false got=true")
	}
}

func TestResolveObjectStorageConfigExplicitEmulator(t *testing.T) {
	cfg, err := ResolveObjectStorageConfig("gcs_emulator", "http://fake-gcs:4443", "qsl-cards")
	if err != nil {
		t.Fatalf("ResolveObjectStorageConfig: %v", err)
	}
	if cfg.Mode != ObjectStorageModeGCSEmulator {
		t.Fatalf("mode: want=%q got=%q", ObjectStorageModeGCSEmulator, cfg.Mode)
	}
	if cfg.ModeSource() != "explicit_or_default" {
		t.Fatalf("mode source: got=%q", cfg.ModeSource())
	}
}

func TestResolveObjectStorageConfigCompatibilityFallback(t *testing.T) {
	cfg, err := ResolveObjectStorageConfig("", "http://fake-gcs:4443", "qsl-cards")
	if err != nil {
		t.Fatalf("ResolveObjectStorageConfig: %v", err)
	}
	if cfg.Mode != ObjectStorageModeGCSEmulator {
		t.Fatalf("mode: want=%q got=%q", ObjectStorageModeGCSEmulator, cfg.Mode)
	}
	if !cfg.CompatibilityFallback {
		t.Fatalf("compatibility fallback: want=true got=false")
	}
}

func TestResolveObjectStorageConfigErrors(t *testing.T) {
	cases := []struct {
		name     string
		mode     string
		host     string
		bucket   string
		wantCode ObjectStorageConfigErrorCode
	}{
		{"invalid mode", "local", "", "qsl-cards", ObjectStorageConfigErrorInvalidMode},
		{"missing emulator host", "gcs_emulator", "", "qsl-cards", ObjectStorageConfigErrorMissingEmulatorHost},
		{"invalid emulator host", "gcs_emulator", "fake-gcs:4443", "qsl-cards", ObjectStorageConfigErrorInvalidEmulatorHost},
		{"missing bucket", "gcs", "", " ", ObjectStorageConfigErrorMissingBucket},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ResolveObjectStorageConfig(tc.mode, tc.host, tc.bucket)
			var cfgErr *ObjectStorageConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("want *ObjectStorageConfigError got=%v", err)
			}
			if cfgErr.Code != tc.wantCode {
				t.Fatalf("code: want=%q got=%q", tc.wantCode, cfgErr.Code)
			}
		})
	}
}

func TestValidateObjectStorageConfig(t *testing.T) {
	cases := []struct {
		name       string
		cfg        ObjectStorageConfig
		wantCode   ObjectStorageConfigErrorCode
		emulator   bool
		modeSource string
	}{
		{
			name:       "gcs with bucket",
			cfg:        ObjectStorageConfig{Mode: ObjectStorageModeGCS, Bucket: "qsl-cards"},
			modeSource: "explicit_or_default",
		},
		{
			name: "emulator fallback with bucket",
			cfg: ObjectStorageConfig{
				Mode:                  ObjectStorageModeGCSEmulator,
				EmulatorHost:          "http://localhost:4443",
				CompatibilityFallback: true,
				Bucket:                "qsl-cards",
			},
			emulator:   true,
			modeSource: "compatibility_fallback",
		},
		{
			name:       "unsupported mode",
			cfg:        ObjectStorageConfig{Mode: ObjectStorageMode("s3"), Bucket: "qsl-cards"},
			wantCode:   ObjectStorageConfigErrorInvalidMode,
			modeSource: "explicit_or_default",
		},
		{
			name:       "gcs without bucket",
			cfg:        ObjectStorageConfig{Mode: ObjectStorageModeGCS},
			wantCode:   ObjectStorageConfigErrorMissingBucket,
			modeSource: "explicit_or_default",
		},
		{
			name:       "emulator without bucket",
			cfg:        ObjectStorageConfig{Mode: ObjectStorageModeGCSEmulator, EmulatorHost: "http://localhost:4443"},
			wantCode:   ObjectStorageConfigErrorMissingBucket,
			emulator:   true,
			modeSource: "explicit_or_default",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.cfg.IsEmulatorMode(); got != tc.emulator {
				t.Fatalf("IsEmulatorMode: want=%v got=%v", tc.emulator, got)
			}
			if got := tc.cfg.ModeSource(); got != tc.modeSource {
				t.Fatalf("ModeSource: want=%q got=%q", tc.modeSource, got)
			}
			err := ValidateObjectStorageConfig(tc.cfg)
			if tc.wantCode == "" {
				if err != nil {
					t.Fatalf("ValidateObjectStorageConfig: %v", err)
				}
				return
			}
			var cfgErr *ObjectStorageConfigError
			if !errors.As(err, &cfgErr) || cfgErr.Code != tc.wantCode {
				t.Fatalf("code: want=%q got=%v", tc.wantCode, err)
			}
		})
	}
	if IsSupportedObjectStorageMode(ObjectStorageMode("")) {
		t.Fatalf("empty mode should not be supported")
	}
}

func TestMissingBucketErrorNamesSetting(t *testing.T) {
	_, err := ResolveObjectStorageConfig("gcs_emulator", "http://localhost:4443", "")
	if err == nil || err.Error() != "missing CARDS_GCS_BUCKET_NAME" {
		t.Fatalf("want missing bucket error got=%v", err)
	}
}
