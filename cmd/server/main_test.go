package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mmuslimabdulj/navsocket/internal/config"
	"github.com/mmuslimabdulj/navsocket/internal/route"
)

func TestVersionCommand(t *testing.T) {
	root := buildRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	if err := root.Execute(); err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out.String(), "navsocket dev") {
		t.Errorf("Unexpected version output %q", out.String())
	}
}

func TestRootCommandFlags(t *testing.T) {
	root := buildRootCmd()

	for _, name := range []string{"config", "port"} {
		if root.Flags().Lookup(name) == nil {
			t.Errorf("Expected root flag --%s", name)
		}
	}

	serve, _, err := root.Find([]string{"serve"})
	if err != nil || serve.Name() != "serve" {
		t.Fatalf("Expected serve subcommand, got %v", err)
	}
	if serve.Flags().Lookup("config") == nil {
		t.Error("Expected serve flag --config")
	}
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		level   string
		enabled slog.Level
		off     slog.Level
	}{
		{"debug", slog.LevelDebug, slog.LevelDebug - 1},
		{"info", slog.LevelInfo, slog.LevelDebug},
		{"warn", slog.LevelWarn, slog.LevelInfo},
		{"error", slog.LevelError, slog.LevelWarn},
	}

	for _, tc := range tests {
		t.Run(tc.level, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.LogLevel = tc.level
			logger := newLogger(cfg)

			if !logger.Enabled(context.Background(), tc.enabled) {
				t.Errorf("Expected %v to be enabled", tc.enabled)
			}
			if logger.Enabled(context.Background(), tc.off) {
				t.Errorf("Expected %v to be disabled", tc.off)
			}
		})
	}
}

func TestNewLogger_JSON(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LogFormat = "json"

	if _, ok := newLogger(cfg).Handler().(*slog.JSONHandler); !ok {
		t.Error("Expected JSON handler")
	}
}

func TestBuildCollaborators(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("sqlite store with straight-line paths", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.TripDBPath = filepath.Join(t.TempDir(), "trips.db")

		collab, err := buildCollaborators(context.Background(), cfg, logger)
		if err != nil {
			t.Fatalf("buildCollaborators failed: %v", err)
		}
		defer collab.close()

		if _, ok := collab.paths.(route.StraightLine); !ok {
			t.Errorf("Expected straight-line paths, got %T", collab.paths)
		}
		if _, ok := collab.recorder.(*route.SQLStore); !ok {
			t.Errorf("Expected sqlite recorder, got %T", collab.recorder)
		}
		if collab.history == nil {
			t.Error("Expected trip history to be available")
		}
	})

	t.Run("http route service", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.RouteServiceURL = "http://routes.internal"
		cfg.TripStore = "http"

		collab, err := buildCollaborators(context.Background(), cfg, logger)
		if err != nil {
			t.Fatalf("buildCollaborators failed: %v", err)
		}
		defer collab.close()

		if _, ok := collab.paths.(*route.HTTPClient); !ok {
			t.Errorf("Expected http paths, got %T", collab.paths)
		}
		if _, ok := collab.recorder.(*route.HTTPClient); !ok {
			t.Errorf("Expected http recorder, got %T", collab.recorder)
		}
		if collab.history != nil {
			t.Error("Expected no trip history without sqlite")
		}
	})
}
