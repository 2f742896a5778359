package database

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"community-credits-go/internal/models"
)

func TestNewService_InvalidConfig(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name string
		cfg  models.DatabaseConfig
	}{
		{"empty path", models.DatabaseConfig{MaxOpenConns: 5, PingTimeout: time.Second}},
		{"no open conns", models.DatabaseConfig{Path: "credits.db", PingTimeout: time.Second}},
		{"no ping timeout", models.DatabaseConfig{Path: "credits.db", MaxOpenConns: 5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewService(ctx, tc.cfg); err == nil {
				t.Error("Expected configuration error")
			}
		})
	}
}

func TestNewService_UnreachableDatabaseReportsPingError(t *testing.T) {
	cfg := models.DatabaseConfig{
		Path:         filepath.Join(t.TempDir(), "missing", "credits.db"),
		MaxOpenConns: 5,
		PingTimeout:  time.Second,
	}

	_, err := NewService(context.Background(), cfg)
	if err == nil {
		t.Fatal("Expected error for unreachable database path")
	}
	// The ping failure is the cause and must survive the cleanup path
	if !strings.Contains(err.Error(), "unable to ping database") {
		t.Errorf("Expected ping error to be reported, got: %v", err)
	}
}
