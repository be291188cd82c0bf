package database

import (
	"strings"
	"testing"

	"github.com/yi-nology/asset_bridge/pkg/config"
)

func TestOpenDisabled(t *testing.T) {
	db, err := Open(config.DatabaseConfig{Driver: "None"})
	if err != nil || db != nil {
		t.Fatalf("expected nil db without error, got %v %v", db, err)
	}
}

func TestOpenConfigErrors(t *testing.T) {
	cases := []struct {
		name string
		cfg  config.DatabaseConfig
		want string
	}{
		{"unsupported", config.DatabaseConfig{Driver: "oracle"}, "unsupported database driver"},
		{"sqlite path", config.DatabaseConfig{Driver: "sqlite"}, "sqlite path must be configured"},
		{"mysql dsn", config.DatabaseConfig{Driver: "mysql"}, "mysql dsn must be configured"},
		{"postgres dsn", config.DatabaseConfig{Driver: "postgresql"}, "postgres dsn must be configured"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Open(tc.cfg)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}
