package repository

import (
	"testing"

	"builddesk-estimates/internal/config"

	"gorm.io/gorm/logger"
)

func TestBuildDSN(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Host:     "db.internal",
		Port:     3307,
		Database: "builddesk",
		Username: "svc",
		Password: "secret",
	}

	want := "svc:secret@tcp(db.internal:3307)/builddesk?charset=utf8mb4&parseTime=True&loc=Local"
	if got := buildDSN(cfg); got != want {
		t.Errorf("buildDSN() = %q, want %q", got, want)
	}
}

func TestGormLogLevel(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.DatabaseConfig
		want logger.LogLevel
	}{
		{"query logging off forces errors only", config.DatabaseConfig{LogLevel: logger.Info}, logger.Error},
		{"query logging on uses configured level", config.DatabaseConfig{EnableQueryLogging: true, LogLevel: logger.Info}, logger.Info},
		{"query logging on at warn", config.DatabaseConfig{EnableQueryLogging: true, LogLevel: logger.Warn}, logger.Warn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := gormLogLevel(&tt.cfg); got != tt.want {
				t.Errorf("gormLogLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}
