package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.JWTExpiry != 24*time.Hour {
		t.Fatalf("expected 24h token expiry, got %s", cfg.JWTExpiry)
	}
	if cfg.MarginRate != 0.1 {
		t.Fatalf("expected default margin 0.1, got %v", cfg.MarginRate)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Fatalf("unexpected brokers: %v", cfg.KafkaBrokers)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"missing secret", Config{DBDriver: "sqlite", BidWriteRetries: 1}, true},
		{"postgres without password", Config{JWTSecret: "s", DBDriver: "postgres", BidWriteRetries: 1}, true},
		{"sqlite ok", Config{JWTSecret: "s", DBDriver: "sqlite", BidWriteRetries: 1}, false},
		{"unknown driver", Config{JWTSecret: "s", DBDriver: "mongo", BidWriteRetries: 1}, true},
		{"zero retries", Config{JWTSecret: "s", DBDriver: "sqlite"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
