package config

import (
	"testing"
	"time"
)

func validBase() Config {
	return Config{
		App:   AppConfig{Env: "local", Port: 8080},
		DB:    DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "outdial", SSLMode: ""},
		Redis: RedisConfig{Host: "localhost", Port: 6379},
		Auth:  AuthConfig{JWTSecret: "secret"},
	}
}

func TestValidate_ReportsMissingRequired(t *testing.T) {
	c := Config{}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestValidate_ProductionRequiresSSLMode(t *testing.T) {
	c := validBase()
	c.App.Env = "production"
	c.Twilio = TwilioConfig{AccountSID: "AC1", AuthToken: "t", FromNumber: "+15550001111", CallbackBaseURL: "https://api.example.com"}
	c.Auth.JWTIssuer = "outdial"
	c.Auth.JWTAudience = "outdial-api"
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for production without DB_SSLMODE")
	}
}

func TestValidate_LocalDefaultsSSLMode(t *testing.T) {
	c := validBase()
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.DB.SSLMode != "disable" {
		t.Fatalf("expected sslmode disable default, got %q", c.DB.SSLMode)
	}
}

func TestValidate_RateLimitDefaults(t *testing.T) {
	c := validBase()
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.RateLimit.Window != time.Minute {
		t.Fatalf("expected 1m window default, got %v", c.RateLimit.Window)
	}
	if c.RateLimit.StrictPerWindow != 10 || c.RateLimit.LenientPerWindow != 200 {
		t.Fatalf("unexpected ceilings: %d/%d", c.RateLimit.StrictPerWindow, c.RateLimit.LenientPerWindow)
	}
}

func TestValidate_ProductionForcesRateLimiting(t *testing.T) {
	c := validBase()
	c.App.Env = "production"
	c.DB.SSLMode = "require"
	c.Twilio = TwilioConfig{AccountSID: "AC1", AuthToken: "t", FromNumber: "+15550001111", CallbackBaseURL: "https://api.example.com"}
	c.Auth.JWTIssuer = "outdial"
	c.Auth.JWTAudience = "outdial-api"
	c.RateLimit.Enabled = false
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !c.RateLimit.Enabled {
		t.Fatalf("expected rate limiting forced on in production")
	}
}

func TestValidate_VoiceTTLMustCoverMaxDuration(t *testing.T) {
	c := validBase()
	c.Calls.MaxDuration = 10 * time.Minute
	c.Calls.VoiceTTL = 5 * time.Minute
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error when voice TTL is below max call duration")
	}
}
