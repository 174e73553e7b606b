/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		bind:           "0.0.0.0",
		nameLength:     20,
		port:           8080,
		restartDelay:   3 * time.Second,
		sessionTimeout: time.Hour,
		startDelay:     time.Second,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"tls pair", func(c *Config) { c.tlsCert, c.tlsKey = "cert.pem", "key.pem" }, false},
		{"cert without key", func(c *Config) { c.tlsCert = "cert.pem" }, true},
		{"key without cert", func(c *Config) { c.tlsKey = "key.pem" }, true},
		{"port zero", func(c *Config) { c.port = 0 }, true},
		{"port too high", func(c *Config) { c.port = 65536 }, true},
		{"zero restart delay", func(c *Config) { c.restartDelay = 0 }, true},
		{"negative start delay", func(c *Config) { c.startDelay = -time.Second }, true},
		{"zero name length", func(c *Config) { c.nameLength = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(&cfg)

			err := cfg.validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestScheme(t *testing.T) {
	cfg := validConfig()
	if cfg.scheme() != "http" {
		t.Fatalf("scheme = %q, want http", cfg.scheme())
	}

	cfg.tlsCert, cfg.tlsKey = "cert.pem", "key.pem"
	if cfg.scheme() != "https" {
		t.Fatalf("scheme = %q, want https", cfg.scheme())
	}
}

func TestFlagDefaults(t *testing.T) {
	cfg := &Config{}
	cmd := newCmd(cfg)

	if err := cmd.ParseFlags([]string{"--port", "9000", "--restart_delay", "5s"}); err != nil {
		t.Fatal(err)
	}

	if cfg.port != 9000 {
		t.Errorf("port = %d, want 9000", cfg.port)
	}
	if cfg.restartDelay != 5*time.Second {
		t.Errorf("restart delay = %s, want 5s", cfg.restartDelay)
	}
	if cfg.startDelay != time.Second {
		t.Errorf("start delay = %s, want 1s", cfg.startDelay)
	}
	if cfg.nameLength != 20 {
		t.Errorf("name length = %d, want 20", cfg.nameLength)
	}
	if err := cfg.validate(); err != nil {
		t.Errorf("validate() = %v", err)
	}
}
