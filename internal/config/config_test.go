package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PORT", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "MAX_BATCH_COMMANDS", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}
}

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != defaultPort {
		t.Fatalf("expected default port %s, got %s", defaultPort, cfg.Port)
	}
	if cfg.ShutdownGracePeriod != 10*time.Second {
		t.Fatalf("unexpected shutdown grace period: %s", cfg.ShutdownGracePeriod)
	}
	if cfg.MaxBatchCommands != defaultMaxBatchCommands {
		t.Fatalf("unexpected batch limit: %d", cfg.MaxBatchCommands)
	}
	if cfg.LogLevel != defaultLogLevel {
		t.Fatalf("unexpected log level: %s", cfg.LogLevel)
	}
	if !cfg.EnableRequestLogging {
		t.Fatalf("expected request logging enabled by default")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("RATE_LIMIT_BURST", "4")
	t.Setenv("MAX_BATCH_COMMANDS", "12")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != "9000" {
		t.Fatalf("expected overridden port, got %s", cfg.Port)
	}
	if cfg.RateLimitRPS != 2.5 || cfg.RateLimitBurst != 4 {
		t.Fatalf("unexpected rate limit: %v/%d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	if cfg.MaxBatchCommands != 12 {
		t.Fatalf("unexpected batch limit: %d", cfg.MaxBatchCommands)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("unexpected log level: %s", cfg.LogLevel)
	}
}

func TestLoadIgnoresInvalidEnvValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("RATE_LIMIT_RPS", "fast")
	t.Setenv("MAX_BATCH_COMMANDS", "0")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.RateLimitRPS != defaultRateLimitRPS {
		t.Fatalf("expected default rps, got %v", cfg.RateLimitRPS)
	}
	if cfg.MaxBatchCommands != defaultMaxBatchCommands {
		t.Fatalf("expected default batch limit, got %d", cfg.MaxBatchCommands)
	}
}

func TestLoadYAML(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "7000")

	path := writeConfigFile(t, `
port: "8181"
shutdown_grace_period: 3s
write_timeout: 2s
enable_request_logging: false
rate_limit:
  rps: 0
  burst: 0
max_batch_commands: 32
log_level: warn
`)

	cfg, err := Load(&CLIOverrides{ConfigFile: path})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != "8181" {
		t.Fatalf("expected YAML port to win over env, got %s", cfg.Port)
	}
	if cfg.ShutdownGracePeriod != 3*time.Second || cfg.WriteTimeout != 2*time.Second {
		t.Fatalf("unexpected durations: %s %s", cfg.ShutdownGracePeriod, cfg.WriteTimeout)
	}
	if cfg.ReadHeaderTimeout != 5*time.Second {
		t.Fatalf("expected default read header timeout, got %s", cfg.ReadHeaderTimeout)
	}
	if cfg.EnableRequestLogging {
		t.Fatalf("expected request logging disabled")
	}
	if cfg.RateLimitRPS != 0 || cfg.RateLimitBurst != 0 {
		t.Fatalf("expected rate limit disabled, got %v/%d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	if cfg.MaxBatchCommands != 32 || cfg.LogLevel != "warn" {
		t.Fatalf("unexpected batch limit or level: %d %s", cfg.MaxBatchCommands, cfg.LogLevel)
	}
}

func TestLoadYAMLKeepsDefaultsForMissingKeys(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(&CLIOverrides{ConfigFile: writeConfigFile(t, "port: \"9191\"\n")})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !cfg.EnableRequestLogging {
		t.Fatalf("expected request logging to stay enabled")
	}
	if cfg.RateLimitRPS != defaultRateLimitRPS || cfg.RateLimitBurst != defaultRateLimitBurst {
		t.Fatalf("expected default rate limit, got %v/%d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
}

func TestLoadCLIOverridesWin(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "7000")

	port := "6060"
	rps := 1.0
	burst := 2
	batch := 8
	level := "error"
	path := writeConfigFile(t, "port: \"8181\"\nlog_level: warn\n")

	cfg, err := Load(&CLIOverrides{
		ConfigFile:       path,
		Port:             &port,
		RateLimitRPS:     &rps,
		RateLimitBurst:   &burst,
		MaxBatchCommands: &batch,
		LogLevel:         &level,
	})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != port || cfg.RateLimitRPS != rps || cfg.RateLimitBurst != burst ||
		cfg.MaxBatchCommands != batch || cfg.LogLevel != level {
		t.Fatalf("CLI overrides not applied: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)

	t.Run("missing file", func(t *testing.T) {
		if _, err := Load(&CLIOverrides{ConfigFile: filepath.Join(t.TempDir(), "absent.yaml")}); err == nil {
			t.Fatalf("expected error for missing file")
		}
	})

	t.Run("malformed YAML", func(t *testing.T) {
		if _, err := Load(&CLIOverrides{ConfigFile: writeConfigFile(t, "port: [")}); err == nil {
			t.Fatalf("expected error for malformed YAML")
		}
	})

	t.Run("bad duration", func(t *testing.T) {
		if _, err := Load(&CLIOverrides{ConfigFile: writeConfigFile(t, "idle_timeout: soon\n")}); err == nil {
			t.Fatalf("expected error for bad duration")
		}
	})

	t.Run("negative rate limit", func(t *testing.T) {
		if _, err := Load(&CLIOverrides{ConfigFile: writeConfigFile(t, "rate_limit:\n  rps: -1\n")}); err == nil {
			t.Fatalf("expected error for negative rps")
		}
	})

	t.Run("unknown log level", func(t *testing.T) {
		level := "chatty"
		if _, err := Load(&CLIOverrides{LogLevel: &level}); err == nil {
			t.Fatalf("expected error for unknown log level")
		}
	})
}
