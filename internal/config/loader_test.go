package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/concentration/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.MismatchDelayMS, convey.ShouldEqual, 1000)
				convey.So(len(cfg.Symbols), convey.ShouldEqual, 8)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("CONCENTRATION_ADDR", ":8080")
			_ = os.Setenv("CONCENTRATION_MISMATCH_DELAY_MS", "250")
			_ = os.Setenv("CONCENTRATION_VOLUME", "0.8")
			_ = os.Setenv("CONCENTRATION_SYMBOLS", "X, Y ,Z")
			_ = os.Setenv("CONCENTRATION_LOG_FORMAT", "json")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.MismatchDelayMS, convey.ShouldEqual, 250)
				convey.So(cfg.Volume, convey.ShouldEqual, 0.8)
				convey.So(cfg.Symbols, convey.ShouldResemble, []string{"X", "Y", "Z"})
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			path := writeTemp(t, "config.yaml", `
addr: ":7000"
symbols: [sun, moon]
max_games: 5
game_idle_ttl_sec: 60
`)
			_ = os.Setenv("CONCENTRATION_CONFIG", path)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should use the file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7000")
				convey.So(cfg.Symbols, convey.ShouldResemble, []string{"sun", "moon"})
				convey.So(cfg.MaxGames, convey.ShouldEqual, 5)
				convey.So(cfg.GameIdleTTLSec, convey.ShouldEqual, 60)
				convey.So(cfg.Volume, convey.ShouldEqual, 0.5)
			})

			convey.Convey("And env vars are set too", func() {
				_ = os.Setenv("CONCENTRATION_MAX_GAMES", "9")
				cfg, err := config.Load(ctx)

				convey.Convey("Then env vars take precedence", func() {
					convey.So(err, convey.ShouldBeNil)
					convey.So(cfg.MaxGames, convey.ShouldEqual, 9)
					convey.So(cfg.Addr, convey.ShouldEqual, ":7000")
				})
			})
		})

		convey.Convey("When loading config with a dotenv file", func() {
			path := writeTemp(t, ".env", "CONCENTRATION_QUEUE_SIZE=77\nCONCENTRATION_ADDR=:6000\n")
			_ = os.Setenv("CONCENTRATION_ENV_FILE", path)
			_ = os.Setenv("CONCENTRATION_ADDR", ":6500")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it fills gaps without overriding the real environment", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.QueueSize, convey.ShouldEqual, 77)
				convey.So(cfg.Addr, convey.ShouldEqual, ":6500")
			})
		})

		convey.Convey("When the YAML file is missing", func() {
			_ = os.Setenv("CONCENTRATION_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
			_, err := config.Load(ctx)

			convey.Convey("Then loading fails", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the dotenv file is missing", func() {
			_ = os.Setenv("CONCENTRATION_ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
			_, err := config.Load(ctx)

			convey.Convey("Then loading fails", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a loaded value is invalid", func() {
			_ = os.Setenv("CONCENTRATION_VOLUME", "2")
			_, err := config.Load(ctx)

			convey.Convey("Then validation rejects it", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func clearConfigEnvVars() {
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, config.EnvPrefix) {
			_ = os.Unsetenv(name)
		}
	}
}

func writeTemp(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}
