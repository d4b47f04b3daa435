package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/okian/proofscore/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config", t, func() {
		cfg := config.New()

		convey.Convey("Then it should carry the scoring defaults", func() {
			convey.So(cfg.MinFollowers, convey.ShouldEqual, 5)
			convey.So(cfg.TargetFollowers, convey.ShouldEqual, 500)
			convey.So(cfg.MaxHandleLength, convey.ShouldEqual, 50)
			convey.So(cfg.MaxDescriptionLength, convey.ShouldEqual, 280)
		})

		convey.Convey("And sensible process defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			convey.So(cfg.InputDir, convey.ShouldEqual, "/input")
			convey.So(cfg.OutputDir, convey.ShouldEqual, "/output")
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.QueueSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New())
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("PROOF_ADDR", ":9090")
			_ = os.Setenv("PROOF_DLP_ID", "17")
			_ = os.Setenv("PROOF_MIN_FOLLOWERS", "10")
			_ = os.Setenv("PROOF_TARGET_FOLLOWERS", "1000")
			_ = os.Setenv("PROOF_INPUT_DIR", "/tmp/in")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.DLPID, convey.ShouldEqual, 17)
				convey.So(cfg.MinFollowers, convey.ShouldEqual, 10)
				convey.So(cfg.TargetFollowers, convey.ShouldEqual, 1000)
				convey.So(cfg.InputDir, convey.ShouldEqual, "/tmp/in")
			})
		})

		convey.Convey("When loading config with a YAML file and env overrides", func() {
			yamlContent := `
addr: ":7070"
log_format: json
target_followers: 250
worker_count: 3
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("PROOF_CONFIG", tmpFile)
			_ = os.Setenv("PROOF_WORKER_COUNT", "6")

			cfg, err := config.Load(ctx)

			convey.Convey("Then env should win over the file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.TargetFollowers, convey.ShouldEqual, 250)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 6)
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv("PROOF_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the config file is invalid YAML", func() {
			tmpFile := createTempConfigFile("addr: [unclosed\n")
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("PROOF_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When follower bounds are inconsistent", func() {
			_ = os.Setenv("PROOF_MIN_FOLLOWERS", "600")

			cfg, err := config.Load(ctx)

			convey.Convey("Then validation should fail", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the queue size is zero", func() {
			_ = os.Setenv("PROOF_QUEUE_SIZE", "0")

			cfg, err := config.Load(ctx)

			convey.Convey("Then validation should fail", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the addr is empty", func() {
			_ = os.Setenv("PROOF_ADDR", "")

			cfg, err := config.Load(ctx)

			convey.Convey("Then validation should fail", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func TestConfigLoaderDotEnv(t *testing.T) {
	convey.Convey("Given a .env file in the working directory", t, func() {
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		dir := t.TempDir()
		content := "PROOF_DLP_ID=42\nPROOF_OUTPUT_DIR=/tmp/out\n"
		convey.So(os.WriteFile(filepath.Join(dir, config.DotEnvFile), []byte(content), 0o600), convey.ShouldBeNil)
		t.Chdir(dir)

		convey.Convey("When loading config", func() {
			cfg, err := config.Load(context.Background())

			convey.Convey("Then the .env values should be applied", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.DLPID, convey.ShouldEqual, 42)
				convey.So(cfg.OutputDir, convey.ShouldEqual, "/tmp/out")
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"PROOF_CONFIG",
		"PROOF_ADDR",
		"PROOF_DLP_ID",
		"PROOF_INPUT_DIR",
		"PROOF_OUTPUT_DIR",
		"PROOF_MIN_FOLLOWERS",
		"PROOF_TARGET_FOLLOWERS",
		"PROOF_WORKER_COUNT",
		"PROOF_QUEUE_SIZE",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "proof-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
