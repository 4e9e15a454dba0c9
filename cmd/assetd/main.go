// Command assetd serves the media pipeline and the HTML sanitizer over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dmitrymomot/assetkit/pkg/config"
	"github.com/dmitrymomot/assetkit/pkg/file"
	"github.com/dmitrymomot/assetkit/pkg/httpapi"
	"github.com/dmitrymomot/assetkit/pkg/httpserver"
	"github.com/dmitrymomot/assetkit/pkg/imaging"
	"github.com/dmitrymomot/assetkit/pkg/logger"
	"github.com/dmitrymomot/assetkit/pkg/media"
	"github.com/dmitrymomot/assetkit/pkg/mediastore"
	"github.com/dmitrymomot/assetkit/pkg/pg"
	"github.com/dmitrymomot/assetkit/pkg/requestid"
	"github.com/dmitrymomot/assetkit/pkg/sanitizer"
)

type appConfig struct {
	Env     string `env:"APP_ENV" envDefault:"development"`
	Service string `env:"APP_NAME" envDefault:"assetd"`

	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"local"`
	LocalDir      string `env:"STORAGE_LOCAL_DIR" envDefault:"./data/media"`
	LocalBaseURL  string `env:"STORAGE_BASE_URL" envDefault:"/media/"`

	DBDriver   string `env:"DB_DRIVER" envDefault:"sqlite"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"./data/assetd.db"`

	ImagingFile string `env:"IMAGING_CONFIG"`
	PolicyFile  string `env:"SANITIZER_POLICY"`

	MaxUploadBytes int64 `env:"HTTP_MAX_UPLOAD_BYTES" envDefault:"20971520"`
	MaxHTMLBytes   int64 `env:"HTTP_MAX_HTML_BYTES" envDefault:"1048576"`

	HTTP    httpserver.Config
	Imaging imaging.Config
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "assetd:", err)
		os.Exit(1)
	}
}

func run() error {
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return err
	}

	log := logger.New(
		logger.WithEnvironment(cfg.Env, cfg.Service),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}

	repo, ready, closeDB, err := openRepository(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeDB()

	imgCfg, err := imagingConfig(cfg)
	if err != nil {
		return err
	}
	enc, err := imaging.NewEncoder(imgCfg, storage, imaging.WithLogger(log))
	if err != nil {
		return err
	}
	log.InfoContext(ctx, "image encoder ready",
		slog.Int("variants", len(enc.Config().Variants)),
		slog.Bool("avif", enc.AVIFSupported()),
	)

	policy, err := sanitizerPolicy(cfg)
	if err != nil {
		return err
	}

	mgr := media.NewManager(repo, storage, enc,
		media.WithLogger(log),
		media.WithDisk(cfg.StorageDriver),
	)
	api := httpapi.New(mgr, sanitizer.NewHTML(policy),
		httpapi.WithLogger(log),
		httpapi.WithMaxUploadSize(cfg.MaxUploadBytes),
		httpapi.WithMaxHTMLSize(cfg.MaxHTMLBytes),
		httpapi.WithReadinessChecks(ready),
	)

	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
	return srv.Run(ctx, api.Handler())
}

func openStorage(ctx context.Context, cfg appConfig) (file.Storage, error) {
	switch cfg.StorageDriver {
	case "local":
		return file.NewLocalStorage(cfg.LocalDir, cfg.LocalBaseURL)
	case "s3":
		var s3cfg file.S3Config
		if err := config.Load(&s3cfg); err != nil {
			return nil, err
		}
		return file.NewS3Storage(ctx, s3cfg)
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q: want local or s3", cfg.StorageDriver)
	}
}

func openRepository(ctx context.Context, cfg appConfig, log *slog.Logger) (media.Repository, httpserver.Check, func(), error) {
	switch cfg.DBDriver {
	case "postgres":
		var pgCfg pg.Config
		if err := config.Load(&pgCfg); err != nil {
			return nil, nil, nil, err
		}
		pool, err := pg.Connect(ctx, pgCfg)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := pg.Migrate(ctx, pool, pgCfg, mediastore.PostgresMigrations(), log); err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		return mediastore.NewPostgres(pool), pg.Healthcheck(pool), pool.Close, nil

	case "sqlite":
		if cfg.SQLitePath != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
				return nil, nil, nil, err
			}
		}
		store, err := mediastore.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		closeFn := func() {
			if err := store.Close(); err != nil {
				log.Error("failed to close database", logger.Error(err))
			}
		}
		return store, store.Ping, closeFn, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown DB_DRIVER %q: want postgres or sqlite", cfg.DBDriver)
	}
}

func imagingConfig(cfg appConfig) (imaging.Config, error) {
	if cfg.ImagingFile == "" {
		return cfg.Imaging, nil
	}
	f, err := os.Open(cfg.ImagingFile)
	if err != nil {
		return imaging.Config{}, errors.Join(imaging.ErrInvalidConfig, err)
	}
	defer func() { _ = f.Close() }()

	fileCfg, err := imaging.LoadConfig(f)
	if err != nil {
		return imaging.Config{}, err
	}
	return imaging.ApplyEnv(fileCfg)
}

func sanitizerPolicy(cfg appConfig) (sanitizer.Policy, error) {
	if cfg.PolicyFile == "" {
		return sanitizer.DefaultPolicy(), nil
	}
	f, err := os.Open(cfg.PolicyFile)
	if err != nil {
		return sanitizer.Policy{}, errors.Join(sanitizer.ErrInvalidPolicy, err)
	}
	defer func() { _ = f.Close() }()
	return sanitizer.LoadPolicy(f)
}
