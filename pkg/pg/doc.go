// Package pg bootstraps the PostgreSQL media store: a pgx/v5 connection pool with
// start-up retries, goose migrations run through the same pool, a readiness check
// and helpers that classify pgx errors.
//
//	var cfg pg.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, mediastore.PostgresMigrations(), log); err != nil {
//		return err
//	}
//
// Migrate reads migrations from the given fs.FS; with a nil FS it falls back to
// the directory in Config.MigrationsPath.
package pg
