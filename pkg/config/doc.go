// Package config loads service configuration from environment variables.
//
// Configuration structs declare their variables with `env` and `envDefault`
// tags (github.com/caarlos0/env/v11). A .env file in the working directory is
// read once through github.com/joho/godotenv before the first parse; extra
// files can be loaded explicitly with LoadEnv.
//
//	var cfg struct {
//		Storage string `env:"STORAGE_DRIVER" envDefault:"local"`
//	}
//	config.MustLoad(&cfg)
//
// The package keeps no cache of parsed values. Components receive the structs
// they need from main instead of looking configuration up themselves.
package config
