// Package env loads struct configs from the process environment.
package env

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

const DefaultEnvFile = ".env"

// InitConfig fills config from the environment after loading the optional
// .env file of the working directory.
func InitConfig(config any) error {
	return InitConfigFrom(config, DefaultEnvFile)
}

// InitConfigFrom loads files in order, then processes config. Missing files
// are skipped; variables already set in the environment win.
func InitConfigFrom(config any, files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return errors.Wrapf(err, "failed to load %s", f)
		}
	}
	if err := envconfig.Process("", config); err != nil {
		return errors.Wrap(err, "failed to envconfig.Process")
	}
	return nil
}
