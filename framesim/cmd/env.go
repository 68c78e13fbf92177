package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const envPrefix = "FRAMESIM_"

// loadEnv reads the .env file, or the file named by --env-file, and uses
// the FRAMESIM_ variables as defaults for the flags not given on the
// command line.
func loadEnv(cmd *cobra.Command) error {
	envFile, err := cmd.Flags().GetString("env-file")
	if err != nil {
		return err
	}

	if envFile != "" {
		if err := godotenv.Overload(envFile); err != nil {
			return fmt.Errorf("loading %s: %w", envFile, err)
		}
	} else if err := godotenv.Load(); err != nil &&
		!errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	return applyEnvDefaults(cmd.Flags())
}

func envName(flagName string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}

func applyEnvDefaults(flags *pflag.FlagSet) error {
	var errs []error

	flags.VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			return
		}

		value, ok := os.LookupEnv(envName(f.Name))
		if !ok {
			return
		}

		if err := flags.Set(f.Name, value); err != nil {
			errs = append(errs,
				fmt.Errorf("%s=%q: %w", envName(f.Name), value, err))
		}
	})

	return errors.Join(errs...)
}
