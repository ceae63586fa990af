package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/DoyleJ11/reds-and-greens/internal/engine"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "REDSGREENS"

type Config struct {
	Bind            string
	Port            int
	Players         int
	Reds            int
	Seed            uint64
	DatabaseURL     string
	ShutdownTimeout time.Duration
	Verbose         bool
}

func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Port)
	}
	if c.Players < engine.MinPlayers {
		return fmt.Errorf("invalid players (need at least %d): %d", engine.MinPlayers, c.Players)
	}
	if c.Reds < 0 {
		return fmt.Errorf("invalid reds (must not be negative): %d", c.Reds)
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("shutdown-timeout must be positive")
	}
	return nil
}

func (c *Config) Addr() string {
	return net.JoinHostPort(c.Bind, strconv.Itoa(c.Port))
}

// RegisterFlags defines every setting on fs with its default.
func RegisterFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.Bind, "bind", "b", "0.0.0.0", "address to bind to (env: REDSGREENS_BIND)")
	fs.IntVarP(&cfg.Port, "port", "p", 3004, "port to listen on (env: REDSGREENS_PORT)")
	fs.IntVarP(&cfg.Players, "players", "n", 3, "number of seats in the game (env: REDSGREENS_PLAYERS)")
	fs.IntVar(&cfg.Reds, "reds", 0, "requested number of red players, 0 for as many as allowed (env: REDSGREENS_REDS)")
	fs.Uint64Var(&cfg.Seed, "seed", 0, "seed for red assignment, 0 for random (env: REDSGREENS_SEED)")
	fs.StringVar(&cfg.DatabaseURL, "database-url", "", "postgres DSN for player accounts, empty to disable (env: REDSGREENS_DATABASE_URL)")
	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", 5*time.Second, "time allowed for in-flight requests on shutdown (env: REDSGREENS_SHUTDOWN_TIMEOUT)")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", false, "log debug output (env: REDSGREENS_VERBOSE)")
}

// ApplyEnv loads the given .env files, skipping missing ones, then fills
// every flag not set on the command line from its REDSGREENS_ variable.
func ApplyEnv(fset *pflag.FlagSet, envFiles ...string) error {
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", file, err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	var errs []error
	fset.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			if err := fset.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name))); err != nil {
				errs = append(errs, fmt.Errorf("env for --%s: %w", f.Name, err))
			}
		}
	})
	return errors.Join(errs...)
}
