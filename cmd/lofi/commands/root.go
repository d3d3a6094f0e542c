package commands

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Tomlord1122/lofi-playground/internal/api"
	"github.com/Tomlord1122/lofi-playground/internal/cache"
	"github.com/Tomlord1122/lofi-playground/internal/client"
	"github.com/Tomlord1122/lofi-playground/internal/logger"
	"github.com/Tomlord1122/lofi-playground/internal/todolist"
)

// Config is the client configuration, read from the config file, LOFI_*
// environment variables and flags, in increasing precedence.
type Config struct {
	Server   string        `mapstructure:"server"`
	Token    string        `mapstructure:"token"`
	Rollback bool          `mapstructure:"rollback"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Debug    bool          `mapstructure:"debug"`
}

type app struct {
	v       *viper.Viper
	cfgFile string
}

// NewRootCmd creates the lofi command tree.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	cmd := &cobra.Command{
		Use:           "lofi",
		Short:         "Client for the lofi playground",
		Long:          "Manage your todos and browse ambient sounds from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.readConfig()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default $HOME/.config/lofi/config.yaml)")
	flags.String("server", "http://localhost:8080", "API server base URL")
	flags.String("token", "", "session token")
	flags.Bool("rollback", false, "restore the previous list when a change fails")
	flags.Duration("timeout", 15*time.Second, "request timeout")
	flags.Bool("debug", false, "log RPC calls to stderr")

	for _, name := range []string{"server", "token", "rollback", "timeout", "debug"} {
		_ = a.v.BindPFlag(name, flags.Lookup(name))
	}
	a.v.SetEnvPrefix("LOFI")
	a.v.AutomaticEnv()

	cmd.AddCommand(newTodoCmd(a))
	cmd.AddCommand(newSoundsCmd(a))
	cmd.AddCommand(newUICmd(a))
	cmd.AddCommand(newTokenCmd(a))

	return cmd
}

func (a *app) readConfig() error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		a.v.AddConfigPath(filepath.Join(home, ".config", "lofi"))
		a.v.SetConfigName("config")
	}
	a.v.SetConfigType("yaml")

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

func (a *app) config() (*Config, error) {
	var cfg Config
	if err := a.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if cfg.Server == "" {
		return nil, errors.New("no server configured")
	}
	return &cfg, nil
}

func (a *app) client() (*client.Client, *Config, *zap.Logger, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, nil, nil, err
	}

	log := zap.NewNop()
	if cfg.Debug {
		if log, err = logger.NewDevelopmentLogger(true); err != nil {
			return nil, nil, nil, err
		}
	}

	opts := []client.Option{client.WithToken(cfg.Token), client.WithLogger(log)}
	if cfg.Timeout > 0 {
		opts = append(opts, client.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}))
	}
	c := client.New(cfg.Server, opts...)
	return c, cfg, log, nil
}

func (a *app) controller(n todolist.Notifier) (*todolist.Controller, *client.Client, *Config, error) {
	c, cfg, log, err := a.client()
	if err != nil {
		return nil, nil, nil, err
	}
	ctrl := todolist.New(c, cache.NewMemoryStore[[]api.Todo](), n,
		todolist.WithRollback(cfg.Rollback),
		todolist.WithLogger(log),
	)
	return ctrl, c, cfg, nil
}

// printNotifier prints success toasts. Errors are returned from the command
// instead.
type printNotifier struct {
	out io.Writer
}

func (p printNotifier) Success(msg string) { fmt.Fprintln(p.out, msg) }
func (p printNotifier) Error(string) {}
