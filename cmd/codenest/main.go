package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"codenest/cmd/codenest/app"
	"codenest/cmd/codenest/config"
	"codenest/cmd/codenest/ui"
	"codenest/internal/api"
	"codenest/internal/logging"
	"codenest/internal/session"
	"codenest/internal/store"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose   bool
	serverURL string
	timeout   time.Duration

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "codenest",
	Short: "CodeNest - share code snippets that expire",
	Long: `CodeNest is a terminal client for the CodeNest snippet sharing service.

Snippets can expire after a fixed time or a fixed number of views; the
server enforces the budget and this client renders whatever is left,
including a live countdown for time-limited snippets.

Run without arguments to start the interactive browser.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip logger init for interactive mode (it has its own UI)
		if cmd.Use == "codenest" && cmd.CalledAs() == "codenest" {
			return nil
		}

		// Initialize logger
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: launch the interactive browser
		return runInteractive("")
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "CodeNest API base URL (overrides config)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Request timeout (overrides config)")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(latestCmd)
	rootCmd.AddCommand(historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig merges the config file with command-line overrides.
func loadConfig() config.Config {
	cfg, err := config.Load()
	if err != nil {
		logging.Boot("Config load failed, using defaults: %v", err)
	}
	if serverURL != "" {
		cfg.ServerURL = serverURL
	}
	if timeout > 0 {
		cfg.TimeoutMS = int(timeout / time.Millisecond)
	}
	return cfg
}

// newClient builds the API client from configuration. Session cookies are
// persisted under the config dir, so a login from one invocation carries
// into the next.
func newClient(cfg config.Config) (*api.Client, error) {
	apiCfg := api.Config{
		BaseURL: cfg.ServerURL,
		Timeout: cfg.Timeout(),
	}
	if dir, err := config.ConfigDir(); err == nil {
		apiCfg.CookiePath = filepath.Join(dir, "session.json")
	}
	return api.NewClient(apiCfg)
}

// historyPath is where the local view history database lives.
func historyPath() (string, error) {
	dir, err := config.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

// runInteractive starts the Bubble Tea UI, optionally jumping straight to
// one snippet.
func runInteractive(snippetID string) error {
	cfg := loadConfig()

	if dir, err := config.ConfigDir(); err == nil {
		logging.Initialize(dir)
		defer logging.CloseAll()
	}

	client, err := newClient(cfg)
	if err != nil {
		return fmt.Errorf("failed to build API client: %w", err)
	}

	var history *store.HistoryStore
	if path, err := historyPath(); err == nil {
		if h, err := store.NewHistoryStore(path); err == nil {
			history = h
			defer history.Close()
		} else {
			logging.Boot("History store unavailable: %v", err)
		}
	}

	styles := ui.NewStyles(ui.ThemeByName(cfg.Theme))
	state := session.NewState()

	var opts []app.Option
	if snippetID != "" {
		opts = append(opts, app.WithInitialSnippet(snippetID))
	}

	model := app.New(client, state, history, styles, opts...)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err = program.Run()
	return err
}
