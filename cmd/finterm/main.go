// finterm is a financial-data terminal: vendor data, datasets and
// econometrics from the shell, an interactive session or an HTTP API.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/seenimoa/finterm/api"
	"github.com/seenimoa/finterm/internal/config"
	"github.com/seenimoa/finterm/internal/econometrics"
	"github.com/seenimoa/finterm/internal/frame"
	"github.com/seenimoa/finterm/internal/infra"
	"github.com/seenimoa/finterm/internal/logging"
	"github.com/seenimoa/finterm/internal/provider"
	"github.com/seenimoa/finterm/internal/providers"
	"github.com/seenimoa/finterm/internal/terminal"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config and logger, set up by the root command.
var (
	cfg *config.Config
	log *zap.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "finterm",
	Short: "finterm: financial data and econometrics terminal",
	Long: `finterm fetches market, economic, crypto and alternative data from
many vendors through one set of standard models, keeps the results as
datasets and runs regressions and statistical tests on them.

Run "finterm terminal" for the interactive shell or "finterm serve" for
the HTTP API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}

		log, err = logging.New(cfg.Logging)
		if err != nil {
			return err
		}
		infra.Configure(time.Duration(cfg.HTTP.TimeoutSec)*time.Second, cfg.HTTP.UserAgent)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config.yaml, then ~/.finterm/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(providersCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(terminalCmd)
	rootCmd.AddCommand(serveCmd)
}

// buildRegistry registers every vendor the config enables.
func buildRegistry() (*provider.Registry, error) {
	reg := provider.NewRegistryWithLogger(log)
	if err := providers.RegisterAllTo(reg, cfg, log); err != nil {
		return nil, err
	}
	return reg, nil
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("finterm %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration, credentials and registered vendors",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := buildRegistry()
		if err != nil {
			return err
		}

		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  finterm status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:     %s (%s)\n", version, commit)
		fmt.Printf("  API Server:  %s:%d\n", cfg.API.Host, cfg.API.Port)
		fmt.Printf("  HTTP:        timeout %ds, cache TTL %ds\n", cfg.HTTP.TimeoutSec, cfg.Cache.TTLSec)
		fmt.Println()

		fmt.Println("  API Keys:")
		for _, k := range config.CheckAPIKeys(cfg) {
			status := "not set"
			if k.IsSet {
				status = fmt.Sprintf("set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Printf("    %-26s %s\n", k.Name+":", status)
		}
		fmt.Println()

		infos := reg.List()
		fmt.Printf("  Vendors (%d):\n", len(infos))
		for _, info := range infos {
			fmt.Printf("    %-18s %d models\n", info.Name, len(info.Models))
		}
		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}

// --- Config Command ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration with credentials masked",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return config.Dump(cfg, cmd.OutOrStdout())
	},
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List vendor credentials and where they come from",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rows := make([][]string, 0)
		for _, k := range config.CheckAPIKeys(cfg) {
			set := "no"
			if k.IsSet {
				set = "yes"
			}
			rows = append(rows, []string{k.Name, k.EnvVar, set, string(k.Source), k.Masked})
		}
		return frame.RenderRows(cmd.OutOrStdout(), []string{"key", "env", "set", "source", "value"}, rows)
	},
}

func init() {
	configCmd.AddCommand(configKeysCmd)
}

// --- Providers Command ---

var providersCmd = &cobra.Command{
	Use:   "providers [model]",
	Short: "List vendors, or the vendors serving one model",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := buildRegistry()
		if err != nil {
			return err
		}
		return oneShot(cmd.Context(), reg, append([]string{"providers"}, passthrough(cmd, args)...))
	},
}

func init() {
	providersCmd.Flags().Bool("coverage", false, "show every model with its vendors")
}

// --- Fetch Command ---

var fetchCmd = &cobra.Command{
	Use:   "fetch <model> [key=value...]",
	Short: "Fetch one standard model and print it as a table",
	Long: `Fetch one standard model from its default vendor (or --provider) and
print the records. Extra vendor parameters go as key=value.

Examples:
  finterm fetch EquityHistorical -s AAPL --start 2024-01-01
  finterm fetch CryptoQuote -s BTC-USD -p coinbase
  finterm fetch EconomicSeries -s GDP --fallback`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := buildRegistry()
		if err != nil {
			return err
		}
		return oneShot(cmd.Context(), reg, append([]string{"fetch"}, passthrough(cmd, args)...))
	},
}

func init() {
	f := fetchCmd.Flags()
	f.StringP("provider", "p", "", "provider to use (default: the model's default)")
	f.StringP("symbol", "s", "", "ticker, pair or series id")
	f.StringP("query", "q", "", "search text")
	f.StringP("limit", "l", "", "maximum number of records")
	f.String("start", "", "start date (YYYY-MM-DD)")
	f.String("end", "", "end date (YYYY-MM-DD)")
	f.String("interval", "", "bar interval, e.g. 1d")
	f.Bool("fallback", false, "try other providers when the first one fails")
	f.Int("rows", 0, "rows to print (0 prints all)")
}

// passthrough turns the local flags set on cmd back into arguments for
// the terminal command of the same name.
func passthrough(cmd *cobra.Command, args []string) []string {
	out := append([]string(nil), args...)
	cmd.LocalFlags().VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			out = append(out, "--"+f.Name+"="+f.Value.String())
		}
	})
	if cmd.Name() == "fetch" && !cmd.Flags().Changed("rows") {
		out = append(out, "--rows=0")
	}
	return out
}

// oneShot runs a single terminal command against a throwaway session.
func oneShot(ctx context.Context, reg *provider.Registry, args []string) error {
	s := terminal.NewSession(cfg, reg, log)
	return s.ExecuteArgs(ctx, args)
}

// --- Terminal Command ---

var terminalCmd = &cobra.Command{
	Use:     "terminal",
	Aliases: []string{"term", "shell"},
	Short:   "Start the interactive shell",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := buildRegistry()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		s := terminal.NewSession(cfg, reg, log)
		if file, _ := cmd.Flags().GetString("file"); file != "" {
			return s.RunFile(ctx, file)
		}
		return s.Run(ctx)
	},
}

func init() {
	terminalCmd.Flags().StringP("file", "f", "", "run the commands of a script file and exit")
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := buildRegistry()
		if err != nil {
			return err
		}

		host, _ := cmd.Flags().GetString("host")
		if host == "" {
			host = cfg.API.Host
		}
		port, _ := cmd.Flags().GetInt("port")
		if port == 0 {
			port = cfg.API.Port
		}

		store := econometrics.NewStore()
		loads, _ := cmd.Flags().GetStringArray("load")
		for _, entry := range loads {
			alias, path, ok := strings.Cut(entry, "=")
			if !ok {
				return fmt.Errorf("--load %q: want alias=path", entry)
			}
			if err := store.Load(alias, path); err != nil {
				return fmt.Errorf("--load %s: %w", alias, err)
			}
			log.Info("dataset preloaded", zap.String("alias", alias), zap.String("path", path))
		}

		api.Version = version
		addr := net.JoinHostPort(host, strconv.Itoa(port))
		fmt.Printf("Starting finterm API server on %s\n", addr)
		return api.NewServer(cfg, reg, store, log).ListenAndServe(cmd.Context(), addr)
	},
}

func init() {
	serveCmd.Flags().String("host", "", "listen host (default from config)")
	serveCmd.Flags().Int("port", 0, "listen port (default from config)")
	serveCmd.Flags().StringArray("load", nil, "preload a dataset file as alias=path (repeatable)")
}
