package terminal

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/spf13/cobra"

	"github.com/seenimoa/finterm/internal/frame"
	"github.com/seenimoa/finterm/internal/provider"
)

// commands builds the command tree for one line. A fresh tree per line
// keeps flag values from leaking between commands.
func (s *Session) commands() *cobra.Command {
	root := &cobra.Command{
		Use:               "finterm",
		Short:             "finterm interactive shell",
		SilenceErrors:     true,
		SilenceUsage:      true,
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	}
	root.AddCommand(
		s.quitCmd(),
		s.providersCmd(),
		s.fetchCmd(),
		s.loadCmd(),
		s.removeCmd(),
		s.showCmd(),
		s.descCmd(),
		s.indexCmd(),
		s.cleanCmd(),
		s.addCmd(),
		s.deleteCmd(),
		s.renameCmd(),
		s.combineCmd(),
		s.typeCmd(),
		s.olsCmd(),
		s.panelCmd(),
		s.compareCmd(),
		s.dwatCmd(),
		s.bgodCmd(),
		s.bpagCmd(),
		s.residualsCmd(),
		s.rootCmd(),
		s.grangerCmd(),
		s.cointCmd(),
		s.normCmd(),
		s.corrCmd(),
	)
	return root
}

func (s *Session) quitCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "quit",
		Aliases: []string{"exit", "q"},
		Short:   "Leave the terminal",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return errQuit
		},
	}
}

// --- Providers ---

func (s *Session) providersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "providers [model]",
		Short: "List data providers, or the providers serving a model",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if s.reg == nil {
				return fmt.Errorf("no provider registry")
			}
			w := cmd.OutOrStdout()
			coverage, _ := cmd.Flags().GetBool("coverage")

			switch {
			case len(args) == 1:
				model, err := parseModel(args[0])
				if err != nil {
					return err
				}
				def, _ := s.reg.DefaultProvider(model)
				var rows [][]string
				for _, name := range s.reg.ProvidersFor(model) {
					mark := ""
					if name == def {
						mark = "*"
					}
					rows = append(rows, []string{name, mark})
				}
				if len(rows) == 0 {
					return fmt.Errorf("no provider serves %s", model)
				}
				return frame.RenderRows(w, []string{"provider", "default"}, rows)

			case coverage:
				cov := s.reg.ModelCoverage()
				var rows [][]string
				for _, m := range provider.AllModels() {
					rows = append(rows, []string{provider.ModelCategory(m), string(m), strings.Join(cov[m], ", ")})
				}
				return frame.RenderRows(w, []string{"menu", "model", "providers"}, rows)
			}

			var rows [][]string
			for _, info := range s.reg.List() {
				models := make([]string, len(info.Models))
				for i, m := range info.Models {
					models[i] = string(m)
				}
				rows = append(rows, []string{info.Name, strings.Join(models, ", "), info.Description})
			}
			if len(rows) == 0 {
				fmt.Fprintln(w, "No providers registered.")
				return nil
			}
			return frame.RenderRows(w, []string{"provider", "models", "description"}, rows)
		},
	}
	cmd.Flags().Bool("coverage", false, "list every model with the providers serving it")
	return cmd
}

func parseModel(name string) (provider.ModelType, error) {
	model, ok := provider.ParseModelType(name)
	if !ok {
		return "", fmt.Errorf("unknown model %q", name)
	}
	return model, nil
}

// queryFlags registers the common query flags shared by fetch and load.
func queryFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("provider", "p", "", "provider to use (default: the model's default)")
	cmd.Flags().String("start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().String("end", "", "end date (YYYY-MM-DD)")
	cmd.Flags().String("interval", "", "bar interval, e.g. 1d")
	cmd.Flags().Bool("fallback", false, "try other providers when the first one fails")
}

// queryParams collects flag values and key=value arguments.
func queryParams(cmd *cobra.Command, kv []string) (provider.QueryParams, error) {
	params := provider.QueryParams{}
	for flag, key := range map[string]string{
		"provider": provider.ParamProvider,
		"start":    provider.ParamStartDate,
		"end":      provider.ParamEndDate,
		"interval": provider.ParamInterval,
		"symbol":   provider.ParamSymbol,
		"query":    provider.ParamQuery,
		"limit":    provider.ParamLimit,
	} {
		if cmd.Flags().Lookup(flag) == nil {
			continue
		}
		if v, _ := cmd.Flags().GetString(flag); v != "" {
			params[key] = v
		}
	}
	for _, arg := range kv {
		k, v, ok := strings.Cut(arg, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("%q: want key=value", arg)
		}
		if strings.HasPrefix(k, "_") {
			return nil, fmt.Errorf("%q: reserved parameter", k)
		}
		params[k] = v
	}
	return params, nil
}

func (s *Session) fetch(ctx context.Context, cmd *cobra.Command, model provider.ModelType, params provider.QueryParams) (*provider.FetchResult, error) {
	if s.reg == nil {
		return nil, fmt.Errorf("no provider registry")
	}
	if fallback, _ := cmd.Flags().GetBool("fallback"); fallback {
		return s.reg.FetchWithFallback(ctx, model, params)
	}
	return s.reg.Fetch(ctx, model, params)
}

func (s *Session) fetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch <model> [key=value ...]",
		Short: "Fetch a data model from a provider and print it",
		Long: `Fetch a standard data model and print it as a table.

Examples:
  fetch EquityHistorical -s AAPL --start 2024-01-01
  fetch CryptoOrderBook -s BTCUSDT -p binance
  fetch EconomicSeries -s GDP --as gdp
  fetch OnChainMetric -s BTC metric=addresses/active_count`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := parseModel(args[0])
			if err != nil {
				return err
			}
			params, err := queryParams(cmd, args[1:])
			if err != nil {
				return err
			}
			res, err := s.fetch(cmd.Context(), cmd, model, params)
			if err != nil {
				return err
			}
			df, err := frame.FromResult(res)
			if err != nil {
				return fmt.Errorf("%s from %s: %w", model, res.Provider, err)
			}

			w := cmd.OutOrStdout()
			note := ""
			if res.Cached {
				note = " (cached)"
			}
			fmt.Fprintf(w, "%s from %s%s\n", model, res.Provider, note)

			if alias, _ := cmd.Flags().GetString("as"); alias != "" {
				if err := s.ws.Data.LoadFrame(alias, df, res.Provider+":"+string(model)); err != nil {
					return err
				}
				fmt.Fprintf(w, "Stored as dataset %q.\n", alias)
			}
			rows, _ := cmd.Flags().GetInt("rows")
			return frame.Render(w, df, rows)
		},
	}
	queryFlags(cmd)
	cmd.Flags().StringP("symbol", "s", "", "ticker, pair or series id")
	cmd.Flags().StringP("query", "q", "", "search text")
	cmd.Flags().StringP("limit", "l", "", "maximum number of records")
	cmd.Flags().String("as", "", "also store the result as a dataset under this alias")
	cmd.Flags().Int("rows", s.maxRows(), "rows to print (0 prints all)")
	return cmd
}

// --- Datasets ---

func (s *Session) loadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load <alias> [file]",
		Short: "Load a CSV/XLSX file, or fetched symbols, as a dataset",
		Long: `Load a dataset from a CSV or XLSX file, or fetch several symbols and
stack them into a panel indexed by (symbol, date).

Examples:
  load wages data/wage_panel.csv
  load stocks --symbols AAPL,MSFT,GOOG --model EquityHistorical --start 2023-01-01`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			alias := args[0]
			w := cmd.OutOrStdout()
			symbols, _ := cmd.Flags().GetStringSlice("symbols")

			switch {
			case len(args) == 2 && len(symbols) > 0:
				return fmt.Errorf("load %s: give a file or --symbols, not both", alias)
			case len(args) == 2:
				if err := s.ws.Data.Load(alias, args[1]); err != nil {
					return err
				}
			case len(symbols) > 0:
				modelName, _ := cmd.Flags().GetString("model")
				model, err := parseModel(modelName)
				if err != nil {
					return err
				}
				params, err := queryParams(cmd, nil)
				if err != nil {
					return err
				}
				fetch := func(ctx context.Context, symbol string) (dataframe.DataFrame, error) {
					p := make(provider.QueryParams, len(params)+1)
					for k, v := range params {
						p[k] = v
					}
					p[provider.ParamSymbol] = symbol
					res, err := s.fetch(ctx, cmd, model, p)
					if err != nil {
						return dataframe.DataFrame{}, err
					}
					return frame.FromResult(res)
				}
				if err := s.ws.Data.LoadSymbols(cmd.Context(), alias, symbols, fetch); err != nil {
					return err
				}
			default:
				return fmt.Errorf("load %s: need a file or --symbols", alias)
			}

			for _, info := range s.ws.Data.List() {
				if info.Alias == alias {
					fmt.Fprintf(w, "Loaded %q: %d rows, %d columns.\n", alias, info.Rows, info.Cols)
				}
			}
			return nil
		},
	}
	queryFlags(cmd)
	cmd.Flags().StringSlice("symbols", nil, "symbols to fetch and stack")
	cmd.Flags().String("model", string(provider.ModelEquityHistorical), "model fetched for every symbol")
	return cmd
}

func (s *Session) removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <alias>",
		Aliases: []string{"rm"},
		Short:   "Remove a dataset",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := s.ws.Data.Remove(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %q.\n", args[0])
			return nil
		},
	}
}

func (s *Session) showCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [alias]",
		Short: "List datasets, or print one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if len(args) == 0 {
				infos := s.ws.Data.List()
				if len(infos) == 0 {
					fmt.Fprintln(w, "No datasets loaded.")
					return nil
				}
				rows := make([][]string, len(infos))
				for i, d := range infos {
					rows[i] = []string{d.Alias, fmt.Sprint(d.Rows), fmt.Sprint(d.Cols), strings.Join(d.Index, ", "), d.Source}
				}
				return frame.RenderRows(w, []string{"alias", "rows", "cols", "index", "source"}, rows)
			}
			df, err := s.ws.Data.Get(args[0])
			if err != nil {
				return err
			}
			n, _ := cmd.Flags().GetInt("rows")
			return frame.Render(w, df, n)
		},
	}
	cmd.Flags().Int("rows", s.maxRows(), "rows to print (0 prints all)")
	return cmd
}

func (s *Session) descCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "desc <alias>",
		Short: "Print summary statistics of every column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			df, err := s.ws.Data.Describe(args[0])
			if err != nil {
				return err
			}
			return frame.Render(cmd.OutOrStdout(), df, 0)
		},
	}
}

func (s *Session) indexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index <alias> <entity> [time]",
		Short: "Set the entity/time index used by panel regressions",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			drop, _ := cmd.Flags().GetBool("drop")
			if err := s.ws.Data.Index(args[0], args[1:], drop); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Indexed %q by %s.\n", args[0], strings.Join(args[1:], ", "))
			return nil
		},
	}
	cmd.Flags().Bool("drop", false, "hide the index columns from regular use")
	return cmd
}

func (s *Session) cleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean <alias>",
		Short: "Fill and/or drop missing values",
		Long: `Fill methods: rfill, cfill (zeros), rbfill, cbfill (backward),
rffill, cffill (forward); r works down columns, c along rows.
Drop methods: rdrop (rows with a gap), cdrop (columns with a gap).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fill, _ := cmd.Flags().GetString("fill")
			drop, _ := cmd.Flags().GetString("drop")
			limit, _ := cmd.Flags().GetInt("limit")
			if fill == "" && drop == "" {
				return fmt.Errorf("clean %s: need --fill and/or --drop", args[0])
			}
			if err := s.ws.Data.Clean(args[0], fill, drop, limit); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleaned %q.\n", args[0])
			return nil
		},
	}
	cmd.Flags().String("fill", "", "fill method")
	cmd.Flags().String("drop", "", "drop method")
	cmd.Flags().Int("limit", 0, "maximum consecutive fills (0 means no cap)")
	return cmd
}

func (s *Session) addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <alias> <new> <a> <op> [b]",
		Short: "Add a column computed from columns and numbers",
		Long: `Operators: + - * / ^ < <= > >= == != and lag, diff, pct (b is the
number of periods, default 1). Use -- before negative numbers.

Examples:
  add wages lwage2 lwage * lwage
  add stocks ret close pct`,
		Args: cobra.RangeArgs(4, 5),
		RunE: func(cmd *cobra.Command, args []string) error {
			b := ""
			if len(args) == 5 {
				b = args[4]
			}
			if err := s.ws.Data.AddColumn(args[0], args[1], args[2], args[3], b); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s.%s.\n", args[0], args[1])
			return nil
		},
	}
}

func (s *Session) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <alias> <column>",
		Short: "Delete a column",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := s.ws.Data.DeleteColumn(args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s.%s.\n", args[0], args[1])
			return nil
		},
	}
}

func (s *Session) renameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <alias> <old> <new>",
		Short: "Rename a column",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := s.ws.Data.Rename(args[0], args[1], args[2]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s.%s to %s.\n", args[0], args[1], args[2])
			return nil
		},
	}
}

func (s *Session) combineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "combine <target> <source> [columns...]",
		Short: "Copy columns of one dataset into another",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := s.ws.Data.Combine(args[0], args[1], args[2:]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Combined %q into %q.\n", args[1], args[0])
			return nil
		},
	}
}

func (s *Session) typeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "type <alias> [column type]",
		Short: "Show column types, or convert a column",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 && len(args) != 3 {
				return fmt.Errorf("type takes <alias> or <alias> <column> <type>, got %d args", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if len(args) == 3 {
				if err := s.ws.Data.ChangeType(args[0], args[1], args[2]); err != nil {
					return err
				}
				fmt.Fprintf(w, "Converted %s.%s to %s.\n", args[0], args[1], args[2])
				return nil
			}
			types, err := s.ws.Data.Types(args[0])
			if err != nil {
				return err
			}
			return frame.RenderKV(w, [2]string{"column", "type"}, types)
		},
	}
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
