package terminal

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/seenimoa/finterm/internal/econometrics"
	"github.com/seenimoa/finterm/internal/frame"
)

// --- Regressions ---

func (s *Session) olsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ols <dependent> <independent...>",
		Short: "Fit an OLS regression on alias.column references",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cov, err := covFlag(cmd)
			if err != nil {
				return err
			}
			f, err := s.ws.Regress(econometrics.KindOLS, args[0], args[1:], econometrics.PanelOptions{Cov: cov})
			if err != nil {
				return err
			}
			return printFit(cmd.OutOrStdout(), f)
		},
	}
	cmd.Flags().String("cov", string(econometrics.CovUnadjusted), "covariance: unadjusted or robust")
	return cmd
}

func (s *Session) panelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "panel <dependent> <independent...>",
		Short: "Fit a panel regression (POLS, RE, BOLS, FE, FDOLS)",
		Long: `Fit a panel regression. The dataset must be indexed by entity and time
(see index).

Examples:
  panel wages.lwage wages.exper wages.union --type FE --time-effects
  panel wages.lwage wages.exper --type RE --cov robust`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := kindFlag(cmd)
			if err != nil {
				return err
			}
			if !kind.IsPanel() {
				return fmt.Errorf("panel: use ols for %s", kind)
			}
			cov, err := covFlag(cmd)
			if err != nil {
				return err
			}
			te, _ := cmd.Flags().GetBool("time-effects")
			f, err := s.ws.Regress(kind, args[0], args[1:], econometrics.PanelOptions{Cov: cov, TimeEffects: te})
			if err != nil {
				return err
			}
			return printFit(cmd.OutOrStdout(), f)
		},
	}
	cmd.Flags().String("type", string(econometrics.KindPOLS), "estimator: POLS, RE, BOLS, FE or FDOLS")
	cmd.Flags().String("cov", string(econometrics.CovUnadjusted), "covariance: unadjusted or robust")
	cmd.Flags().Bool("time-effects", false, "add time effects (FE only)")
	return cmd
}

func covFlag(cmd *cobra.Command) (econometrics.CovType, error) {
	v, _ := cmd.Flags().GetString("cov")
	return econometrics.ParseCovType(v)
}

func kindFlag(cmd *cobra.Command) (econometrics.ModelKind, error) {
	v, _ := cmd.Flags().GetString("type")
	return econometrics.ParseModelKind(v)
}

func (s *Session) compareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare",
		Short: "Compare every fitted regression side by side",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmp, err := s.ws.Models.Compare()
			if err != nil {
				return err
			}
			header := []string{"term"}
			for _, k := range cmp.Kinds {
				header = append(header, string(k))
			}
			rows := make([][]string, len(cmp.Rows))
			for i, name := range cmp.Rows {
				rows[i] = append([]string{name}, cmp.Cells[i]...)
			}
			return frame.RenderRows(cmd.OutOrStdout(), header, rows)
		},
	}
}

// --- Diagnostics on a fitted model ---

// fitted resolves the --type flag to a registered fit.
func (s *Session) fitted(cmd *cobra.Command) (*econometrics.Fitted, error) {
	kind, err := kindFlag(cmd)
	if err != nil {
		return nil, err
	}
	return s.ws.Models.Get(kind)
}

func typeFlag(cmd *cobra.Command) {
	cmd.Flags().String("type", string(econometrics.KindOLS), "regression to test: OLS, POLS, RE, BOLS, FE or FDOLS")
}

func (s *Session) dwatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dwat",
		Short: "Durbin-Watson test for first-order autocorrelation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := s.fitted(cmd)
			if err != nil {
				return err
			}
			dw, err := econometrics.DurbinWatson(f.Model)
			if err != nil {
				return err
			}
			note := "no first-order autocorrelation"
			switch {
			case dw < 1.5:
				note = "positive autocorrelation"
			case dw > 2.5:
				note = "negative autocorrelation"
			}
			return frame.RenderRows(cmd.OutOrStdout(), []string{"model", "durbin-watson", "reading"},
				[][]string{{string(f.Model.Kind), frame.FormatFloat(dw), note}})
		},
	}
	typeFlag(cmd)
	return cmd
}

func (s *Session) bgodCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bgod",
		Short: "Breusch-Godfrey test for autocorrelation up to --lags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := s.fitted(cmd)
			if err != nil {
				return err
			}
			lags, _ := cmd.Flags().GetInt("lags")
			t, err := econometrics.BreuschGodfrey(f.Model, lags)
			if err != nil {
				return err
			}
			return printLM(cmd.OutOrStdout(), "Breusch-Godfrey", t)
		},
	}
	typeFlag(cmd)
	cmd.Flags().Int("lags", 3, "number of residual lags")
	return cmd
}

func (s *Session) bpagCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bpag",
		Short: "Breusch-Pagan test for heteroskedasticity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := s.fitted(cmd)
			if err != nil {
				return err
			}
			t, err := econometrics.BreuschPagan(f.Model)
			if err != nil {
				return err
			}
			return printLM(cmd.OutOrStdout(), "Breusch-Pagan", t)
		},
	}
	typeFlag(cmd)
	return cmd
}

func (s *Session) residualsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "residuals",
		Short: "Summarise the residuals of a fitted regression",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := s.fitted(cmd)
			if err != nil {
				return err
			}
			sum, err := econometrics.SummarizeResiduals(f.Model)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if err := frame.RenderRows(w, []string{"nobs", "mean", "std", "min", "max", "durbin-watson"}, [][]string{{
				fmt.Sprint(sum.NObs), frame.FormatFloat(sum.Mean), frame.FormatFloat(sum.Std),
				frame.FormatFloat(sum.Min), frame.FormatFloat(sum.Max), frame.FormatFloat(sum.DurbinWatson),
			}}); err != nil {
				return err
			}
			if sum.Normality != nil {
				return printNormality(w, sum.Normality)
			}
			return nil
		},
	}
	typeFlag(cmd)
	return cmd
}

// --- Time-series tests ---

func (s *Session) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "root <alias.column>",
		Short: "ADF and KPSS unit-root tests",
		Long: `Run the augmented Dickey-Fuller and KPSS tests on one column.

Examples:
  root macro.gdp --regression ct
  root prices.close --autolag BIC --maxlag 8 --nlags legacy
  root returns.r --regression n`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := s.ws.Series(args[0])
			if err != nil {
				return err
			}
			opts := econometrics.DefaultADFOptions()
			opts.Regression, _ = cmd.Flags().GetString("regression")
			opts.MaxLag, _ = cmd.Flags().GetInt("maxlag")
			opts.AutoLag, _ = cmd.Flags().GetString("autolag")
			nlags, _ := cmd.Flags().GetString("nlags")
			res, err := econometrics.Root(x, opts, nlags)
			if err != nil {
				return err
			}
			return printRoot(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().String("regression", "c", "deterministic terms: n (none, ADF only), c (constant) or ct (constant and trend)")
	cmd.Flags().Int("maxlag", -1, "largest ADF lag (-1 picks 12*(n/100)^(1/4))")
	cmd.Flags().String("autolag", "AIC", "ADF lag selection: AIC, BIC or none")
	cmd.Flags().String("nlags", "auto", "KPSS bandwidth: auto, legacy or a number")
	return cmd
}

func (s *Session) grangerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "granger <y> <x>",
		Short: "Test whether x Granger-causes y",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			y, x, err := s.ws.Pair(args[0], args[1])
			if err != nil {
				return err
			}
			lags, _ := cmd.Flags().GetInt("lags")
			res, err := econometrics.Granger(y, x, lags)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Granger causality %s -> %s, %d lags, %d observations\n", args[1], args[0], res.Lags, res.NObs)
			rows := make([][]string, len(res.Tests))
			for i, t := range res.Tests {
				rows[i] = []string{t.Name, frame.FormatFloat(t.Stat), formatP(t.PValue), t.DF}
			}
			return frame.RenderRows(w, []string{"test", "stat", "p-value", "df"}, rows)
		},
	}
	cmd.Flags().Int("lags", 3, "number of lags")
	return cmd
}

func (s *Session) cointCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coint <y> <x>",
		Short: "Engle-Granger two-step cointegration test",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			y, x, err := s.ws.Pair(args[0], args[1])
			if err != nil {
				return err
			}
			res, err := econometrics.EngleGranger(y, x)
			if err != nil {
				return err
			}
			return frame.RenderRows(cmd.OutOrStdout(),
				[]string{"constant", "gamma", "alpha", "adf", "p-value"},
				[][]string{{
					frame.FormatFloat(res.Constant), frame.FormatFloat(res.Gamma), frame.FormatFloat(res.Alpha),
					frame.FormatFloat(res.ADFStat), formatP(res.PValue),
				}})
		},
	}
	return cmd
}

func (s *Session) normCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "norm <alias.column>",
		Short: "Normality tests: skew, kurtosis, omnibus, Jarque-Bera",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := s.ws.Series(args[0])
			if err != nil {
				return err
			}
			res, err := econometrics.Normality(x)
			if err != nil {
				return err
			}
			return printNormality(cmd.OutOrStdout(), res)
		},
	}
}

func (s *Session) corrCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corr <alias.column> <alias.column...>",
		Short: "Correlation matrix of columns",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cols := make([][]float64, len(args))
			for i, ref := range args {
				var err error
				if cols[i], err = s.ws.Series(ref); err != nil {
					return err
				}
			}
			method, _ := cmd.Flags().GetString("method")
			m, err := econometrics.Correlation(cols, strings.ToLower(method))
			if err != nil {
				return err
			}
			rows := make([][]string, len(args))
			for i := range args {
				rows[i] = []string{args[i]}
				for j := range args {
					rows[i] = append(rows[i], frame.FormatFloat(m.At(i, j)))
				}
			}
			return frame.RenderRows(cmd.OutOrStdout(), append([]string{""}, args...), rows)
		},
	}
	cmd.Flags().String("method", "pearson", "pearson or spearman")
	return cmd
}
