package terminal

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/seenimoa/finterm/internal/econometrics"
	"github.com/seenimoa/finterm/internal/frame"
)

// formatP prints p-values with fixed precision, switching to scientific
// notation below 0.0001.
func formatP(p float64) string {
	switch {
	case math.IsNaN(p):
		return ""
	case p < 1e-4:
		return fmt.Sprintf("%.2e", p)
	}
	return fmt.Sprintf("%.4f", p)
}

func printFit(w io.Writer, f *econometrics.Fitted) error {
	r := f.Model
	fmt.Fprintf(w, "%s regression of %s on %s (data: %s)\n",
		r.Kind, f.Dependent, strings.Join(f.Independent, ", "), strings.Join(f.Data, ", "))

	rows := make([][]string, len(r.Coefs))
	for i, c := range r.Coefs {
		rows[i] = []string{
			c.Name,
			frame.FormatFloat(c.Value),
			frame.FormatFloat(c.StdErr),
			fmt.Sprintf("%.3f", c.T),
			formatP(c.P),
			frame.FormatFloat(c.Lower),
			frame.FormatFloat(c.Upper),
		}
	}
	if err := frame.RenderRows(w, []string{"term", "coef", "std err", "t", "p>|t|", "[0.025", "0.975]"}, rows); err != nil {
		return err
	}

	stats := [][]string{
		{"observations", fmt.Sprint(r.NObs)},
		{"df model / resid", fmt.Sprintf("%d / %d", r.DFModel, r.DFResid)},
		{"covariance", string(r.CovType)},
		{"r-squared", frame.FormatFloat(r.RSquared)},
		{"adj. r-squared", frame.FormatFloat(r.AdjRSquared)},
		{"f-statistic", fmt.Sprintf("%s (p %s)", frame.FormatFloat(r.FStat), formatP(r.FPValue))},
		{"log-likelihood", frame.FormatFloat(r.LogLik)},
		{"aic / bic", fmt.Sprintf("%s / %s", frame.FormatFloat(r.AIC), frame.FormatFloat(r.BIC))},
	}
	for _, k := range sortedKeys(r.Extras) {
		stats = append(stats, []string{k, frame.FormatFloat(r.Extras[k])})
	}
	return frame.RenderRows(w, []string{"statistic", "value"}, stats)
}

func printLM(w io.Writer, name string, t *econometrics.LMTest) error {
	fmt.Fprintf(w, "%s test, %d observations: %s\n", name, t.NObs, t.Verdict)
	return frame.RenderRows(w, []string{"test", "stat", "p-value", "df"}, [][]string{
		{"LM", frame.FormatFloat(t.LM), formatP(t.LMP), fmt.Sprint(t.DFChi2)},
		{"F", frame.FormatFloat(t.F), formatP(t.FP), ""},
	})
}

func printRoot(w io.Writer, r *econometrics.RootResult) error {
	adf, kpss := r.ADF, r.KPSS
	rows := [][]string{
		{"ADF", frame.FormatFloat(adf.Stat), formatP(adf.PValue), fmt.Sprint(adf.UsedLag),
			frame.FormatFloat(adf.Critical["1%"]), frame.FormatFloat(adf.Critical["5%"]), frame.FormatFloat(adf.Critical["10%"])},
	}
	if kpss == nil {
		fmt.Fprintln(w, "ADF: null of a unit root. KPSS needs a constant and was skipped.")
	} else {
		fmt.Fprintln(w, "ADF: null of a unit root. KPSS: null of stationarity.")
		rows = append(rows, []string{"KPSS", frame.FormatFloat(kpss.Stat), formatP(kpss.PValue), fmt.Sprint(kpss.Lags),
			frame.FormatFloat(kpss.Critical["1%"]), frame.FormatFloat(kpss.Critical["5%"]), frame.FormatFloat(kpss.Critical["10%"])})
	}
	return frame.RenderRows(w, []string{"test", "stat", "p-value", "lags", "1%", "5%", "10%"}, rows)
}

func printNormality(w io.Writer, r *econometrics.NormalityResult) error {
	fmt.Fprintf(w, "Normality, %d observations: skew %s, kurtosis %s\n",
		r.NObs, frame.FormatFloat(r.Skew), frame.FormatFloat(r.Kurtosis))
	return frame.RenderRows(w, []string{"test", "stat", "p-value"}, [][]string{
		{"skew", frame.FormatFloat(r.SkewTest.Stat), formatP(r.SkewTest.PValue)},
		{"kurtosis", frame.FormatFloat(r.KurtTest.Stat), formatP(r.KurtTest.PValue)},
		{"omnibus", frame.FormatFloat(r.Omnibus.Stat), formatP(r.Omnibus.PValue)},
		{"jarque-bera", frame.FormatFloat(r.JB.Stat), formatP(r.JB.PValue)},
	})
}
