package econometrics

import (
	"fmt"
	"math"
	"strconv"

	"gonum.org/v1/gonum/stat/distuv"
)

// GrangerTest is one test statistic of a Granger causality run.
type GrangerTest struct {
	Name   string  `json:"name"`
	Stat   float64 `json:"stat"`
	PValue float64 `json:"p_value"`
	DF     string  `json:"df"`
}

// GrangerResult holds the tests for one lag order.
type GrangerResult struct {
	Lags  int           `json:"lags"`
	NObs  int           `json:"nobs"`
	Tests []GrangerTest `json:"tests"`
}

// Granger tests whether lags of x help predict y beyond y's own lags. The
// restricted model regresses y_t on a constant and y_{t-1..t-lags}; the
// unrestricted model adds x_{t-1..t-lags}.
func Granger(y, x []float64, lags int) (*GrangerResult, error) {
	if len(y) != len(x) {
		return nil, fmt.Errorf("granger: %w", ErrLengthMismatch)
	}
	if lags < 1 {
		return nil, fmt.Errorf("granger: lags must be positive: %w", ErrUnsupported)
	}
	keep := completeRows([][]float64{y, x})
	y, x = pick(y, keep), pick(x, keep)
	n := len(y) - lags
	if n <= 2*lags+1 {
		return nil, fmt.Errorf("granger: %d observations for %d lags: %w", len(y), lags, ErrInsufficientData)
	}

	dep := y[lags:]
	own := make([][]float64, lags)
	cross := make([][]float64, lags)
	var ownNames, crossNames []string
	for l := 1; l <= lags; l++ {
		own[l-1] = y[lags-l : lags-l+n]
		cross[l-1] = x[lags-l : lags-l+n]
		ownNames = append(ownNames, "y_lag"+strconv.Itoa(l))
		crossNames = append(crossNames, "x_lag"+strconv.Itoa(l))
	}

	restricted, err := fit(newDesign(dep, own, ownNames, true), CovUnadjusted)
	if err != nil {
		return nil, fmt.Errorf("granger: restricted: %w", err)
	}
	full, err := fit(newDesign(dep, append(own, cross...), append(ownNames, crossNames...), true), CovUnadjusted)
	if err != nil {
		return nil, fmt.Errorf("granger: unrestricted: %w", err)
	}

	q := float64(lags)
	dfr := float64(full.DFResid)
	gain := (restricted.SSR - full.SSR) / full.SSR
	chi2 := distuv.ChiSquared{K: q}

	fStat := gain / q * dfr
	chiStat := float64(full.NObs) * gain
	lr := -2 * (restricted.LogLik - full.LogLik)

	idx := make([]int, lags)
	for i := range idx {
		idx[i] = 1 + lags + i
	}
	wf, wp, err := full.wald(idx)
	if err != nil {
		return nil, fmt.Errorf("granger: %w", err)
	}

	return &GrangerResult{
		Lags: lags,
		NObs: full.NObs,
		Tests: []GrangerTest{
			{"ssr_ftest", fStat, distuv.F{D1: q, D2: dfr}.Survival(fStat), fmt.Sprintf("(%d, %d)", lags, full.DFResid)},
			{"ssr_chi2test", chiStat, chi2.Survival(chiStat), strconv.Itoa(lags)},
			{"lrtest", lr, chi2.Survival(lr), strconv.Itoa(lags)},
			{"params_ftest", wf, wp, fmt.Sprintf("(%d, %d)", lags, full.DFResid)},
		},
	}, nil
}

// Test returns the named statistic.
func (g *GrangerResult) Test(name string) (GrangerTest, bool) {
	for _, t := range g.Tests {
		if t.Name == name {
			return t, true
		}
	}
	return GrangerTest{Stat: math.NaN(), PValue: math.NaN()}, false
}
