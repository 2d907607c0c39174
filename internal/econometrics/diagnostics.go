package econometrics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// LMTest is a Lagrange multiplier test with its F variant.
type LMTest struct {
	LM      float64 `json:"lm"`
	LMP     float64 `json:"lm_p_value"`
	F       float64 `json:"f"`
	FP      float64 `json:"f_p_value"`
	Lags    int     `json:"lags,omitempty"`
	DFChi2  int     `json:"df"`
	NObs    int     `json:"nobs"`
	Verdict string  `json:"verdict"`
}

// DurbinWatson returns Σ(e_t - e_{t-1})² / Σe_t². Values near 2 indicate
// no first-order autocorrelation.
func DurbinWatson(res *Result) (float64, error) {
	e := res.Residuals
	if len(e) < 2 {
		return math.NaN(), ErrInsufficientData
	}
	num := 0.0
	for i := 1; i < len(e); i++ {
		d := e[i] - e[i-1]
		num += d * d
	}
	return num / floats.Dot(e, e), nil
}

// designOf returns the fitted model's regressors with a column of ones
// first. Models without a constant get one added. A random effects
// quasi-demeaned constant is kept next to the ones column unless it is
// itself constant, as on a balanced panel.
func designOf(res *Result) (*mat.Dense, error) {
	if res.x == nil {
		return nil, fmt.Errorf("model has no design matrix: %w", ErrModelNotFitted)
	}
	if res.hasConst && !res.quasiConst {
		return res.x, nil
	}
	n, k := res.x.Dims()
	cols := make([]int, 0, k)
	for j := 0; j < k; j++ {
		if j == 0 && res.quasiConst && isConstant(mat.Col(nil, 0, res.x)) {
			continue
		}
		cols = append(cols, j)
	}
	x := mat.NewDense(n, len(cols)+1, nil)
	for i := 0; i < n; i++ {
		x.Set(i, 0, 1)
		for c, j := range cols {
			x.Set(i, c+1, res.x.At(i, j))
		}
	}
	return x, nil
}

func isConstant(v []float64) bool {
	return len(v) == 0 || floats.Max(v)-floats.Min(v) <= 1e-12*math.Max(1, math.Abs(v[0]))
}

// BreuschGodfrey tests for serial correlation up to order lags by
// regressing the residuals on the original regressors and lags residual
// lags (pre-sample lags are zero). The null is no autocorrelation.
func BreuschGodfrey(res *Result, lags int) (*LMTest, error) {
	if lags < 1 {
		return nil, fmt.Errorf("bgod: lags must be positive: %w", ErrUnsupported)
	}
	x, err := designOf(res)
	if err != nil {
		return nil, fmt.Errorf("bgod: %w", err)
	}
	e := res.Residuals
	n, k := x.Dims()

	aux := mat.NewDense(n, k+lags, nil)
	aux.Slice(0, n, 0, k).(*mat.Dense).Copy(x)
	for l := 1; l <= lags; l++ {
		for i := l; i < n; i++ {
			aux.Set(i, k+l-1, e[i-l])
		}
	}
	fitted, err := fit(design{y: e, x: aux, names: make([]string, k+lags), hasConst: true}, CovUnadjusted)
	if err != nil {
		return nil, fmt.Errorf("bgod: %w", err)
	}

	idx := make([]int, lags)
	for i := range idx {
		idx[i] = k + i
	}
	f, fp, err := fitted.wald(idx)
	if err != nil {
		return nil, fmt.Errorf("bgod: %w", err)
	}
	lm := float64(n) * fitted.RSquared
	out := &LMTest{
		LM:     lm,
		LMP:    distuv.ChiSquared{K: float64(lags)}.Survival(lm),
		F:      f,
		FP:     fp,
		Lags:   lags,
		DFChi2: lags,
		NObs:   n,
	}
	out.Verdict = verdict(out.LMP, "autocorrelation", "no autocorrelation")
	return out, nil
}

// BreuschPagan is the Koenker (studentised) test for heteroskedasticity:
// n·R² from regressing the squared residuals on the model's regressors.
// The null is homoskedasticity.
func BreuschPagan(res *Result) (*LMTest, error) {
	x, err := designOf(res)
	if err != nil {
		return nil, fmt.Errorf("bpag: %w", err)
	}
	n, k := x.Dims()
	if k < 2 {
		return nil, fmt.Errorf("bpag: model has no regressors: %w", ErrInsufficientData)
	}
	e2 := make([]float64, n)
	for i, e := range res.Residuals {
		e2[i] = e * e
	}
	aux, err := fit(design{y: e2, x: x, names: make([]string, k), hasConst: true}, CovUnadjusted)
	if err != nil {
		return nil, fmt.Errorf("bpag: %w", err)
	}
	lm := float64(n) * aux.RSquared
	out := &LMTest{
		LM:     lm,
		LMP:    distuv.ChiSquared{K: float64(k - 1)}.Survival(lm),
		F:      aux.FStat,
		FP:     aux.FPValue,
		DFChi2: k - 1,
		NObs:   n,
	}
	out.Verdict = verdict(out.LMP, "heteroskedasticity", "homoskedasticity")
	return out, nil
}

func verdict(p float64, reject, accept string) string {
	if p < 0.05 {
		return fmt.Sprintf("%s (reject at 5%%)", reject)
	}
	return fmt.Sprintf("%s (fail to reject at 5%%)", accept)
}

// ResidualSummary describes a model's residuals.
type ResidualSummary struct {
	NObs         int              `json:"nobs"`
	Mean         float64          `json:"mean"`
	Std          float64          `json:"std"`
	Min          float64          `json:"min"`
	Max          float64          `json:"max"`
	DurbinWatson float64          `json:"durbin_watson"`
	Normality    *NormalityResult `json:"normality,omitempty"`
}

// SummarizeResiduals combines moments, Durbin-Watson and normality tests.
func SummarizeResiduals(res *Result) (*ResidualSummary, error) {
	e := res.Residuals
	if len(e) < 2 {
		return nil, ErrInsufficientData
	}
	dw, _ := DurbinWatson(res)
	out := &ResidualSummary{
		NObs:         len(e),
		Mean:         mean(e),
		Std:          stdDev(e),
		Min:          floats.Min(e),
		Max:          floats.Max(e),
		DurbinWatson: dw,
	}
	if norm, err := Normality(e); err == nil {
		out.Normality = norm
	}
	return out, nil
}
