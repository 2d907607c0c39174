package econometrics

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ADFOptions configure the augmented Dickey-Fuller test.
type ADFOptions struct {
	// Regression is "n" (none), "c" (constant) or "ct" (constant and trend).
	Regression string
	// MaxLag < 0 selects 12*(n/100)^(1/4).
	MaxLag int
	// AutoLag is "AIC", "BIC" or "none" (use MaxLag as is).
	AutoLag string
}

// DefaultADFOptions tests with a constant and AIC lag selection.
func DefaultADFOptions() ADFOptions {
	return ADFOptions{Regression: "c", MaxLag: -1, AutoLag: "AIC"}
}

// ADFResult is the outcome of an ADF test. The null is a unit root.
type ADFResult struct {
	Stat     float64            `json:"adf"`
	PValue   float64            `json:"p_value"`
	UsedLag  int                `json:"used_lag"`
	NObs     int                `json:"nobs"`
	Critical map[string]float64 `json:"critical_values"`
	IC       float64            `json:"ic_best,omitempty"`
}

func trendTerms(regression string) (int, error) {
	switch regression {
	case "n":
		return 0, nil
	case "c":
		return 1, nil
	case "ct":
		return 2, nil
	}
	return 0, fmt.Errorf("regression %q: %w", regression, ErrUnsupported)
}

// dropNaN returns v without NaN or Inf values.
func dropNaN(v []float64) []float64 {
	return pick(v, completeRows([][]float64{v}))
}

// ADF runs the augmented Dickey-Fuller test on x, regressing Δx_t on
// x_{t-1}, the deterministic terms and lagged differences.
func ADF(x []float64, opts ADFOptions) (*ADFResult, error) {
	x = dropNaN(x)
	ntrend, err := trendTerms(opts.Regression)
	if err != nil {
		return nil, fmt.Errorf("adf: %w", err)
	}
	nobs := len(x)
	maxlag := opts.MaxLag
	if maxlag < 0 {
		maxlag = int(math.Ceil(12 * math.Pow(float64(nobs)/100, 0.25)))
		maxlag = min(nobs/2-ntrend-1, maxlag)
		if maxlag < 0 {
			return nil, fmt.Errorf("adf: %d observations: %w", nobs, ErrInsufficientData)
		}
	} else if maxlag > nobs/2-ntrend-1 {
		return nil, fmt.Errorf("adf: maxlag %d too large for %d observations: %w", maxlag, nobs, ErrInsufficientData)
	}

	dx := make([]float64, nobs-1)
	for i := range dx {
		dx[i] = x[i+1] - x[i]
	}

	usedLag := maxlag
	var icBest float64
	switch strings.ToUpper(opts.AutoLag) {
	case "AIC", "BIC":
		bic := strings.EqualFold(opts.AutoLag, "BIC")
		// Every candidate shares the sample of the longest lag.
		icBest = math.Inf(1)
		for lag := 0; lag <= maxlag; lag++ {
			res, err := fit(adfDesign(x, dx, maxlag, lag, ntrend), CovUnadjusted)
			if err != nil {
				return nil, fmt.Errorf("adf: lag %d: %w", lag, err)
			}
			ic := res.AIC
			if bic {
				ic = res.BIC
			}
			if ic < icBest {
				icBest, usedLag = ic, lag
			}
		}
	case "", "NONE":
	default:
		return nil, fmt.Errorf("adf: autolag %q: %w", opts.AutoLag, ErrUnsupported)
	}

	res, err := fit(adfDesign(x, dx, usedLag, usedLag, ntrend), CovUnadjusted)
	if err != nil {
		return nil, fmt.Errorf("adf: %w", err)
	}
	stat := res.Coefs[ntrend].T
	return &ADFResult{
		Stat:     stat,
		PValue:   mackinnonP(stat, opts.Regression),
		UsedLag:  usedLag,
		NObs:     res.NObs,
		Critical: mackinnonCrit(opts.Regression, res.NObs),
		IC:       icBest,
	}, nil
}

// adfDesign builds the ADF regression with lag lagged differences on the
// sample that remains after trimming trim leading differences. Columns:
// deterministic terms, x_{t-1}, Δx_{t-1..t-lag}.
func adfDesign(x, dx []float64, trim, lag, ntrend int) design {
	n := len(dx) - trim
	y := dx[trim:]
	cols := make([][]float64, 0, ntrend+lag)
	names := make([]string, 0, ntrend+lag+1)
	if ntrend == 2 {
		t := make([]float64, n)
		for i := range t {
			t[i] = float64(i + 1)
		}
		cols = append(cols, t)
		names = append(names, "trend")
	}
	cols = append(cols, x[trim:trim+n])
	names = append(names, "x_lag")
	for l := 1; l <= lag; l++ {
		cols = append(cols, dx[trim-l:trim-l+n])
		names = append(names, "dx_lag"+strconv.Itoa(l))
	}
	return newDesign(y, cols, names, ntrend > 0)
}

// KPSSResult is the outcome of a KPSS test. The null is stationarity.
type KPSSResult struct {
	Stat     float64            `json:"kpss"`
	PValue   float64            `json:"p_value"`
	Lags     int                `json:"lags"`
	Critical map[string]float64 `json:"critical_values"`
}

var kpssLevels = [4]string{"10%", "5%", "2.5%", "1%"}
var kpssPValues = [4]float64{0.10, 0.05, 0.025, 0.01}
var kpssCritical = map[string][4]float64{
	"c":  {0.347, 0.463, 0.574, 0.739},
	"ct": {0.119, 0.146, 0.176, 0.216},
}

// KPSS runs the Kwiatkowski-Phillips-Schmidt-Shin test. regression is "c"
// or "ct"; nlags is "auto" (Hobijn et al. bandwidth), "legacy"
// (12*(n/100)^(1/4)) or a number. P-values are interpolated from the
// tabulated critical values and so lie in [0.01, 0.10].
func KPSS(x []float64, regression, nlags string) (*KPSSResult, error) {
	x = dropNaN(x)
	n := len(x)
	crit, ok := kpssCritical[regression]
	if !ok {
		return nil, fmt.Errorf("kpss: regression %q: %w", regression, ErrUnsupported)
	}
	if n < 3 {
		return nil, fmt.Errorf("kpss: %d observations: %w", n, ErrInsufficientData)
	}

	var resid []float64
	if regression == "ct" {
		t := make([]float64, n)
		for i := range t {
			t[i] = float64(i + 1)
		}
		res, err := fit(newDesign(x, [][]float64{t}, []string{"trend"}, true), CovUnadjusted)
		if err != nil {
			return nil, fmt.Errorf("kpss: %w", err)
		}
		resid = res.Residuals
	} else {
		m := mean(x)
		resid = make([]float64, n)
		for i, v := range x {
			resid[i] = v - m
		}
	}

	if autocov(resid, 0) <= 1e-20*(1+autocov(x, 0)) {
		return nil, fmt.Errorf("kpss: series has no variation: %w", ErrInsufficientData)
	}

	var lags int
	switch nlags {
	case "", "auto":
		lags = min(kpssAutoLag(resid), n-1)
	case "legacy":
		lags = min(int(math.Ceil(12*math.Pow(float64(n)/100, 0.25))), n-1)
	default:
		v, err := strconv.Atoi(nlags)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("kpss: nlags %q: %w", nlags, ErrUnsupported)
		}
		if v >= n {
			return nil, fmt.Errorf("kpss: nlags %d must be below %d: %w", v, n, ErrInsufficientData)
		}
		lags = v
	}

	cum, eta := 0.0, 0.0
	for _, e := range resid {
		cum += e
		eta += cum * cum
	}
	eta /= float64(n) * float64(n)
	stat := eta / longRunVariance(resid, lags)

	out := &KPSSResult{
		Stat:     stat,
		PValue:   interpolate(stat, crit[:], kpssPValues[:]),
		Lags:     lags,
		Critical: make(map[string]float64, 4),
	}
	for i, lvl := range kpssLevels {
		out.Critical[lvl] = crit[i]
	}
	return out, nil
}

// autocov returns Σ e_t e_{t-lag}.
func autocov(e []float64, lag int) float64 {
	s := 0.0
	for i := lag; i < len(e); i++ {
		s += e[i] * e[i-lag]
	}
	return s
}

// longRunVariance is the Newey-West estimate with a Bartlett kernel.
func longRunVariance(e []float64, lags int) float64 {
	s := autocov(e, 0)
	for i := 1; i <= lags; i++ {
		s += 2 * autocov(e, i) * (1 - float64(i)/float64(lags+1))
	}
	return s / float64(len(e))
}

func kpssAutoLag(e []float64) int {
	n := float64(len(e))
	covlags := int(math.Pow(n, 2.0/9.0))
	s0 := autocov(e, 0) / n
	s1 := 0.0
	for i := 1; i <= covlags; i++ {
		p := autocov(e, i) / (n / 2)
		s0 += p
		s1 += float64(i) * p
	}
	sHat := s1 / s0
	gamma := 1.1447 * math.Pow(sHat*sHat, 1.0/3.0)
	lag := gamma * math.Pow(n, 1.0/3.0)
	if math.IsNaN(lag) || lag < 0 {
		return 0
	}
	return int(math.Min(lag, n-1))
}

// interpolate is piecewise-linear on increasing xs, clamped at the ends.
func interpolate(x float64, xs, ys []float64) float64 {
	if x <= xs[0] {
		return ys[0]
	}
	last := len(xs) - 1
	if x >= xs[last] {
		return ys[last]
	}
	for i := 1; i <= last; i++ {
		if x <= xs[i] {
			w := (x - xs[i-1]) / (xs[i] - xs[i-1])
			return ys[i-1] + w*(ys[i]-ys[i-1])
		}
	}
	return ys[last]
}

// RootResult pairs ADF and KPSS on the same series. KPSS is nil when ADF
// ran without deterministic terms, which KPSS has no form for.
type RootResult struct {
	ADF  *ADFResult  `json:"adf"`
	KPSS *KPSSResult `json:"kpss,omitempty"`
}

// Root runs ADF with opts and KPSS with the same deterministic terms and
// nlags.
func Root(x []float64, opts ADFOptions, nlags string) (*RootResult, error) {
	if _, err := trendTerms(opts.Regression); err != nil {
		return nil, fmt.Errorf("root: %w", err)
	}
	adf, err := ADF(x, opts)
	if err != nil {
		return nil, err
	}
	out := &RootResult{ADF: adf}
	if opts.Regression == "n" {
		return out, nil
	}
	if out.KPSS, err = KPSS(x, opts.Regression, nlags); err != nil {
		return nil, err
	}
	return out, nil
}
