package econometrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngleGranger(t *testing.T) {
	rng := newRand()
	n := 300
	x := make([]float64, n)
	y := make([]float64, n)
	for i := range x {
		if i > 0 {
			x[i] = x[i-1] + rng.NormFloat64()
		}
		y[i] = 2 + 0.5*x[i] + 0.5*rng.NormFloat64()
	}

	res, err := EngleGranger(y, x)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, res.Gamma, 0.05)
	assert.InDelta(t, 2, res.Constant, 0.5)
	assert.Less(t, res.Alpha, 0.0)
	assert.Less(t, res.PValue, 0.01)
	assert.Len(t, res.Z, n)

	_, err = EngleGranger(y, x[:10])
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestGranger(t *testing.T) {
	rng := newRand()
	n := 300
	x := normals(rng, n, 1)
	y := make([]float64, n)
	for i := 1; i < n; i++ {
		y[i] = 0.8*x[i-1] + 0.2*rng.NormFloat64()
	}

	res, err := Granger(y, x, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Lags)
	assert.Equal(t, n-2, res.NObs)
	require.Len(t, res.Tests, 4)
	for _, tt := range res.Tests {
		assert.Less(t, tt.PValue, 1e-6, tt.Name)
	}

	// Under homoskedastic OLS the Wald test on the lag coefficients equals
	// the SSR-based F test.
	ssrF, _ := res.Test("ssr_ftest")
	paramF, _ := res.Test("params_ftest")
	assert.InDelta(t, ssrF.Stat, paramF.Stat, 1e-6*ssrF.Stat)

	_, ok := res.Test("missing")
	assert.False(t, ok)

	_, err = Granger(y, x, 0)
	assert.ErrorIs(t, err, ErrUnsupported)
	_, err = Granger(y[:5], x[:5], 2)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestDurbinWatson(t *testing.T) {
	dw, err := DurbinWatson(&Result{Residuals: []float64{1, -1, 1, -1}})
	require.NoError(t, err)
	assert.InDelta(t, 3.0, dw, 1e-12)

	_, err = DurbinWatson(&Result{Residuals: []float64{1}})
	assert.ErrorIs(t, err, ErrInsufficientData)
}

// autocorrelatedFit regresses y = 1 + x + u with AR(1) errors u.
func autocorrelatedFit(t *testing.T, rho float64) *Result {
	t.Helper()
	rng := newRand()
	n := 300
	x := normals(rng, n, 1)
	y := make([]float64, n)
	u := 0.0
	for i := range y {
		u = rho*u + rng.NormFloat64()
		y[i] = 1 + x[i] + u
	}
	res, err := OLS(y, [][]float64{x}, "y", []string{"x"}, CovUnadjusted)
	require.NoError(t, err)
	return res
}

func TestBreuschGodfreyDetectsAutocorrelation(t *testing.T) {
	res := autocorrelatedFit(t, 0.8)

	bg, err := BreuschGodfrey(res, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, bg.Lags)
	assert.Equal(t, 300, bg.NObs)
	assert.Less(t, bg.LMP, 0.01)
	assert.Less(t, bg.FP, 0.01)
	assert.Contains(t, bg.Verdict, "reject")

	dw, err := DurbinWatson(res)
	require.NoError(t, err)
	assert.Less(t, dw, 1.0)

	_, err = BreuschGodfrey(res, 0)
	assert.ErrorIs(t, err, ErrUnsupported)
	_, err = BreuschGodfrey(&Result{}, 1)
	assert.ErrorIs(t, err, ErrModelNotFitted)
}

func TestBreuschPaganDetectsHeteroskedasticity(t *testing.T) {
	rng := newRand()
	n := 300
	x := normals(rng, n, 1)
	y := make([]float64, n)
	for i := range y {
		y[i] = 0.5*x[i] + rng.NormFloat64()*math.Exp(x[i])
	}
	res, err := OLS(y, [][]float64{x}, "y", []string{"x"}, CovUnadjusted)
	require.NoError(t, err)

	bp, err := BreuschPagan(res)
	require.NoError(t, err)
	assert.Equal(t, 1, bp.DFChi2)
	assert.Less(t, bp.LMP, 0.01)
	assert.False(t, math.IsNaN(bp.F))
}

func TestBreuschPaganOnModelWithoutConstant(t *testing.T) {
	data := syntheticPanel(10, 6, 0)
	fd, err := Panel(KindFDOLS, data, PanelOptions{})
	require.NoError(t, err)

	bp, err := BreuschPagan(fd)
	require.NoError(t, err)
	assert.Equal(t, 1, bp.DFChi2)
	assert.Equal(t, fd.NObs, bp.NObs)
}

func TestNormality(t *testing.T) {
	// Uniform 1..10: symmetric with Pearson kurtosis 1.7758.
	flat := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	res, err := Normality(flat)
	require.NoError(t, err)
	assert.InDelta(t, 0, res.Skew, 1e-12)
	assert.InDelta(t, 1.7758, res.Kurtosis, 1e-3)
	assert.True(t, math.IsNaN(res.KurtTest.Stat), "kurtosis test needs 20 observations")
	assert.InDelta(t, 10.0/6*(1.7758-3)*(1.7758-3)/4, res.JB.Stat, 1e-3)

	rng := newRand()
	expo := make([]float64, 500)
	for i := range expo {
		expo[i] = -math.Log(1 - rng.Float64())
	}
	skewed, err := Normality(expo)
	require.NoError(t, err)
	assert.Greater(t, skewed.Skew, 1.0)
	assert.Less(t, skewed.JB.PValue, 0.01)
	assert.Less(t, skewed.SkewTest.PValue, 0.01)
	assert.Less(t, skewed.Omnibus.PValue, 0.01)

	_, err = Normality([]float64{1, 2, 3})
	assert.ErrorIs(t, err, ErrInsufficientData)
	_, err = Normality([]float64{2, 2, 2, 2, 2, 2, 2, 2, 2})
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestSummarizeResiduals(t *testing.T) {
	res := autocorrelatedFit(t, 0)
	sum, err := SummarizeResiduals(res)
	require.NoError(t, err)
	assert.Equal(t, 300, sum.NObs)
	assert.InDelta(t, 0, sum.Mean, 1e-9)
	assert.Less(t, sum.Min, sum.Max)
	require.NotNil(t, sum.Normality)
}

func TestCorrelation(t *testing.T) {
	a := []float64{1, 2, 3, 4, 5, 6}
	b := []float64{2, 4, 6, 8, 10, 12}
	c := []float64{6, 5, 4, 3, 2, 1}
	cube := []float64{1, 8, 27, 64, 125, 216}

	m, err := Correlation([][]float64{a, b, c, cube}, "pearson")
	require.NoError(t, err)
	assert.InDelta(t, 1, m.At(0, 1), 1e-12)
	assert.InDelta(t, -1, m.At(0, 2), 1e-12)
	assert.Less(t, m.At(0, 3), 1.0-1e-6)

	s, err := Correlation([][]float64{a, cube}, "spearman")
	require.NoError(t, err)
	assert.InDelta(t, 1, s.At(0, 1), 1e-12)

	_, err = Correlation([][]float64{a}, "pearson")
	assert.ErrorIs(t, err, ErrInsufficientData)
	_, err = Correlation([][]float64{a, b}, "kendall")
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestRanksAverageTies(t *testing.T) {
	assert.Equal(t, []float64{1, 2.5, 2.5, 4}, ranks([]float64{10, 20, 20, 30}))
	assert.Equal(t, []float64{3, 1, 2}, ranks([]float64{9, 1, 5}))
}
