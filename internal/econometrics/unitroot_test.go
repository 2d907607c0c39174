package econometrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ar1(n int, phi float64) []float64 {
	rng := newRand()
	out := make([]float64, n)
	for i := 1; i < n; i++ {
		out[i] = phi*out[i-1] + rng.NormFloat64()
	}
	return out
}

func integrated(n, order int) []float64 {
	v := ar1(n, 0)
	for o := 0; o < order; o++ {
		for i := 1; i < n; i++ {
			v[i] += v[i-1]
		}
	}
	return v
}

func TestMackinnonP(t *testing.T) {
	assert.InDelta(t, 0.05, mackinnonP(-2.86154, "c"), 0.002)
	assert.InDelta(t, 0.05, mackinnonP(-3.41049, "ct"), 0.003)
	assert.Equal(t, 1.0, mackinnonP(3, "c"))
	assert.Equal(t, 0.0, mackinnonP(-25, "n"))
	assert.Less(t, mackinnonP(-4, "c"), mackinnonP(-2, "c"))
}

func TestMackinnonCrit(t *testing.T) {
	crit := mackinnonCrit("c", 1_000_000)
	assert.InDelta(t, -3.43035, crit["1%"], 1e-4)
	assert.InDelta(t, -2.86154, crit["5%"], 1e-4)
	assert.InDelta(t, -2.56677, crit["10%"], 1e-4)

	small := mackinnonCrit("ct", 50)
	assert.Less(t, small["1%"], small["5%"])
	assert.Less(t, small["5%"], small["10%"])
}

func TestADFStationarySeries(t *testing.T) {
	res, err := ADF(ar1(500, 0.5), DefaultADFOptions())
	require.NoError(t, err)

	assert.Less(t, res.Stat, res.Critical["1%"])
	assert.Less(t, res.PValue, 0.01)
	assert.LessOrEqual(t, res.UsedLag, int(math.Ceil(12*math.Pow(5, 0.25))))
	assert.Equal(t, 499-res.UsedLag, res.NObs)
	assert.False(t, math.IsInf(res.IC, 0))
}

func TestADFIntegratedSeries(t *testing.T) {
	for _, reg := range []string{"n", "c", "ct"} {
		opts := DefaultADFOptions()
		opts.Regression = reg
		res, err := ADF(integrated(400, 2), opts)
		require.NoError(t, err, reg)
		assert.Greater(t, res.PValue, 0.1, reg)
	}
}

func TestADFFixedLag(t *testing.T) {
	res, err := ADF(ar1(200, 0.3), ADFOptions{Regression: "c", MaxLag: 2, AutoLag: "none"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.UsedLag)
	assert.Equal(t, 197, res.NObs)

	bic, err := ADF(ar1(200, 0.3), ADFOptions{Regression: "c", MaxLag: 4, AutoLag: "BIC"})
	require.NoError(t, err)
	assert.LessOrEqual(t, bic.UsedLag, 4)
}

func TestADFErrors(t *testing.T) {
	_, err := ADF(ar1(50, 0.5), ADFOptions{Regression: "quadratic", MaxLag: -1})
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = ADF([]float64{1, 2}, DefaultADFOptions())
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, err = ADF(ar1(50, 0.5), ADFOptions{Regression: "c", MaxLag: 1, AutoLag: "HQIC"})
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestKPSSHandComputed(t *testing.T) {
	// Residuals -2..2, partial sums -2,-3,-3,-2,0: eta = 26/25, s² = 2.
	res, err := KPSS([]float64{1, 2, 3, 4, 5}, "c", "0")
	require.NoError(t, err)
	assert.InDelta(t, 0.52, res.Stat, 1e-12)
	assert.Equal(t, 0, res.Lags)
	assert.InDelta(t, 0.05-(0.52-0.463)/(0.574-0.463)*0.025, res.PValue, 1e-12)
	assert.Equal(t, 0.463, res.Critical["5%"])
}

func TestKPSS(t *testing.T) {
	stationary, err := KPSS(ar1(500, 0.2), "c", "auto")
	require.NoError(t, err)
	assert.Greater(t, stationary.PValue, 0.01)
	assert.Less(t, stationary.Lags, 500)

	trending, err := KPSS(integrated(500, 2), "c", "legacy")
	require.NoError(t, err)
	assert.Equal(t, 0.01, trending.PValue)
	assert.Equal(t, int(math.Ceil(12*math.Pow(5, 0.25))), trending.Lags)

	ct, err := KPSS(ar1(300, 0.2), "ct", "auto")
	require.NoError(t, err)
	assert.Equal(t, 0.146, ct.Critical["5%"])
}

func TestKPSSErrors(t *testing.T) {
	_, err := KPSS(ar1(20, 0), "n", "auto")
	assert.ErrorIs(t, err, ErrUnsupported)
	_, err = KPSS(ar1(20, 0), "c", "20")
	assert.ErrorIs(t, err, ErrInsufficientData)
	_, err = KPSS(ar1(20, 0), "c", "many")
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestInterpolateClamps(t *testing.T) {
	xs := []float64{1, 2, 3}
	ys := []float64{10, 20, 40}
	assert.Equal(t, 10.0, interpolate(0, xs, ys))
	assert.Equal(t, 40.0, interpolate(9, xs, ys))
	assert.InDelta(t, 30.0, interpolate(2.5, xs, ys), 1e-12)
}

func TestRoot(t *testing.T) {
	res, err := Root(ar1(300, 0.3), DefaultADFOptions(), "auto")
	require.NoError(t, err)
	require.NotNil(t, res.ADF)
	require.NotNil(t, res.KPSS)
	assert.Less(t, res.ADF.PValue, 0.05)

	opts := ADFOptions{Regression: "ct", MaxLag: 4, AutoLag: "BIC"}
	res, err = Root(ar1(300, 0.3), opts, "legacy")
	require.NoError(t, err)
	assert.LessOrEqual(t, res.ADF.UsedLag, 4)
	assert.Equal(t, 16, res.KPSS.Lags)

	res, err = Root(ar1(300, 0.3), ADFOptions{Regression: "n", MaxLag: -1, AutoLag: "AIC"}, "auto")
	require.NoError(t, err)
	assert.Nil(t, res.KPSS)

	_, err = Root(ar1(300, 0.3), ADFOptions{Regression: "x"}, "auto")
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestKPSSConstantSeries(t *testing.T) {
	flat := make([]float64, 50)
	for i := range flat {
		flat[i] = 0.1
	}
	for _, reg := range []string{"c", "ct"} {
		_, err := KPSS(flat, reg, "auto")
		assert.ErrorIs(t, err, ErrInsufficientData, reg)
	}
	assert.Equal(t, 0, kpssAutoLag(make([]float64, 50)))
}
