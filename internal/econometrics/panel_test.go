package econometrics

import (
	"fmt"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syntheticPanel builds y = α_i + δ_t + 1.5·x + ε with x correlated with the
// entity effect α_i = i. Rows are shuffled to check the estimators sort.
func syntheticPanel(entities, periods int, timeShift float64) PanelData {
	rng := newRand()
	var p PanelData
	x := make([]float64, 0, entities*periods)
	for i := 0; i < entities; i++ {
		for t := 0; t < periods; t++ {
			alpha := float64(i)
			xv := alpha + rng.NormFloat64()
			p.Entity = append(p.Entity, fmt.Sprintf("e%02d", i))
			p.Period = append(p.Period, float64(2000+t))
			p.Y = append(p.Y, alpha+timeShift*float64(t)+1.5*xv+0.1*rng.NormFloat64())
			x = append(x, xv)
		}
	}
	p.X = [][]float64{x}
	p.YName, p.XNames = "y", []string{"x"}

	n := len(p.Y)
	for i := n - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		p.Entity[i], p.Entity[j] = p.Entity[j], p.Entity[i]
		p.Period[i], p.Period[j] = p.Period[j], p.Period[i]
		p.Y[i], p.Y[j] = p.Y[j], p.Y[i]
		x[i], x[j] = x[j], x[i]
	}
	return p
}

func slope(t *testing.T, res *Result) float64 {
	t.Helper()
	c, ok := res.Coef("x")
	require.True(t, ok)
	return c.Value
}

func TestFixedEffectsRemovesEntityBias(t *testing.T) {
	data := syntheticPanel(20, 10, 0)

	fe, err := Panel(KindFE, data, PanelOptions{})
	require.NoError(t, err)
	assert.Equal(t, KindFE, fe.Kind)
	assert.InDelta(t, 1.5, slope(t, fe), 0.05)
	assert.Equal(t, 200, fe.NObs)
	assert.Equal(t, 200-2-19, fe.DFResid)
	assert.Equal(t, 20.0, fe.Extras["entities"])

	pols, err := Panel(KindPOLS, data, PanelOptions{})
	require.NoError(t, err)
	assert.Greater(t, slope(t, pols), 2.0, "pooled OLS absorbs the entity effect into the slope")
}

func TestFixedEffectsWithTimeEffects(t *testing.T) {
	data := syntheticPanel(20, 10, 0.5)

	fe, err := Panel(KindFE, data, PanelOptions{TimeEffects: true})
	require.NoError(t, err)
	assert.InDelta(t, 1.5, slope(t, fe), 0.05)
	assert.Equal(t, 200-2-19-9, fe.DFResid)
	assert.Equal(t, 1.0, fe.Extras["time_effects"])
}

func TestFirstDifferenceAndBetween(t *testing.T) {
	data := syntheticPanel(20, 10, 0)

	fd, err := Panel(KindFDOLS, data, PanelOptions{})
	require.NoError(t, err)
	assert.Equal(t, 20*9, fd.NObs)
	assert.InDelta(t, 1.5, slope(t, fd), 0.1)
	_, hasConst := fd.Coef("const")
	assert.False(t, hasConst)

	be, err := Panel(KindBOLS, data, PanelOptions{})
	require.NoError(t, err)
	assert.Equal(t, 20, be.NObs)
}

func TestFirstDifferenceSkipsGaps(t *testing.T) {
	// a misses period 3; its 2->4 change breaks y = 2x and must not be used.
	data := PanelData{
		Entity: []string{"a", "a", "a", "b", "b", "b", "b"},
		Period: []float64{1, 2, 4, 1, 2, 3, 4},
		X:      [][]float64{{1, 2, 5, 1, 3, 4, 8}},
		Y:      []float64{2, 4, 40, 2, 6, 8, 16},
		YName:  "y",
		XNames: []string{"x"},
	}

	fd, err := Panel(KindFDOLS, data, PanelOptions{})
	require.NoError(t, err)
	assert.Equal(t, 4, fd.NObs)
	assert.InDelta(t, 2.0, slope(t, fd), 1e-9)
	assert.Equal(t, 1.0, fd.Extras["gaps"])

	// A row lost to a missing value leaves a gap too.
	data.Y[5] = math.NaN()
	fd, err = Panel(KindFDOLS, data, PanelOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, fd.NObs)
	assert.InDelta(t, 2.0, slope(t, fd), 1e-9)
	assert.Equal(t, 2.0, fd.Extras["gaps"])
}

func TestRandomEffectsDiagnosticsUseOnes(t *testing.T) {
	data := syntheticPanel(20, 10, 0)
	re, err := Panel(KindRE, data, PanelOptions{})
	require.NoError(t, err)

	x, err := designOf(re)
	require.NoError(t, err)
	n, k := x.Dims()
	require.Equal(t, 2, k, "balanced panel: the quasi-demeaned constant is a multiple of ones")
	for i := 0; i < n; i++ {
		require.Equal(t, 1.0, x.At(i, 0))
	}

	e2 := make([]float64, n)
	for i, e := range re.Residuals {
		e2[i] = e * e
	}
	aux, err := OLS(e2, [][]float64{mat.Col(nil, 1, re.x)}, "e2", []string{"x"}, CovUnadjusted)
	require.NoError(t, err)
	bp, err := BreuschPagan(re)
	require.NoError(t, err)
	assert.InDelta(t, float64(n)*aux.RSquared, bp.LM, 1e-9)
	assert.Equal(t, 1, bp.DFChi2)

	data.Y[0] = math.NaN()
	re, err = Panel(KindRE, data, PanelOptions{})
	require.NoError(t, err)
	x, err = designOf(re)
	require.NoError(t, err)
	_, k = x.Dims()
	assert.Equal(t, 3, k, "unbalanced: ones plus the varying quasi-demeaned constant")
}

func TestRandomEffectsVarianceComponents(t *testing.T) {
	data := syntheticPanel(20, 10, 0)

	re, err := Panel(KindRE, data, PanelOptions{Cov: CovRobust})
	require.NoError(t, err)
	assert.Equal(t, KindRE, re.Kind)
	assert.InDelta(t, 0.01, re.Extras["sigma2_eps"], 0.004)
	assert.Greater(t, re.Extras["theta"], 0.0)
	assert.Less(t, re.Extras["theta"], 1.0)
	assert.GreaterOrEqual(t, re.Extras["sigma2_u"], 0.0)
	assert.Equal(t, CovRobust, re.CovType)
	require.Len(t, re.Coefs, 2)
}

func TestPanelErrors(t *testing.T) {
	data := syntheticPanel(2, 5, 0)

	_, err := Panel("GMM", data, PanelOptions{})
	assert.ErrorIs(t, err, ErrUnsupported)

	single := data
	single.Entity = make([]string, len(data.Y))
	for i := range single.Entity {
		single.Entity[i] = "only"
	}
	_, err = Panel(KindFE, single, PanelOptions{})
	assert.ErrorIs(t, err, ErrNotPanel)

	short := data
	short.Period = data.Period[:3]
	_, err = Panel(KindPOLS, short, PanelOptions{})
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestSweepTwoWayZeroesMeans(t *testing.T) {
	// Unbalanced: entity b misses period 2.
	entity := []string{"a", "a", "a", "b", "b"}
	period := []string{"1", "2", "3", "1", "3"}
	v := []float64{1, 4, 2, 7, 3}

	out := sweep(v, groupRows(entity), groupRows(period), true)
	for _, m := range groupMeans(out, groupRows(entity)) {
		assert.InDelta(t, 0, m, 1e-9)
	}
	for _, m := range groupMeans(out, groupRows(period)) {
		assert.InDelta(t, 0, m, 1e-9)
	}
}
