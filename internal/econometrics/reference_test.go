package econometrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Longley (1967) employment data with the NIST StRD certified values.
var longley = struct {
	y                      []float64
	def, gnp, unemp, armed []float64
	pop, year              []float64
}{
	y:     []float64{60323, 61122, 60171, 61187, 63221, 63639, 64989, 63761, 66019, 67857, 68169, 66513, 68655, 69564, 69331, 70551},
	def:   []float64{83, 88.5, 88.2, 89.5, 96.2, 98.1, 99, 100, 101.2, 104.6, 108.4, 110.8, 112.6, 114.2, 115.7, 116.9},
	gnp:   []float64{234289, 259426, 258054, 284599, 328975, 346999, 365385, 363112, 397469, 419180, 442769, 444546, 482704, 502601, 518173, 554894},
	unemp: []float64{2356, 2325, 3682, 3351, 2099, 1932, 1870, 3578, 2904, 2822, 2936, 4681, 3813, 3931, 4806, 4007},
	armed: []float64{1590, 1456, 1616, 1650, 3099, 3594, 3547, 3350, 3048, 2857, 2798, 2637, 2552, 2514, 2572, 2827},
	pop:   []float64{107608, 108632, 109773, 110929, 112075, 113270, 115094, 116219, 117388, 118734, 120445, 121950, 123366, 125368, 127852, 130081},
	year:  []float64{1947, 1948, 1949, 1950, 1951, 1952, 1953, 1954, 1955, 1956, 1957, 1958, 1959, 1960, 1961, 1962},
}

type refCoef struct {
	name      string
	value, se float64
}

func assertCoefs(t *testing.T, res *Result, want []refCoef, rel float64) {
	t.Helper()
	require.Len(t, res.Coefs, len(want))
	for i, w := range want {
		got := res.Coefs[i]
		assert.Equal(t, w.name, got.Name)
		assert.InEpsilon(t, w.value, got.Value, rel, "%s value", w.name)
		assert.InEpsilon(t, w.se, got.StdErr, rel, "%s std err", w.name)
	}
}

func TestOLSLongleyCertified(t *testing.T) {
	l := longley
	res, err := OLS(l.y,
		[][]float64{l.def, l.gnp, l.unemp, l.armed, l.pop, l.year}, "employed",
		[]string{"def", "gnp", "unemp", "armed", "pop", "year"}, CovUnadjusted)
	require.NoError(t, err)

	assertCoefs(t, res, []refCoef{
		{"const", -3482258.63459582, 890420.383607373},
		{"def", 15.0618722713733, 84.9149257747669},
		{"gnp", -0.358191792925910e-01, 0.334910077722432e-01},
		{"unemp", -2.02022980381683, 0.488399681651699},
		{"armed", -1.03322686717359, 0.214274163161675},
		{"pop", -0.511041056535807e-01, 0.226073200069370},
		{"year", 1829.15146461355, 455.478499142212},
	}, 1e-6)
	assert.InDelta(t, 0.995479004577296, res.RSquared, 1e-9)
	assert.InEpsilon(t, 836424.055505915, res.SSR, 1e-6)
	assert.Equal(t, 9, res.DFResid)
}

// refPanel is a balanced 4x5 panel. The expected values below come from
// exact rational arithmetic: FE as least squares on entity dummies, FD on
// explicit differences, BE on entity means and RE as least squares on the
// Swamy-Arora quasi-demeaned data.
func refPanel() PanelData {
	type firm struct{ x1, x2, y []float64 }
	firms := []struct {
		name string
		firm
	}{
		{"a", firm{[]float64{3, 5, 4, 7, 9}, []float64{1, 0, 2, 1, 3}, []float64{10, 14, 13, 19, 24}}},
		{"b", firm{[]float64{6, 8, 7, 10, 12}, []float64{2, 2, 1, 3, 2}, []float64{20, 25, 22, 29, 33}}},
		{"c", firm{[]float64{1, 2, 4, 3, 5}, []float64{0, 1, 1, 2, 2}, []float64{4, 7, 10, 10, 14}}},
		{"d", firm{[]float64{9, 8, 11, 12, 14}, []float64{3, 2, 4, 4, 5}, []float64{30, 28, 35, 37, 42}}},
	}
	p := PanelData{YName: "y", XNames: []string{"x1", "x2"}, X: make([][]float64, 2)}
	for _, f := range firms {
		for t := range f.y {
			p.Entity = append(p.Entity, f.name)
			p.Period = append(p.Period, float64(2001+t))
			p.Y = append(p.Y, f.y[t])
			p.X[0] = append(p.X[0], f.x1[t])
			p.X[1] = append(p.X[1], f.x2[t])
		}
	}
	return p
}

func TestPanelReferenceValues(t *testing.T) {
	tests := []struct {
		kind ModelKind
		want []refCoef
	}{
		{KindPOLS, []refCoef{
			{"const", 0.6767013444855355, 0.9184592084288101},
			{"x1", 2.694777589603567, 0.198864039808102},
			{"x2", 0.8584661113607299, 0.5521351632234842},
		}},
		{KindFE, []refCoef{
			{"const", 5.401042238069117, 0},
			{"x1", 2.1080636313768513, 0.062155831951965564},
			{"x2", 0.5573230938014262, 0.14188049031685218},
		}},
		{KindBOLS, []refCoef{
			{"const", -1.4878194490540988, 0.5299158528283089},
			{"x1", 2.7382453811262306, 0.16675688621676532},
			{"x2", 1.7659033078880406, 0.5233055160648561},
		}},
		{KindFDOLS, []refCoef{
			{"x1", 2.054355919583023, 0.08599147310633241},
			{"x2", 0.5167535368577811, 0.13709281227615208},
		}},
		{KindRE, []refCoef{
			{"const", 3.3275114240269343, 1.0313829856481573},
			{"x1", 2.3846684679176673, 0.1693390977927221},
			{"x2", 0.624297219780192, 0.4173924478902944},
		}},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			res, err := Panel(tt.kind, refPanel(), PanelOptions{})
			require.NoError(t, err)
			require.Len(t, res.Coefs, len(tt.want))
			for i, w := range tt.want {
				got := res.Coefs[i]
				assert.Equal(t, w.name, got.Name)
				assert.InDelta(t, w.value, got.Value, 1e-9, w.name)
				if w.se != 0 {
					assert.InDelta(t, w.se, got.StdErr, 1e-9, "%s std err", w.name)
				}
			}
		})
	}

	re, err := Panel(KindRE, refPanel(), PanelOptions{})
	require.NoError(t, err)
	assert.InDelta(t, 0.1668051093174516, re.Extras["sigma2_eps"], 1e-12)
	assert.InDelta(t, 0.13656928016106992, re.Extras["sigma2_u"], 1e-12)
	assert.InDelta(t, 0.556917846582441, re.Extras["theta"], 1e-12)
}

// The reference statistics are t-ratios from exact rational least squares
// on the ADF regression with a fixed lag length.
func TestADFReferenceStatistic(t *testing.T) {
	x := []float64{10, 12, 11, 14, 13, 15, 17, 16, 18, 17, 20, 19, 21, 24, 22, 23, 26, 25, 27, 29, 28, 30, 29, 32, 31}
	tests := []struct {
		regression string
		lag        int
		stat       float64
		nobs       int
	}{
		{"c", 1, -0.231381136701, 23},
		{"ct", 1, -5.076268146852, 23},
		{"c", 2, -0.572876725945, 22},
	}
	for _, tt := range tests {
		res, err := ADF(x, ADFOptions{Regression: tt.regression, MaxLag: tt.lag, AutoLag: "none"})
		require.NoError(t, err)
		assert.Equal(t, tt.lag, res.UsedLag)
		assert.Equal(t, tt.nobs, res.NObs)
		assert.InDelta(t, tt.stat, res.Stat, 1e-9, "%s lag %d", tt.regression, tt.lag)
	}
}
