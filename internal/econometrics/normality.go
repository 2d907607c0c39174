package econometrics

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// StatTest is a named statistic with its p-value.
type StatTest struct {
	Stat   float64 `json:"stat"`
	PValue float64 `json:"p_value"`
}

// NormalityResult collects moment-based normality tests.
type NormalityResult struct {
	NObs     int      `json:"nobs"`
	Skew     float64  `json:"skew"`
	Kurtosis float64  `json:"kurtosis"` // Pearson, 3 for a normal
	SkewTest StatTest `json:"skew_test"`
	KurtTest StatTest `json:"kurtosis_test"`
	Omnibus  StatTest `json:"omnibus"` // D'Agostino-Pearson K²
	JB       StatTest `json:"jarque_bera"`
}

// Normality tests x (NaNs dropped) against the normal distribution. The
// kurtosis and omnibus tests need at least 20 observations and report NaN
// below that.
func Normality(x []float64) (*NormalityResult, error) {
	x = dropNaN(x)
	n := len(x)
	if n < 8 {
		return nil, fmt.Errorf("normality: %d observations, need 8: %w", n, ErrInsufficientData)
	}
	m2 := stat.Moment(2, x, nil)
	if m2 == 0 {
		return nil, fmt.Errorf("normality: constant series: %w", ErrInsufficientData)
	}
	s := stat.Moment(3, x, nil) / math.Pow(m2, 1.5)
	k := stat.Moment(4, x, nil) / (m2 * m2)
	nf := float64(n)

	out := &NormalityResult{NObs: n, Skew: s, Kurtosis: k}
	zs := skewZ(s, nf)
	out.SkewTest = StatTest{zs, twoSided(zs)}

	nan := StatTest{math.NaN(), math.NaN()}
	out.KurtTest, out.Omnibus = nan, nan
	if n >= 20 {
		zk := kurtosisZ(k, nf)
		out.KurtTest = StatTest{zk, twoSided(zk)}
		k2 := zs*zs + zk*zk
		out.Omnibus = StatTest{k2, distuv.ChiSquared{K: 2}.Survival(k2)}
	}

	jb := nf / 6 * (s*s + (k-3)*(k-3)/4)
	out.JB = StatTest{jb, distuv.ChiSquared{K: 2}.Survival(jb)}
	return out, nil
}

func twoSided(z float64) float64 { return 2 * distuv.UnitNormal.Survival(math.Abs(z)) }

// skewZ is D'Agostino's transformation of the sample skewness.
func skewZ(b, n float64) float64 {
	y := b * math.Sqrt((n+1)*(n+3)/(6*(n-2)))
	beta2 := 3 * (n*n + 27*n - 70) * (n + 1) * (n + 3) / ((n - 2) * (n + 5) * (n + 7) * (n + 9))
	w2 := -1 + math.Sqrt(2*(beta2-1))
	delta := 1 / math.Sqrt(0.5*math.Log(w2))
	alpha := math.Sqrt(2 / (w2 - 1))
	if y == 0 {
		y = 1
	}
	return delta * math.Log(y/alpha+math.Sqrt((y/alpha)*(y/alpha)+1))
}

// kurtosisZ is the Anscombe-Glynn transformation of the sample kurtosis.
func kurtosisZ(b, n float64) float64 {
	e := 3 * (n - 1) / (n + 1)
	varb := 24 * n * (n - 2) * (n - 3) / ((n + 1) * (n + 1) * (n + 3) * (n + 5))
	x := (b - e) / math.Sqrt(varb)
	sqrtBeta1 := 6 * (n*n - 5*n + 2) / ((n + 7) * (n + 9)) * math.Sqrt(6*(n+3)*(n+5)/(n*(n-2)*(n-3)))
	a := 6 + 8/sqrtBeta1*(2/sqrtBeta1+math.Sqrt(1+4/(sqrtBeta1*sqrtBeta1)))
	term1 := 1 - 2/(9*a)
	denom := 1 + x*math.Sqrt(2/(a-4))
	if denom == 0 {
		return math.NaN()
	}
	term2 := math.Copysign(math.Cbrt((1-2/a)/math.Abs(denom)), denom)
	return (term1 - term2) / math.Sqrt(2/(9*a))
}

func stdDev(v []float64) float64 { return stat.StdDev(v, nil) }

// Correlation returns the pairwise correlation matrix of the columns,
// using rows complete in every column. method is "pearson" or "spearman".
func Correlation(cols [][]float64, method string) (*mat.SymDense, error) {
	if len(cols) < 2 {
		return nil, fmt.Errorf("corr: need at least two columns: %w", ErrInsufficientData)
	}
	for _, c := range cols[1:] {
		if len(c) != len(cols[0]) {
			return nil, fmt.Errorf("corr: %w", ErrLengthMismatch)
		}
	}
	keep := completeRows(cols)
	if len(keep) < 3 {
		return nil, fmt.Errorf("corr: %d complete rows: %w", len(keep), ErrInsufficientData)
	}

	data := mat.NewDense(len(keep), len(cols), nil)
	for j, c := range cols {
		v := pick(c, keep)
		switch method {
		case "", "pearson":
		case "spearman":
			v = ranks(v)
		default:
			return nil, fmt.Errorf("corr: method %q: %w", method, ErrUnsupported)
		}
		data.SetCol(j, v)
	}
	var out mat.SymDense
	stat.CorrelationMatrix(&out, data, nil)
	return &out, nil
}

// ranks assigns 1-based ranks, averaging ties.
func ranks(v []float64) []float64 {
	idx := make([]int, len(v))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return v[idx[a]] < v[idx[b]] })
	out := make([]float64, len(v))
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && v[idx[j+1]] == v[idx[i]] {
			j++
		}
		r := float64(i+j)/2 + 1
		for t := i; t <= j; t++ {
			out[idx[t]] = r
		}
		i = j + 1
	}
	return out
}
