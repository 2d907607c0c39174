package econometrics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// CovType selects the coefficient covariance estimator.
type CovType string

const (
	CovUnadjusted CovType = "unadjusted"
	CovRobust     CovType = "robust" // White HC1
)

// ParseCovType accepts "unadjusted"/"homoskedastic" and "robust"/"hc1".
func ParseCovType(s string) (CovType, error) {
	switch s {
	case "", "unadjusted", "homoskedastic", "nonrobust":
		return CovUnadjusted, nil
	case "robust", "hc1", "heteroskedastic":
		return CovRobust, nil
	}
	return "", fmt.Errorf("covariance %q: %w", s, ErrUnsupported)
}

// Coefficient is one estimated parameter.
type Coefficient struct {
	Name   string  `json:"name"`
	Value  float64 `json:"value"`
	StdErr float64 `json:"std_err"`
	T      float64 `json:"t"`
	P      float64 `json:"p"`
	Lower  float64 `json:"ci_lower"` // 95%
	Upper  float64 `json:"ci_upper"`
}

// Result is a fitted linear model.
type Result struct {
	Kind        ModelKind     `json:"kind"`
	Dependent   string        `json:"dependent"`
	Independent []string      `json:"independent"`
	Coefs       []Coefficient `json:"coefficients"`
	CovType     CovType       `json:"cov_type"`

	NObs        int     `json:"nobs"`
	DFModel     int     `json:"df_model"`
	DFResid     int     `json:"df_resid"`
	RSquared    float64 `json:"r_squared"`
	AdjRSquared float64 `json:"adj_r_squared"`
	FStat       float64 `json:"f_stat"`
	FPValue     float64 `json:"f_pvalue"`
	LogLik      float64 `json:"log_likelihood"`
	AIC         float64 `json:"aic"`
	BIC         float64 `json:"bic"`
	SSR         float64 `json:"ssr"`

	Residuals []float64 `json:"-"`
	Fitted    []float64 `json:"-"`

	// Extras carries estimator-specific figures such as variance
	// components of the random effects model.
	Extras map[string]float64 `json:"extras,omitempty"`

	y        []float64
	x        *mat.Dense
	hasConst bool
	// quasiConst marks a first column that stands in for the constant
	// without being a column of ones (random effects).
	quasiConst bool
	cov        *mat.Dense
}

// Coef returns the named coefficient.
func (r *Result) Coef(name string) (Coefficient, bool) {
	for _, c := range r.Coefs {
		if c.Name == name {
			return c, true
		}
	}
	return Coefficient{}, false
}

// design is a regression problem: y on the columns of x.
type design struct {
	y        []float64
	x        *mat.Dense
	names    []string
	hasConst bool
	absorbed int // parameters swept out before fitting, e.g. entity means
}

// newDesign builds a design from column vectors, prepending a constant when
// addConst is set.
func newDesign(y []float64, cols [][]float64, names []string, addConst bool) design {
	n := len(y)
	k := len(cols)
	off := 0
	if addConst {
		k++
		off = 1
		names = append([]string{"const"}, names...)
	}
	x := mat.NewDense(n, max(k, 1), nil)
	for i := 0; i < n; i++ {
		if addConst {
			x.Set(i, 0, 1)
		}
		for j, c := range cols {
			x.Set(i, j+off, c[i])
		}
	}
	return design{y: y, x: x, names: names, hasConst: addConst}
}

// fit estimates the design by least squares.
func fit(d design, cov CovType) (*Result, error) {
	n, k := d.x.Dims()
	dfResid := n - k - d.absorbed
	if dfResid <= 0 {
		return nil, fmt.Errorf("%d observations for %d parameters: %w", n, k+d.absorbed, ErrInsufficientData)
	}

	xtxInv, err := gramInverse(d.x)
	if err != nil {
		return nil, err
	}
	yv := mat.NewVecDense(n, d.y)
	var xty, beta mat.VecDense
	xty.MulVec(d.x.T(), yv)
	beta.MulVec(xtxInv, &xty)

	var fittedV mat.VecDense
	fittedV.MulVec(d.x, &beta)
	fitted := make([]float64, n)
	resid := make([]float64, n)
	ssr := 0.0
	for i := 0; i < n; i++ {
		fitted[i] = fittedV.AtVec(i)
		resid[i] = d.y[i] - fitted[i]
		ssr += resid[i] * resid[i]
	}

	var covB *mat.Dense
	switch cov {
	case CovRobust:
		covB = hc1(d.x, resid, xtxInv, dfResid)
	default:
		covB = mat.NewDense(k, k, nil)
		covB.Scale(ssr/float64(dfResid), xtxInv)
	}

	res := &Result{
		CovType:   cov,
		NObs:      n,
		DFResid:   dfResid,
		SSR:       ssr,
		Residuals: resid,
		Fitted:    fitted,
		y:         d.y,
		x:         d.x,
		hasConst:  d.hasConst,
		cov:       covB,
	}

	tdist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(dfResid)}
	tcrit := tdist.Quantile(0.975)
	res.Coefs = make([]Coefficient, k)
	for j := 0; j < k; j++ {
		b := beta.AtVec(j)
		se := math.Sqrt(covB.At(j, j))
		t := b / se
		res.Coefs[j] = Coefficient{
			Name:   d.names[j],
			Value:  b,
			StdErr: se,
			T:      t,
			P:      2 * tdist.Survival(math.Abs(t)),
			Lower:  b - tcrit*se,
			Upper:  b + tcrit*se,
		}
	}

	// R² is centred when the model has a constant.
	tss := 0.0
	kConst := 0
	if d.hasConst {
		kConst = 1
		m := mean(d.y)
		for _, v := range d.y {
			tss += (v - m) * (v - m)
		}
	} else {
		for _, v := range d.y {
			tss += v * v
		}
	}
	res.RSquared = 1 - ssr/tss
	res.AdjRSquared = 1 - float64(n-kConst)/float64(dfResid)*(1-res.RSquared)
	res.DFModel = k - kConst

	res.FStat, res.FPValue = math.NaN(), math.NaN()
	if res.DFModel > 0 {
		idx := make([]int, 0, res.DFModel)
		for j := kConst; j < k; j++ {
			idx = append(idx, j)
		}
		res.FStat, res.FPValue, _ = waldF(&beta, covB, idx, dfResid)
	}

	nf := float64(n)
	res.LogLik = -nf / 2 * (math.Log(2*math.Pi) + math.Log(ssr/nf) + 1)
	res.AIC = -2*res.LogLik + 2*float64(k)
	res.BIC = -2*res.LogLik + math.Log(nf)*float64(k)
	return res, nil
}

// gramInverse returns (X'X)^-1, failing on rank-deficient designs. The
// columns are scaled to unit length before factorizing so the condition
// check measures collinearity, not units.
func gramInverse(x *mat.Dense) (*mat.Dense, error) {
	n, k := x.Dims()
	norms := make([]float64, k)
	xs := mat.NewDense(n, k, nil)
	for j := 0; j < k; j++ {
		col := mat.Col(nil, j, x)
		norms[j] = floats.Norm(col, 2)
		if norms[j] == 0 {
			return nil, ErrSingularMatrix
		}
		floats.Scale(1/norms[j], col)
		xs.SetCol(j, col)
	}
	var xtx mat.SymDense
	xtx.SymOuterK(1, xs.T())

	var chol mat.Cholesky
	if ok := chol.Factorize(&xtx); !ok {
		return nil, ErrSingularMatrix
	}
	if c := chol.Cond(); math.IsInf(c, 0) || c > 1e14 {
		return nil, ErrSingularMatrix
	}
	var inv mat.SymDense
	if err := chol.InverseTo(&inv); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingularMatrix, err)
	}
	out := mat.NewDense(k, k, nil)
	for a := 0; a < k; a++ {
		for b := 0; b < k; b++ {
			out.Set(a, b, inv.At(a, b)/(norms[a]*norms[b]))
		}
	}
	return out, nil
}

// hc1 is White's heteroskedasticity-consistent covariance scaled by
// n/(n-k).
func hc1(x *mat.Dense, resid []float64, xtxInv *mat.Dense, dfResid int) *mat.Dense {
	n, k := x.Dims()
	meat := mat.NewDense(k, k, nil)
	row := make([]float64, k)
	for i := 0; i < n; i++ {
		mat.Row(row, i, x)
		e2 := resid[i] * resid[i]
		for a := 0; a < k; a++ {
			for b := 0; b < k; b++ {
				meat.Set(a, b, meat.At(a, b)+e2*row[a]*row[b])
			}
		}
	}
	var tmp, cov mat.Dense
	tmp.Mul(xtxInv, meat)
	cov.Mul(&tmp, xtxInv)
	cov.Scale(float64(n)/float64(dfResid), &cov)
	return &cov
}

// waldF tests that the coefficients at idx are jointly zero.
func waldF(beta *mat.VecDense, cov *mat.Dense, idx []int, dfResid int) (f, p float64, err error) {
	q := len(idx)
	rb := mat.NewVecDense(q, nil)
	rv := mat.NewDense(q, q, nil)
	for a, i := range idx {
		rb.SetVec(a, beta.AtVec(i))
		for b, j := range idx {
			rv.Set(a, b, cov.At(i, j))
		}
	}
	var inv mat.Dense
	if err := inv.Inverse(rv); err != nil {
		return math.NaN(), math.NaN(), fmt.Errorf("%w: %v", ErrSingularMatrix, err)
	}
	var tmp mat.VecDense
	tmp.MulVec(&inv, rb)
	f = mat.Dot(rb, &tmp) / float64(q)
	fd := distuv.F{D1: float64(q), D2: float64(dfResid)}
	return f, fd.Survival(f), nil
}

// wald tests that the coefficients at idx are jointly zero.
func (r *Result) wald(idx []int) (f, p float64, err error) {
	beta := mat.NewVecDense(len(r.Coefs), nil)
	for i, c := range r.Coefs {
		beta.SetVec(i, c.Value)
	}
	return waldF(beta, r.cov, idx, r.DFResid)
}

// OLS regresses y on x with a constant. Rows with a NaN anywhere are
// dropped first.
func OLS(y []float64, x [][]float64, yName string, xNames []string, cov CovType) (*Result, error) {
	if len(x) != len(xNames) {
		return nil, fmt.Errorf("ols: %d regressors but %d names", len(x), len(xNames))
	}
	for _, c := range x {
		if len(c) != len(y) {
			return nil, fmt.Errorf("ols: %w", ErrLengthMismatch)
		}
	}
	keep := completeRows(append([][]float64{y}, x...))
	ys := pick(y, keep)
	xs := make([][]float64, len(x))
	for j, c := range x {
		xs[j] = pick(c, keep)
	}

	res, err := fit(newDesign(ys, xs, append([]string(nil), xNames...), true), cov)
	if err != nil {
		return nil, fmt.Errorf("ols: %w", err)
	}
	res.Kind = KindOLS
	res.Dependent = yName
	res.Independent = append([]string(nil), xNames...)
	return res, nil
}

// completeRows returns the row positions where no column is NaN.
func completeRows(cols [][]float64) []int {
	if len(cols) == 0 {
		return nil
	}
	keep := make([]int, 0, len(cols[0]))
rows:
	for i := range cols[0] {
		for _, c := range cols {
			if math.IsNaN(c[i]) || math.IsInf(c[i], 0) {
				continue rows
			}
		}
		keep = append(keep, i)
	}
	return keep
}

func pick(v []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = v[j]
	}
	return out
}

func mean(v []float64) float64 { return stat.Mean(v, nil) }
