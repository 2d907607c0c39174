package econometrics

import "fmt"

// EngleGrangerResult is the outcome of the two-step cointegration test.
type EngleGrangerResult struct {
	Constant float64   `json:"constant"`
	Gamma    float64   `json:"gamma"`
	Alpha    float64   `json:"alpha"` // speed of adjustment
	Z        []float64 `json:"-"`     // long-run residual
	ADFStat  float64   `json:"adf"`
	PValue   float64   `json:"p_value"`
}

// EngleGranger estimates y = c + γx + z, then the speed of adjustment α in
// Δy_t = α z_{t-1} + ε_t, and tests z for a unit root (ADF with a constant
// and one lag).
//
// The p-value uses the single-series Dickey-Fuller distribution, which
// overstates significance for an estimated residual; treat it as a guide.
func EngleGranger(y, x []float64) (*EngleGrangerResult, error) {
	if len(y) != len(x) {
		return nil, fmt.Errorf("coint: %w", ErrLengthMismatch)
	}
	keep := completeRows([][]float64{y, x})
	y, x = pick(y, keep), pick(x, keep)

	long, err := fit(newDesign(y, [][]float64{x}, []string{"x"}, true), CovUnadjusted)
	if err != nil {
		return nil, fmt.Errorf("coint: long run: %w", err)
	}
	z := long.Residuals

	dy := make([]float64, len(y)-1)
	zLag := make([]float64, len(y)-1)
	for i := range dy {
		dy[i] = y[i+1] - y[i]
		zLag[i] = z[i]
	}
	short, err := fit(newDesign(dy, [][]float64{zLag}, []string{"z_lag"}, false), CovUnadjusted)
	if err != nil {
		return nil, fmt.Errorf("coint: short run: %w", err)
	}

	adf, err := ADF(z, ADFOptions{Regression: "c", MaxLag: 1, AutoLag: "none"})
	if err != nil {
		return nil, fmt.Errorf("coint: %w", err)
	}
	return &EngleGrangerResult{
		Constant: long.Coefs[0].Value,
		Gamma:    long.Coefs[1].Value,
		Alpha:    short.Coefs[0].Value,
		Z:        z,
		ADFStat:  adf.Stat,
		PValue:   adf.PValue,
	}, nil
}
