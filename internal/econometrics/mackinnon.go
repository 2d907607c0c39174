package econometrics

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// MacKinnon (1994) response-surface coefficients for the single-series
// Dickey-Fuller distribution, keyed by deterministic terms.
type tauSurface struct {
	max, min, star float64
	small          [3]float64 // ascending powers of the statistic
	large          [4]float64
}

var tauSurfaces = map[string]tauSurface{
	"n": {
		max: math.Inf(1), min: -19.04, star: -1.04,
		small: [3]float64{0.6344, 1.2378, 3.2496e-2},
		large: [4]float64{0.4797, 9.3557e-1, -0.6999e-1, 3.3066e-2},
	},
	"c": {
		max: 2.74, min: -18.83, star: -1.61,
		small: [3]float64{2.1659, 1.4412, 3.8269e-2},
		large: [4]float64{1.7339, 9.3202e-1, -1.2745e-1, -1.0368e-2},
	},
	"ct": {
		max: 0.7, min: -16.18, star: -2.89,
		small: [3]float64{3.2512, 1.6047, 4.9588e-2},
		large: [4]float64{2.5261, 6.1654e-1, -3.7956e-1, -6.0285e-2},
	},
}

// MacKinnon (2010) finite-sample critical values: b0 + b1/n + b2/n² + b3/n³
// for the 1%, 5% and 10% levels.
var tauCritical = map[string][3][4]float64{
	"n": {
		{-2.56574, -2.2358, -3.627, 0},
		{-1.94100, -0.2686, -3.365, 31.223},
		{-1.61682, 0.2656, -2.714, 25.364},
	},
	"c": {
		{-3.43035, -6.5393, -16.786, -79.433},
		{-2.86154, -2.8903, -4.234, -40.040},
		{-2.56677, -1.5384, -2.809, 0},
	},
	"ct": {
		{-3.95877, -9.0531, -28.428, -134.155},
		{-3.41049, -4.3904, -9.036, -45.374},
		{-3.12705, -2.5856, -3.925, -22.380},
	},
}

var critLevels = [3]string{"1%", "5%", "10%"}

// mackinnonP is the approximate p-value of a Dickey-Fuller statistic.
func mackinnonP(stat float64, regression string) float64 {
	s := tauSurfaces[regression]
	switch {
	case stat > s.max:
		return 1
	case stat < s.min:
		return 0
	}
	var z float64
	if stat <= s.star {
		z = polyval(s.small[:], stat)
	} else {
		z = polyval(s.large[:], stat)
	}
	return distuv.UnitNormal.CDF(z)
}

// mackinnonCrit returns the critical values for a regression with nobs
// observations.
func mackinnonCrit(regression string, nobs int) map[string]float64 {
	out := make(map[string]float64, 3)
	inv := 1 / float64(nobs)
	for i, c := range tauCritical[regression] {
		out[critLevels[i]] = polyval(c[:], inv)
	}
	return out
}

// polyval evaluates coefficients given in ascending order of power.
func polyval(coef []float64, x float64) float64 {
	v := 0.0
	for i := len(coef) - 1; i >= 0; i-- {
		v = v*x + coef[i]
	}
	return v
}
