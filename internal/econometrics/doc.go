// Package econometrics holds the terminal's statistics core: named datasets
// backed by gota DataFrames, OLS and panel regressions, unit-root,
// cointegration and causality tests, residual diagnostics, and a registry of
// fitted models that later diagnostics run against.
//
// Column references take the form "alias.column". Observations with a NaN in
// any column used by an estimator are dropped before fitting.
package econometrics
