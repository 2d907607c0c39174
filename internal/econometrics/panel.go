package econometrics

import (
	"fmt"
	"math"
	"slices"
	"sort"
)

// PanelData is a long panel: one row per (entity, period).
type PanelData struct {
	Entity []string
	Period []float64 // sortable time key
	Y      []float64
	X      [][]float64
	YName  string
	XNames []string
}

// PanelOptions tune the panel estimators.
type PanelOptions struct {
	Cov CovType
	// TimeEffects adds period effects to the fixed effects estimator.
	TimeEffects bool
}

// panel is a cleaned, (entity, period)-sorted panel.
type panel struct {
	entity   []string
	period   []float64
	y        []float64
	x        [][]float64
	rank     []int   // position of each row's period on the panel's period grid
	entities [][]int // row positions per entity, in period order
	periods  [][]int // row positions per period
}

func preparePanel(p PanelData) (*panel, error) {
	n := len(p.Y)
	if len(p.Entity) != n || len(p.Period) != n {
		return nil, ErrLengthMismatch
	}
	if len(p.X) != len(p.XNames) {
		return nil, fmt.Errorf("%d regressors but %d names", len(p.X), len(p.XNames))
	}
	for _, c := range p.X {
		if len(c) != n {
			return nil, ErrLengthMismatch
		}
	}

	// The grid is built before listwise deletion so a dropped row leaves a
	// gap instead of joining its neighbours.
	grid := dropNaN(p.Period)
	sort.Float64s(grid)
	grid = slices.Compact(grid)

	keep := completeRows(append(append([][]float64{p.Y}, p.X...), p.Period))
	sort.SliceStable(keep, func(a, b int) bool {
		i, j := keep[a], keep[b]
		if p.Entity[i] != p.Entity[j] {
			return p.Entity[i] < p.Entity[j]
		}
		return p.Period[i] < p.Period[j]
	})

	out := &panel{
		entity: make([]string, len(keep)),
		period: pick(p.Period, keep),
		y:      pick(p.Y, keep),
		x:      make([][]float64, len(p.X)),
	}
	out.rank = make([]int, len(keep))
	for i, r := range keep {
		out.entity[i] = p.Entity[r]
		out.rank[i] = sort.SearchFloat64s(grid, p.Period[r])
	}
	for j, c := range p.X {
		out.x[j] = pick(c, keep)
	}
	out.entities = groupRows(out.entity)

	periodLabels := make([]string, len(out.period))
	for i, t := range out.period {
		periodLabels[i] = fmt.Sprint(t)
	}
	out.periods = groupRows(periodLabels)

	if len(out.entities) < 2 {
		return nil, fmt.Errorf("%d entities: %w", len(out.entities), ErrNotPanel)
	}
	return out, nil
}

// Panel fits one of the panel estimators: POLS, RE, BOLS, FE or FDOLS.
func Panel(kind ModelKind, data PanelData, opts PanelOptions) (*Result, error) {
	p, err := preparePanel(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", kind, err)
	}
	names := append([]string(nil), data.XNames...)

	var res *Result
	switch kind {
	case KindPOLS:
		res, err = fit(newDesign(p.y, p.x, names, true), opts.Cov)
	case KindBOLS:
		res, err = fitBetween(p, names, opts.Cov)
	case KindFE:
		res, err = fitFixed(p, names, opts)
	case KindFDOLS:
		res, err = fitFirstDiff(p, names, opts.Cov)
	case KindRE:
		res, err = fitRandom(p, names, opts.Cov)
	default:
		return nil, fmt.Errorf("panel model %q: %w", kind, ErrUnsupported)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", kind, err)
	}
	res.Kind = kind
	res.Dependent = data.YName
	res.Independent = names
	if res.Extras == nil {
		res.Extras = map[string]float64{}
	}
	res.Extras["entities"] = float64(len(p.entities))
	return res, nil
}

// groupMeans returns the mean of v over each group.
func groupMeans(v []float64, groups [][]int) []float64 {
	out := make([]float64, len(groups))
	for g, rows := range groups {
		s := 0.0
		for _, i := range rows {
			s += v[i]
		}
		out[g] = s / float64(len(rows))
	}
	return out
}

func demean(v []float64, groups [][]int) {
	for g, m := range groupMeans(v, groups) {
		for _, i := range groups[g] {
			v[i] -= m
		}
	}
}

// sweep removes entity (and optionally period) means from v by alternating
// projections, which is exact for unbalanced panels once converged.
func sweep(v []float64, entities, periods [][]int, twoWay bool) []float64 {
	out := append([]float64(nil), v...)
	demean(out, entities)
	if !twoWay {
		return out
	}
	for iter := 0; iter < 1000; iter++ {
		demean(out, periods)
		demean(out, entities)
		worst := 0.0
		for _, m := range groupMeans(out, periods) {
			worst = math.Max(worst, math.Abs(m))
		}
		if worst < 1e-12 {
			break
		}
	}
	return out
}

// fitBetween regresses entity means of y on entity means of x.
func fitBetween(p *panel, names []string, cov CovType) (*Result, error) {
	yb := groupMeans(p.y, p.entities)
	xb := make([][]float64, len(p.x))
	for j, c := range p.x {
		xb[j] = groupMeans(c, p.entities)
	}
	return fit(newDesign(yb, xb, names, true), cov)
}

// fitFixed is the within estimator. The grand mean is added back so the
// constant is the average entity effect.
func fitFixed(p *panel, names []string, opts PanelOptions) (*Result, error) {
	wy := sweep(p.y, p.entities, p.periods, opts.TimeEffects)
	addConst(wy, mean(p.y))
	wx := make([][]float64, len(p.x))
	for j, c := range p.x {
		wx[j] = sweep(c, p.entities, p.periods, opts.TimeEffects)
		addConst(wx[j], mean(c))
	}
	d := newDesign(wy, wx, names, true)
	d.absorbed = len(p.entities) - 1
	if opts.TimeEffects {
		d.absorbed += len(p.periods) - 1
	}
	res, err := fit(d, opts.Cov)
	if err != nil {
		return nil, err
	}
	res.Extras = map[string]float64{"time_effects": boolf(opts.TimeEffects)}
	return res, nil
}

func addConst(v []float64, c float64) {
	for i := range v {
		v[i] += c
	}
}

// fitFirstDiff regresses period-to-period changes within each entity, with
// no constant. Only consecutive periods on the panel's grid are
// differenced; pairs spanning a gap are skipped and counted in the
// "gaps" extra.
func fitFirstDiff(p *panel, names []string, cov CovType) (*Result, error) {
	if len(p.x) == 0 {
		return nil, fmt.Errorf("first differences need at least one regressor: %w", ErrInsufficientData)
	}
	var dy []float64
	dx := make([][]float64, len(p.x))
	gaps := 0
	for _, rows := range p.entities {
		for k := 1; k < len(rows); k++ {
			i, prev := rows[k], rows[k-1]
			if p.rank[i]-p.rank[prev] != 1 {
				gaps++
				continue
			}
			dy = append(dy, p.y[i]-p.y[prev])
			for j, c := range p.x {
				dx[j] = append(dx[j], c[i]-c[prev])
			}
		}
	}
	if len(dy) == 0 {
		return nil, fmt.Errorf("no consecutive periods to difference: %w", ErrInsufficientData)
	}
	res, err := fit(newDesign(dy, dx, names, false), cov)
	if err != nil {
		return nil, err
	}
	res.Extras = map[string]float64{"gaps": float64(gaps)}
	return res, nil
}

// fitRandom is the GLS random effects estimator with Swamy-Arora variance
// components: y_it - θ_i ȳ_i on x_it - θ_i x̄_i, with
// θ_i = 1 - sqrt(σ²_e / (T_i σ²_u + σ²_e)).
func fitRandom(p *panel, names []string, cov CovType) (*Result, error) {
	n, nEnt, k := len(p.y), len(p.entities), len(p.x)

	// Within regression for the idiosyncratic variance.
	wy := sweep(p.y, p.entities, nil, false)
	wx := make([][]float64, k)
	for j, c := range p.x {
		wx[j] = sweep(c, p.entities, nil, false)
	}
	dfWithin := n - nEnt - k
	if dfWithin <= 0 {
		return nil, ErrInsufficientData
	}
	within, err := fit(newDesign(wy, wx, names, false), CovUnadjusted)
	if err != nil {
		return nil, fmt.Errorf("within step: %w", err)
	}
	sigma2e := within.SSR / float64(dfWithin)

	between, err := fitBetween(p, names, CovUnadjusted)
	if err != nil {
		return nil, fmt.Errorf("between step: %w", err)
	}
	sigma2b := between.SSR / float64(between.DFResid)

	invT := 0.0
	for _, rows := range p.entities {
		invT += 1 / float64(len(rows))
	}
	tHarm := float64(nEnt) / invT
	sigma2u := math.Max(0, sigma2b-sigma2e/tHarm)

	theta := make([]float64, nEnt)
	thetaSum := 0.0
	for g, rows := range p.entities {
		theta[g] = 1 - math.Sqrt(sigma2e/(float64(len(rows))*sigma2u+sigma2e))
		thetaSum += theta[g]
	}

	ybar := groupMeans(p.y, p.entities)
	xbar := make([][]float64, k)
	for j, c := range p.x {
		xbar[j] = groupMeans(c, p.entities)
	}
	qy := make([]float64, n)
	qc := make([]float64, n)
	qx := make([][]float64, k)
	for j := range qx {
		qx[j] = make([]float64, n)
	}
	for g, rows := range p.entities {
		for _, i := range rows {
			qy[i] = p.y[i] - theta[g]*ybar[g]
			qc[i] = 1 - theta[g]
			for j := range p.x {
				qx[j][i] = p.x[j][i] - theta[g]*xbar[j][g]
			}
		}
	}

	d := newDesign(qy, append([][]float64{qc}, qx...), append([]string{"const"}, names...), false)
	d.hasConst = true
	res, err := fit(d, cov)
	if err != nil {
		return nil, err
	}
	res.quasiConst = true
	res.Extras = map[string]float64{
		"sigma2_eps": sigma2e,
		"sigma2_u":   sigma2u,
		"rho":        sigma2u / (sigma2u + sigma2e),
		"theta":      thetaSum / float64(nEnt),
	}
	return res, nil
}
