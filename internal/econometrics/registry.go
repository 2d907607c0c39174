package econometrics

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ModelKind names a regression estimator.
type ModelKind string

const (
	KindOLS   ModelKind = "OLS"
	KindPOLS  ModelKind = "POLS"
	KindRE    ModelKind = "RE"
	KindBOLS  ModelKind = "BOLS"
	KindFE    ModelKind = "FE"
	KindFDOLS ModelKind = "FDOLS"
)

// AllKinds lists every estimator in display order.
var AllKinds = []ModelKind{KindOLS, KindPOLS, KindRE, KindBOLS, KindFE, KindFDOLS}

// ParseModelKind is case-insensitive.
func ParseModelKind(s string) (ModelKind, error) {
	for _, k := range AllKinds {
		if strings.EqualFold(s, string(k)) {
			return k, nil
		}
	}
	return "", fmt.Errorf("regression type %q: %w", s, ErrUnsupported)
}

// IsPanel reports whether the estimator needs an entity/time index.
func (k ModelKind) IsPanel() bool { return k != KindOLS }

// Fitted is a registered regression along with what it was fitted on.
type Fitted struct {
	Data        []string `json:"data"` // dataset aliases
	Dependent   string   `json:"dependent"`
	Independent []string `json:"independent"`
	Model       *Result  `json:"model"`
}

// Registry keeps the latest fit of each kind for later diagnostics.
type Registry struct {
	mu   sync.RWMutex
	fits map[ModelKind]*Fitted
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{fits: make(map[ModelKind]*Fitted)}
}

// Set replaces the fit registered for f.Model.Kind.
func (r *Registry) Set(f *Fitted) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fits[f.Model.Kind] = f
}

// Get returns the fit registered under kind.
func (r *Registry) Get(kind ModelKind) (*Fitted, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.fits[kind]
	if !ok {
		return nil, fmt.Errorf("%s: %w", kind, ErrModelNotFitted)
	}
	return f, nil
}

// Kinds returns the registered kinds in display order.
func (r *Registry) Kinds() []ModelKind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []ModelKind
	for _, k := range AllKinds {
		if _, ok := r.fits[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

// Comparison lays registered fits side by side. Cells[i][j] belongs to
// Rows[i] under Kinds[j]; an empty cell means the model lacks that term.
type Comparison struct {
	Kinds []ModelKind
	Rows  []string
	Cells [][]string
}

// Compare builds a table of coefficients (with standard errors) and fit
// statistics for every registered model.
func (r *Registry) Compare() (*Comparison, error) {
	kinds := r.Kinds()
	if len(kinds) == 0 {
		return nil, ErrModelNotFitted
	}
	fits := make([]*Fitted, len(kinds))
	for i, k := range kinds {
		fits[i], _ = r.Get(k)
	}

	seen := map[string]bool{}
	var terms []string
	for _, f := range fits {
		for _, c := range f.Model.Coefs {
			if !seen[c.Name] {
				seen[c.Name] = true
				terms = append(terms, c.Name)
			}
		}
	}
	// "const" leads, the rest alphabetical.
	sort.SliceStable(terms, func(i, j int) bool {
		if (terms[i] == "const") != (terms[j] == "const") {
			return terms[i] == "const"
		}
		return terms[i] < terms[j]
	})

	cmp := &Comparison{Kinds: kinds}
	for _, t := range terms {
		row := make([]string, len(fits))
		for j, f := range fits {
			if c, ok := f.Model.Coef(t); ok {
				row[j] = fmt.Sprintf("%.4f (%.4f)", c.Value, c.StdErr)
			}
		}
		cmp.Rows = append(cmp.Rows, t)
		cmp.Cells = append(cmp.Cells, row)
	}

	stats := []struct {
		name string
		get  func(*Result) string
	}{
		{"dependent", nil},
		{"nobs", func(m *Result) string { return fmt.Sprint(m.NObs) }},
		{"r_squared", func(m *Result) string { return fmt.Sprintf("%.4f", m.RSquared) }},
		{"f_stat", func(m *Result) string { return fmt.Sprintf("%.4f", m.FStat) }},
		{"cov_type", func(m *Result) string { return string(m.CovType) }},
	}
	for _, s := range stats {
		row := make([]string, len(fits))
		for j, f := range fits {
			if s.get == nil {
				row[j] = f.Dependent
				continue
			}
			row[j] = s.get(f.Model)
		}
		cmp.Rows = append(cmp.Rows, s.name)
		cmp.Cells = append(cmp.Cells, row)
	}
	return cmp, nil
}
