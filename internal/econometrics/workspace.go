package econometrics

import (
	"fmt"
	"sort"
)

// Workspace is the state of one econometrics session: loaded datasets and
// the latest fit of each regression kind.
type Workspace struct {
	Data   *Store
	Models *Registry
}

// NewWorkspace returns an empty workspace.
func NewWorkspace() *Workspace {
	return &Workspace{Data: NewStore(), Models: NewRegistry()}
}

// columns resolves alias.column references, checking equal lengths.
func (w *Workspace) columns(refs []string) ([][]float64, []string, error) {
	out := make([][]float64, len(refs))
	var aliases []string
	seen := map[string]bool{}
	for i, ref := range refs {
		alias, _, err := SplitRef(ref)
		if err != nil {
			return nil, nil, err
		}
		if out[i], err = w.Data.Floats(ref); err != nil {
			return nil, nil, err
		}
		if i > 0 && len(out[i]) != len(out[0]) {
			return nil, nil, fmt.Errorf("%s has %d rows, %s has %d: %w", ref, len(out[i]), refs[0], len(out[0]), ErrLengthMismatch)
		}
		if !seen[alias] {
			seen[alias] = true
			aliases = append(aliases, alias)
		}
	}
	sort.Strings(aliases)
	return out, aliases, nil
}

// Regress fits kind with dependent on independent (alias.column refs) and
// registers the result. Panel kinds take entity and time from the index of
// the dependent's dataset, so every column must come from that dataset.
func (w *Workspace) Regress(kind ModelKind, dependent string, independent []string, opts PanelOptions) (*Fitted, error) {
	if len(independent) == 0 {
		return nil, fmt.Errorf("%s: no independent variables: %w", kind, ErrInsufficientData)
	}
	cols, aliases, err := w.columns(append([]string{dependent}, independent...))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", kind, err)
	}

	var res *Result
	if kind == KindOLS {
		res, err = OLS(cols[0], cols[1:], dependent, independent, opts.Cov)
	} else {
		if len(aliases) != 1 {
			return nil, fmt.Errorf("%s: panel columns must share one dataset, got %v: %w", kind, aliases, ErrNotPanel)
		}
		var entity []string
		var period []float64
		entity, period, err = w.Data.PanelIndex(aliases[0])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", kind, err)
		}
		res, err = Panel(kind, PanelData{
			Entity: entity,
			Period: period,
			Y:      cols[0],
			X:      cols[1:],
			YName:  dependent,
			XNames: independent,
		}, opts)
	}
	if err != nil {
		return nil, err
	}

	f := &Fitted{Data: aliases, Dependent: dependent, Independent: independent, Model: res}
	w.Models.Set(f)
	return f, nil
}

// Series resolves one alias.column reference.
func (w *Workspace) Series(ref string) ([]float64, error) {
	return w.Data.Floats(ref)
}

// Pair resolves two references of equal length.
func (w *Workspace) Pair(a, b string) ([]float64, []float64, error) {
	cols, _, err := w.columns([]string{a, b})
	if err != nil {
		return nil, nil, err
	}
	return cols[0], cols[1], nil
}

// Residuals returns the residuals of the registered fit of kind.
func (w *Workspace) Residuals(kind ModelKind) ([]float64, error) {
	f, err := w.Models.Get(kind)
	if err != nil {
		return nil, err
	}
	return f.Model.Residuals, nil
}
