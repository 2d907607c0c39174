package econometrics

import (
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func panelFrame(data PanelData) dataframe.DataFrame {
	years := make([]int, len(data.Period))
	for i, p := range data.Period {
		years[i] = int(p)
	}
	return dataframe.New(
		series.New(data.Entity, series.String, "firm"),
		series.New(years, series.Int, "year"),
		series.New(data.Y, series.Float, "y"),
		series.New(data.X[0], series.Float, "x"),
	)
}

func TestWorkspaceRegressPanel(t *testing.T) {
	ws := NewWorkspace()
	data := syntheticPanel(20, 10, 0)
	require.NoError(t, ws.Data.LoadFrame("firms", panelFrame(data), "test"))

	_, err := ws.Regress(KindFE, "firms.y", []string{"firms.x"}, PanelOptions{})
	assert.ErrorIs(t, err, ErrNotPanel, "panel estimators need an index")

	require.NoError(t, ws.Data.Index("firms", []string{"firm", "year"}, false))
	fit, err := ws.Regress(KindFE, "firms.y", []string{"firms.x"}, PanelOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"firms"}, fit.Data)
	c, ok := fit.Model.Coef("firms.x")
	require.True(t, ok)
	assert.InDelta(t, 1.5, c.Value, 0.05)

	registered, err := ws.Models.Get(KindFE)
	require.NoError(t, err)
	assert.Same(t, fit, registered)

	resid, err := ws.Residuals(KindFE)
	require.NoError(t, err)
	assert.Len(t, resid, 200)

	_, err = ws.Residuals(KindRE)
	assert.ErrorIs(t, err, ErrModelNotFitted)
}

func TestWorkspaceRegressOLSAcrossDatasets(t *testing.T) {
	ws := NewWorkspace()
	require.NoError(t, ws.Data.LoadFrame("a", dataframe.New(
		series.New([]float64{1, 3, 2, 5, 4}, series.Float, "y"),
	), "test"))
	require.NoError(t, ws.Data.LoadFrame("b", dataframe.New(
		series.New([]float64{1, 2, 3, 4, 5}, series.Float, "x"),
	), "test"))

	fit, err := ws.Regress(KindOLS, "a.y", []string{"b.x"}, PanelOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, fit.Data)
	assert.InDelta(t, 0.8, fit.Model.Coefs[1].Value, 1e-9)

	_, err = ws.Regress(KindPOLS, "a.y", []string{"b.x"}, PanelOptions{})
	assert.ErrorIs(t, err, ErrNotPanel)

	_, err = ws.Regress(KindOLS, "a.y", nil, PanelOptions{})
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, err = ws.Regress(KindOLS, "a.y", []string{"b.missing"}, PanelOptions{})
	assert.ErrorIs(t, err, ErrColumnNotFound)

	y, x, err := ws.Pair("a.y", "b.x")
	require.NoError(t, err)
	assert.Len(t, y, 5)
	assert.Len(t, x, 5)
}
