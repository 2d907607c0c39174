package econometrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseModelKind(t *testing.T) {
	k, err := ParseModelKind("fe")
	require.NoError(t, err)
	assert.Equal(t, KindFE, k)
	assert.True(t, k.IsPanel())
	assert.False(t, KindOLS.IsPanel())

	_, err = ParseModelKind("iv2sls")
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Get(KindOLS)
	assert.ErrorIs(t, err, ErrModelNotFitted)
	_, err = reg.Compare()
	assert.ErrorIs(t, err, ErrModelNotFitted)

	ols, err := OLS([]float64{1, 3, 2, 5, 4}, [][]float64{{1, 2, 3, 4, 5}}, "d.y", []string{"d.x"}, CovUnadjusted)
	require.NoError(t, err)
	fd, err := Panel(KindFDOLS, syntheticPanel(3, 4, 0), PanelOptions{})
	require.NoError(t, err)

	reg.Set(&Fitted{Data: []string{"d"}, Dependent: "d.y", Independent: []string{"d.x"}, Model: ols})
	reg.Set(&Fitted{Data: []string{"p"}, Dependent: "y", Independent: []string{"x"}, Model: fd})

	got, err := reg.Get(KindOLS)
	require.NoError(t, err)
	assert.Equal(t, "d.y", got.Dependent)
	assert.Equal(t, []ModelKind{KindOLS, KindFDOLS}, reg.Kinds())

	cmp, err := reg.Compare()
	require.NoError(t, err)
	assert.Equal(t, []ModelKind{KindOLS, KindFDOLS}, cmp.Kinds)
	assert.Equal(t, []string{"const", "d.x", "x", "dependent", "nobs", "r_squared", "f_stat", "cov_type"}, cmp.Rows)
	// FDOLS has no constant.
	assert.NotEmpty(t, cmp.Cells[0][0])
	assert.Empty(t, cmp.Cells[0][1])
	assert.Equal(t, "5", cmp.Cells[4][0])
	assert.Equal(t, "y", cmp.Cells[3][1])
}
