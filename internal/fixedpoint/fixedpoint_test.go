package fixedpoint

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSD59x18_MulTruncatesTowardZero(t *testing.T) {
	third, err := UnitSD.Div(SD(3e18))
	require.NoError(t, err)
	assert.Equal(t, "333333333333333333", third.Unwrap().String())

	neg := SD(-1e18)
	negThird, err := neg.Div(SD(3e18))
	require.NoError(t, err)
	assert.Equal(t, "-333333333333333333", negThird.Unwrap().String())

	tiny := SD(1)
	assert.True(t, tiny.Mul(tiny).IsZero())
	assert.True(t, SD(-1).Mul(SD(1)).IsZero())
}

func TestSD59x18_DivByZero(t *testing.T) {
	_, err := UnitSD.Div(ZeroSD)
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

func TestSD59x18_Powu(t *testing.T) {
	alpha := SD(9e17)
	tests := []struct {
		exp  uint64
		want string
	}{
		{0, "1"},
		{1, "0.9"},
		{2, "0.81"},
		{3, "0.729"},
		{10, "0.3486784401"},
	}
	for _, tc := range tests {
		got := alpha.Powu(tc.exp)
		assert.True(t, got.Decimal().Equal(decimal.RequireFromString(tc.want)), "0.9^%d = %s", tc.exp, got)
	}
}

func TestSD59x18_PowuUnderflowsToZero(t *testing.T) {
	assert.True(t, SD(1e17).Powu(40).IsZero())
}

func TestSD59x18_LnExp(t *testing.T) {
	ln, err := MustSD("365").Ln()
	require.NoError(t, err)
	assert.Equal(t, "5.899897353582491", ln.Decimal().Truncate(15).String())

	back, err := ln.Exp()
	require.NoError(t, err)
	assert.True(t, back.Decimal().Sub(decimal.NewFromInt(365)).Abs().LessThan(decimal.RequireFromString("0.000000000001")))

	_, err = ZeroSD.Ln()
	assert.ErrorIs(t, err, ErrLogOfNonPositive)

	e0, err := ZeroSD.Exp()
	require.NoError(t, err)
	assert.Equal(t, 0, e0.Cmp(UnitSD))
}

func TestSD59x18_Range(t *testing.T) {
	big255 := new(big.Int).Lsh(big.NewInt(1), 255)
	_, err := WrapSD(big255)
	assert.ErrorIs(t, err, ErrOverflow)

	ok := new(big.Int).Sub(big255, big.NewInt(1))
	x, err := WrapSD(ok)
	require.NoError(t, err)
	assert.Equal(t, ok.String(), x.Unwrap().String())
}

func TestSD59x18_JSON(t *testing.T) {
	x := MustSD("0.123456789012345678")
	data, err := x.MarshalJSON()
	require.NoError(t, err)

	var y SD59x18
	require.NoError(t, y.UnmarshalJSON(data))
	assert.Equal(t, 0, x.Cmp(y))
}

func TestUD34x4_Divisions(t *testing.T) {
	floor, err := DivFloor(decimal.NewFromInt(10), decimal.NewFromInt(3))
	require.NoError(t, err)
	assert.Equal(t, "33333", floor.Unwrap().String())

	ceil, err := DivCeil(decimal.NewFromInt(10), decimal.NewFromInt(3))
	require.NoError(t, err)
	assert.Equal(t, "33334", ceil.Unwrap().String())

	exact, err := DivCeil(decimal.NewFromInt(9), decimal.NewFromInt(3))
	require.NoError(t, err)
	assert.Equal(t, "30000", exact.Unwrap().String())

	_, err = DivFloor(decimal.NewFromInt(1), decimal.Zero)
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

func TestUD34x4_Range(t *testing.T) {
	_, err := NewUD34x4(decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, ErrNegative)

	limit := new(big.Int).Lsh(big.NewInt(1), 128)
	limit.Sub(limit, big.NewInt(1))
	x, err := WrapUD34x4(limit)
	require.NoError(t, err)

	_, err = x.Add(UD34x4{v: increment})
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = ZeroUD34x4.Sub(x)
	assert.ErrorIs(t, err, ErrNegative)
}

func TestUD34x4_MulInt(t *testing.T) {
	x, err := NewUD34x4(decimal.RequireFromString("1.2345"))
	require.NoError(t, err)
	assert.Equal(t, "123.45", x.MulInt(100).String())
}
