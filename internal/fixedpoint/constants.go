package fixedpoint

import (
	"math/big"

	"github.com/shopspring/decimal"
)

const (
	// SDDecimals is the number of decimal places kept by SD59x18.
	SDDecimals = 18
	// UD34x4Decimals is the number of decimal places kept by UD34x4.
	UD34x4Decimals = 4

	// transcendentalPrecision is the number of digits Ln and Exp are
	// evaluated at before truncation to SDDecimals.
	transcendentalPrecision = 36
)

var (
	// maxSD59x18 is (2^255 - 1) / 1e18.
	maxSD59x18 decimal.Decimal
	// maxUD34x4 is (2^128 - 1) / 1e4.
	maxUD34x4 decimal.Decimal

	one = decimal.NewFromInt(1)
)

func init() {
	m := new(big.Int).Lsh(big.NewInt(1), 255)
	m.Sub(m, big.NewInt(1))
	maxSD59x18 = decimal.NewFromBigInt(m, -SDDecimals)

	m = new(big.Int).Lsh(big.NewInt(1), 128)
	m.Sub(m, big.NewInt(1))
	maxUD34x4 = decimal.NewFromBigInt(m, -UD34x4Decimals)
}
