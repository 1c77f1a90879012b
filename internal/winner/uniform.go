package winner

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/eigerco/prizepool/internal/crypto"
)

var twoTo256 = new(big.Int).Lsh(big.NewInt(1), 256)

// Uniform reduces entropy into [0, upperBound) without modulo bias. Values
// below 2^256 mod upperBound are rejected and re-hashed with keccak256.
// A zero upperBound yields zero.
func Uniform(entropy crypto.Hash, upperBound decimal.Decimal) decimal.Decimal {
	bound := upperBound.BigInt()
	if bound.Sign() <= 0 {
		return decimal.Zero
	}
	threshold := new(big.Int).Mod(new(big.Int).Sub(twoTo256, bound), bound)

	random := new(big.Int).SetBytes(entropy[:])
	for random.Cmp(threshold) < 0 {
		entropy = crypto.KeccakData(entropy[:])
		random.SetBytes(entropy[:])
	}
	return decimal.NewFromBigInt(random.Mod(random, bound), 0)
}
