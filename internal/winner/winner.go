// Package winner decides prize winners from a draw's random number and the
// time weighted balances of users and vaults.
package winner

import (
	"encoding/binary"

	"github.com/shopspring/decimal"

	"github.com/eigerco/prizepool/internal/crypto"
	"github.com/eigerco/prizepool/internal/drawtime"
	"github.com/eigerco/prizepool/internal/fixedpoint"
)

// PseudoRandomSeed derives the per prize seed from the draw's random number.
// Every input is encoded as a 32 byte big endian word before hashing.
func PseudoRandomSeed(
	drawID drawtime.DrawID,
	vault, user crypto.Address,
	tier uint8,
	prizeIndex uint32,
	winningRandomNumber crypto.Hash,
) crypto.Hash {
	vaultWord := vault.Word()
	userWord := user.Word()
	return crypto.KeccakData(
		uintWord(uint64(drawID)),
		vaultWord[:],
		userWord[:],
		uintWord(uint64(tier)),
		uintWord(uint64(prizeIndex)),
		winningRandomNumber[:],
	)
}

// CalculateWinningZone returns the part of [0, vault supply) that wins:
// the user's balance scaled by the vault's share of contributions and the
// tier odds. The product is exact.
func CalculateWinningZone(userTwab decimal.Decimal, vaultContributionFraction, tierOdds fixedpoint.SD59x18) decimal.Decimal {
	return userTwab.
		Mul(vaultContributionFraction.Decimal()).
		Mul(tierOdds.Decimal())
}

// IsWinner reports whether the prize identified by seed is won by a user
// holding userTwab of a vault whose total supply is vaultTwabTotalSupply.
func IsWinner(
	seed crypto.Hash,
	userTwab, vaultTwabTotalSupply decimal.Decimal,
	vaultContributionFraction, tierOdds fixedpoint.SD59x18,
) bool {
	if vaultTwabTotalSupply.Sign() <= 0 {
		return false
	}
	prn := Uniform(seed, vaultTwabTotalSupply)
	return prn.LessThan(CalculateWinningZone(userTwab, vaultContributionFraction, tierOdds))
}

func uintWord(v uint64) []byte {
	w := make([]byte, crypto.WordSize)
	binary.BigEndian.PutUint64(w[crypto.WordSize-8:], v)
	return w
}
