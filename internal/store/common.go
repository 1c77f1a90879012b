package store

import "encoding/binary"

// Prefix constants for all record types
const (
	prefixVaultAccumulator byte = iota + 1
	prefixTotalAccumulator
	prefixDistributor
	prefixDraw
	prefixClaim
)

// PrefixToString converts a prefix byte to a string
func PrefixToString(p byte) string {
	switch p {
	case prefixVaultAccumulator:
		return "vaultAccumulator"
	case prefixTotalAccumulator:
		return "totalAccumulator"
	case prefixDistributor:
		return "distributor"
	case prefixDraw:
		return "draw"
	case prefixClaim:
		return "claim"
	default:
		return "unknown"
	}
}

// makeKey creates a key from a prefix and the concatenated parts
func makeKey(prefix byte, parts ...[]byte) []byte {
	n := 1
	for _, p := range parts {
		n += len(p)
	}
	key := make([]byte, 1, n)
	key[0] = prefix
	for _, p := range parts {
		key = append(key, p...)
	}
	return key
}

func uint32Bytes(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}
