package testutils

import (
	"crypto/rand"
	"encoding/json"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/require"

	"github.com/eigerco/prizepool/internal/crypto"
)

func RandomHash(t *testing.T) crypto.Hash {
	var hash crypto.Hash
	_, err := rand.Read(hash[:])
	require.NoError(t, err)
	return hash
}

func RandomAddress(t *testing.T) crypto.Address {
	var addr crypto.Address
	_, err := rand.Read(addr[:])
	require.NoError(t, err)
	return addr
}

// Dump renders v as indented JSON for diffing.
func Dump(t *testing.T, v any) string {
	t.Helper()
	b, err := json.MarshalIndent(v, "", "  ")
	require.NoError(t, err)
	return string(b)
}

// RequireSameDump fails with a unified diff when the JSON dumps of expected
// and actual differ.
func RequireSameDump(t *testing.T, expected, actual any) {
	t.Helper()
	a, b := Dump(t, expected), Dump(t, actual)
	if a == b {
		return
	}
	diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(a),
		B:        difflib.SplitLines(b),
		FromFile: "Expected",
		ToFile:   "Actual",
		Context:  1,
	})
	require.FailNow(t, "state changed", diff)
}
