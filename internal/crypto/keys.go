package crypto

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Address identifies a vault or a user.
type Address [AddressSize]byte

func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// Word left-pads the address to a 32 byte word.
func (a Address) Word() [WordSize]byte {
	var w [WordSize]byte
	copy(w[WordSize-AddressSize:], a[:])
	return w
}

// AddressFromHex parses a 0x-prefixed or bare hex string.
func AddressFromHex(s string) (Address, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return Address{}, fmt.Errorf("decode address: %w", err)
	}
	if len(b) != AddressSize {
		return Address{}, fmt.Errorf("decode address: want %d bytes, got %d", AddressSize, len(b))
	}
	var a Address
	copy(a[:], b)
	return a, nil
}

// MarshalText lets addresses key JSON maps.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	v, err := AddressFromHex(string(text))
	if err != nil {
		return err
	}
	*a = v
	return nil
}
