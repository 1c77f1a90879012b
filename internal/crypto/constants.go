package crypto

const (
	HashSize    = 32
	AddressSize = 20
	// WordSize is the width every value is padded to before hashing seeds.
	WordSize = 32
)
