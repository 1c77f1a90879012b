package store

import "errors"

var (
	ErrNotFound         = errors.New("record not found")
	ErrPoolClosed       = errors.New("pool store is closed")
	ErrChecksumMismatch = errors.New("distributor state checksum mismatch")
)
