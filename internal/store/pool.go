package store

import (
	"bytes"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eigerco/prizepool/internal/accumulator"
	"github.com/eigerco/prizepool/internal/crypto"
	"github.com/eigerco/prizepool/internal/distributor"
	"github.com/eigerco/prizepool/internal/drawtime"
	"github.com/eigerco/prizepool/pkg/db"
	"github.com/eigerco/prizepool/pkg/db/pebble"
	"github.com/eigerco/prizepool/pkg/log"
	"github.com/eigerco/prizepool/pkg/serialization"
	"github.com/eigerco/prizepool/pkg/serialization/codec"
)

// DrawRecord describes a closed draw.
type DrawRecord struct {
	DrawID              drawtime.DrawID `json:"draw_id"`
	WinningRandomNumber crypto.Hash     `json:"winning_random_number"`
	NumberOfTiers       uint8           `json:"number_of_tiers"`
	ReleasedLiquidity   decimal.Decimal `json:"released_liquidity"`
	ClosedAt            time.Time       `json:"closed_at"`
}

// Claim records a paid prize.
type Claim struct {
	DrawID     drawtime.DrawID `json:"draw_id"`
	Vault      crypto.Address  `json:"vault"`
	User       crypto.Address  `json:"user"`
	Tier       uint8           `json:"tier"`
	PrizeIndex uint32          `json:"prize_index"`
	Amount     decimal.Decimal `json:"amount"`
}

func (c Claim) key() []byte {
	return claimKey(c.DrawID, c.Vault, c.User, c.Tier, c.PrizeIndex)
}

func claimKey(drawID drawtime.DrawID, vault, user crypto.Address, tier uint8, prizeIndex uint32) []byte {
	return makeKey(prefixClaim, uint32Bytes(uint32(drawID)), vault[:], user[:], []byte{tier}, uint32Bytes(prizeIndex))
}

// Pool persists the state of a prize pool: the vault and total
// accumulators, the distributor ledger, closed draws and paid claims.
type Pool struct {
	db         db.KVStore
	serializer *serialization.Serializer
	closed     atomic.Bool
}

// NewPool creates a new pool store using KVStore
func NewPool(db db.KVStore) *Pool {
	return &Pool{
		db:         db,
		serializer: serialization.NewSerializer(&codec.JSONCodec{}),
	}
}

// PutContribution stores the vault and total accumulators of a contribution
// atomically.
func (p *Pool) PutContribution(vault crypto.Address, vaultAcc, totalAcc *accumulator.Accumulator) error {
	if p.closed.Load() {
		return ErrPoolClosed
	}

	batch := p.db.NewBatch()
	defer batch.Close() //nolint:errcheck

	if err := p.put(batch, makeKey(prefixVaultAccumulator, vault[:]), vaultAcc); err != nil {
		return fmt.Errorf("store vault accumulator: %w", err)
	}
	if err := p.put(batch, makeKey(prefixTotalAccumulator), totalAcc); err != nil {
		return fmt.Errorf("store total accumulator: %w", err)
	}
	if err := batch.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// GetVaultAccumulator returns the accumulator of vault.
func (p *Pool) GetVaultAccumulator(vault crypto.Address) (*accumulator.Accumulator, error) {
	acc := accumulator.New()
	if err := p.get(makeKey(prefixVaultAccumulator, vault[:]), acc); err != nil {
		return nil, err
	}
	return acc, nil
}

// GetTotalAccumulator returns the accumulator of all contributions.
func (p *Pool) GetTotalAccumulator() (*accumulator.Accumulator, error) {
	acc := accumulator.New()
	if err := p.get(makeKey(prefixTotalAccumulator), acc); err != nil {
		return nil, err
	}
	return acc, nil
}

// PutDistributor stores the distributor state.
func (p *Pool) PutDistributor(state distributor.State) error {
	if p.closed.Load() {
		return ErrPoolClosed
	}

	batch := p.db.NewBatch()
	defer batch.Close() //nolint:errcheck

	if err := p.putDistributor(batch, state); err != nil {
		return err
	}
	if err := batch.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// GetDistributor returns the distributor state. The stored checksum must
// match the stored state.
func (p *Pool) GetDistributor() (distributor.State, error) {
	if p.closed.Load() {
		return distributor.State{}, ErrPoolClosed
	}

	value, err := p.db.Get(makeKey(prefixDistributor))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return distributor.State{}, ErrNotFound
		}
		return distributor.State{}, fmt.Errorf("get distributor: %w", err)
	}
	if len(value) < crypto.HashSize {
		return distributor.State{}, ErrChecksumMismatch
	}

	sum, body := value[:crypto.HashSize], value[crypto.HashSize:]
	if checksum := crypto.HashData(body); !bytes.Equal(sum, checksum[:]) {
		log.Store.Error().
			Str("key", PrefixToString(prefixDistributor)).
			Str("checksum", checksum.String()).
			Msg("corrupted distributor state")
		return distributor.State{}, ErrChecksumMismatch
	}

	var state distributor.State
	if err := p.serializer.Decode(body, &state); err != nil {
		return distributor.State{}, err
	}
	return state, nil
}

// PutDraw stores a closed draw together with the distributor state it
// produced.
func (p *Pool) PutDraw(record DrawRecord, state distributor.State) error {
	if p.closed.Load() {
		return ErrPoolClosed
	}

	batch := p.db.NewBatch()
	defer batch.Close() //nolint:errcheck

	if err := p.put(batch, makeKey(prefixDraw, uint32Bytes(uint32(record.DrawID))), record); err != nil {
		return fmt.Errorf("store draw: %w", err)
	}
	if err := p.putDistributor(batch, state); err != nil {
		return err
	}
	if err := batch.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// GetDraw returns the record of a closed draw.
func (p *Pool) GetDraw(drawID drawtime.DrawID) (DrawRecord, error) {
	var record DrawRecord
	if err := p.get(makeKey(prefixDraw, uint32Bytes(uint32(drawID))), &record); err != nil {
		return DrawRecord{}, err
	}
	return record, nil
}

// PutClaim stores a paid claim together with the distributor state after
// the payout.
func (p *Pool) PutClaim(claim Claim, state distributor.State) error {
	if p.closed.Load() {
		return ErrPoolClosed
	}

	batch := p.db.NewBatch()
	defer batch.Close() //nolint:errcheck

	if err := p.put(batch, claim.key(), claim); err != nil {
		return fmt.Errorf("store claim: %w", err)
	}
	if err := p.putDistributor(batch, state); err != nil {
		return err
	}
	if err := batch.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// HasClaim reports whether the prize was already claimed.
func (p *Pool) HasClaim(drawID drawtime.DrawID, vault, user crypto.Address, tier uint8, prizeIndex uint32) (bool, error) {
	if p.closed.Load() {
		return false, ErrPoolClosed
	}
	return p.db.Has(claimKey(drawID, vault, user, tier, prizeIndex))
}

// ClaimCount returns the number of prizes claimed in a draw.
func (p *Pool) ClaimCount(drawID drawtime.DrawID) (uint32, error) {
	if p.closed.Load() {
		return 0, ErrPoolClosed
	}

	prefix := makeKey(prefixClaim, uint32Bytes(uint32(drawID)))
	iter, err := p.db.NewIterator(prefix, db.PrefixEnd(prefix))
	if err != nil {
		return 0, fmt.Errorf("create iterator: %w", err)
	}
	defer iter.Close() //nolint:errcheck

	var count uint32
	for iter.Next() {
		count++
	}
	return count, nil
}

// Close closes the pool store
func (p *Pool) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	return p.db.Close()
}

func (p *Pool) putDistributor(w db.Writer, state distributor.State) error {
	body, err := p.serializer.Encode(state)
	if err != nil {
		return fmt.Errorf("marshal distributor: %w", err)
	}
	checksum := crypto.HashData(body)
	value := make([]byte, 0, len(checksum)+len(body))
	value = append(value, checksum[:]...)
	value = append(value, body...)
	if err := w.Put(makeKey(prefixDistributor), value); err != nil {
		return fmt.Errorf("store distributor: %w", err)
	}
	return nil
}

func (p *Pool) put(w db.Writer, key []byte, v any) error {
	b, err := p.serializer.Encode(v)
	if err != nil {
		return err
	}
	return w.Put(key, b)
}

func (p *Pool) get(key []byte, v any) error {
	if p.closed.Load() {
		return ErrPoolClosed
	}

	b, err := p.db.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("get %s: %w", PrefixToString(key[0]), err)
	}
	return p.serializer.Decode(b, v)
}
