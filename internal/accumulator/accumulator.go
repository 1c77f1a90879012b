package accumulator

import (
	"fmt"
	"maps"

	"github.com/shopspring/decimal"

	"github.com/eigerco/prizepool/internal/drawtime"
	"github.com/eigerco/prizepool/internal/fixedpoint"
	"github.com/eigerco/prizepool/internal/safemath"
)

// Observation records the state of an accumulator at a draw.
type Observation struct {
	// Available is the part of the contributions not yet released.
	Available decimal.Decimal `json:"available"`
	// Disbursed is the cumulative amount released before this draw.
	Disbursed decimal.Decimal `json:"disbursed"`
}

// RingBufferInfo tracks the write cursor of the draw ring buffer.
type RingBufferInfo struct {
	NextIndex   uint16 `json:"next_index"`
	Cardinality uint16 `json:"cardinality"`
}

// Accumulator smooths contributions over future draws with exponential
// decay. One accumulator exists per vault plus one for the whole pool.
type Accumulator struct {
	RingBufferInfo RingBufferInfo                  `json:"ring_buffer_info"`
	DrawRingBuffer [MaxCardinality]drawtime.DrawID `json:"draw_ring_buffer"`
	Observations   map[drawtime.DrawID]Observation `json:"observations"`
}

// New returns an empty accumulator.
func New() *Accumulator {
	return &Accumulator{
		Observations: make(map[drawtime.DrawID]Observation),
	}
}

// Clone returns a deep copy.
func (a *Accumulator) Clone() *Accumulator {
	c := *a
	c.Observations = maps.Clone(a.Observations)
	if c.Observations == nil {
		c.Observations = make(map[drawtime.DrawID]Observation)
	}
	return &c
}

// Add records amount at drawID. Adds to the newest draw merge into its
// observation without decay. Adds to a later draw first split the newest
// observation's available balance into what is still pending and what was
// released in between, then append a new observation. It reports whether a
// new observation was created.
func (a *Accumulator) Add(amount decimal.Decimal, drawID drawtime.DrawID, alpha fixedpoint.SD59x18) (bool, error) {
	if drawID == 0 {
		return false, ErrZeroDrawID
	}
	if err := checkAlpha(alpha); err != nil {
		return false, err
	}
	if err := safemath.CheckUint(amount, safemath.Uint96); err != nil {
		return false, fmt.Errorf("contribution amount: %w", err)
	}
	if a.Observations == nil {
		a.Observations = make(map[drawtime.DrawID]Observation)
	}

	info := a.RingBufferInfo
	if info.Cardinality == 0 {
		a.push(drawID, Observation{Available: amount, Disbursed: decimal.Zero})
		return true, nil
	}

	newestDrawID := a.DrawRingBuffer[newestIndex(info)]
	if drawID < newestDrawID {
		return false, fmt.Errorf("%w: draw %d, newest %d", ErrNonMonotonicDraw, drawID, newestDrawID)
	}
	newest := a.Observations[newestDrawID]

	if drawID == newestDrawID {
		available := newest.Available.Add(amount)
		if err := safemath.CheckUint(available, safemath.Uint96); err != nil {
			return false, fmt.Errorf("available balance: %w", err)
		}
		a.Observations[newestDrawID] = Observation{
			Available: available,
			Disbursed: newest.Disbursed,
		}
		return false, nil
	}

	relativeDraw := drawID.Since(newestDrawID)
	remaining := IntegrateInf(alpha, relativeDraw, newest.Available)
	released := newest.Available.Sub(remaining)

	obs := Observation{
		Available: amount.Add(remaining),
		Disbursed: newest.Disbursed.Add(released),
	}
	if err := safemath.CheckUint(obs.Available, safemath.Uint96); err != nil {
		return false, fmt.Errorf("available balance: %w", err)
	}
	if err := safemath.CheckUint(obs.Disbursed, safemath.Uint160); err != nil {
		return false, fmt.Errorf("disbursed balance: %w", err)
	}

	a.push(drawID, obs)
	return true, nil
}

// push appends an observation, evicting the oldest one when the ring is full.
func (a *Accumulator) push(drawID drawtime.DrawID, obs Observation) {
	info := a.RingBufferInfo
	if info.Cardinality == MaxCardinality {
		delete(a.Observations, a.DrawRingBuffer[info.NextIndex])
	} else {
		info.Cardinality++
	}
	a.DrawRingBuffer[info.NextIndex] = drawID
	a.Observations[drawID] = obs
	info.NextIndex = (info.NextIndex + 1) % MaxCardinality
	a.RingBufferInfo = info
}

// NewestObservation returns the newest observation and its draw id. An empty
// accumulator returns draw 0 and a zero observation.
func (a *Accumulator) NewestObservation() (drawtime.DrawID, Observation) {
	if a.RingBufferInfo.Cardinality == 0 {
		return 0, Observation{Available: decimal.Zero, Disbursed: decimal.Zero}
	}
	id := a.DrawRingBuffer[newestIndex(a.RingBufferInfo)]
	return id, a.Observations[id]
}

// NewestDrawID returns the draw of the newest observation, or 0.
func (a *Accumulator) NewestDrawID() drawtime.DrawID {
	id, _ := a.NewestObservation()
	return id
}

// OldestDrawID returns the draw of the oldest retained observation, or 0.
func (a *Accumulator) OldestDrawID() drawtime.DrawID {
	if a.RingBufferInfo.Cardinality == 0 {
		return 0
	}
	return a.DrawRingBuffer[oldestIndex(a.RingBufferInfo)]
}

// GetDisbursedBetween returns the amount released in draws [startDrawID,
// endDrawID], both inclusive. The answer is split into a head (residual
// decay of the observation at or before the start, up to the next
// observation), a body (difference of cumulative disbursed amounts between
// observations inside the range) and a tail (decay of the observation at or
// before the end, up to and including the end draw). Draws older than the
// oldest retained observation are not accounted for.
func (a *Accumulator) GetDisbursedBetween(startDrawID, endDrawID drawtime.DrawID, alpha fixedpoint.SD59x18) (decimal.Decimal, error) {
	if startDrawID > endDrawID {
		return decimal.Zero, fmt.Errorf("%w: %d > %d", ErrInvalidRange, startDrawID, endDrawID)
	}
	if err := checkAlpha(alpha); err != nil {
		return decimal.Zero, err
	}
	if a.RingBufferInfo.Cardinality == 0 {
		return decimal.Zero, nil
	}

	oldestDrawID := a.OldestDrawID()
	if endDrawID < oldestDrawID {
		return decimal.Zero, nil
	}

	endObsDrawID, _, _ := a.observationsAround(endDrawID)
	endObs := a.Observations[endObsDrawID]
	tail := Integrate(alpha, 0, endDrawID.Since(endObsDrawID)+1, endObs.Available)

	if startDrawID <= oldestDrawID {
		body := endObs.Disbursed.Sub(a.Observations[oldestDrawID].Disbursed)
		return body.Add(tail), nil
	}

	beforeStartDrawID, afterStartDrawID, _ := a.observationsAround(startDrawID)
	beforeStart := a.Observations[beforeStartDrawID]

	// Start and end fall after the same observation.
	if beforeStartDrawID == endObsDrawID {
		return Integrate(
			alpha,
			startDrawID.Since(beforeStartDrawID),
			endDrawID.Since(beforeStartDrawID)+1,
			beforeStart.Available,
		), nil
	}

	// An observation exists in (start, end] so afterStart precedes or equals
	// the end observation.
	head := Integrate(
		alpha,
		startDrawID.Since(beforeStartDrawID),
		afterStartDrawID.Since(beforeStartDrawID),
		beforeStart.Available,
	)
	body := endObs.Disbursed.Sub(a.Observations[afterStartDrawID].Disbursed)

	return head.Add(body).Add(tail), nil
}

// observationsAround returns the draw ids of the last observation at or
// before target and the first observation at or after it. target must not
// precede the oldest observation. hasAfter is false when target is past the
// newest observation.
func (a *Accumulator) observationsAround(target drawtime.DrawID) (beforeOrAt, afterOrAt drawtime.DrawID, hasAfter bool) {
	info := a.RingBufferInfo
	newestIdx := newestIndex(info)
	newestDrawID := a.DrawRingBuffer[newestIdx]

	if target >= newestDrawID {
		return newestDrawID, newestDrawID, target == newestDrawID
	}

	// target is strictly inside [oldest, newest) so at least two observations
	// exist.
	secondNewestDrawID := a.DrawRingBuffer[(newestIdx+MaxCardinality-1)%MaxCardinality]
	if target == secondNewestDrawID {
		return secondNewestDrawID, secondNewestDrawID, true
	}
	if target > secondNewestDrawID {
		return secondNewestDrawID, newestDrawID, true
	}

	_, beforeOrAt, _, afterOrAt = BinarySearch(
		a.DrawRingBuffer[:],
		oldestIndex(info),
		newestIdx,
		info.Cardinality,
		target,
	)
	return beforeOrAt, afterOrAt, true
}

func newestIndex(info RingBufferInfo) uint16 {
	return (info.NextIndex + MaxCardinality - 1) % MaxCardinality
}

func oldestIndex(info RingBufferInfo) uint16 {
	if info.Cardinality < MaxCardinality {
		return 0
	}
	return info.NextIndex
}
