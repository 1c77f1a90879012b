package accumulator

import "github.com/eigerco/prizepool/internal/drawtime"

// BinarySearch brackets targetDrawID between two adjacent observations of
// the ring buffer. The logical range [oldestIndex, newestIndex] is unwrapped
// modulo cardinality. The caller guarantees that the target lies within the
// oldest and newest draw ids. On an exact match both results point at the
// matching slot.
func BinarySearch(
	buffer []drawtime.DrawID,
	oldestIndex, newestIndex, cardinality uint16,
	targetDrawID drawtime.DrawID,
) (beforeOrAtIndex uint16, beforeOrAtDrawID drawtime.DrawID, afterOrAtIndex uint16, afterOrAtDrawID drawtime.DrawID) {
	left := uint32(oldestIndex)
	right := uint32(newestIndex)
	if right < left {
		right += uint32(cardinality)
	}

	for {
		current := (left + right) / 2

		beforeOrAtIndex = uint16(current % uint32(cardinality))
		beforeOrAtDrawID = buffer[beforeOrAtIndex]

		if beforeOrAtDrawID == targetDrawID {
			return beforeOrAtIndex, beforeOrAtDrawID, beforeOrAtIndex, beforeOrAtDrawID
		}

		afterOrAtIndex = uint16((current + 1) % uint32(cardinality))
		afterOrAtDrawID = buffer[afterOrAtIndex]

		targetAtOrAfter := beforeOrAtDrawID < targetDrawID
		if targetAtOrAfter && targetDrawID == afterOrAtDrawID {
			return afterOrAtIndex, afterOrAtDrawID, afterOrAtIndex, afterOrAtDrawID
		}
		if targetAtOrAfter && targetDrawID < afterOrAtDrawID {
			return beforeOrAtIndex, beforeOrAtDrawID, afterOrAtIndex, afterOrAtDrawID
		}

		if !targetAtOrAfter {
			right = current - 1
		} else {
			left = current + 1
		}
	}
}
