package main

import (
	"fmt"
	"math/rand"
)

// digestCheck is a synthetic Checkable standing in for a real predicate
// (signature verification, script evaluation, and the like): a cheap
// deterministic computation that can still fail, so a demo run can
// exercise both a passing and a failing round.
type digestCheck struct {
	id      int
	payload uint64
	poison  bool
}

// Check mixes payload and id into a trivial checksum and fails when poison
// is set, or when the checksum comes out zero for a nonzero payload (which
// is practically never). The arithmetic itself is meaningless; it exists
// purely to give Check() nontrivial, non-optimizable work.
func (d digestCheck) Check() bool {
	sum := d.payload
	for i := 0; i < 64; i++ {
		sum = (sum*2654435761 + uint64(d.id)) ^ (sum >> 13)
	}
	if d.poison {
		return false
	}
	return sum != 0 || d.payload == 0
}

// generateBatches splits n synthetic checks into batches of n/batchCount
// checks (at least 1), plus a final shorter batch for any remainder, so
// the number of batches equals batchCount only when it divides n. If
// poisonIdx is >= 0, the check at that global index is seeded to fail.
func generateBatches(n, batchCount, poisonIdx int, seed int64) [][]digestCheck {
	r := rand.New(rand.NewSource(seed))
	if batchCount <= 0 {
		batchCount = 1
	}
	batches := make([][]digestCheck, 0, batchCount)
	per := n / batchCount
	if per == 0 {
		per = 1
	}
	id := 0
	for len(batches)*per < n {
		remaining := n - len(batches)*per
		size := per
		if size > remaining {
			size = remaining
		}
		batch := make([]digestCheck, size)
		for i := range batch {
			batch[i] = digestCheck{
				id:      id,
				payload: r.Uint64(),
				poison:  id == poisonIdx,
			}
			id++
		}
		batches = append(batches, batch)
	}
	return batches
}

func describeBatches(batches [][]digestCheck) string {
	total := 0
	for _, b := range batches {
		total += len(b)
	}
	return fmt.Sprintf("%d batches, %d items", len(batches), total)
}
