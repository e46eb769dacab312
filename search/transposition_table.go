package search

import (
	"sync/atomic"

	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"
)

const (
	ttExact = 0x01
	ttLower = 0x02
	ttUpper = 0x03
)

const entrySize = 16

const depthMask = (1 << 6) - 1

// 16 bytes (entrySize)
type tableEntry struct {
	fullHash     uint64
	score        int32
	flagAndDepth uint8 // flag in the top 2 bits, depth in the bottom 6
	bestMoveIdx  uint8
}

func (t tableEntry) flag() uint8 {
	return t.flagAndDepth >> 6
}

func (t tableEntry) depth() int {
	return int(t.flagAndDepth & depthMask)
}

func (t tableEntry) valid() bool {
	// a table flag is 1, 2, or 3.
	return t.flag() != 0
}

// TranspositionTable caches prior search results keyed by position hash.
// Fixed array, no chaining, no growth: the table owns all of its storage
// up front, so nothing can fail to allocate mid-search. It is not safe for
// concurrent use; each concurrently running Solver owns its own table.
type TranspositionTable struct {
	table        []tableEntry
	sizePowerOf2 int
	sizeMask     uint64

	created atomic.Uint64
	lookups atomic.Uint64
	hits    atomic.Uint64
	// "type 2" collisions: two positions sharing a slot. Type 1 collisions
	// (two positions sharing a full 64-bit hash) are rarer and resolved
	// incorrectly by design; the probe's exact-hash check makes a type 2
	// collision a plain miss.
	t2collisions atomic.Uint64
}

// Reset sizes the table to the largest power-of-two entry count that fits
// the given memory budget, capped at a quarter of total system memory,
// and clears it. Existing storage of the right size is reused.
func (t *TranspositionTable) Reset(sizeMB int) {
	budget := uint64(sizeMB) << 20
	if memCap := memory.TotalMemory() / 4; memCap > 0 && budget > memCap {
		budget = memCap
	}
	desired := budget / entrySize
	t.sizePowerOf2 = 10
	for uint64(1)<<(t.sizePowerOf2+1) <= desired {
		t.sizePowerOf2++
	}
	numElems := 1 << t.sizePowerOf2
	t.sizeMask = uint64(numElems - 1)
	reused := t.table != nil && len(t.table) == numElems
	if reused {
		clear(t.table)
	} else {
		t.table = make([]tableEntry, numElems)
	}
	log.Debug().Int("num-elems", numElems).
		Int("requested-mb", sizeMB).
		Int("estimated-total-memory-bytes", numElems*entrySize).
		Bool("reused", reused).
		Msg("transposition-table-size")
	t.created.Store(0)
	t.lookups.Store(0)
	t.hits.Store(0)
	t.t2collisions.Store(0)
}

// Clear zeroes every entry, keeping the allocation. Called once at the
// start of each top-level search so no stale best-move index can refer to
// a different search's move ordering.
func (t *TranspositionTable) Clear() {
	clear(t.table)
	t.created.Store(0)
	t.lookups.Store(0)
	t.hits.Store(0)
	t.t2collisions.Store(0)
}

func (t *TranspositionTable) probe(hash uint64) (tableEntry, bool) {
	t.lookups.Add(1)
	idx := hash & t.sizeMask
	entry := t.table[idx]
	if entry.fullHash != hash || !entry.valid() {
		if entry.valid() {
			// Another position lives in this slot.
			t.t2collisions.Add(1)
		}
		return tableEntry{}, false
	}
	t.hits.Add(1)
	return entry, true
}

// store writes an entry. The slot is overwritten when it is empty, when it
// holds the same position (always refresh, regardless of depth), or when
// the new depth is at least the stored depth (depth-preferred replacement
// between different positions sharing a slot).
func (t *TranspositionTable) store(hash uint64, score int, depth int, flag uint8, bestMoveIdx uint8) {
	idx := hash & t.sizeMask
	existing := t.table[idx]
	if existing.valid() && existing.fullHash != hash && depth < existing.depth() {
		return
	}
	t.table[idx] = tableEntry{
		fullHash:     hash,
		score:        int32(score),
		flagAndDepth: flag<<6 + uint8(depth&depthMask),
		bestMoveIdx:  bestMoveIdx,
	}
	t.created.Add(1)
}
