package main

import "fmt"

type TTFlag uint8

const (
	TTExact TTFlag = iota
	TTLower
	TTUpper
)

// TTEntry is the unpacked view of one table record.
type TTEntry struct {
	Depth int
	Score int
	Flag  TTFlag
}

// Records are packed into a uint16: depth in the high byte, the bound flag in
// bits 6-7, and the score in bits 0-5 as 6-bit two's complement. A zero depth
// byte is the "no record" sentinel, which is why the search never stores at
// depth 0.
const (
	packedScoreMin = -32
	packedScoreMax = 31
	packedDepthMax = 255
)

func packRecord(depth int, flag TTFlag, score int) uint16 {
	if depth < 1 || depth > packedDepthMax {
		panic(fmt.Sprintf("tt: depth %d out of packed range", depth))
	}
	if score < packedScoreMin || score > packedScoreMax {
		panic(fmt.Sprintf("tt: score %d out of packed range", score))
	}
	return uint16(depth)<<8 | uint16(flag)<<6 | uint16(score&0x3f)
}

func unpackRecord(packed uint16) TTEntry {
	score := int(packed & 0x3f)
	if score > packedScoreMax {
		score -= 64
	}
	return TTEntry{
		Depth: int(packed >> 8),
		Flag:  TTFlag((packed >> 6) & 0x3),
		Score: score,
	}
}

// TranspositionTable is a flat array of packed records, one slot per possible
// encoded key, direct-indexed through tableIndex. The encoder is injective
// over the reachable domain, so slots never alias and no replacement or
// chaining logic is needed.
type TranspositionTable struct {
	records    []uint16
	depthGated bool
	stores     uint64
}

func NewTranspositionTable(depthGated bool) *TranspositionTable {
	return &TranspositionTable{
		records:    make([]uint16, tableSlots),
		depthGated: depthGated,
	}
}

func (tt *TranspositionTable) Probe(key uint32) (TTEntry, bool) {
	packed := tt.records[tableIndex(key)]
	if packed>>8 == 0 {
		return TTEntry{}, false
	}
	return unpackRecord(packed), true
}

// Store overwrites the slot unconditionally, even when a deeper record is
// already present. Depth-gated replacement changes search results in
// non-obvious ways and is only available behind the config flag so the
// divergence can be exercised in tests.
func (tt *TranspositionTable) Store(key uint32, depth int, flag TTFlag, score int) {
	idx := tableIndex(key)
	if tt.depthGated {
		if old := tt.records[idx]; old>>8 != 0 && int(old>>8) > depth {
			return
		}
	}
	tt.records[idx] = packRecord(depth, flag, score)
	tt.stores++
}

func (tt *TranspositionTable) Clear() {
	for i := range tt.records {
		tt.records[i] = 0
	}
	tt.stores = 0
}

func (tt *TranspositionTable) Count() int {
	count := 0
	for _, packed := range tt.records {
		if packed>>8 != 0 {
			count++
		}
	}
	return count
}

func (tt *TranspositionTable) Capacity() int {
	return len(tt.records)
}

func (tt *TranspositionTable) Stores() uint64 {
	return tt.stores
}

type ttDumpEntry struct {
	Slot  int    `json:"slot"`
	Depth int    `json:"depth"`
	Score int    `json:"score"`
	Flag  string `json:"flag"`
}

// Entries returns a page of occupied slots for the cache inspection API.
func (tt *TranspositionTable) Entries(offset, limit int) ([]ttDumpEntry, int) {
	occupied := make([]ttDumpEntry, 0, limit)
	total := 0
	for slot, packed := range tt.records {
		if packed>>8 == 0 {
			continue
		}
		if total >= offset && len(occupied) < limit {
			entry := unpackRecord(packed)
			occupied = append(occupied, ttDumpEntry{
				Slot:  slot,
				Depth: entry.Depth,
				Score: entry.Score,
				Flag:  entry.Flag.String(),
			})
		}
		total++
	}
	return occupied, total
}

func (f TTFlag) String() string {
	switch f {
	case TTExact:
		return "exact"
	case TTLower:
		return "lower"
	case TTUpper:
		return "upper"
	default:
		return "invalid"
	}
}
