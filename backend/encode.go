package main

import "fmt"

// EncodeState packs the four state fields into one collision-free key, one
// byte per field: the last face in the most significant byte, then the winner
// and the mover (both biased by +128), and the biased total in the least
// significant byte. Injective over everything Rules can ever produce, so two
// distinct reachable states never share a key.
func EncodeState(state GameState) uint32 {
	assertEncodable(state)
	return uint32(state.LastMove)<<24 |
		uint32(int(state.Winner)+128)<<16 |
		uint32(int(state.ToMove)+128)<<8 |
		uint32(state.Total+128)
}

// The table does not span the full 32-bit codomain; tableIndex compacts a key
// down to the bits each field actually varies over: 6 faces, 3 winner values,
// 2 movers, and the full biased-total byte.
const tableSlots = 6 * 3 * 2 * 256

func tableIndex(key uint32) uint32 {
	face := (key >> 24) - 1
	winner := ((key >> 16) & 0xff) - 127
	mover := (((key >> 8) & 0xff) - 127) >> 1
	totalByte := key & 0xff
	return ((face*3+winner)*2+mover)*256 + totalByte
}

// Encoding a state outside the modeled domain would silently alias table
// slots, so it panics instead (there is no recoverable caller for this).
func assertEncodable(state GameState) {
	if state.LastMove < minFace || state.LastMove > maxFace {
		panic(fmt.Sprintf("encode: last move %d out of range", state.LastMove))
	}
	if state.Total < minFace-maxFace || state.Total > maxStartTotal {
		panic(fmt.Sprintf("encode: total %d out of range", state.Total))
	}
	if state.ToMove != PlayerOne && state.ToMove != PlayerTwo {
		panic(fmt.Sprintf("encode: invalid player %d", state.ToMove))
	}
	if state.Winner != 0 && state.Winner != PlayerOne && state.Winner != PlayerTwo {
		panic(fmt.Sprintf("encode: invalid winner %d", state.Winner))
	}
}
