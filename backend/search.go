package main

import (
	"log"
	"sync"
	"time"
)

// Score window bounds. Actual game outcomes are confined to {-1, 0, 1}; the
// window constants just need to bracket them while staying representable in
// the packed record's 6-bit score field. scoreNone is the "no move searched
// yet" sentinel and is below any score the search can return.
const (
	ScoreMax  = 31
	ScoreMin  = -31
	scoreNone = -32
)

type SearchStats struct {
	Start       time.Time
	Nodes       uint64
	TTExactHits uint64
	TTBoundHits uint64
	TTCutoffs   uint64
	TTStores    uint64
	LeafNodes   uint64
}

// SearchEngine owns its transposition table: the table is built with the
// engine, lives as long as it, and is touched by nothing else.
type SearchEngine struct {
	rules    Rules
	tt       *TranspositionTable
	stats    SearchStats
	maxDepth int
}

func NewSearchEngine(config Config) *SearchEngine {
	return &SearchEngine{
		rules:    NewRules(),
		tt:       NewTranspositionTable(config.TtDepthGatedReplace),
		maxDepth: config.SearchMaxDepth,
		stats:    SearchStats{Start: time.Now()},
	}
}

func (e *SearchEngine) Table() *TranspositionTable {
	return e.tt
}

func (e *SearchEngine) Stats() SearchStats {
	return e.stats
}

func (e *SearchEngine) ResetStats() {
	e.stats = SearchStats{Start: time.Now()}
}

func (e *SearchEngine) MaxDepth() int {
	return e.maxDepth
}

// Evaluate reports the perfect-play score of a state from the mover's
// perspective, over a full window at the engine's depth cap.
func (e *SearchEngine) Evaluate(state GameState) int {
	return e.Search(state, e.maxDepth, ScoreMin, ScoreMax)
}

// Search is a negamax over the four legal successors, scored from the
// perspective of state.ToMove. Pruning happens exclusively through the
// transposition table: an exact hit on a child becomes the result of this
// whole call, while lower/upper hits tighten the window and cut off once it
// closes. Child values are stored back unconditionally, classified against
// the window in effect when they were searched.
func (e *SearchEngine) Search(state GameState, depth int, alpha, beta int) int {
	e.stats.Nodes++
	if depth == 0 || e.rules.IsTerminal(state) {
		e.stats.LeafNodes++
		return int(state.ToMove) * e.rules.EvaluateTerminal(state)
	}

	best := scoreNone
	for _, successor := range e.rules.LegalSuccessors(state) {
		key := EncodeState(successor)
		if entry, ok := e.tt.Probe(key); ok && entry.Depth >= depth {
			switch entry.Flag {
			case TTExact:
				e.stats.TTExactHits++
				return entry.Score
			case TTLower:
				e.stats.TTBoundHits++
				if entry.Score > alpha {
					alpha = entry.Score
				}
			case TTUpper:
				e.stats.TTBoundHits++
				if entry.Score < beta {
					beta = entry.Score
				}
			}
			if alpha >= beta {
				e.stats.TTCutoffs++
				if entry.Score > best {
					return entry.Score
				}
				return best
			}
		}

		val := -e.Search(successor, depth-1, alpha, beta)
		if val > best {
			best = val
		}
		flag := TTExact
		if val <= alpha {
			flag = TTUpper
		} else if val >= beta {
			flag = TTLower
		}
		e.tt.Store(key, depth, flag, val)
		e.stats.TTStores++
	}
	return best
}

func logSearchStats(label string, stats SearchStats, engine *SearchEngine) {
	elapsed := time.Since(stats.Start)
	log.Printf("[ai:search] %s nodes=%d leaves=%d tt_exact=%d tt_bound=%d tt_cutoffs=%d tt_stores=%d tt_used=%d/%d elapsed=%s",
		label, stats.Nodes, stats.LeafNodes, stats.TTExactHits, stats.TTBoundHits,
		stats.TTCutoffs, stats.TTStores, engine.Table().Count(), engine.Table().Capacity(), elapsed)
}

// The game's AI players share one engine (and therefore one table) for the
// life of the process; the sweep builds fresh engines instead so every
// enumerated configuration is evaluated against a cleared table.
var sharedEngine struct {
	mu     sync.Mutex
	engine *SearchEngine
}

func SharedSearchEngine() *SearchEngine {
	sharedEngine.mu.Lock()
	defer sharedEngine.mu.Unlock()
	if sharedEngine.engine == nil {
		sharedEngine.engine = NewSearchEngine(GetConfig())
	}
	return sharedEngine.engine
}

func FlushSharedSearchEngine() {
	sharedEngine.mu.Lock()
	sharedEngine.engine = nil
	sharedEngine.mu.Unlock()
}
