package book

import (
	"sort"
	"sync"

	"github.com/rickgao/marketdepth/internal/model"
)

// Registry is the concurrent symbol -> State mapping. GetOrCreate is
// the hot path; it uses a sync.RWMutex guarding a plain map,
// read-locked for the common case and upgraded to a write lock with a
// double-check only on first observation of a symbol.
type Registry struct {
	cfg Config

	mu     sync.RWMutex
	states map[string]*State

	statsMu sync.Mutex
	stats   ProcessingStats
}

// NewRegistry creates an empty Registry. BookStates are created lazily
// and live for the process lifetime.
func NewRegistry(cfg Config) *Registry {
	return &Registry{
		cfg:    cfg,
		states: make(map[string]*State),
		stats: ProcessingStats{
			SymbolMessageCounts: make(map[string]uint64),
			SymbolLastSequence:  make(map[string]uint64),
		},
	}
}

// GetOrCreate returns the State for symbol, creating it on first call.
func (r *Registry) GetOrCreate(symbol string) *State {
	r.mu.RLock()
	s, ok := r.states[symbol]
	r.mu.RUnlock()
	if ok {
		return s
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok = r.states[symbol]; ok {
		return s
	}
	s = newState(symbol, r.cfg)
	r.states[symbol] = s
	return s
}

// Process routes decoded to GetOrCreate(decoded.Symbol).Process and
// folds the result into the aggregate statistics.
func (r *Registry) Process(decoded model.DecodedSnapshot) ([]CDCEvent, error) {
	state := r.GetOrCreate(decoded.Symbol)
	staleBefore := state.staleSequences
	truncatedBefore := state.truncatedLevels
	events, err := state.Process(decoded)

	r.statsMu.Lock()
	defer r.statsMu.Unlock()
	if err != nil {
		r.stats.ProcessingErrors++
		return events, err
	}
	r.stats.MessagesProcessed++
	r.stats.SymbolMessageCounts[decoded.Symbol]++
	r.stats.SymbolLastSequence[decoded.Symbol] = decoded.Seq
	if decoded.Seq > r.stats.LastSequenceProcessed {
		r.stats.LastSequenceProcessed = decoded.Seq
	}
	r.stats.StaleSequencesObserved += state.staleSequences - staleBefore
	r.stats.TruncatedLevelsObserved += state.truncatedLevels - truncatedBefore
	return events, nil
}

// TrackedSymbols returns a snapshot copy of the symbols seen so far.
func (r *Registry) TrackedSymbols() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	symbols := make([]string, 0, len(r.states))
	for sym := range r.states {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)
	return symbols
}

// AggregateStats returns a snapshot copy of the registry's counters.
func (r *Registry) AggregateStats() ProcessingStats {
	r.statsMu.Lock()
	defer r.statsMu.Unlock()

	counts := make(map[string]uint64, len(r.stats.SymbolMessageCounts))
	for k, v := range r.stats.SymbolMessageCounts {
		counts[k] = v
	}
	lastSeq := make(map[string]uint64, len(r.stats.SymbolLastSequence))
	for k, v := range r.stats.SymbolLastSequence {
		lastSeq[k] = v
	}
	stats := r.stats
	stats.SymbolMessageCounts = counts
	stats.SymbolLastSequence = lastSeq
	return stats
}
