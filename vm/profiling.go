package vm

import (
	"fmt"
	"sort"
	"sync"

	"github.com/dustin/go-humanize"

	"github.com/wudi/escargot-core/opcodes"
)

// HotSpot reports one instruction's execution count, sorted most-executed
// first by profileState.hotSpots.
type HotSpot struct {
	IP    int
	Count int
}

// profileState accumulates per-instruction and per-opcode execution counts
// plus allocation/free deltas, kept nearly verbatim from the teacher's
// profileState; PHP's Context allocation tracker and this module's heap
// both just need a counter, so recordAlloc carries over unchanged.
type profileState struct {
	mu sync.Mutex

	instructionCounts map[int]int
	opcodeCounts      map[opcodes.Opcode]int

	allocs int
	frees  int

	debug []string
}

func newProfileState() *profileState {
	return &profileState{
		instructionCounts: make(map[int]int),
		opcodeCounts:      make(map[opcodes.Opcode]int),
		debug:             make([]string, 0, 64),
	}
}

func (ps *profileState) observe(ip int, opcode opcodes.Opcode) {
	ps.mu.Lock()
	ps.instructionCounts[ip]++
	ps.opcodeCounts[opcode]++
	ps.mu.Unlock()
}

func (ps *profileState) addDebug(message string) {
	ps.mu.Lock()
	ps.debug = append(ps.debug, message)
	ps.mu.Unlock()
}

func (ps *profileState) debugRecords() []string {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	out := make([]string, len(ps.debug))
	copy(out, ps.debug)
	return out
}

func (ps *profileState) hotSpots(n int) []HotSpot {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	spots := make([]HotSpot, 0, len(ps.instructionCounts))
	for ip, count := range ps.instructionCounts {
		spots = append(spots, HotSpot{IP: ip, Count: count})
	}
	sort.Slice(spots, func(i, j int) bool {
		if spots[i].Count == spots[j].Count {
			return spots[i].IP < spots[j].IP
		}
		return spots[i].Count > spots[j].Count
	})
	if n <= 0 || n >= len(spots) {
		return spots
	}
	return spots[:n]
}

// opcodeBreakdown returns the top n opcodes by execution count, used by
// cmd/jsvmdbg's `profile` command.
func (ps *profileState) opcodeBreakdown(n int) []struct {
	Opcode opcodes.Opcode
	Count  int
} {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	type entry struct {
		Opcode opcodes.Opcode
		Count  int
	}
	entries := make([]entry, 0, len(ps.opcodeCounts))
	for op, count := range ps.opcodeCounts {
		entries = append(entries, entry{op, count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count == entries[j].Count {
			return entries[i].Opcode < entries[j].Opcode
		}
		return entries[i].Count > entries[j].Count
	})
	if n > 0 && n < len(entries) {
		entries = entries[:n]
	}
	out := make([]struct {
		Opcode opcodes.Opcode
		Count  int
	}, len(entries))
	for i, e := range entries {
		out[i] = e
	}
	return out
}

// render renders a human-readable summary, using go-humanize so large
// instruction counts in a long-running REPL session stay legible
// ("1,234,567" rather than "1234567").
func (ps *profileState) render() string {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if len(ps.instructionCounts) == 0 {
		return "(no profiling data)"
	}
	total := 0
	for _, count := range ps.instructionCounts {
		total += count
	}
	return fmt.Sprintf(
		"instructions executed: %s, unique ips: %s, heap allocs: %s, heap frees: %s",
		humanize.Comma(int64(total)),
		humanize.Comma(int64(len(ps.instructionCounts))),
		humanize.Comma(int64(ps.allocs)),
		humanize.Comma(int64(ps.frees)),
	)
}

func (ps *profileState) recordAlloc(delta int) {
	ps.mu.Lock()
	if delta > 0 {
		ps.allocs += delta
	} else {
		ps.frees += -delta
	}
	ps.mu.Unlock()
}

// OpcodeCount is the exported shape of profileState.opcodeBreakdown's
// result, named so cmd/jsvmdbg doesn't need to juggle an anonymous struct
// type across a package boundary.
type OpcodeCount struct {
	Opcode opcodes.Opcode
	Count  int
}

// ProfileReport renders the VM's accumulated profiling counters in the
// one-line summary format cmd/jsvm prints after a run and cmd/jsvmdbg's
// `profile` command prints on demand.
func (vm *VirtualMachine) ProfileReport() string { return vm.profile.render() }

// HotSpots returns the n most-executed instruction pointers, or all of
// them if n <= 0.
func (vm *VirtualMachine) HotSpots(n int) []HotSpot { return vm.profile.hotSpots(n) }

// OpcodeBreakdown returns the n most-executed opcodes, or all of them if
// n <= 0.
func (vm *VirtualMachine) OpcodeBreakdown(n int) []OpcodeCount {
	raw := vm.profile.opcodeBreakdown(n)
	out := make([]OpcodeCount, len(raw))
	for i, e := range raw {
		out[i] = OpcodeCount{Opcode: e.Opcode, Count: e.Count}
	}
	return out
}

// DebugRecords returns a copy of every debug annotation recorded so far
// (breakpoint hits, the debugger's own step/watch notes); the log itself
// is not cleared.
func (vm *VirtualMachine) DebugRecords() []string { return vm.profile.debugRecords() }
