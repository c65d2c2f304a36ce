// Package ic implements the property-access inline caches
// (GetObjectPreComputedCase / SetObjectPreComputedCase) and the
// global-variable access cache described in spec.md §4.3. No teacher file
// implements inline caches (the PHP VM this module started from does
// plain hash lookups); this package is grounded directly on the spec,
// using the teacher's general "small fixed-size parallel arrays with
// miss-count-gated promotion" idiom seen in vm/class_manager.go's table
// management.
package ic

import (
	"golang.org/x/exp/slices"

	"github.com/wudi/escargot-core/values"
)

// Tuning constants; the spec.md §9 Open Question calls these "empirical."
// Compiled-in defaults here, overridable via the config package.
const (
	DefaultMinCacheFillCount = 4
	DefaultMaxCacheCount     = 24
	DefaultMaxCacheMissCount = 32
)

// Config lets a host override the tuning constants (wired from package
// config's YAML loader).
type Config struct {
	MinCacheFillCount int
	MaxCacheCount     int
	MaxCacheMissCount int
}

var defaultConfig = Config{
	MinCacheFillCount: DefaultMinCacheFillCount,
	MaxCacheCount:     DefaultMaxCacheCount,
	MaxCacheMissCount: DefaultMaxCacheMissCount,
}

func DefaultConfig() Config {
	return defaultConfig
}

// SetDefaultConfig overrides the tuning constants every subsequently
// created cache uses (registry.CodeBlock.GetCache/SetCache call
// DefaultConfig lazily, on first use of a given call site). Package
// config's YAML loader calls this once at startup; caches already created
// before the call keep whatever config they were built with.
func SetDefaultConfig(cfg Config) {
	defaultConfig = cfg
}

// simpleEntry is one probe of a Simple IC: a structure that, if matched by
// pointer identity against the receiver's current structure, means the
// property lives at Index in the receiver's own slot vector.
type simpleEntry struct {
	structure *values.ObjectStructure
	index     int
}

// complexEntry is one probe of a Complex IC: a chain of structures walked
// from the receiver outward through its prototype chain, with the target
// slot index at the chain's end.
type complexEntry struct {
	chain []*values.ObjectStructure
	index int
	// found is false for a cached "definitely absent" outcome (returns
	// undefined without walking further).
	found bool
}

// GetPrecomputedCache is the per-call-site cache for a property-read
// opcode (GetObjectPreComputedCase).
type GetPrecomputedCache struct {
	cfg       Config
	propName  string
	simple    []simpleEntry
	complex   []complexEntry
	isComplex bool
	missCount int
	giveUp    bool
}

func NewGetCache(propName string, cfg Config) *GetPrecomputedCache {
	return &GetPrecomputedCache{cfg: cfg, propName: propName}
}

// GetResult reports the outcome of a cache-assisted property read.
type GetResult struct {
	Value Value
	Found bool
}

// Value aliases values.Value to keep this package's public surface
// self-contained for readers skimming it in isolation.
type Value = values.Value

// Lookup attempts the cache; ok=false means the caller must fall through
// to the generic property-get path (and should call RecordMiss with the
// result).
func (c *GetPrecomputedCache) Lookup(receiver *values.Object) (GetResult, bool) {
	if c.giveUp {
		return GetResult{}, false
	}
	if !c.isComplex {
		for _, e := range c.simple {
			if e.structure == receiver.Structure {
				return GetResult{Value: receiver.Slots[e.index].Value, Found: true}, true
			}
		}
		return GetResult{}, false
	}
	for _, e := range c.complex {
		cur := receiver
		matched := true
		for depth, s := range e.chain {
			if cur == nil || cur.Structure != s {
				matched = false
				break
			}
			if depth < len(e.chain)-1 {
				cur = cur.Prototype
			}
		}
		if !matched {
			continue
		}
		if !e.found {
			return GetResult{Found: false}, true
		}
		return GetResult{Value: cur.Slots[e.index].Value, Found: true}, true
	}
	return GetResult{}, false
}

// RecordMiss is called after a generic lookup resolved the property
// (chain = the prototype-chain of structures walked starting at the
// receiver, index = the slot index in the owning object, found = whether
// a plain-data property was located at all). It implements the promotion/
// eviction policy from spec.md §4.3.
func (c *GetPrecomputedCache) RecordMiss(chain []*values.ObjectStructure, index int, found, isPlainData bool) {
	if c.giveUp {
		return
	}
	c.missCount++
	if c.missCount < c.cfg.MinCacheFillCount {
		return
	}
	if c.missCount > c.cfg.MaxCacheMissCount {
		c.giveUp = true
		return
	}
	if !isPlainData {
		// accessor / proxy property: this package models only the plain
		// data fast path; accessor dispatch always falls through.
		return
	}
	if !c.isComplex && len(chain) == 1 && index <= 255 {
		c.simple = append(c.simple, simpleEntry{structure: chain[0], index: index})
		return
	}
	c.isComplex = true
	entry := complexEntry{chain: append([]*values.ObjectStructure(nil), chain...), index: index, found: found}
	c.complex = slices.Insert(c.complex, 0, entry)
	if len(c.complex) > c.cfg.MaxCacheCount {
		c.complex = c.complex[:c.cfg.MaxCacheCount]
	}
}

// SetPrecomputedCache is the per-call-site cache for a property-write
// opcode (SetObjectPreComputedCase).
type SetPrecomputedCache struct {
	cfg Config
	// own-property overwrite case
	beforeStructure *values.ObjectStructure
	ownIndex        int
	hasOwnCase      bool
	// transition (new own property) case
	transitionBefore *values.ObjectStructure
	transitionChain  []*values.ObjectStructure
	transitionAfter  *values.ObjectStructure
	hasTransition    bool
	giveUp           bool
}

func NewSetCache(cfg Config) *SetPrecomputedCache {
	return &SetPrecomputedCache{cfg: cfg}
}

// TryOwnWrite attempts the own-property plain-writable fast path; ok=false
// means the caller must fall through.
func (c *SetPrecomputedCache) TryOwnWrite(receiver *values.Object, v Value) bool {
	if c.giveUp || !c.hasOwnCase || receiver.Structure != c.beforeStructure {
		return false
	}
	receiver.SetOwnAt(c.ownIndex, v)
	return true
}

// RecordOwnWrite installs the own-property overwrite IC.
func (c *SetPrecomputedCache) RecordOwnWrite(structure *values.ObjectStructure, index int) {
	c.beforeStructure = structure
	c.ownIndex = index
	c.hasOwnCase = true
}

// TryTransition attempts the new-own-property transition fast path.
func (c *SetPrecomputedCache) TryTransition(receiver *values.Object, name string, v Value) bool {
	if c.giveUp || !c.hasTransition || receiver.Structure != c.transitionBefore {
		return false
	}
	receiver.Structure = c.transitionAfter
	receiver.Slots = append(receiver.Slots, values.PropertyDescriptor{Value: v, Writable: true, Enumerable: true, Configurable: true})
	return true
}

// RecordTransition installs the transition IC after a generic define-own
// walked the chain and transitioned the structure.
func (c *SetPrecomputedCache) RecordTransition(before *values.ObjectStructure, chain []*values.ObjectStructure, after *values.ObjectStructure) {
	c.transitionBefore = before
	c.transitionChain = append([]*values.ObjectStructure(nil), chain...)
	c.transitionAfter = after
	c.hasTransition = true
}

// GiveUp permanently disables this cache (a setter was encountered
// somewhere in the chain, per spec.md's "Setters encountered anywhere in
// the chain force a give-up").
func (c *SetPrecomputedCache) GiveUp() { c.giveUp = true }
