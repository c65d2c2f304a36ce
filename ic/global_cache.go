package ic

import "github.com/wudi/escargot-core/values"

// GlobalVariableAccessCacheItem is the per-call-site cache for a global
// identifier reference (spec.md §4.3 "Global-variable access cache").
// It is bound either to a slot in the global lexical-declaration storage,
// or to a direct address inside the global object's value vector, and
// invalidates itself naturally by checking the bound size/structure on
// every access.
type GlobalVariableAccessCacheItem struct {
	Name string

	// Lexical-binding form.
	lexicalSlot     int
	boundToLexical  bool
	lexicalSizeSeen int

	// Object-binding form.
	objectStructure *values.ObjectStructure
	objectIndex     int
	boundToObject   bool
}

func NewGlobalVariableAccessCacheItem(name string) *GlobalVariableAccessCacheItem {
	return &GlobalVariableAccessCacheItem{Name: name}
}

// BindLexical records that this site resolved to the global lexical
// record's slot at the time globalDeclarativeStorageSize held its value;
// a later call whose storage has grown past what was recorded still
// validates (growth only appends), a later call where it shrank (should
// never happen, but defensively) invalidates.
func (c *GlobalVariableAccessCacheItem) BindLexical(slot, globalDeclarativeStorageSize int) {
	c.boundToLexical = true
	c.boundToObject = false
	c.lexicalSlot = slot
	c.lexicalSizeSeen = globalDeclarativeStorageSize
}

func (c *GlobalVariableAccessCacheItem) BindObject(structure *values.ObjectStructure, index int) {
	c.boundToObject = true
	c.boundToLexical = false
	c.objectStructure = structure
	c.objectIndex = index
}

// LexicalSlot returns the cached slot and whether the cache is still valid
// given the record's current size.
func (c *GlobalVariableAccessCacheItem) LexicalSlot(currentStorageSize int) (int, bool) {
	if !c.boundToLexical || currentStorageSize < c.lexicalSizeSeen {
		return 0, false
	}
	return c.lexicalSlot, true
}

// ObjectSlot returns the cached index into globalObject's value vector,
// valid only while globalObject's structure pointer still matches what was
// cached (any shape change invalidates).
func (c *GlobalVariableAccessCacheItem) ObjectSlot(globalObject *values.Object) (int, bool) {
	if !c.boundToObject || globalObject.Structure != c.objectStructure {
		return 0, false
	}
	return c.objectIndex, true
}

func (c *GlobalVariableAccessCacheItem) Invalidate() {
	c.boundToLexical = false
	c.boundToObject = false
}
