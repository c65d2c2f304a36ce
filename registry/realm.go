package registry

import (
	"fmt"
	"sync"

	"github.com/wudi/escargot-core/values"
)

// Realm is a threadsafe container for the globally registered symbols one
// execution context shares: top-level function/class descriptors, the
// global object, and the two typeof/apply-fast-path Open Question flags
// spec.md §9 leaves to the implementer. Grounded on the teacher's
// Registry{mu, functions, classes, constants, interfaces, traits} /
// GlobalRegistry singleton, generalized to JS's case-sensitive names
// (the teacher lowercases PHP's case-insensitive identifiers; ECMAScript
// identifiers are case-sensitive, so this realm does not).
type Realm struct {
	mu        sync.RWMutex
	functions map[string]*FunctionDescriptor
	classes   map[string]*ClassDescriptor

	GlobalObject *values.Object

	// TypeofHTMLDDAEnabled gates the Annex B "document.all" typeof
	// exception (spec.md §4.2 "Typeof", §9 Open Questions); off by default.
	TypeofHTMLDDAEnabled bool

	// applyDescriptor, once stamped, is the well-known
	// Function.prototype.apply FunctionObject; MayBuiltinApply's fast path
	// (spec.md §4.5) is permitted only while IsOriginalApply remains true
	// on it. A host replacing the descriptor clears the flag permanently.
	applyDescriptor *values.FunctionObject
}

func NewRealm() *Realm {
	global := values.NewObject("global", nil)
	return &Realm{
		functions:    make(map[string]*FunctionDescriptor),
		classes:      make(map[string]*ClassDescriptor),
		GlobalObject: global,
	}
}

func (r *Realm) RegisterFunction(fd *FunctionDescriptor) error {
	if fd == nil || fd.Name == "" {
		return fmt.Errorf("registry: cannot register function with empty name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.functions[fd.Name] = fd
	return nil
}

func (r *Realm) GetFunction(name string) (*FunctionDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fd, ok := r.functions[name]
	return fd, ok
}

func (r *Realm) RegisterClass(cd *ClassDescriptor) error {
	if cd == nil || cd.Name == "" {
		return fmt.Errorf("registry: cannot register class with empty name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.classes[cd.Name] = cd
	return nil
}

func (r *Realm) GetClass(name string) (*ClassDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cd, ok := r.classes[name]
	return cd, ok
}

// BindOriginalApply stamps the realm's Function.prototype.apply
// FunctionObject, marking it IsOriginalApply for the MayBuiltinApply fast
// path.
func (r *Realm) BindOriginalApply(fn *values.FunctionObject) {
	fn.IsOriginalApply = true
	r.mu.Lock()
	r.applyDescriptor = fn
	r.mu.Unlock()
}

// IsOriginalApply reports whether fn is still the realm's unmodified
// Function.prototype.apply — false once the host replaces it, which
// permanently disables the fast path for this realm.
func (r *Realm) IsOriginalApply(fn *values.FunctionObject) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.applyDescriptor != nil && fn == r.applyDescriptor && fn.IsOriginalApply
}

// InvalidateOriginalApply is called when the host overwrites
// Function.prototype.apply.
func (r *Realm) InvalidateOriginalApply() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.applyDescriptor != nil {
		r.applyDescriptor.IsOriginalApply = false
	}
	r.applyDescriptor = nil
}
