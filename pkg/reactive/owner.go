package reactive

import (
	"sync"
	"sync/atomic"
)

// Owner represents a UI scope with a mount/unmount lifecycle.
// Resources owned by the scope register hooks that run just before the scope
// is mounted and when it is unmounted.
//
// Owners form a hierarchy mirroring the component tree: mounting an Owner
// mounts its children after it, and unmounting it unmounts its children first.
// Unmount is terminal.
type Owner struct {
	id uint64

	// parent is nil for a root Owner.
	parent *Owner

	children   []*Owner
	childrenMu sync.Mutex

	beforeMount []func()
	unmount     []func()
	hooksMu     sync.Mutex

	mounted  atomic.Bool
	disposed atomic.Bool
}

// NewOwner creates an Owner registered as a child of parent.
// If parent is nil, creates a root Owner.
func NewOwner(parent *Owner) *Owner {
	o := &Owner{
		id:     nextID(),
		parent: parent,
	}
	if parent != nil {
		parent.addChild(o)
	}
	return o
}

// ID returns the unique identifier for this Owner.
func (o *Owner) ID() uint64 {
	return o.id
}

// Parent returns the parent Owner, or nil for a root Owner.
func (o *Owner) Parent() *Owner {
	return o.parent
}

// IsMounted reports whether Mount has run and Unmount has not.
func (o *Owner) IsMounted() bool {
	return o.mounted.Load() && !o.disposed.Load()
}

// IsDisposed reports whether the Owner has been unmounted.
func (o *Owner) IsDisposed() bool {
	return o.disposed.Load()
}

// OnBeforeMount registers fn to run just before the Owner mounts.
// If the Owner is already mounted, fn runs immediately. If it has been
// unmounted, fn never runs.
func (o *Owner) OnBeforeMount(fn func()) {
	if o.disposed.Load() {
		return
	}

	o.hooksMu.Lock()
	if o.mounted.Load() {
		o.hooksMu.Unlock()
		fn()
		return
	}
	o.beforeMount = append(o.beforeMount, fn)
	o.hooksMu.Unlock()
}

// OnUnmount registers fn to run when the Owner unmounts.
// If the Owner has already been unmounted, fn runs immediately.
func (o *Owner) OnUnmount(fn func()) {
	if o.disposed.Load() {
		fn()
		return
	}

	o.hooksMu.Lock()
	defer o.hooksMu.Unlock()
	o.unmount = append(o.unmount, fn)
}

// Mount runs the before-mount hooks in registration order, marks the Owner
// mounted, then mounts its children. Mounting twice is a no-op.
func (o *Owner) Mount() {
	if o.disposed.Load() {
		return
	}

	o.hooksMu.Lock()
	if o.mounted.Load() {
		o.hooksMu.Unlock()
		return
	}
	hooks := o.beforeMount
	o.beforeMount = nil
	o.hooksMu.Unlock()

	for _, fn := range hooks {
		fn()
	}

	// Hooks registered while the ones above ran are picked up here.
	o.hooksMu.Lock()
	late := o.beforeMount
	o.beforeMount = nil
	o.mounted.Store(true)
	o.hooksMu.Unlock()

	for _, fn := range late {
		fn()
	}

	for _, child := range o.snapshotChildren() {
		child.Mount()
	}
}

// Unmount unmounts children in reverse order, then runs this Owner's unmount
// hooks in reverse registration order. It is safe to call more than once.
func (o *Owner) Unmount() {
	if o.disposed.Swap(true) {
		return
	}

	if o.parent != nil {
		o.parent.removeChild(o)
	}

	o.childrenMu.Lock()
	children := o.children
	o.children = nil
	o.childrenMu.Unlock()

	for i := len(children) - 1; i >= 0; i-- {
		children[i].Unmount()
	}

	o.hooksMu.Lock()
	hooks := o.unmount
	o.unmount = nil
	o.beforeMount = nil
	o.hooksMu.Unlock()

	for i := len(hooks) - 1; i >= 0; i-- {
		hooks[i]()
	}
	o.mounted.Store(false)
}

func (o *Owner) addChild(child *Owner) {
	o.childrenMu.Lock()
	defer o.childrenMu.Unlock()
	o.children = append(o.children, child)
}

func (o *Owner) removeChild(child *Owner) {
	o.childrenMu.Lock()
	defer o.childrenMu.Unlock()

	for i, c := range o.children {
		if c == child {
			o.children = append(o.children[:i], o.children[i+1:]...)
			return
		}
	}
}

func (o *Owner) snapshotChildren() []*Owner {
	o.childrenMu.Lock()
	defer o.childrenMu.Unlock()
	return append([]*Owner(nil), o.children...)
}
