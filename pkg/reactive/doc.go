// Package reactive provides the observable value primitives that storage cells
// are built on.
//
// A Signal holds a value and notifies its listeners when that value changes.
// A Watcher is a listener that runs a callback synchronously after every
// change. An Owner models the mount/unmount lifecycle of whatever UI scope owns
// a set of reactive values.
//
// Unlike implicit deep reactivity, in-place mutation is explicit: either
// replace the value with Set/Update, mutate it through Mutate, or call Notify
// after changing state reachable through an aliased reference.
//
//	count := reactive.NewSignal(0)
//	w := reactive.Watch(count, func() {
//	    fmt.Println("count is", count.Peek())
//	})
//	defer w.Stop()
//
//	count.Set(1) // prints "count is 1"
package reactive
