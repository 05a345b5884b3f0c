// Package storage provides key-value storage areas and the change
// notifications that keep several execution contexts in sync.
//
// A Storage is a string-to-string store with the shape of the browser
// Storage API (GetItem, SetItem, RemoveItem, Clear). Two implementations are
// provided: MemoryStorage, and S3Storage for a durable area shared by several
// processes.
//
// A Window is one execution context, such as a tab or a process. It owns a
// session-scoped area and shares a local area with other windows. Writes made
// through a Window's areas publish an Event on a Bus; every other window
// subscribed to the bus receives it through its listeners. The writing window
// never receives its own events.
//
//	bus := storage.NewLocalBus()
//	shared := storage.NewMemoryStorage()
//
//	tab1 := storage.NewWindow(shared, bus)
//	tab2 := storage.NewWindow(shared, bus)
//
//	tab2.AddListener(func(ev storage.Event) {
//	    fmt.Println(ev.Key, "changed")
//	})
//	tab1.Area(storage.Local).SetItem("theme", `"dark"`) // tab2 prints "theme changed"
package storage
