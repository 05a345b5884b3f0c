// Package storagecell binds a reactive value to a key in a storage area.
//
// A Cell reads its starting value from the storage slot when present, or
// uses the initial value when the slot is empty. Every change to the cell is
// written back to the slot as JSON. While attached, changes made to the slot
// by other windows flow back into the cell, so every window holding a cell
// for the same key converges on the last value written.
//
//	win := storage.NewWindow(shared, bus)
//
//	theme, err := storagecell.New(win, "theme", "light")
//	if err != nil {
//	    return err
//	}
//	theme.Attach()
//	defer theme.Close()
//
//	theme.Set("dark") // slot "theme" now holds "\"dark\""
//
// A cell created with WithOwner attaches just before the owner mounts and
// closes when the owner unmounts.
//
// Nested values are not observed implicitly. Replace the value with Set or
// Update, change it in place with Mutate, or call NotifyChanged after
// mutating state the cell shares by reference.
package storagecell
