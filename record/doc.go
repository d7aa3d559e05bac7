/*
Package record holds one entity instance: its live values, a frozen snapshot
of the values it was built with, where it came from, and whether it is known
to be stored.

	r, _ := record.New(users, map[string]any{"id": "u1", "name": "Ada"})
	r.Set("name", "Ada Lovelace")
	item, err := r.Item()

Wire items, in SDK or JSON form, are detected and decoded on New.
*/
package record
