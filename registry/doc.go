/*
Package registry keeps the model and index catalogs shared by every model of
a process.

Model catalog:
An entity kind maps to one or more schemas. Decode picks the schema that fits
a stored item best:

	registry.RegisterModel("user", userV1, userV2)
	rec, err := registry.Default.Decode("user", item)

Index catalog:
Every schema stored in a table contributes its indexes to the table's
catalog, which query compilation selects from:

	registry.RegisterIndexes("users", userV1, userV2)
	indexes, _ := registry.Indexes("users")

Registrations are checked for conflicts: a kind registers once, and schemas
sharing a table must agree on key attributes.
*/
package registry
