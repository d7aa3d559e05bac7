/*
Package mock provides an in-memory implementation of datastore.DataStore.

The mock evaluates the condition, key condition, filter, projection and
update expressions produced by the compilers, so model tests exercise the
same requests a table would receive:

	store := mock.New("id", "")
	model, err := shapestore.NewModel("users", store, shapestore.Options{Table: "users"}, s)

Size functions and nested list positions in REMOVE are not supported.
Failures can be injected per operation with the With* methods, and every
request is recorded for inspection through Calls.
*/
package mock
