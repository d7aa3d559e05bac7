/*
Package wire converts between native record values and the store's
type-tagged attribute values.

	string              S
	numbers             N
	[]byte              B
	bool                BOOL
	nil                 NULL
	attrtype.Set        SS, NS or BS by element kind
	[]any               L
	map[string]any      M

Numbers decode to int64 when integral and float64 otherwise. Empty sets are
not representable in the store and are dropped on marshal.

IsJSONShaped and FromJSON accept items in their JSON form, as exported by
the store's tooling:

	{"id": {"S": "u1"}, "age": {"N": "42"}}
*/
package wire
