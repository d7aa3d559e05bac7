/*
Package update compiles partial-update payloads into DynamoDB update
expressions.

A payload is either flat, where every key is set, or grouped by kind:

	update.Compile(s, map[string]any{
	    "$SET":    map[string]any{"name": "Ada"},
	    "$ADD":    map[string]any{"visits": 1},
	    "$REMOVE": []string{"nickname"},
	    "$DELETE": map[string]any{"tags": attrtype.NewSet("old")},
	})
	// SET #a0 = :v1 ADD #a2 :v3 REMOVE #a4 DELETE #a5 :v6

Set values are type checked, validated, checked against their enum and run
through set modifiers. An omitted value (attrtype.Omit) becomes a removal when
the attribute exists. Adding to a list becomes list_append. Removing an
attribute with a default resets it to the default.

Combine attributes are recomputed when their sources change; an update must
touch all of a combine attribute's sources or none of them.

All kinds share one placeholder counter. Compiled.Next is where a condition
on the same request continues.
*/
package update
