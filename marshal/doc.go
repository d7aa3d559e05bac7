/*
Package marshal runs records through the ordered transformation passes that
convert them into and out of the store's representation.

The passes, in order:

 1. prune and type check
 2. defaults
 3. custom type conversion
 4. wire encode or decode
 5. combine
 6. get or set modifiers
 7. validators
 8. required
 9. enum

Each pass is toggled by Options; SaveOptions and LoadOptions cover the
common cases. The first failing pass aborts the transform.

	item, err := marshal.ToItem(users, values, marshal.SaveOptions())
	values, err := marshal.FromItem(users, item, marshal.LoadOptions())
*/
package marshal
