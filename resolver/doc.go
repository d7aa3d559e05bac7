/*
Package resolver decides which declared type a value matches.

Single-typed attributes accept a value iff the type's membership predicate
does for the direction. When several candidates of a multi-typed attribute
accept a map or list, each candidate is scored by resolving every sub-key of
the value against the candidate's nested schema:

	1    the sub-key's type matches
	0.5  the sub-key is not declared by the candidate
	0    the sub-key's type does not match

The Strategy folds those into a Score. MinThenSum, the default, takes the
minimum and breaks ties with the sum; the first declared candidate wins any
remaining tie.
*/
package resolver
