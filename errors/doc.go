/*
Package errors provides semantic error types for the shapestore library.

Every failure raised by the schema, marshalling and compilation layers is a
deterministic function of its input and is never retried internally.

Taxonomy:

	ErrSchemaDeclaration  malformed schema (duplicate keys, dotted names, ...)
	ErrTypeMismatch       a value fails every declared type for its path
	ErrInvalidInput       validator, required, enum or combine violation
	ErrUnindexable        no index satisfies a query's key equality constraints
	ErrBuilderState       comparator applied with no attribute selected

The transport layer additionally reports ErrNotFound, ErrAlreadyExists and
ErrConditionFailed.

Usage:

	rec, err := model.Create(ctx, values)
	if err != nil {
	    if errors.IsTypeMismatch(err) {
	        // reject input
	    }
	    return err
	}

	var tm *errors.TypeMismatchError
	if stderrors.As(err, &tm) {
	    log.Printf("bad value at %s, want %v", tm.Path, tm.Expected)
	}
*/
package errors
