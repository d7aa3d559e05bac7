/*
Package schema builds the normalized attribute declaration tree of an entity.

A schema is declared once, in Go or YAML, and is read-only afterwards:

	users := schema.MustNew(schema.Definition{
	    "id":     {Type: schema.Types(attrtype.String), HashKey: true},
	    "email":  {Type: schema.Types(attrtype.String), Required: true,
	               Validate: regexp.MustCompile(`^[^@]+@[^@]+$`)},
	    "status": {Type: schema.Types(attrtype.String), Default: "active",
	               Enum: []any{"active", "disabled"},
	               Index: []schema.IndexDefinition{{Name: "byStatus", RangeKey: "createdAt"}}},
	    "address": {Schema: schema.Definition{
	        "city": {Type: schema.Types(attrtype.String)},
	    }},
	}, schema.WithTimestamps("createdAt", "updatedAt"))

Paths are dot separated; list positions are decimal segments ("items.0.sku").

Declaration errors (duplicate keys, dotted names, multi-element list schemas,
duplicate index names, missing hash key) are reported as
*errors.SchemaDeclarationError.
*/
package schema
