/*
Package shapestore maps schema-described records onto DynamoDB items.

A schema declares attributes, their types, keys and indexes. Records are
transformed into wire items on the way in and back on the way out; conditions
and updates compile into DynamoDB expressions with collision-free
placeholders; queries pick the index that can serve them.

The library follows a declare → compile → execute workflow:
  - Declare: build schemas in Go or load them from YAML
  - Compile: conditions, updates and requests become expression parameters
  - Execute: a datastore sends the parameters to DynamoDB or an in-memory mock

Basic Usage:

	users := schema.MustNew(schema.Definition{
	    "id":     {Type: schema.Types(attrtype.String), HashKey: true},
	    "email":  {Type: schema.Types(attrtype.String), Required: true},
	    "status": {Type: schema.Types(attrtype.String), Index: []schema.IndexDefinition{{}}},
	}, schema.WithTimestamps("createdAt", "updatedAt"))

	cfg, _ := config.Load("")
	store, _ := ddb.Open(ctx, cfg)
	model, _ := shapestore.NewModel("user", store, shapestore.Options{Table: cfg.DynamoDB.TableName}, users)

	rec, _ := model.New(map[string]any{"id": "u1", "email": "ada@example.com", "status": "active"})
	err := model.Create(ctx, rec)

	page, err := model.Query(ctx, condition.Where("status").Eq("active"),
	    func(q *request.Query) { q.Limit(25) })

	_, err = model.Update(ctx, map[string]any{"id": "u1"},
	    map[string]any{"$ADD": map[string]any{"logins": 1}},
	    condition.Where("status").Eq("active"))

Models are grouped by name in a Catalog; their schemas and indexes are
recorded in a registry.Registry.
*/
package shapestore
