/*
Package request compiles conditions and records into the parameters the
datastore forwards to DynamoDB.

Queries chart the top-level comparisons of their condition, select an index
whose hash key is compared for equality, and promote the key clauses out of
the filter into the key condition:

	cond := condition.Where("status").Eq("active").
	    And().Where("createdAt").Gt(since).
	    And().Where("name").Contains("x")

	params, err := request.NewQuery("users", s, cond).Limit(50).Compile()
	// params.IndexName:              statusGlobalIndex
	// params.KeyConditionExpression: #qha0 = :qhv1 AND #qra0 > :qrv1
	// params.FilterExpression:       contains(#a4, :v5)

Promoted clauses are re-rendered under their own placeholder prefixes, so the
placeholders left in the filter never collide with them.

Scans use the condition as the filter and never select an index. Parallel
splits a scan into segments.
*/
package request
