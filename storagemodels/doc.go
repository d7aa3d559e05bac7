/*
Package storagemodels defines the request and result structures passed between
the compilers and a datastore.

Every request carries its expression placeholders in an embedded Placeholders
value, and builds the matching aws-sdk-go-v2 input:

	params := &storagemodels.QueryParams{
	    Placeholders: storagemodels.Placeholders{
	        Names:  map[string]string{"#qha0": "status"},
	        Values: map[string]types.AttributeValue{":qhv1": &types.AttributeValueMemberS{Value: "active"}},
	    },
	    TableName:              "users",
	    KeyConditionExpression: "#qha0 = :qhv1",
	    IndexName:              aws.String("statusGlobalIndex"),
	}
	out, err := client.Query(ctx, params.QueryInput())

Streams deliver StreamResult values configured by StreamOption:

	ch := store.Stream(ctx, params,
	    storagemodels.WithPageSize(25),
	    storagemodels.WithMaxRetries(3),
	    storagemodels.WithProgressHandler(progressFunc),
	)
*/
package storagemodels
