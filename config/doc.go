/*
Package config loads shapestore configuration from a dotenv file and the
process environment.

	cfg, err := config.Load("dev") // reads .env.dev when present
	if err != nil {
	    log.Fatal(err)
	}
	client, err := ddb.NewClient(ctx, cfg)

Recognized keys:

	AWS_REGION                 default us-east-1
	AWS_ACCESS_KEY_ID          optional, with AWS_SECRET_ACCESS_KEY
	AWS_SECRET_ACCESS_KEY
	DDB_ENDPOINT               optional endpoint override
	DDB_TABLE_NAME             required
	DDB_CONSISTENT_READS       default false
	DDB_STREAM_PAGE_SIZE       default 100
	DDB_STREAM_MAX_RETRIES     default 3
	DDB_STREAM_RETRY_BACKOFF   default 1s
	SHAPESTORE_SCHEMA_FILE     optional YAML schema declaration
*/
package config
