package config

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	StorageFS = "fs"
	StorageS3 = "s3"

	AuthEd25519 = "ed25519"
	AuthClerk   = "clerk"
)
