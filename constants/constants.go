package constants

// Pipeline

const (
	ChanSize                     = 20000
	StatsCaptureFrequencySeconds = 5
	CursorNameDefault            = "warehouse_dump" // server-side cursor used for each table dump.
	CursorFetchSizeDefault       = 1000
	SnapshotDateFieldName        = "snapshot_date"
	SnapshotDateFormat           = "2006-01-02"
	TimeFormatIsoSeconds         = "2006-01-02T15:04:05" // keep in step with the warehouse COPY timeformat below.
	TimeFormatRedshiftCopy       = "YYYY-MM-DDTHH:MI:SS"
	TimeFormatSnowflakeCopy      = `YYYY-MM-DD"T"HH24:MI:SS`
	PartitionLeafDefault         = "data"
	WarehouseSchemaDefault       = "snapshots"
	DumpSpecDirName              = ".snappipe"
	DumpSpecFileName             = "tables.yaml"
	TokenSnapshotDate            = "${snapshotDate}" // replaced in dump spec args with the run's snapshot date.
	NotifyEventTitle             = "Warehouse Tables"
)

// Connection types as reported by Connector.GetType().

const (
	ConnectionTypePostgres  = "postgres"
	ConnectionTypeRedshift  = "redshift"
	ConnectionTypeSnowflake = "snowflake"
	ConnectionTypeMock      = "mock"
)

// Environment variables (twelve-factor surface; there are no CLI flags beyond "run").

const (
	EnvVarPrefix          = "SNAP"
	EnvVarReplicaDsn      = EnvVarPrefix + "_REPLICA_DSN"
	EnvVarWarehouseDsn    = EnvVarPrefix + "_WAREHOUSE_DSN"
	EnvVarBucketName      = EnvVarPrefix + "_DW_BUCKET"
	EnvVarBucketRegion    = EnvVarPrefix + "_S3_REGION"
	EnvVarWarehouseRole   = EnvVarPrefix + "_WAREHOUSE_ROLE"
	EnvVarWarehouseSchema = EnvVarPrefix + "_SCHEMA"
	EnvVarLogLevel        = EnvVarPrefix + "_LOG_LEVEL"
	EnvVarStackDump       = EnvVarPrefix + "_STACK_DUMP"
	EnvVarTablesFile      = EnvVarPrefix + "_TABLES_FILE"
	EnvVarSnapshotDate    = EnvVarPrefix + "_SNAPSHOT_DATE" // optional YYYY-MM-DD override for backfills.
	EnvVarDatadogAddr     = EnvVarPrefix + "_DD_ADDR"
)
