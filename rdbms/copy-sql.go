package rdbms

import (
	"fmt"
	"path"

	"github.com/pkg/errors"
	"github.com/relloyd/snappipe/constants"
)

// CopySqlBuilderFunc should return a slice of SQL statements that bulk-load the blob at
// bucket/key into tableName. The credential is warehouse specific: a Redshift IAM role
// ARN or a Snowflake external stage name that fronts the bucket.
// Statements run inside the caller's warehouse transaction and must not commit.
type CopySqlBuilderFunc func(tableName SchemaTable, bucket string, key string, credential string) []string

// GetSqlSliceRedshiftCopyJson builds the Redshift COPY for one uploaded blob:
// newline-delimited JSON with automatic field-to-column mapping and a fixed timeformat.
func GetSqlSliceRedshiftCopyJson(tableName SchemaTable, bucket string, key string, credential string) []string {
	uri := fmt.Sprintf("s3://%v", path.Join(bucket, key))
	return []string{
		fmt.Sprintf("COPY %v FROM '%v' iam_role '%v' format AS json 'auto' timeformat '%v'",
			tableName.AsQuoted(), uri, credential, constants.TimeFormatRedshiftCopy),
	}
}

// GetSqlSliceSnowflakeCopyJson builds the Snowflake equivalent, reading the blob through the
// named external stage that points at the bucket.
func GetSqlSliceSnowflakeCopyJson(tableName SchemaTable, bucket string, key string, credential string) []string {
	return []string{
		fmt.Sprintf("copy into %v from '@%v' file_format = (type = 'json' timestamp_format = '%v') match_by_column_name = 'case_insensitive'",
			tableName.String(), path.Join(credential, key), constants.TimeFormatSnowflakeCopy),
	}
}

// GetCopySqlBuilder picks the builder for the warehouse connection type.
func GetCopySqlBuilder(dbType string) (CopySqlBuilderFunc, error) {
	switch dbType {
	case constants.ConnectionTypePostgres, constants.ConnectionTypeRedshift, constants.ConnectionTypeMock:
		return GetSqlSliceRedshiftCopyJson, nil
	case constants.ConnectionTypeSnowflake:
		return GetSqlSliceSnowflakeCopyJson, nil
	default:
		return nil, errors.Errorf("no COPY statement builder for database type %q", dbType)
	}
}
