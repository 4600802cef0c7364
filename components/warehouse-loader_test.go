package components

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	c "github.com/relloyd/snappipe/constants"
	"github.com/relloyd/snappipe/logger"
	"github.com/relloyd/snappipe/rdbms"
	"github.com/relloyd/snappipe/rdbms/shared"
	"github.com/relloyd/snappipe/stream"
)

func TestNewWarehouseLoader(t *testing.T) {
	log := logger.NewLogger("snappipe", "info", true)
	targetKey := "users/snapshot_year=2023/snapshot_month=03/snapshot_day=05/data"
	table := rdbms.NewSchemaTable("snapshots", "users")
	// Test 1 - confirm the COPY runs on the supplied transaction and nothing commits.
	log.Info("Test 1 - confirm the COPY runs on the supplied transaction and nothing commits...")
	conn, recorded := shared.NewMockConnectionWithMockTx(log, "redshift")
	tx, err := conn.Begin()
	if err != nil {
		t.Fatal("unexpected error starting mock transaction: ", err)
	}
	inputChan := make(chan stream.Record, c.ChanSize)
	r1 := stream.NewRecord()
	r1.SetData(Defaults.ChanField4TargetKey, targetKey)
	inputChan <- r1
	close(inputChan)
	outputChan, errChan := NewWarehouseLoader(&WarehouseLoaderConfig{
		Log:                   log,
		Name:                  "Test warehouse loader",
		InputChan:             inputChan,
		Tx:                    tx,
		TargetSchemaTableName: table,
		BucketName:            "test-bucket",
		Credential:            "arn:aws:iam::123456789012:role/dw-loader",
		FnGetCopySqlSlice:     rdbms.GetSqlSliceRedshiftCopyJson,
	})
	gotRecord := false
	for range outputChan {
		gotRecord = true
	}
	if err := <-errChan; err != nil {
		t.Fatal("unexpected error from component: ", err)
	}
	if !gotRecord {
		t.Fatal("expected the loaded record on the output channel")
	}
	sql := drainRecorded(recorded)
	copySql := ""
	for _, s := range sql {
		if strings.HasPrefix(s, "COPY ") {
			copySql = s
		}
	}
	if copySql == "" {
		t.Fatal("expected a COPY statement on the transaction, got: ", sql)
	}
	if !strings.Contains(copySql, `COPY "snapshots"."users"`) ||
		!strings.Contains(copySql, "FROM 's3://test-bucket/"+targetKey+"'") ||
		!strings.Contains(copySql, "iam_role 'arn:aws:iam::123456789012:role/dw-loader'") ||
		!strings.Contains(copySql, "format AS json 'auto'") ||
		!strings.Contains(copySql, "timeformat 'YYYY-MM-DDTHH:MI:SS'") {
		t.Fatal("unexpected COPY statement: ", copySql)
	}
	if conn.Tx.Committed {
		t.Fatal("the loader must never commit the warehouse transaction")
	}
	// Test 2 - confirm a COPY failure surfaces as a load error.
	log.Info("Test 2 - confirm a COPY failure surfaces as a load error...")
	conn2, _ := shared.NewMockConnectionWithMockTx(log, "redshift")
	tx2, _ := conn2.Begin()
	conn2.Tx.ExecErrBySql = map[string]error{"COPY": errors.New("permission denied for schema snapshots")}
	inputChan2 := make(chan stream.Record, c.ChanSize)
	r2 := stream.NewRecord()
	r2.SetData(Defaults.ChanField4TargetKey, targetKey)
	inputChan2 <- r2
	close(inputChan2)
	outputChan, errChan = NewWarehouseLoader(&WarehouseLoaderConfig{
		Log:                   log,
		Name:                  "Test warehouse loader fail",
		InputChan:             inputChan2,
		Tx:                    tx2,
		TargetSchemaTableName: table,
		BucketName:            "test-bucket",
		Credential:            "arn:aws:iam::123456789012:role/dw-loader",
		FnGetCopySqlSlice:     rdbms.GetSqlSliceRedshiftCopyJson,
	})
	gotRecord = false
	for range outputChan {
		gotRecord = true
	}
	if gotRecord {
		t.Fatal("expected no output record after a load failure")
	}
	err = <-errChan
	if err == nil || errors.Cause(err) != ErrLoad {
		t.Fatal("expected a load error, got: ", err)
	}
	if conn2.Tx.Committed {
		t.Fatal("the transaction must not be committed after a load failure")
	}
	// Test 3 - confirm an upstream error is forwarded without touching the warehouse.
	log.Info("Test 3 - confirm an upstream error is forwarded without touching the warehouse...")
	conn3, recorded3 := shared.NewMockConnectionWithMockTx(log, "redshift")
	tx3, _ := conn3.Begin()
	inputChan3 := make(chan stream.Record)
	close(inputChan3)
	inputErrChan := make(chan error, 1)
	testErr := errors.Wrap(ErrUpload, "bucket unreachable")
	inputErrChan <- testErr
	close(inputErrChan)
	outputChan, errChan = NewWarehouseLoader(&WarehouseLoaderConfig{
		Log:                   log,
		Name:                  "Test warehouse loader upstream err",
		InputChan:             inputChan3,
		InputErrChan:          inputErrChan,
		Tx:                    tx3,
		TargetSchemaTableName: table,
		BucketName:            "test-bucket",
		Credential:            "arn:aws:iam::123456789012:role/dw-loader",
		FnGetCopySqlSlice:     rdbms.GetSqlSliceRedshiftCopyJson,
	})
	for range outputChan {
	}
	if err := <-errChan; err != testErr {
		t.Fatal("expected the upstream error to be forwarded, got: ", err)
	}
	if len(recorded3) != 0 {
		t.Fatal("expected no SQL on the warehouse transaction after an upstream failure")
	}
}
