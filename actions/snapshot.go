package actions

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/relloyd/snappipe/aws/s3"
	"github.com/relloyd/snappipe/components"
	"github.com/relloyd/snappipe/config"
	c "github.com/relloyd/snappipe/constants"
	"github.com/relloyd/snappipe/helper"
	"github.com/relloyd/snappipe/logger"
	"github.com/relloyd/snappipe/notify"
	"github.com/relloyd/snappipe/rdbms"
	"github.com/relloyd/snappipe/rdbms/shared"
	"github.com/relloyd/snappipe/stats"
)

type SnapshotConfig struct {
	RunConfig    config.RunConfig
	Specs        []config.DumpSpec
	SnapshotDate string `errorTxt:"snapshot date YYYY-MM-DD" mandatory:"yes"`
	Notifier     notify.Notifier
	// Pre-opened connections and client override the DSNs/bucket; used by tests.
	SourceDb    shared.Connector
	WarehouseDb shared.Connector
	S3Client    s3.BasicClient
}

// RunSnapshot dumps every configured table from the replica to S3 and loads the blobs
// into the warehouse. All dumps read from one replica transaction so they see a single
// point-in-time view, and all loads run in one warehouse transaction that commits only
// after every dump has succeeded. Any failure leaves the warehouse untouched and the
// whole run is expected to be retried from the start.
func RunSnapshot(log logger.Logger, cfg *SnapshotConfig) error {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil {
		return err
	}
	if len(cfg.Specs) == 0 {
		return errors.New("no table dumps configured")
	}
	day, err := time.Parse(c.SnapshotDateFormat, cfg.SnapshotDate)
	if err != nil {
		return errors.Errorf("bad snapshot date %q: expected YYYY-MM-DD", cfg.SnapshotDate)
	}
	log.Info("Starting snapshot run for date ", cfg.SnapshotDate)
	srcDb := cfg.SourceDb
	if srcDb == nil {
		if srcDb, err = rdbms.OpenDbConnection(log, cfg.RunConfig.ReplicaDsn); err != nil {
			return errors.Wrapf(components.ErrConnection, "replica: %v", err)
		}
		defer srcDb.Close()
	}
	whDb := cfg.WarehouseDb
	if whDb == nil {
		if whDb, err = rdbms.OpenDbConnection(log, cfg.RunConfig.WarehouseDsn); err != nil {
			return errors.Wrapf(components.ErrConnection, "warehouse: %v", err)
		}
		defer whDb.Close()
	}
	copyBuilder, err := rdbms.GetCopySqlBuilder(whDb.GetType())
	if err != nil {
		return err
	}
	// One read-only transaction gives every dump the same point-in-time view of the
	// replica. It is rolled back either way; nothing is written there.
	srcTx, err := srcDb.BeginReadOnly()
	if err != nil {
		return errors.Wrapf(components.ErrConnection, "replica: %v", err)
	}
	defer func() {
		if err := srcTx.Rollback(); err != nil {
			log.Warn("error rolling back replica transaction: ", err)
		}
	}()
	whTx, err := whDb.Begin()
	if err != nil {
		return errors.Wrapf(components.ErrConnection, "warehouse: %v", err)
	}
	rollbackWarehouse := true
	defer func() {
		if rollbackWarehouse { // if any dump failed before the commit...
			if err := whTx.Rollback(); err != nil {
				log.Warn("error rolling back warehouse transaction: ", err)
			}
		}
	}()
	for _, spec := range cfg.Specs { // for each table dump...
		if err := runDump(log, cfg, spec, day, srcTx, whTx, copyBuilder); err != nil {
			return errors.Wrapf(err, "dump %v", spec.Name)
		}
	}
	if err := whTx.Commit(); err != nil {
		return errors.Wrapf(components.ErrLoad, "error committing warehouse transaction: %v", err)
	}
	rollbackWarehouse = false
	if cfg.Notifier != nil {
		text := fmt.Sprintf("Loaded %v tables for snapshot date %v", len(cfg.Specs), cfg.SnapshotDate)
		if err := cfg.Notifier.Success(c.NotifyEventTitle, text); err != nil { // the data is committed; a lost event is only worth a warning.
			log.Warn("unable to send completion event: ", err)
		}
	}
	log.Info("Done")
	return nil
}

// runDump streams one table through the extract, date-map, file, upload and load steps,
// then waits for the chain to finish. Dumps run one at a time so the named cursor can be
// reused inside the shared replica transaction.
func runDump(log logger.Logger, cfg *SnapshotConfig, spec config.DumpSpec, day time.Time,
	srcTx shared.Transacter, whTx shared.Transacter, copyBuilder rdbms.CopySqlBuilderFunc) error {
	targetKey := helper.PartitionPath(spec.Name, day, spec.LeafName())
	readChan, readErrChan := components.NewSqlQueryInput(&components.SqlQueryInputConfig{
		Log:         log,
		Name:        spec.Name + " extract",
		Tx:          srcTx,
		Sqltext:     spec.Query,
		Args:        spec.BindArgs(cfg.SnapshotDate),
		StepWatcher: stats.NewStepWatcher(log, spec.Name+" extract"),
	})
	mapChan, mapErrChan := components.NewSnapshotDateMapper(&components.SnapshotDateMapperConfig{
		Log:          log,
		Name:         spec.Name + " date mapper",
		InputChan:    readChan,
		InputErrChan: readErrChan,
		SnapshotDate: cfg.SnapshotDate,
	})
	fileChan, fileErrChan := components.NewJsonFileWriter(&components.JsonFileWriterConfig{
		Log:            log,
		Name:           spec.Name + " file writer",
		InputChan:      mapChan,
		InputErrChan:   mapErrChan,
		FileNamePrefix: spec.Name,
	})
	uploadChan, uploadErrChan := components.NewCopyFileToS3(&components.CopyFileToS3Config{
		Log:          log,
		Name:         spec.Name + " S3 upload",
		InputChan:    fileChan,
		InputErrChan: fileErrChan,
		BucketName:   cfg.RunConfig.BucketName,
		Region:       cfg.RunConfig.BucketRegion,
		TargetKey:    targetKey,
		S3Client:     cfg.S3Client,
	})
	loadChan, loadErrChan := components.NewWarehouseLoader(&components.WarehouseLoaderConfig{
		Log:                   log,
		Name:                  spec.Name + " warehouse loader",
		InputChan:             uploadChan,
		InputErrChan:          uploadErrChan,
		Tx:                    whTx,
		TargetSchemaTableName: rdbms.NewSchemaTable(cfg.RunConfig.WarehouseSchema, spec.TableName()),
		BucketName:            cfg.RunConfig.BucketName,
		Credential:            cfg.RunConfig.WarehouseRole,
		FnGetCopySqlSlice:     copyBuilder,
	})
	for range loadChan { // wait for the chain to drain...
	}
	return <-loadErrChan
}
