package components

import (
	"os"
	"path"
	"strings"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/relloyd/snappipe/aws/s3"
	c "github.com/relloyd/snappipe/constants"
	"github.com/relloyd/snappipe/logger"
	s2 "github.com/relloyd/snappipe/stats"
	"github.com/relloyd/snappipe/stream"
)

type CopyFileToS3Config struct {
	Log               logger.Logger
	Name              string
	InputChan         chan stream.Record // the input channel of rows containing files (with full paths) to move to S3.
	InputErrChan      chan error
	FileNameChanField string // name of the field in InputChan that contains the file to move.
	BucketName        string // target bucket.
	Region            string
	TargetKey         string         // the partition key the blob is uploaded to (deterministic per date+dataset).
	S3Client          s3.BasicClient // optional; created from BucketName/Region when nil.
	StepWatcher       *s2.StepWatcher
	WaitCounter       ComponentWaiter
}

// NewCopyFileToS3 moves the finished data file to the bucket at cfg.TargetKey, overwriting
// any blob a previous run left there for the same date. The local temp file is removed on
// both the success and the failure path; after an upload failure the destination either
// holds the previous complete blob or nothing, never a partial one (single PutObject).
// The output channel carries the input record extended with the target key.
func NewCopyFileToS3(i interface{}) (chan stream.Record, chan error) {
	cfg := i.(*CopyFileToS3Config)
	if cfg.InputChan == nil {
		cfg.Log.Panic(cfg.Name, " error - missing input channel.")
	}
	if cfg.FileNameChanField == "" {
		cfg.FileNameChanField = Defaults.ChanField4FileName
	}
	if cfg.BucketName == "" {
		cfg.Log.Panic(cfg.Name, " error - missing target bucket name.")
	}
	cfg.BucketName = strings.TrimPrefix(cfg.BucketName, "s3://")
	if cfg.TargetKey == "" {
		cfg.Log.Panic(cfg.Name, " error - missing target key.")
	}
	outputChan := make(chan stream.Record, c.ChanSize)
	errChan := make(chan error, 1)
	go func() {
		if cfg.WaitCounter != nil {
			cfg.WaitCounter.Add()
			defer cfg.WaitCounter.Done()
		}
		defer close(outputChan)
		defer close(errChan)
		cfg.Log.Info(cfg.Name, " is running")
		rowCount := int64(0)
		if cfg.StepWatcher != nil {
			cfg.StepWatcher.StartWatching(&rowCount, &outputChan)
			defer cfg.StepWatcher.StopWatching()
		}
		client := cfg.S3Client
		if client == nil {
			client = s3.NewBasicClient(cfg.BucketName, cfg.Region, "")
		}
		for rec := range cfg.InputChan { // for each file to move...
			fileFullPathName, err := rec.GetDataAsString(cfg.FileNameChanField)
			if err != nil {
				errChan <- errors.Wrapf(ErrUpload, "%v %v", cfg.Name, err)
				return
			}
			if err := uploadAndRemove(cfg, client, fileFullPathName); err != nil {
				drainRecords(cfg.InputChan)
				firstErr(cfg.InputErrChan)
				errChan <- err
				return
			}
			rec.SetData(Defaults.ChanField4TargetKey, cfg.TargetKey)
			outputChan <- rec
			atomic.AddInt64(&rowCount, 1)
		}
		if err := firstErr(cfg.InputErrChan); err != nil { // if the upstream failed...
			errChan <- err // no file arrived; the writer already cleaned up.
			return
		}
		cfg.Log.Info(cfg.Name, " complete")
	}()
	return outputChan, errChan
}

func uploadAndRemove(cfg *CopyFileToS3Config, client s3.BasicClient, fileFullPathName string) error {
	// The temp file goes away whatever happens to the upload.
	defer func() {
		if err := os.Remove(fileFullPathName); err != nil {
			cfg.Log.Warn(cfg.Name, " unable to remove local file ", fileFullPathName, ": ", err)
		}
	}()
	fh, err := os.Open(fileFullPathName) // File implements io.ReadSeeker.
	if err != nil {
		return errors.Wrapf(ErrUpload, "%v unable to open file %v: %v", cfg.Name, fileFullPathName, err)
	}
	defer fh.Close()
	cfg.Log.Info(cfg.Name, " moving file '", fileFullPathName, "' to S3 '", path.Join(cfg.BucketName, cfg.TargetKey), "'")
	if err := client.BufferPut(cfg.TargetKey, fh); err != nil {
		return errors.Wrapf(ErrUpload, "%v error uploading to %v: %v", cfg.Name, cfg.TargetKey, err)
	}
	return nil
}
