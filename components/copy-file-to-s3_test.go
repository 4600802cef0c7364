package components

import (
	"io/ioutil"
	"os"
	"path"
	"testing"

	"github.com/pkg/errors"
	"github.com/relloyd/snappipe/aws/s3"
	c "github.com/relloyd/snappipe/constants"
	"github.com/relloyd/snappipe/logger"
	"github.com/relloyd/snappipe/stream"
)

func newTestDataFile(t *testing.T, dir, contents string) string {
	t.Helper()
	fileName := path.Join(dir, "users-test.json")
	if err := ioutil.WriteFile(fileName, []byte(contents), 0644); err != nil {
		t.Fatal("unable to create test data file: ", err)
	}
	return fileName
}

func TestNewCopyFileToS3(t *testing.T) {
	log := logger.NewLogger("snappipe", "info", true)
	dir, err := ioutil.TempDir("", "test-copy-file-to-s3-")
	if err != nil {
		t.Fatal("unable to create tmp dir: ", err)
	}
	defer os.RemoveAll(dir)
	targetKey := "users/snapshot_year=2023/snapshot_month=03/snapshot_day=05/data"
	contents := `{"snapshot_date": "2023-03-05", "id": 1}` + "\n"
	// Test 1 - confirm the file lands at the partition key and the local copy is removed.
	log.Info("Test 1 - confirm the file lands at the partition key and the local copy is removed...")
	fileName := newTestDataFile(t, dir, contents)
	inputChan := make(chan stream.Record, c.ChanSize)
	r1 := stream.NewRecord()
	r1.SetData(Defaults.ChanField4FileName, fileName)
	inputChan <- r1
	close(inputChan)
	mockS3 := s3.NewMockBasicClient()
	outputChan, errChan := NewCopyFileToS3(&CopyFileToS3Config{
		Log:        log,
		Name:       "Test copy to S3",
		InputChan:  inputChan,
		BucketName: "test-bucket",
		TargetKey:  targetKey,
		S3Client:   mockS3,
	})
	rec, ok := <-outputChan
	if !ok {
		t.Fatal("expected an output record after the upload")
	}
	for range outputChan {
	}
	if err := <-errChan; err != nil {
		t.Fatal("unexpected error from component: ", err)
	}
	if got := string(mockS3.Objects[targetKey]); got != contents {
		t.Fatal("unexpected object contents at target key: ", got)
	}
	if _, err := os.Stat(fileName); !os.IsNotExist(err) {
		t.Fatal("expected the local file to be removed after upload")
	}
	key, err := rec.GetDataAsString(Defaults.ChanField4TargetKey)
	if err != nil || key != targetKey {
		t.Fatal("expected the output record to carry the target key, got: ", key)
	}
	// Test 2 - confirm a rerun for the same date overwrites the previous blob.
	log.Info("Test 2 - confirm a rerun for the same date overwrites the previous blob...")
	contents2 := `{"snapshot_date": "2023-03-05", "id": 2}` + "\n"
	fileName = newTestDataFile(t, dir, contents2)
	inputChan2 := make(chan stream.Record, c.ChanSize)
	r2 := stream.NewRecord()
	r2.SetData(Defaults.ChanField4FileName, fileName)
	inputChan2 <- r2
	close(inputChan2)
	outputChan, errChan = NewCopyFileToS3(&CopyFileToS3Config{
		Log:        log,
		Name:       "Test copy to S3 rerun",
		InputChan:  inputChan2,
		BucketName: "s3://test-bucket", // scheme prefixes are tolerated.
		TargetKey:  targetKey,
		S3Client:   mockS3,
	})
	for range outputChan {
	}
	if err := <-errChan; err != nil {
		t.Fatal("unexpected error from component: ", err)
	}
	if got := string(mockS3.Objects[targetKey]); got != contents2 {
		t.Fatal("expected the rerun to overwrite the blob, got: ", got)
	}
	// Test 3 - confirm an upload failure removes the local file and leaves no new blob.
	log.Info("Test 3 - confirm an upload failure removes the local file and leaves no new blob...")
	fileName = newTestDataFile(t, dir, contents)
	inputChan3 := make(chan stream.Record, c.ChanSize)
	r3 := stream.NewRecord()
	r3.SetData(Defaults.ChanField4FileName, fileName)
	inputChan3 <- r3
	close(inputChan3)
	failingS3 := s3.NewMockBasicClient()
	failingS3.PutErr = errors.New("access denied")
	outputChan, errChan = NewCopyFileToS3(&CopyFileToS3Config{
		Log:        log,
		Name:       "Test copy to S3 fail",
		InputChan:  inputChan3,
		BucketName: "test-bucket",
		TargetKey:  targetKey,
		S3Client:   failingS3,
	})
	gotRecord := false
	for range outputChan {
		gotRecord = true
	}
	if gotRecord {
		t.Fatal("expected no output record after an upload failure")
	}
	err = <-errChan
	if err == nil || errors.Cause(err) != ErrUpload {
		t.Fatal("expected an upload error, got: ", err)
	}
	if _, err := os.Stat(fileName); !os.IsNotExist(err) {
		t.Fatal("expected the local file to be removed after a failed upload")
	}
	if _, ok := failingS3.Objects[targetKey]; ok {
		t.Fatal("expected no blob at the target key after a failed upload")
	}
}
