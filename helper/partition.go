package helper

import (
	"fmt"
	"time"
)

// PartitionPath derives the S3 key for one dataset's snapshot blob.
// The layout is fixed: <dataset>/snapshot_year=<YYYY>/snapshot_month=<MM>/snapshot_day=<DD>/<leaf>
// and the same (day, dataset, leaf) always yields a byte-identical key so that
// reruns overwrite the previous blob and the warehouse loader can address it.
func PartitionPath(dataset string, day time.Time, leaf string) string {
	return fmt.Sprintf("%v/snapshot_year=%04d/snapshot_month=%02d/snapshot_day=%02d/%v",
		dataset,
		day.Year(),
		int(day.Month()),
		day.Day(),
		leaf,
	)
}
