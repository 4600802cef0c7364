package helper

import (
	"testing"
	"time"
)

func TestPartitionPath(t *testing.T) {
	day := time.Date(2023, 3, 5, 0, 0, 0, 0, time.UTC)
	expected := "users/snapshot_year=2023/snapshot_month=03/snapshot_day=05/data"
	got := PartitionPath("users", day, "data")
	if got != expected {
		t.Fatal("expected ", expected, " got ", got)
	}
	// Same inputs must yield a byte-identical key.
	if PartitionPath("users", day, "data") != got {
		t.Fatal("partition path is not deterministic")
	}
}

func TestPartitionPathZeroPadding(t *testing.T) {
	day := time.Date(2023, 11, 30, 0, 0, 0, 0, time.UTC)
	expected := "activities/snapshot_year=2023/snapshot_month=11/snapshot_day=30/incremental"
	if got := PartitionPath("activities", day, "incremental"); got != expected {
		t.Fatal("expected ", expected, " got ", got)
	}
}
