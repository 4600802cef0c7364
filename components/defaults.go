package components

// Default field names are used by components to know the names of input and output fields.
var Defaults = struct {
	ChanField4FileName  string // the map key that carries the local data file name between components.
	ChanField4TargetKey string // the map key that carries the S3 partition key of the uploaded blob.
}{
	ChanField4FileName:  "#DataFileName",
	ChanField4TargetKey: "#TargetKey",
}
