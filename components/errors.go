package components

import "github.com/pkg/errors"

// Error kinds for the run. Components wrap their failures around one of these sentinels
// so the orchestrator and tests can classify the first failure with errors.Cause.
// None of them are retried: any one aborts the whole run before the warehouse commit.
var (
	ErrConnection    = errors.New("connection error")
	ErrExtraction    = errors.New("extraction error")
	ErrSerialization = errors.New("serialization error")
	ErrUpload        = errors.New("upload error")
	ErrLoad          = errors.New("load error")
)
