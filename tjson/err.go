package tjson

import "errors"

const (
	ErrTypeTimeUnmarshalFailed = "tjson.time_unmarshal_failed"
)

var (
	ErrTimeTypeUnSupported = errors.New("type is unsupported in Time.UnmarshalJSON")
)
