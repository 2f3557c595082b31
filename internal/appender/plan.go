// Package appender appends data to existing objects.
//
// S3 objects are immutable, so an append rewrites the object. Small objects
// are downloaded and re-uploaded with the new data concatenated. Objects
// larger than the minimum multipart part size are composed server-side: the
// existing object becomes part 1 of a multipart upload through
// UploadPartCopy and the new data is uploaded as part 2.
package appender

import (
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/internal/backend"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/storetypes"
)

// Strategy is the way an append is carried out.
type Strategy int

const (
	// StrategyCreate writes the new data as a new object.
	StrategyCreate Strategy = iota

	// StrategyConcat downloads the object and uploads it again followed by
	// the new data.
	StrategyConcat

	// StrategyCompose copies the object into part 1 of a multipart upload
	// and uploads the new data as part 2.
	StrategyCompose
)

func (s Strategy) String() string {
	switch s {
	case StrategyCreate:
		return "create"
	case StrategyConcat:
		return "concat"
	case StrategyCompose:
		return "compose"
	default:
		return "unknown"
	}
}

// Plan chooses the strategy for appending to an object of the given size.
// Objects at or below the backend's minimum part size cannot be a
// non-final multipart part and are concatenated client-side.
func Plan(exists bool, size int64, caps backend.Capabilities) Strategy {
	if !exists {
		return StrategyCreate
	}

	threshold := caps.MinMultipartSize
	if threshold <= 0 {
		threshold = storetypes.MinMultipartSize
	}
	if size <= threshold {
		return StrategyConcat
	}
	return StrategyCompose
}
