package appender

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore/internal/backend"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/storetypes"
)

func TestPlan(t *testing.T) {
	caps := backend.Capabilities{MinMultipartSize: storetypes.MinMultipartSize}

	tests := []struct {
		name   string
		exists bool
		size   int64
		caps   backend.Capabilities
		want   Strategy
	}{
		{name: "missing", exists: false, size: 0, caps: caps, want: StrategyCreate},
		{name: "empty object", exists: true, size: 0, caps: caps, want: StrategyConcat},
		{name: "small object", exists: true, size: 1024, caps: caps, want: StrategyConcat},
		{name: "exactly the threshold", exists: true, size: storetypes.MinMultipartSize, caps: caps, want: StrategyConcat},
		{name: "one byte over", exists: true, size: storetypes.MinMultipartSize + 1, caps: caps, want: StrategyCompose},
		{name: "zero threshold uses default", exists: true, size: storetypes.MinMultipartSize, want: StrategyConcat},
		{
			name:   "custom threshold",
			exists: true,
			size:   2048,
			caps:   backend.Capabilities{MinMultipartSize: 1024},
			want:   StrategyCompose,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Plan(tt.exists, tt.size, tt.caps))
		})
	}
}

func TestStrategy_String(t *testing.T) {
	assert.Equal(t, "create", StrategyCreate.String())
	assert.Equal(t, "concat", StrategyConcat.String())
	assert.Equal(t, "compose", StrategyCompose.String())
	assert.Equal(t, "unknown", Strategy(42).String())
}
