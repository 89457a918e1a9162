package boardpb

import (
	"math"
	"testing"
	"time"

	"blockfall/game"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestCreateRequest(t *testing.T) {
	cfg := game.DefaultConfig()
	cfg.Rows = 12
	cfg.FallInterval = 300 * time.Millisecond
	cfg.MovePolicy = game.MoveWindowed

	s, err := NewCreateRequest(BoardRequest{Config: cfg, Name: "remote", Autopilot: true})
	require.NoError(t, err)
	got := ParseCreateRequest(s)
	assert.Equal(t, cfg, got.Config)
	assert.Equal(t, "remote", got.Name)
	assert.True(t, got.Autopilot)
}

func TestParseCreateRequestEmpty(t *testing.T) {
	got := ParseCreateRequest(&structpb.Struct{})
	assert.Zero(t, got.Config.Rows, "missing fields are left for normalization")
	assert.Zero(t, got.Config.FallInterval, "missing fields are left for normalization")
	assert.Equal(t, game.MoveFree, got.Config.MovePolicy)
	assert.Empty(t, ParseCreateRequest(nil).Name)
}

func TestMoveRequest(t *testing.T) {
	id, d := ParseMoveRequest(NewMoveRequest("abc", game.Right))
	assert.Equal(t, "abc", id)
	assert.Equal(t, game.Right, d)
}

func TestSnapshotStruct(t *testing.T) {
	tests := []game.Snapshot{
		{
			Rows: 20, Cols: 10, Row: 3, Col: 7, Color: "#3b82f6", Name: "bot",
			State: game.Sliding, Sliding: true, Pending: game.Left,
			FallInterval: 250 * time.Millisecond, MoveInterval: 100 * time.Millisecond,
			Remaining: 125 * time.Millisecond, Progress: 0.5,
		},
		{Rows: 5, Cols: 5, Row: 4, State: game.Stopped, Landed: true, Progress: 1},
		{State: game.Idle},
	}
	for _, want := range tests {
		t.Run(want.State.String(), func(t *testing.T) {
			assert.Equal(t, want, SnapshotFromStruct(SnapshotToStruct(want)))
		})
	}
}

func TestToInt(t *testing.T) {
	for in, want := range map[float64]int{3.9: 3, -2: -2, math.NaN(): 0, math.Inf(1): 0, 1e12: 0} {
		assert.Equal(t, want, toInt(in), "toInt(%v)", in)
	}
}
