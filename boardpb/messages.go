package boardpb

import (
	"fmt"
	"math"
	"time"

	"blockfall/game"

	"google.golang.org/protobuf/types/known/structpb"
)

// Struct field names used on the wire.
const (
	FieldID           = "id"
	FieldDirection    = "direction"
	FieldRows         = "rows"
	FieldCols         = "cols"
	FieldFallInterval = "fall_interval_ms"
	FieldMoveInterval = "move_interval_ms"
	FieldWindowed     = "windowed"
	FieldName         = "name"
	FieldAutopilot    = "autopilot"

	FieldRow       = "row"
	FieldCol       = "col"
	FieldColor     = "color"
	FieldState     = "state"
	FieldSliding   = "sliding"
	FieldPending   = "pending"
	FieldLanded    = "landed"
	FieldRemaining = "remaining_ms"
	FieldProgress  = "progress"
)

// BoardRequest is the payload of CreateBoard.
type BoardRequest struct {
	Config    game.Config
	Name      string
	Autopilot bool // the server steers the board with a bot
}

func NewCreateRequest(r BoardRequest) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(map[string]any{
		FieldRows:         r.Config.Rows,
		FieldCols:         r.Config.Cols,
		FieldFallInterval: millis(r.Config.FallInterval),
		FieldMoveInterval: millis(r.Config.MoveInterval),
		FieldWindowed:     r.Config.MovePolicy == game.MoveWindowed,
		FieldName:         r.Name,
		FieldAutopilot:    r.Autopilot,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build CreateBoard request: %w", err)
	}
	return s, nil
}

// ParseCreateRequest reads a CreateBoard payload. Missing or bad fields are
// left to the board's config normalization.
func ParseCreateRequest(s *structpb.Struct) BoardRequest {
	f := s.GetFields()
	cfg := game.DefaultConfig()
	cfg.Rows = toInt(f[FieldRows].GetNumberValue())
	cfg.Cols = toInt(f[FieldCols].GetNumberValue())
	cfg.FallInterval = game.Millis(f[FieldFallInterval].GetNumberValue())
	cfg.MoveInterval = game.Millis(f[FieldMoveInterval].GetNumberValue())
	if f[FieldWindowed].GetBoolValue() {
		cfg.MovePolicy = game.MoveWindowed
	}
	return BoardRequest{
		Config:    cfg,
		Name:      f[FieldName].GetStringValue(),
		Autopilot: f[FieldAutopilot].GetBoolValue(),
	}
}

func NewMoveRequest(id string, d game.Direction) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldID:        structpb.NewStringValue(id),
		FieldDirection: structpb.NewStringValue(string(d)),
	}}
}

func ParseMoveRequest(s *structpb.Struct) (string, game.Direction) {
	f := s.GetFields()
	return f[FieldID].GetStringValue(), game.Direction(f[FieldDirection].GetStringValue())
}

func SnapshotToStruct(snap game.Snapshot) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldRows:         structpb.NewNumberValue(float64(snap.Rows)),
		FieldCols:         structpb.NewNumberValue(float64(snap.Cols)),
		FieldRow:          structpb.NewNumberValue(float64(snap.Row)),
		FieldCol:          structpb.NewNumberValue(float64(snap.Col)),
		FieldColor:        structpb.NewStringValue(snap.Color),
		FieldName:         structpb.NewStringValue(snap.Name),
		FieldState:        structpb.NewStringValue(snap.State.String()),
		FieldSliding:      structpb.NewBoolValue(snap.Sliding),
		FieldPending:      structpb.NewStringValue(string(snap.Pending)),
		FieldLanded:       structpb.NewBoolValue(snap.Landed),
		FieldFallInterval: structpb.NewNumberValue(millis(snap.FallInterval)),
		FieldMoveInterval: structpb.NewNumberValue(millis(snap.MoveInterval)),
		FieldRemaining:    structpb.NewNumberValue(millis(snap.Remaining)),
		FieldProgress:     structpb.NewNumberValue(snap.Progress),
	}}
}

func SnapshotFromStruct(s *structpb.Struct) game.Snapshot {
	f := s.GetFields()
	return game.Snapshot{
		Rows:         toInt(f[FieldRows].GetNumberValue()),
		Cols:         toInt(f[FieldCols].GetNumberValue()),
		Row:          toInt(f[FieldRow].GetNumberValue()),
		Col:          toInt(f[FieldCol].GetNumberValue()),
		Color:        f[FieldColor].GetStringValue(),
		Name:         f[FieldName].GetStringValue(),
		State:        parseState(f[FieldState].GetStringValue()),
		Sliding:      f[FieldSliding].GetBoolValue(),
		Pending:      game.Direction(f[FieldPending].GetStringValue()),
		Landed:       f[FieldLanded].GetBoolValue(),
		FallInterval: game.Millis(f[FieldFallInterval].GetNumberValue()),
		MoveInterval: game.Millis(f[FieldMoveInterval].GetNumberValue()),
		Remaining:    game.Millis(f[FieldRemaining].GetNumberValue()),
		Progress:     f[FieldProgress].GetNumberValue(),
	}
}

var states = map[string]game.State{
	game.Idle.String():    game.Idle,
	game.Running.String(): game.Running,
	game.Sliding.String(): game.Sliding,
	game.Paused.String():  game.Paused,
	game.Stopped.String(): game.Stopped,
}

func parseState(s string) game.State {
	if st, ok := states[s]; ok {
		return st
	}
	return game.Idle
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// toInt truncates a wire number. Values that don't fit come back as zero.
func toInt(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > math.MaxInt32 {
		return 0
	}
	return int(v)
}
