package game

import "blockfall/clock"

// NewTestBoard creates a bot-controlled board running on a virtual clock and
// returns both. The board is not started.
func NewTestBoard(cfg Config, opts ...Option) (*Board, *clock.Mock) {
	c := clock.NewMock()
	b, err := New(cfg, ControlBot, append([]Option{WithClock(c)}, opts...)...)
	if err != nil {
		// bot boards on a mock clock have nothing that can fail.
		panic(err)
	}
	return b, c
}

// NewTestConfig returns the default config with the given fall interval.
func NewTestConfig(fall int) Config {
	cfg := DefaultConfig()
	cfg.FallInterval = Millis(float64(fall))
	return cfg
}

// SnapshotRecorder is a Renderer that keeps everything it is given.
type SnapshotRecorder struct {
	Snapshots []Snapshot
}

func (r *SnapshotRecorder) Render(s Snapshot) { r.Snapshots = append(r.Snapshots, s) }

func (r *SnapshotRecorder) Last() Snapshot {
	if len(r.Snapshots) == 0 {
		return Snapshot{}
	}
	return r.Snapshots[len(r.Snapshots)-1]
}
