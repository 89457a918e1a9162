package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"blockfall/boardpb"
	"blockfall/clock"
	"blockfall/game"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const watchBuffer = 16

// hub fans a board's snapshots out to its watchers. Slow watchers miss
// snapshots rather than block the board.
type hub struct {
	mu       sync.Mutex
	watchers map[chan game.Snapshot]struct{}
	closed   bool
}

func newHub() *hub {
	return &hub{watchers: make(map[chan game.Snapshot]struct{})}
}

func (h *hub) Render(s game.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.watchers {
		select {
		case ch <- s:
		default:
		}
	}
}

// subscribe returns a channel of snapshots, or nil if the hub is closed.
func (h *hub) subscribe() chan game.Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	ch := make(chan game.Snapshot, watchBuffer)
	h.watchers[ch] = struct{}{}
	return ch
}

func (h *hub) unsubscribe(ch chan game.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.watchers[ch]; ok {
		delete(h.watchers, ch)
		close(ch)
	}
}

func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for ch := range h.watchers {
		delete(h.watchers, ch)
		close(ch)
	}
}

type instance struct {
	board *game.Board
	bot   *game.Bot
	hub   *hub
}

func (i *instance) stop() {
	if i.bot != nil {
		i.bot.Stop()
	}
	i.board.Stop()
	i.hub.close()
}

type BoardServer struct {
	boardpb.UnimplementedBoardServiceServer
	clock     clock.Clock
	logger    *slog.Logger
	instances map[string]*instance
	mu        sync.Mutex
}

// New returns a BoardService whose boards all run on c.
func New(c clock.Clock, l *slog.Logger) *BoardServer {
	return &BoardServer{
		clock:     c,
		logger:    l,
		instances: make(map[string]*instance),
	}
}

func (s *BoardServer) CreateBoard(_ context.Context, in *structpb.Struct) (*wrapperspb.StringValue, error) {
	req := boardpb.ParseCreateRequest(in)
	id := uuid.New().String()
	h := newHub()

	kind := game.KindFakePlayer
	if req.Autopilot {
		kind = game.KindBot
	}
	player, err := game.NewPlayer(kind, req.Name)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to create player: %v", err)
	}
	board, err := game.New(req.Config, game.ControlBot,
		game.WithClock(s.clock),
		game.WithPlayer(player),
		game.WithRenderer(h),
		game.WithLogger(s.logger.With(slog.String("board", id))),
	)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to create board: %v", err)
	}
	inst := &instance{board: board, hub: h}
	if req.Autopilot {
		if inst.bot, err = game.NewBot(board, nil); err != nil {
			return nil, status.Errorf(codes.Internal, "failed to create bot: %v", err)
		}
	}

	s.mu.Lock()
	s.instances[id] = inst
	s.mu.Unlock()

	board.Start()
	if inst.bot != nil {
		inst.bot.Start()
	}
	s.logger.Info("board created",
		slog.String("board", id),
		slog.String("name", req.Name),
		slog.Bool("autopilot", req.Autopilot),
	)
	return wrapperspb.String(id), nil
}

func (s *BoardServer) Move(_ context.Context, in *structpb.Struct) (*wrapperspb.BoolValue, error) {
	id, d := boardpb.ParseMoveRequest(in)
	if !d.Valid() {
		return nil, status.Errorf(codes.InvalidArgument, "invalid direction %q", d)
	}
	inst, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if inst.bot != nil {
		return nil, status.Error(codes.FailedPrecondition, "board is on autopilot")
	}
	return wrapperspb.Bool(inst.board.HandleMove(d)), nil
}

func (s *BoardServer) Watch(in *wrapperspb.StringValue, stream grpc.ServerStreamingServer[structpb.Struct]) error {
	inst, err := s.get(in.GetValue())
	if err != nil {
		return err
	}
	ch := inst.hub.subscribe()
	if ch == nil {
		return status.Error(codes.NotFound, "board closed")
	}
	defer inst.hub.unsubscribe(ch)

	if err := stream.Send(boardpb.SnapshotToStruct(inst.board.Read())); err != nil {
		return fmt.Errorf("failed to send snapshot: %w", err)
	}
	ctx := stream.Context()
	for {
		select {
		case snap, ok := <-ch:
			if !ok {
				return nil
			}
			if err := stream.Send(boardpb.SnapshotToStruct(snap)); err != nil {
				return fmt.Errorf("failed to send snapshot: %w", err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *BoardServer) CloseBoard(_ context.Context, in *wrapperspb.StringValue) (*emptypb.Empty, error) {
	id := in.GetValue()
	inst, err := s.get(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	delete(s.instances, id)
	s.mu.Unlock()

	inst.stop()
	s.logger.Info("board closed", slog.String("board", id))
	return &emptypb.Empty{}, nil
}

// Close stops every board.
func (s *BoardServer) Close() {
	s.mu.Lock()
	instances := s.instances
	s.instances = make(map[string]*instance)
	s.mu.Unlock()
	for _, inst := range instances {
		inst.stop()
	}
}

func (s *BoardServer) get(id string) (*instance, error) {
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "missing board id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	inst, ok := s.instances[id]
	if !ok {
		return nil, status.Errorf(codes.NotFound, "board %q not found", id)
	}
	return inst, nil
}
