package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"blockfall/boardpb"
	"blockfall/game"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	rpcTimeout = 2 * time.Second
	moveQueue  = 8
)

// remoteSession plays a board hosted by a board service. Key presses become
// Move calls and the board is drawn from its Watch stream.
type remoteSession struct {
	conn     *grpc.ClientConn
	bsc      boardpb.BoardServiceClient
	id       string
	stream   grpc.ServerStreamingClient[structpb.Struct]
	controls *game.Controls
	logger   *slog.Logger
	moves    chan game.Direction
	ctx      context.Context
	cancel   context.CancelFunc
	once     sync.Once
}

// dialRemote creates a board on the server at o.Address and starts watching
// it. The session lives until ctx is cancelled or stop is called.
func dialRemote(ctx context.Context, o *Options, keys game.EventTarget, l *slog.Logger) (*remoteSession, error) {
	ctx, cancel := context.WithCancel(ctx)
	opts := append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, o.DialOptions...)
	conn, err := grpc.NewClient(o.Address, opts...)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create gRPC client: %w", err)
	}
	s := &remoteSession{conn: conn, bsc: boardpb.NewBoardServiceClient(conn), logger: l, ctx: ctx, cancel: cancel}

	req, err := boardpb.NewCreateRequest(boardpb.BoardRequest{Config: o.Config, Name: o.Name})
	if err != nil {
		s.close()
		return nil, err
	}
	id, err := s.bsc.CreateBoard(ctx, req)
	if err != nil {
		s.close()
		return nil, fmt.Errorf("failed to create board: %w", err)
	}
	s.id = id.GetValue()
	s.logger = l.With(slog.String("board", s.id))

	if s.stream, err = s.bsc.Watch(ctx, wrapperspb.String(s.id)); err != nil {
		s.stop()
		return nil, fmt.Errorf("failed to watch board: %w", err)
	}
	s.moves = make(chan game.Direction, moveQueue)
	go s.sendMoves()
	if s.controls, err = game.NewControls(game.ControlPlayer, s.move, keys); err != nil {
		s.stop()
		return nil, fmt.Errorf("failed to create controls: %w", err)
	}
	return s, nil
}

// move queues d for the sender so the keyboard goroutine never waits on the
// network. Moves are dropped while the queue is full.
func (s *remoteSession) move(d game.Direction) {
	select {
	case s.moves <- d:
	default:
		s.logger.Warn("move queue full, dropping move", slog.String("direction", string(d)))
	}
}

// sendMoves sends queued moves in order until the session is cancelled.
func (s *remoteSession) sendMoves() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case d := <-s.moves:
			s.sendMove(d)
		}
	}
}

func (s *remoteSession) sendMove(d game.Direction) {
	ctx, cancel := context.WithTimeout(s.ctx, rpcTimeout)
	defer cancel()
	moved, err := s.bsc.Move(ctx, boardpb.NewMoveRequest(s.id, d))
	if err != nil {
		if s.ctx.Err() != nil {
			return
		}
		s.logger.Error("unable to move", slog.String("error", err.Error()))
		return
	}
	s.logger.Debug("move", slog.String("direction", string(d)), slog.Bool("moved", moved.GetValue()))
}

// watch draws every snapshot the server sends. It returns nil when the
// server closes the board and an error when the stream breaks.
func (s *remoteSession) watch(out func(...game.Snapshot)) error {
	for {
		rcv, err := s.stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.logger.Debug("stream.Recv() closed with EOF", slog.String("msg", err.Error()))
				return nil
			}
			st, ok := status.FromError(err)
			if ok && st.Code() == codes.Canceled { //nolint: gocritic
				s.logger.Debug("stream.Recv() closed with Cancel", slog.String("msg", st.Message()))
				return nil
			} else if ok && st.Code() == codes.DeadlineExceeded {
				s.logger.Debug("stream.Recv() closed with DeadlineExceeded", slog.String("msg", st.Message()))
				return nil
			}
			return fmt.Errorf("unable to receive snapshot: %w", err)
		}
		out(boardpb.SnapshotFromStruct(rcv))
	}
}

// remote boards can't be reset, the server has no such call.
func (s *remoteSession) reset() {}

// stop closes the board on the server and tears the connection down.
func (s *remoteSession) stop() {
	s.once.Do(func() {
		if s.controls != nil {
			s.controls.Dispose()
		}
		ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
		defer cancel()
		if _, err := s.bsc.CloseBoard(ctx, wrapperspb.String(s.id)); err != nil {
			if st, ok := status.FromError(err); !ok || st.Code() != codes.NotFound {
				s.logger.Error("unable to close board", slog.String("error", err.Error()))
			}
		}
		s.close()
	})
}

func (s *remoteSession) close() {
	s.cancel()
	if err := s.conn.Close(); err != nil {
		s.logger.Error("unable to close gRPC client", slog.String("error", err.Error()))
	}
}
