package main

import (
	"flag"
	"log"
	"log/slog"
	"net"
	"os"

	"blockfall/boardpb"
	"blockfall/clock"
	"blockfall/server"

	"google.golang.org/grpc"
)

func main() {
	addr := flag.String("addr", ":9000", "address to listen on")
	level := flag.String("log", "info", "log level: debug, info, warn or error")
	flag.Parse()

	var l slog.Level
	if err := l.UnmarshalText([]byte(*level)); err != nil {
		log.Fatalf("invalid log level: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))

	lis, err := net.Listen("tcp", *addr)
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}
	defer lis.Close()

	c := clock.NewReal()
	defer c.Close()
	srv := server.New(c, logger)
	defer srv.Close()

	s := grpc.NewServer()
	defer s.Stop()
	boardpb.RegisterBoardServiceServer(s, srv)

	logger.Info("starting server", slog.String("addr", lis.Addr().String()))
	if err := s.Serve(lis); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
