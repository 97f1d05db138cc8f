package grpc

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"hostset/internal/domain"
	"hostset/internal/registry"
)

var log = logrus.WithField("component", "grpc")

type Server struct {
	holder *registry.Holder
}

var _ DomainSetServer = (*Server)(nil)

func NewServer(holder *registry.Holder) *Server {
	return &Server{holder: holder}
}

const maxURLLen = 2048

func (s *Server) Check(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	rawURL := strings.TrimSpace(req.GetValue())
	if rawURL == "" {
		return nil, status.Error(codes.InvalidArgument, "url is required")
	}
	if len(rawURL) > maxURLLen {
		return nil, status.Error(codes.InvalidArgument, "url is too long")
	}

	n, err := domain.Normalize(rawURL)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid url: %v", err)
	}

	reg, err := s.registry()
	if err != nil {
		return nil, err
	}
	return wrapperspb.Bool(domain.IsBlocked(reg, n)), nil
}

func (s *Server) Find(ctx context.Context, req *wrapperspb.StringValue) (*structpb.ListValue, error) {
	raw := strings.TrimSpace(req.GetValue())
	if raw == "" {
		return nil, status.Error(codes.InvalidArgument, "suffix is required")
	}
	suffix, _, err := domain.NormalizeEntry(raw)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid suffix: %v", err)
	}

	reg, err := s.registry()
	if err != nil {
		return nil, err
	}
	return toList(reg.Domains.Find(suffix)), nil
}

func (s *Server) Export(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	reg, err := s.registry()
	if err != nil {
		return nil, err
	}
	return toList(reg.Domains.Dump(true)), nil
}

func (s *Server) registry() (*domain.Registry, error) {
	if !s.holder.Ready() {
		return nil, status.Error(codes.Unavailable, "registry not loaded yet")
	}
	return s.holder.Get(), nil
}

func logUnary(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	log.WithFields(logrus.Fields{
		"method":   info.FullMethod,
		"code":     status.Code(err).String(),
		"duration": time.Since(start),
	}).Debug("rpc handled")
	return resp, err
}

// NewGRPCServer returns a server with the DomainSet service and reflection
// registered.
func NewGRPCServer(holder *registry.Holder) *grpc.Server {
	s := grpc.NewServer(grpc.UnaryInterceptor(logUnary))
	Register(s, NewServer(holder))
	reflection.Register(s)
	return s
}

// RunGRPCServer starts a gRPC server on the given address and
// shuts it down gracefully when the context is canceled.
func RunGRPCServer(ctx context.Context, addr string, holder *registry.Holder) error {
	if addr == "" {
		// Reasonable default if nothing is provided.
		addr = ":9090"
	}

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	s := NewGRPCServer(holder)

	// Stop the server once the context is done (SIGTERM, timeout, etc.).
	go func() {
		<-ctx.Done()
		s.GracefulStop()
	}()

	log.WithField("addr", lis.Addr().String()).Info("gRPC server listening")
	if err := s.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}
