package rpc

import (
	"context"
	"errors"
	"time"

	"github.com/danielpatrickdp/cleanslate/go-screener/internal/crecord"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/screening"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "cleanslate.screener.v1.Screener"

// #region service-desc
// ScreenerServer is implemented by Server. Requests and responses are
// google.protobuf.Struct values holding the JSON interchange forms.
type ScreenerServer interface {
	Screen(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Summarize(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ScreenBatch(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ScreenerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Screen", Handler: unary("Screen", ScreenerServer.Screen)},
		{MethodName: "Summarize", Handler: unary("Summarize", ScreenerServer.Summarize)},
		{MethodName: "ScreenBatch", Handler: unary("ScreenBatch", ScreenerServer.ScreenBatch)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "cleanslate/screener/v1/screener.proto",
}

type method func(ScreenerServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(name string, m method) grpc.MethodHandler {
	full := "/" + ServiceName + "/" + name
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return m(srv.(ScreenerServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: full}
		handler := func(ctx context.Context, req any) (any, error) {
			return m(srv.(ScreenerServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// Register attaches srv to a gRPC server.
func Register(s *grpc.Server, srv ScreenerServer) {
	s.RegisterService(&serviceDesc, srv)
}

// #endregion service-desc

// #region server
// Server exposes a screening service over gRPC.
type Server struct {
	svc    *screening.Service
	logger *zap.Logger
}

// NewServer wraps svc. A nil logger discards.
func NewServer(svc *screening.Service, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{svc: svc, logger: logger.Named("rpc")}
}

// NewGRPCServer builds a grpc.Server with logging and the Screener service
// registered.
func NewGRPCServer(svc *screening.Service, logger *zap.Logger, opts ...grpc.ServerOption) *grpc.Server {
	srv := NewServer(svc, logger)
	opts = append([]grpc.ServerOption{grpc.ChainUnaryInterceptor(srv.logUnary)}, opts...)
	gs := grpc.NewServer(opts...)
	Register(gs, srv)
	return gs
}

func (s *Server) Screen(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req ScreenRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "decode request: %v", err)
	}
	report, err := s.svc.ScreenAt(ctx, req.Record, req.AsOf)
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(report)
}

func (s *Server) Summarize(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req ScreenRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "decode request: %v", err)
	}
	report, err := s.svc.ScreenAt(ctx, req.Record, req.AsOf)
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(report.Summary)
}

func (s *Server) ScreenBatch(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req BatchRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "decode request: %v", err)
	}
	items, err := s.svc.ScreenBatchAt(ctx, req.Records, req.AsOf)
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(struct {
		Items []screening.BatchItem `json:"items"`
	}{items})
}

// #endregion server

// #region helpers
func encode(v any) (*structpb.Struct, error) {
	out, err := toStruct(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, crecord.ErrInvalidRecord):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func (s *Server) logUnary(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.logger.Info("rpc",
		zap.String("method", info.FullMethod),
		zap.String("code", status.Code(err).String()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return resp, err
}

// #endregion helpers
