package grpcserver

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"shelf/api/pb"
	"shelf/domain/catalog"
	"shelf/service"
)

// Server adapts CatalogService to gRPC.
type Server struct {
	svc *service.CatalogService
}

var _ pb.LibraryServer = (*Server)(nil)

func NewServer(svc *service.CatalogService) *Server {
	return &Server{svc: svc}
}

// New builds a grpc.Server with the library registered and every call
// logged through log.
func New(svc *service.CatalogService, log *logrus.Entry, opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(LoggingInterceptor(log)))
	s := grpc.NewServer(opts...)
	pb.RegisterLibraryServer(s, NewServer(svc))
	return s
}

// -------------------- Queries --------------------

func (s *Server) SearchByAuthor(
	ctx context.Context,
	req *wrapperspb.StringValue,
) (*structpb.Struct, error) {
	b, err := s.svc.LookupByAuthor(req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	return pb.BookToStruct(b), nil
}

func (s *Server) SearchByISBN(
	ctx context.Context,
	req *wrapperspb.Int64Value,
) (*structpb.Struct, error) {
	b, err := s.svc.LookupByISBN(req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	return pb.BookToStruct(b), nil
}

func (s *Server) Popular(
	ctx context.Context,
	_ *emptypb.Empty,
) (*structpb.Struct, error) {
	p, err := s.svc.Popular()
	if err != nil {
		return nil, toStatus(err)
	}
	return pb.PopularToStruct(p), nil
}

// -------------------- Commands --------------------

func (s *Server) Borrow(
	ctx context.Context,
	req *structpb.Struct,
) (*emptypb.Empty, error) {
	b, err := pb.StructToBook(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if err := s.svc.Borrow(b); err != nil {
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

func (s *Server) Return(
	ctx context.Context,
	req *wrapperspb.StringValue,
) (*structpb.Struct, error) {
	b, err := s.svc.Return(req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	return pb.BookToStruct(b), nil
}

// -------------------- Errors --------------------

func toStatus(err error) error {
	switch {
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, catalog.ErrEmpty):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, catalog.ErrNotAvailable), errors.Is(err, catalog.ErrNotBorrowed):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// -------------------- Interceptors --------------------

func LoggingInterceptor(log *logrus.Entry) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		entry := log.WithFields(logrus.Fields{
			"method":   info.FullMethod,
			"code":     status.Code(err).String(),
			"duration": time.Since(start),
		})
		if status.Code(err) == codes.Internal {
			entry.WithError(err).Error("grpc call failed")
		} else {
			entry.Debug("grpc call")
		}
		return resp, err
	}
}
