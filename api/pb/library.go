// Package pb describes the shelf.v1.Library gRPC service. Messages are
// protobuf well-known types, so no generated code is needed: a book
// travels as a Struct with "title", "author" and "isbn" (a decimal string,
// since Struct numbers are doubles).
package pb

import (
	"context"
	"strconv"

	"github.com/pkg/errors"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"shelf/domain/catalog"
)

const ServiceName = "shelf.v1.Library"

const (
	methodSearchByAuthor = "/" + ServiceName + "/SearchByAuthor"
	methodSearchByISBN   = "/" + ServiceName + "/SearchByISBN"
	methodBorrow         = "/" + ServiceName + "/Borrow"
	methodReturn         = "/" + ServiceName + "/Return"
	methodPopular        = "/" + ServiceName + "/Popular"
)

// -------------------- Server --------------------

type LibraryServer interface {
	SearchByAuthor(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	SearchByISBN(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error)
	Borrow(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	Return(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	Popular(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

func RegisterLibraryServer(s grpc.ServiceRegistrar, srv LibraryServer) {
	s.RegisterService(&LibraryServiceDesc, srv)
}

var LibraryServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LibraryServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SearchByAuthor", Handler: searchByAuthorHandler},
		{MethodName: "SearchByISBN", Handler: searchByISBNHandler},
		{MethodName: "Borrow", Handler: borrowHandler},
		{MethodName: "Return", Handler: returnHandler},
		{MethodName: "Popular", Handler: popularHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "shelf/v1/library.proto",
}

func searchByAuthorHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LibraryServer).SearchByAuthor(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodSearchByAuthor}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(LibraryServer).SearchByAuthor(ctx, req.(*wrapperspb.StringValue))
	})
}

func searchByISBNHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.Int64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LibraryServer).SearchByISBN(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodSearchByISBN}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(LibraryServer).SearchByISBN(ctx, req.(*wrapperspb.Int64Value))
	})
}

func borrowHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LibraryServer).Borrow(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodBorrow}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(LibraryServer).Borrow(ctx, req.(*structpb.Struct))
	})
}

func returnHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LibraryServer).Return(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodReturn}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(LibraryServer).Return(ctx, req.(*wrapperspb.StringValue))
	})
}

func popularHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LibraryServer).Popular(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodPopular}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(LibraryServer).Popular(ctx, req.(*emptypb.Empty))
	})
}

// -------------------- Client --------------------

type LibraryClient interface {
	SearchByAuthor(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	SearchByISBN(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.Struct, error)
	Borrow(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error)
	Return(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	Popular(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type libraryClient struct {
	cc grpc.ClientConnInterface
}

func NewLibraryClient(cc grpc.ClientConnInterface) LibraryClient {
	return &libraryClient{cc: cc}
}

func (c *libraryClient) SearchByAuthor(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodSearchByAuthor, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *libraryClient) SearchByISBN(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodSearchByISBN, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *libraryClient) Borrow(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, methodBorrow, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *libraryClient) Return(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodReturn, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *libraryClient) Popular(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodPopular, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// -------------------- Converters --------------------

var ErrBadBook = errors.New("pb: malformed book message")

func BookToStruct(b catalog.Book) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"title":  structpb.NewStringValue(b.Title),
		"author": structpb.NewStringValue(b.Author),
		"isbn":   structpb.NewStringValue(strconv.FormatInt(b.ISBN, 10)),
	}}
}

func StructToBook(s *structpb.Struct) (catalog.Book, error) {
	if s == nil {
		return catalog.Book{}, ErrBadBook
	}
	f := s.GetFields()
	isbn, err := strconv.ParseInt(f["isbn"].GetStringValue(), 10, 64)
	if err != nil {
		return catalog.Book{}, errors.Wrap(ErrBadBook, "isbn")
	}
	author := f["author"].GetStringValue()
	if author == "" {
		return catalog.Book{}, errors.Wrap(ErrBadBook, "author")
	}
	return catalog.Book{
		Title:  f["title"].GetStringValue(),
		Author: author,
		ISBN:   isbn,
	}, nil
}

// PopularToStruct nests the two roots under "by_author" and "by_isbn";
// an empty tree shows up as null.
func PopularToStruct(p catalog.Popular) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"by_author": bookOrNull(p.ByAuthor),
		"by_isbn":   bookOrNull(p.ByISBN),
	}}
}

func StructToPopular(s *structpb.Struct) (catalog.Popular, error) {
	var p catalog.Popular
	for key, dst := range map[string]**catalog.Book{"by_author": &p.ByAuthor, "by_isbn": &p.ByISBN} {
		nested := s.GetFields()[key].GetStructValue()
		if nested == nil {
			continue
		}
		b, err := StructToBook(nested)
		if err != nil {
			return catalog.Popular{}, errors.Wrap(err, key)
		}
		*dst = &b
	}
	return p, nil
}

func bookOrNull(b *catalog.Book) *structpb.Value {
	if b == nil {
		return structpb.NewNullValue()
	}
	return structpb.NewStructValue(BookToStruct(*b))
}
