package grpcserver

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"shelf/api/pb"
	"shelf/domain/catalog"
	"shelf/infra/logging"
	"shelf/infra/sequence"
	"shelf/service"
)

var hare = catalog.Book{Title: "Algorithmics", Author: "Hare", ISBN: 300}

func newClient(t testing.TB) pb.LibraryClient {
	t.Helper()

	svc := service.NewCatalogService(catalog.New(), sequence.New(0), nil, nil, logging.Discard())
	svc.Load([]catalog.RawRecord{
		{Line: 1, Fields: []string{"Algorithms", "Skiena", "100"}},
		{Line: 2, Fields: []string{"Nature of Code", "Christian", "200"}},
		{Line: 3, Fields: []string{"Algorithmics", "Hare", "300"}},
	})

	lis := bufconn.Listen(1 << 20)
	srv := New(svc, logging.Discard())
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return pb.NewLibraryClient(conn)
}

func TestSearch(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()

	s, err := c.SearchByAuthor(ctx, wrapperspb.String("Hare"))
	require.NoError(t, err)
	b, err := pb.StructToBook(s)
	require.NoError(t, err)
	assert.Equal(t, hare, b)

	s, err = c.SearchByISBN(ctx, wrapperspb.Int64(100))
	require.NoError(t, err)
	b, err = pb.StructToBook(s)
	require.NoError(t, err)
	assert.Equal(t, "Skiena", b.Author)

	_, err = c.SearchByAuthor(ctx, wrapperspb.String("Knuth"))
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestBorrowReturn(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()

	_, err := c.Borrow(ctx, pb.BookToStruct(hare))
	require.NoError(t, err)

	_, err = c.Borrow(ctx, pb.BookToStruct(hare))
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	p, err := c.Popular(ctx, &emptypb.Empty{})
	require.NoError(t, err)
	pop, err := pb.StructToPopular(p)
	require.NoError(t, err)
	assert.Equal(t, "Christian", pop.ByAuthor.Author)
	assert.Equal(t, "Christian", pop.ByISBN.Author)

	s, err := c.Return(ctx, wrapperspb.String("Hare"))
	require.NoError(t, err)
	b, err := pb.StructToBook(s)
	require.NoError(t, err)
	assert.Equal(t, hare, b)

	_, err = c.Return(ctx, wrapperspb.String("Hare"))
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
}

func TestBorrowMalformed(t *testing.T) {
	c := newClient(t)

	_, err := c.Borrow(context.Background(), pb.BookToStruct(catalog.Book{Title: "no author", ISBN: 1}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestPopularOnEmptyCatalog(t *testing.T) {
	svc := service.NewCatalogService(catalog.New(), sequence.New(0), nil, nil, logging.Discard())
	_, err := NewServer(svc).Popular(context.Background(), &emptypb.Empty{})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func BenchmarkGRPCSearchByAuthor(b *testing.B) {
	c := newClient(b)
	ctx := context.Background()

	b.ResetTimer()
	b.RunParallel(func(p *testing.PB) {
		for p.Next() {
			if _, err := c.SearchByAuthor(ctx, wrapperspb.String("Hare")); err != nil {
				b.Fatal(err)
			}
		}
	})
}
