package pb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"

	"shelf/domain/catalog"
)

func TestBookStructKeepsLargeISBN(t *testing.T) {
	b := catalog.Book{Title: "Big", Author: "Ann", ISBN: 9780262033848}

	got, err := StructToBook(BookToStruct(b))
	require.NoError(t, err)
	assert.Equal(t, b, got)
}

func TestStructToBookRejects(t *testing.T) {
	_, err := StructToBook(nil)
	assert.ErrorIs(t, err, ErrBadBook)

	s, err := structpb.NewStruct(map[string]any{"author": "Ann", "isbn": "x"})
	require.NoError(t, err)
	_, err = StructToBook(s)
	assert.ErrorIs(t, err, ErrBadBook)

	s, err = structpb.NewStruct(map[string]any{"title": "t", "isbn": "1"})
	require.NoError(t, err)
	_, err = StructToBook(s)
	assert.ErrorIs(t, err, ErrBadBook)
}

func TestPopularStruct(t *testing.T) {
	b := catalog.Book{Title: "Algorithms", Author: "Skiena", ISBN: 100}

	s := PopularToStruct(catalog.Popular{ByAuthor: &b})
	_, isNull := s.GetFields()["by_isbn"].GetKind().(*structpb.Value_NullValue)
	assert.True(t, isNull)

	p, err := StructToPopular(s)
	require.NoError(t, err)
	require.NotNil(t, p.ByAuthor)
	assert.Equal(t, b, *p.ByAuthor)
	assert.Nil(t, p.ByISBN)
}
