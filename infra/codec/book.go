package codec

import (
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"

	"shelf/domain/catalog"
)

// Books travel through the WAL in protobuf wire format:
//
//	1: title  (bytes)
//	2: author (bytes)
//	3: isbn   (varint, zigzag)
//
// Unknown fields are skipped so older readers accept newer records.
const (
	fieldTitle  protowire.Number = 1
	fieldAuthor protowire.Number = 2
	fieldISBN   protowire.Number = 3
)

var ErrMalformedBook = errors.New("codec: malformed book")

func MarshalBook(b catalog.Book) []byte {
	buf := make([]byte, 0, len(b.Title)+len(b.Author)+16)
	buf = protowire.AppendTag(buf, fieldTitle, protowire.BytesType)
	buf = protowire.AppendString(buf, b.Title)
	buf = protowire.AppendTag(buf, fieldAuthor, protowire.BytesType)
	buf = protowire.AppendString(buf, b.Author)
	buf = protowire.AppendTag(buf, fieldISBN, protowire.VarintType)
	buf = protowire.AppendVarint(buf, protowire.EncodeZigZag(b.ISBN))
	return buf
}

func UnmarshalBook(data []byte) (catalog.Book, error) {
	var b catalog.Book
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return catalog.Book{}, errors.Wrap(protowire.ParseError(n), ErrMalformedBook.Error())
		}
		data = data[n:]

		switch {
		case num == fieldTitle && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return catalog.Book{}, errors.Wrap(protowire.ParseError(n), "title")
			}
			b.Title, data = v, data[n:]
		case num == fieldAuthor && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return catalog.Book{}, errors.Wrap(protowire.ParseError(n), "author")
			}
			b.Author, data = v, data[n:]
		case num == fieldISBN && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return catalog.Book{}, errors.Wrap(protowire.ParseError(n), "isbn")
			}
			b.ISBN, data = protowire.DecodeZigZag(v), data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return catalog.Book{}, errors.Wrap(protowire.ParseError(n), ErrMalformedBook.Error())
			}
			data = data[n:]
		}
	}
	return b, nil
}
