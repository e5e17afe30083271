package entry

import "time"

// RecordType is the committed catalog move a record describes.
type RecordType uint8

const (
	RecordBorrow RecordType = iota + 1
	RecordReturn
)

func (t RecordType) String() string {
	switch t {
	case RecordBorrow:
		return "borrow"
	case RecordReturn:
		return "return"
	default:
		return "unknown"
	}
}

// Record is an immutable WAL entry. Data is the codec-encoded book.
type Record struct {
	Type RecordType
	Seq  uint64
	Time int64
	Data []byte
}

func NewRecord(t RecordType, seq uint64, data []byte) *Record {
	return &Record{
		Type: t,
		Seq:  seq,
		Time: time.Now().UnixNano(),
		Data: data,
	}
}
