package codec

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"shelf/domain/catalog"
)

// Event is what the broadcaster publishes for every committed move.
type Event struct {
	V      int       `json:"v"`
	ID     string    `json:"id"`
	Type   string    `json:"type"`
	Seq    uint64    `json:"seq"`
	Time   time.Time `json:"time"`
	Title  string    `json:"title"`
	Author string    `json:"author"`
	ISBN   int64     `json:"isbn"`
}

const eventVersion = 1

func NewEvent(typ string, seq uint64, b catalog.Book) Event {
	return Event{
		V:      eventVersion,
		ID:     uuid.NewString(),
		Type:   typ,
		Seq:    seq,
		Time:   time.Now().UTC(),
		Title:  b.Title,
		Author: b.Author,
		ISBN:   b.ISBN,
	}
}

func (e Event) Book() catalog.Book {
	return catalog.Book{Title: e.Title, Author: e.Author, ISBN: e.ISBN}
}

func MarshalEvent(e Event) ([]byte, error) {
	return json.Marshal(e)
}

func UnmarshalEvent(data []byte) (Event, error) {
	var e Event
	err := json.Unmarshal(data, &e)
	return e, err
}
