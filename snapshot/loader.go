package snapshot

import (
	"encoding/gob"
	"os"

	"github.com/golang/snappy"
	"github.com/pkg/errors"
)

// Load reads the snapshot in dir. A missing snapshot is not an error:
// it returns nil, nil and the caller starts from the base library.
func Load(dir string) (*Snapshot, error) {
	f, err := os.Open(Path(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "open snapshot")
	}
	defer f.Close()

	var s Snapshot
	if err := gob.NewDecoder(snappy.NewReader(f)).Decode(&s); err != nil {
		return nil, errors.Wrap(err, "decode snapshot")
	}
	return &s, nil
}
