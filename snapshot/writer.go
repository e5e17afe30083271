package snapshot

import (
	"encoding/gob"
	"os"
	"path/filepath"

	"github.com/golang/snappy"
	"github.com/pkg/errors"
)

const fileName = "snapshot.bin"

type Writer struct {
	Dir string
}

// Write replaces the snapshot in Dir atomically: the new file is fully
// written and synced before it is renamed over the old one.
func (w *Writer) Write(s *Snapshot) error {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return errors.Wrap(err, "create snapshot dir")
	}

	tmp, err := os.CreateTemp(w.Dir, fileName+".*")
	if err != nil {
		return errors.Wrap(err, "create snapshot temp file")
	}
	defer os.Remove(tmp.Name())

	zw := snappy.NewBufferedWriter(tmp)
	if err := gob.NewEncoder(zw).Encode(s); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "encode snapshot")
	}
	if err := zw.Close(); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "flush snapshot")
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "sync snapshot")
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return errors.Wrap(os.Rename(tmp.Name(), Path(w.Dir)), "install snapshot")
}

func Path(dir string) string {
	return filepath.Join(dir, fileName)
}
