package entry

import (
	"bufio"
	"io"
	"os"

	"github.com/pkg/errors"
)

// lastSeq returns the highest sequence in a closed segment. A torn final
// frame ends the scan; a corrupt one fails it, and TruncateBefore then
// keeps the segment for Replay to report.
func lastSeq(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	var last uint64
	r := bufio.NewReader(f)
	for {
		rec, err := readFrame(r)
		switch {
		case err == io.EOF, err == io.ErrUnexpectedEOF:
			return last, nil
		case err != nil:
			return 0, errors.Wrapf(err, "scan %s", path)
		}
		last = max(last, rec.Seq)
	}
}
