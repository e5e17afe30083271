// Package ingest turns the tab-separated base library into raw catalog
// records. It does no validation of its own: field counts and numbers are
// checked by catalog.Load so that every malformed row is reported the
// same way.
package ingest

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"

	"shelf/domain/catalog"
)

const maxLine = 1 << 20

// ReadTSV reads Title<TAB>Author<TAB>ISBN rows. Blank lines and a leading
// header row are skipped; line numbers are 1-based file lines.
func ReadTSV(r io.Reader) ([]catalog.RawRecord, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)

	var out []catalog.RawRecord
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		fields := strings.Split(text, "\t")
		if line == 1 && isHeader(fields) {
			continue
		}
		out = append(out, catalog.RawRecord{Line: line, Fields: fields})
	}
	if err := sc.Err(); err != nil {
		return out, errors.Wrapf(err, "read line %d", line+1)
	}
	return out, nil
}

// ReadTSVFile is ReadTSV over a file. A missing file yields no records.
func ReadTSVFile(path string) ([]catalog.RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	return ReadTSV(f)
}

func isHeader(fields []string) bool {
	return len(fields) == 3 &&
		strings.EqualFold(strings.TrimSpace(fields[0]), "title") &&
		strings.EqualFold(strings.TrimSpace(fields[1]), "author") &&
		strings.EqualFold(strings.TrimSpace(fields[2]), "isbn")
}
