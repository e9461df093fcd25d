package loader

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/crimson-sun/sawmill/internal/model"
)

func init() {
	Register(".csv", &csvAdapter{comma: ','})
	Register(".tsv", &csvAdapter{comma: '\t'})
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// csvEncodings is the fixed fallback order for delimited-text sources.
// The first encoding that decodes and parses without error wins; latin-1
// accepts any byte sequence, so the chain always terminates.
var csvEncodings = []struct {
	name   string
	decode func([]byte) ([]byte, error)
}{
	{"utf-8", decodeUTF8},
	{"utf-8-sig", decodeUTF8SIG},
	{"latin-1", charmapDecoder(charmap.ISO8859_1)},
	{"cp1252", charmapDecoder(charmap.Windows1252)},
	{"iso-8859-1", charmapDecoder(charmap.ISO8859_1)},
}

// csvAdapter reads delimited-text files through the encoding chain.
type csvAdapter struct {
	comma rune
}

func (a *csvAdapter) Load(path string) (*model.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for _, enc := range csvEncodings {
		decoded, err := enc.decode(data)
		if err != nil {
			lastErr = fmt.Errorf("%s: %w", enc.name, err)
			continue
		}
		t, err := a.parse(decoded)
		if err != nil {
			slog.Debug("csv encoding failed", "encoding", enc.name, "path", path, "error", err)
			lastErr = fmt.Errorf("%s: %w", enc.name, err)
			continue
		}
		slog.Debug("csv loaded", "encoding", enc.name, "rows", t.NumRows())
		return t, nil
	}
	return nil, fmt.Errorf("no encoding parsed the file, last error: %w", lastErr)
}

func (a *csvAdapter) parse(data []byte) (*model.Table, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = a.comma
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("empty file")
	}
	return tableFromRecords(records[0], records[1:]), nil
}

func decodeUTF8(data []byte) ([]byte, error) {
	if bytes.HasPrefix(data, utf8BOM) {
		return nil, errors.New("byte order mark present")
	}
	if !utf8.Valid(data) {
		return nil, errors.New("invalid utf-8 sequence")
	}
	return data, nil
}

func decodeUTF8SIG(data []byte) ([]byte, error) {
	trimmed := bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(trimmed) {
		return nil, errors.New("invalid utf-8 sequence")
	}
	return trimmed, nil
}

func charmapDecoder(cm *charmap.Charmap) func([]byte) ([]byte, error) {
	return func(data []byte) ([]byte, error) {
		return cm.NewDecoder().Bytes(data)
	}
}
