package loader

import (
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/crimson-sun/sawmill/internal/model"
)

func init() {
	Register(".parquet", &parquetAdapter{})
}

// parquetAdapter reads columnar parquet files. Parquet is self-describing,
// so there is a single strategy rather than a fallback chain.
type parquetAdapter struct{}

func (a *parquetAdapter) Load(path string) (*model.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	pf, err := parquet.OpenFile(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	fields := pf.Schema().Fields()
	cols := make([]string, len(fields))
	for i, field := range fields {
		cols[i] = field.Name()
	}

	t := model.NewTable(cols)
	buf := make([]parquet.Row, 256)
	for _, rg := range pf.RowGroups() {
		rows := rg.Rows()
		for {
			n, err := rows.ReadRows(buf)
			for _, row := range buf[:n] {
				cells := make([]any, len(cols))
				for _, v := range row {
					if idx := v.Column(); idx >= 0 && idx < len(cells) {
						cells[idx] = parquetValue(v)
					}
				}
				t.Rows = append(t.Rows, cells)
			}
			if err == io.EOF {
				break
			}
			if err != nil {
				rows.Close()
				return nil, fmt.Errorf("read parquet rows: %w", err)
			}
		}
		if err := rows.Close(); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func parquetValue(v parquet.Value) any {
	if v.IsNull() {
		return nil
	}
	switch v.Kind() {
	case parquet.Boolean:
		return v.Boolean()
	case parquet.Int32:
		return int64(v.Int32())
	case parquet.Int64:
		return v.Int64()
	case parquet.Float:
		return float64(v.Float())
	case parquet.Double:
		return v.Double()
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return v.String()
	default:
		return v.String()
	}
}
