// Package preview turns a row-oriented data sample into the column-wise
// preview stored on a dataitem status.
package preview

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/digitalhub-labs/digitalhub/pkg/core"
)

// Build pivots rows into one preview column per name. Rows shorter than
// columns contribute nil for the missing cells; extra cells are ignored.
func Build(columns []string, rows [][]any) []core.PreviewColumn {
	out := make([]core.PreviewColumn, len(columns))
	for i, name := range columns {
		values := make([]any, len(rows))
		for j, row := range rows {
			if i < len(row) {
				values[j] = Render(row[i])
			}
		}
		out[i] = core.PreviewColumn{Name: name, Value: values}
	}
	return out
}

// Render converts a driver value into a JSON-safe display value.
func Render(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return val
	case float32:
		return renderFloat(float64(val))
	case float64:
		return renderFloat(val)
	case []byte:
		return string(val)
	case time.Time:
		return val.UTC().Format(time.RFC3339Nano)
	case fmt.Stringer:
		return val.String()
	}
	if _, err := json.Marshal(v); err != nil {
		return fmt.Sprint(v)
	}
	return v
}

func renderFloat(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Sprint(f)
	}
	return f
}
