package export

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// DefaultDelimiter is the column separator used by every Tanuki export.
const DefaultDelimiter = ";"

// Header maps a column label to the row property feeding it. Property
// supports dotted paths into nested values, e.g. "address.city".
type Header struct {
	Label    string `json:"label"`
	Property string `json:"property"`
}

// Row is a loosely typed export record.
type Row = map[string]interface{}

// ToDelimitedText renders rows into delimited text: one label line followed
// by one line per row. Cells holding objects are JSON encoded; missing or
// empty intermediate values resolve to an empty cell. There is no quoting.
func ToDelimitedText(rows []Row, headers []Header, delimiter string) string {
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}
	if len(headers) == 0 {
		headers = GenerateHeaders(rows)
	}

	labels := make([]string, len(headers))
	for i, header := range headers {
		labels[i] = header.Label
	}

	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, strings.Join(labels, delimiter))

	for _, row := range rows {
		cells := make([]string, len(headers))
		for i, header := range headers {
			cells[i] = resolveCell(row, header.Property)
		}
		lines = append(lines, strings.Join(cells, delimiter))
	}

	return strings.Join(lines, "\n")
}

// GenerateHeaders derives headers from the row carrying the most properties,
// using each property name as both label and path. Keys are emitted in
// lexicographic order to keep the output deterministic.
func GenerateHeaders(rows []Row) []Header {
	var keys []string
	for _, row := range rows {
		if len(row) > len(keys) {
			keys = keys[:0]
			for key := range row {
				keys = append(keys, key)
			}
		}
	}
	sort.Strings(keys)

	headers := make([]Header, len(keys))
	for i, key := range keys {
		headers[i] = Header{Label: key, Property: key}
	}
	return headers
}

func resolveCell(row Row, path string) string {
	var value interface{} = row
	for _, key := range strings.Split(path, ".") {
		nested, ok := value.(map[string]interface{})
		if !ok {
			return ""
		}
		value = nested[key]
		if isEmpty(value) {
			return ""
		}
	}

	return formatCell(value)
}

func formatCell(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	}

	switch reflect.ValueOf(value).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		encoded, err := json.Marshal(value)
		if err != nil {
			return ""
		}
		return string(encoded)
	}

	return fmt.Sprintf("%v", value)
}

func isEmpty(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case bool:
		return !v
	case int:
		return v == 0
	case int64:
		return v == 0
	case float64:
		return v == 0
	case float32:
		return v == 0
	}
	return false
}
