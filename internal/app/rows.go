package app

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"golang-wa-dispatch/internal/ports"
)

// Column values arrive as whatever the driver produced: string or []byte for text,
// int64/float64 for numbers, bool or 0/1 for flags.

func rowString(row ports.Row, key string) string {
	switch v := row[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case []byte:
		return strings.TrimSpace(string(v))
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// rowInt returns the column as an int; ok is false when the column is absent or unparseable.
func rowInt(row ports.Row, key string) (int, bool) {
	switch v := row[key].(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case uint:
		return int(v), true
	case uint64:
		return int(v), true
	case float64:
		return int(v), true
	case string, []byte:
		n, err := strconv.Atoi(rowString(row, key))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func rowInt64(row ports.Row, key string) int64 {
	switch v := row[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case uint64:
		return int64(v)
	case float64:
		return int64(v)
	case string, []byte:
		n, _ := strconv.ParseInt(rowString(row, key), 10, 64)
		return n
	default:
		return 0
	}
}

// rowBool returns the column as a bool, or def when it is absent or unparseable.
func rowBool(row ports.Row, key string, def bool) bool {
	switch v := row[key].(type) {
	case bool:
		return v
	case int64:
		return v != 0
	case int:
		return v != 0
	case float64:
		return v != 0
	case string, []byte:
		s := strings.ToLower(rowString(row, key))
		switch s {
		case "1", "t", "true", "y", "yes":
			return true
		case "0", "f", "false", "n", "no":
			return false
		}
		return def
	default:
		return def
	}
}

// extraColumns are checked in order; the first non-empty one is decoded.
var extraColumns = []string{"extra_config", "extra_json", "options"}

// decodeExtra returns the provider-specific option map of a row. A malformed value
// yields an empty map.
func decodeExtra(row ports.Row) map[string]any {
	for _, col := range extraColumns {
		switch v := row[col].(type) {
		case map[string]any:
			if len(v) == 0 {
				continue
			}
			out := make(map[string]any, len(v))
			for k, val := range v {
				out[k] = val
			}
			return out
		case string, []byte:
			s := rowString(row, col)
			if s == "" || s == "null" {
				continue
			}
			out := map[string]any{}
			if err := json.Unmarshal([]byte(s), &out); err != nil || out == nil {
				return map[string]any{}
			}
			return out
		}
	}
	return map[string]any{}
}
