package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/mwantia/agentfs/data"
)

var ErrInvalidItem = errors.New("store: item does not contain a valid content field")

// toValue converts a record into the stored item value.
func toValue(record *data.FileRecord) map[string]any {
	return map[string]any{
		"content":     record.Content,
		"created_at":  record.CreatedAt.Format(time.RFC3339Nano),
		"modified_at": record.ModifiedAt.Format(time.RFC3339Nano),
	}
}

// fromValue converts a stored item value back into a record. Values decoded
// by msgpack hold []any where the in-memory store keeps []string.
func fromValue(value map[string]any) (*data.FileRecord, error) {
	var lines []string

	switch content := value["content"].(type) {
	case []string:
		lines = content
	case []any:
		lines = make([]string, 0, len(content))
		for _, line := range content {
			s, ok := line.(string)
			if !ok {
				return nil, ErrInvalidItem
			}
			lines = append(lines, s)
		}
	default:
		return nil, ErrInvalidItem
	}

	createdAt, err := parseTime(value["created_at"])
	if err != nil {
		return nil, err
	}

	modifiedAt, err := parseTime(value["modified_at"])
	if err != nil {
		return nil, err
	}

	return &data.FileRecord{
		Content:    lines,
		CreatedAt:  createdAt,
		ModifiedAt: modifiedAt,
	}, nil
}

func parseTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid timestamp '%s': %w", t, err)
		}
		return parsed, nil
	case nil:
		return time.Time{}, nil
	default:
		return time.Time{}, fmt.Errorf("invalid timestamp type %T", v)
	}
}
