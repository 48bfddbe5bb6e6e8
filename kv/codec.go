package kv

import (
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// record is the persisted form of an Item used by every durable store.
type record struct {
	Namespace []string       `msgpack:"namespace"`
	Key       string         `msgpack:"key"`
	Value     map[string]any `msgpack:"value"`
	CreatedAt int64          `msgpack:"created_at"`
	UpdatedAt int64          `msgpack:"updated_at"`
}

// Marshal encodes an item with msgpack.
func Marshal(item *Item) ([]byte, error) {
	return msgpack.Marshal(&record{
		Namespace: item.Namespace,
		Key:       item.Key,
		Value:     item.Value,
		CreatedAt: item.CreatedAt.UnixNano(),
		UpdatedAt: item.UpdatedAt.UnixNano(),
	})
}

// Unmarshal decodes an item encoded by Marshal.
func Unmarshal(buf []byte) (*Item, error) {
	var rec record
	if err := msgpack.Unmarshal(buf, &rec); err != nil {
		return nil, err
	}

	return &Item{
		Namespace: rec.Namespace,
		Key:       rec.Key,
		Value:     rec.Value,
		CreatedAt: time.Unix(0, rec.CreatedAt).UTC(),
		UpdatedAt: time.Unix(0, rec.UpdatedAt).UTC(),
	}, nil
}

// MarshalValue encodes only the value map; used by stores that keep the
// key, namespace and timestamps in their own columns.
func MarshalValue(value map[string]any) ([]byte, error) {
	return msgpack.Marshal(value)
}

func UnmarshalValue(buf []byte) (map[string]any, error) {
	var value map[string]any
	if err := msgpack.Unmarshal(buf, &value); err != nil {
		return nil, err
	}

	return value, nil
}

// NewItem prepares an item for Put. If previous is set its CreatedAt is kept.
func NewItem(namespace []string, key string, value map[string]any, previous *Item) *Item {
	now := time.Now().UTC()
	item := &Item{
		Namespace: namespace,
		Key:       key,
		Value:     value,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if previous != nil {
		item.CreatedAt = previous.CreatedAt
	}

	return item
}
