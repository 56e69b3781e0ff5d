package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ExtraData is the free-form extension bag several grading entities carry.
// It is persisted as a JSONB column and shared by definitions, sessions,
// outcomes, grade records and archive rows.
type ExtraData map[string]interface{}

// Get returns the value stored under key. The second return reports
// whether the key was present; looking up a missing key never errors.
func (d ExtraData) Get(key string) (interface{}, bool) {
	if d == nil {
		return nil, false
	}
	v, ok := d[key]
	return v, ok
}

// Set inserts or overwrites the value for key. Last write wins.
func (d *ExtraData) Set(key string, value interface{}) {
	if *d == nil {
		*d = make(ExtraData)
	}
	(*d)[key] = value
}

// Remove deletes the key if present. Removing an absent key is a no-op.
func (d ExtraData) Remove(key string) {
	delete(d, key)
}

// Len reports the number of stored keys.
func (d ExtraData) Len() int {
	return len(d)
}

// Value marshals the bag to JSON for persistence.
func (d ExtraData) Value() (driver.Value, error) {
	if d == nil {
		d = ExtraData{}
	}
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("marshal extra data: %w", err)
	}
	return data, nil
}

// Scan unmarshals a JSON payload into the bag.
func (d *ExtraData) Scan(value interface{}) error {
	if value == nil {
		*d = ExtraData{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for ExtraData", value)
	}
	if len(data) == 0 {
		*d = ExtraData{}
		return nil
	}
	if err := json.Unmarshal(data, d); err != nil {
		return fmt.Errorf("unmarshal extra data: %w", err)
	}
	return nil
}
