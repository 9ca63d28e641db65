package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Constants for validation limits
const (
	MaxFilterSourceCount = 10
	MaxFilterLimit       = 1000
)

// JSONField is a generic type for JSON database fields
type JSONField[T any] struct {
	Data T
}

func (j JSONField[T]) Value() (driver.Value, error) {
	b, err := json.Marshal(j.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return b, nil
}

func (j *JSONField[T]) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into JSONField", value)
	}

	if err := json.Unmarshal(b, &j.Data); err != nil {
		return fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	return nil
}

// Result represents a generic operation result
type Result[T any] struct {
	Data  T      `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
	Ok    bool   `json:"ok"`
}

// Filter represents journal query filters
type Filter struct {
	StartTime  *time.Time `json:"start_time,omitempty"`
	EndTime    *time.Time `json:"end_time,omitempty"`
	Sources    []string   `json:"sources,omitempty"`
	FailedOnly bool       `json:"failed_only,omitempty"`
	Limit      int        `json:"limit,omitempty"`
	Offset     int        `json:"offset,omitempty"`
}

// Validate validates the filter constraints
func (f *Filter) Validate() error {
	if len(f.Sources) > MaxFilterSourceCount {
		return fmt.Errorf("too many source filters: %d, maximum allowed: %d", len(f.Sources), MaxFilterSourceCount)
	}

	if f.Limit > MaxFilterLimit {
		return fmt.Errorf("limit too large: %d, maximum allowed: %d", f.Limit, MaxFilterLimit)
	}

	if f.Limit < 0 {
		return errors.New("limit cannot be negative")
	}

	if f.Offset < 0 {
		return errors.New("offset cannot be negative")
	}

	if f.StartTime != nil && f.EndTime != nil && f.StartTime.After(*f.EndTime) {
		return errors.New("start time cannot be after end time")
	}

	return nil
}
