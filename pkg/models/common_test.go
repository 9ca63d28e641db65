package models

import (
	"database/sql/driver"
	"strings"
	"testing"
	"time"
)

func TestJSONField_Value(t *testing.T) {
	field := JSONField[map[string]string]{Data: map[string]string{"viewport": "0"}}

	value, err := field.Value()
	if err != nil {
		t.Fatalf("JSONField.Value() error = %v", err)
	}
	bytes, ok := value.([]byte)
	if !ok {
		t.Fatalf("JSONField.Value() returned type %T, expected []byte", value)
	}
	if string(bytes) != `{"viewport":"0"}` {
		t.Errorf("JSONField.Value() = %s", string(bytes))
	}

	if _, err := (JSONField[func()]{Data: func() {}}).Value(); err == nil {
		t.Error("JSONField.Value() expected error for unmarshalable data, got nil")
	}
}

func TestJSONField_Scan(t *testing.T) {
	tests := []struct {
		name    string
		input   interface{}
		want    string
		wantErr bool
	}{
		{name: "bytes", input: []byte(`{"transport":"ssh"}`), want: "ssh"},
		{name: "string", input: `{"transport":"native"}`, want: "native"},
		{name: "nil", input: nil, want: ""},
		{name: "invalid json", input: []byte(`{"transport":}`), wantErr: true},
		{name: "invalid type", input: 123, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var field JSONField[map[string]string]
			err := field.Scan(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("JSONField.Scan() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && field.Data["transport"] != tt.want {
				t.Errorf("JSONField.Scan() transport = %q, want %q", field.Data["transport"], tt.want)
			}
		})
	}

	var field JSONField[map[string]string]
	if _, ok := interface{}(field).(driver.Valuer); !ok {
		t.Error("JSONField should implement driver.Valuer")
	}
}

func TestFilter_Validate(t *testing.T) {
	now := time.Now()
	earlier := now.Add(-time.Hour)

	tests := []struct {
		name   string
		filter Filter
		errMsg string
	}{
		{name: "valid filter", filter: Filter{Sources: []string{"tcp"}, Limit: 10}},
		{name: "too many sources", filter: Filter{Sources: make([]string, MaxFilterSourceCount+1)}, errMsg: "too many source filters"},
		{name: "limit too large", filter: Filter{Limit: MaxFilterLimit + 1}, errMsg: "limit too large"},
		{name: "negative limit", filter: Filter{Limit: -1}, errMsg: "limit cannot be negative"},
		{name: "negative offset", filter: Filter{Offset: -1}, errMsg: "offset cannot be negative"},
		{name: "start after end", filter: Filter{StartTime: &now, EndTime: &earlier}, errMsg: "start time cannot be after end time"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.filter.Validate()
			if tt.errMsg == "" {
				if err != nil {
					t.Errorf("Filter.Validate() unexpected error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("Filter.Validate() error = %v, want error containing %s", err, tt.errMsg)
			}
		})
	}
}

func TestSnapshotLookups(t *testing.T) {
	sector := 2
	snap := Snapshot{
		ActiveViewport: 1,
		Viewports:      []ViewportView{{ID: 0}, {ID: 1, Level: 3}},
		Sectors:        []SectorView{{ID: 2, Label: "Science", Surfaces: []int{5}}},
		Surfaces:       []SurfaceView{{ID: 5, Title: "Sensors", SectorID: &sector}},
	}

	if vp := snap.Viewport(); vp == nil || vp.Level != 3 {
		t.Errorf("Viewport() = %+v, want viewport 1", vp)
	}
	if s := snap.Surface(5); s == nil || s.Title != "Sensors" {
		t.Errorf("Surface(5) = %+v", s)
	}
	if snap.Surface(6) != nil {
		t.Error("Surface(6) should be nil")
	}
	if sec := snap.Sector(2); sec == nil || sec.Label != "Science" {
		t.Errorf("Sector(2) = %+v", sec)
	}
}
