package main

import (
	"testing"
	"time"
)

func TestParseBound(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"", time.Time{}, false},
		{"2024-03-01", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), false},
		{"2024-03-01T08:30:00Z", time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC), false},
		{"yesterday", time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseBound(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseBound(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !got.Equal(tt.want) {
				t.Errorf("parseBound(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseUser(t *testing.T) {
	if _, err := parseUser("not-a-uuid"); err == nil {
		t.Error("parseUser() accepted an invalid id")
	}
	id, err := parseUser("88888888-8888-4888-8888-888888888888")
	if err != nil || id.String() != "88888888-8888-4888-8888-888888888888" {
		t.Errorf("parseUser() = %v, %v", id, err)
	}
}
