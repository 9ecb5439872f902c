package main

import (
	"testing"
	"time"
)

func TestParseCutoff(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		want    time.Time
		wantErr bool
	}{
		{name: "rfc3339", raw: "2024-03-01T10:30:00Z", want: time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)},
		{name: "date only", raw: " 2024-03-01 ", want: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{name: "garbage", raw: "yesterday", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseCutoff(tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("parseCutoff(%q): expected error", tc.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseCutoff(%q): %v", tc.raw, err)
			}
			if !got.Equal(tc.want) {
				t.Fatalf("parseCutoff(%q): want=%v got=%v", tc.raw, tc.want, got)
			}
		})
	}
}

func TestConfirmYesSkipsPrompt(t *testing.T) {
	if !confirm(true, "ignored") {
		t.Fatalf("confirm(yes): want=true")
	}
}
