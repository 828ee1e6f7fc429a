package datefmt

import (
	"testing"
	"time"
)

func TestParseCMSTimestamp(t *testing.T) {
	got, err := Parse("2021-04-19T00:00:00+0000")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	want := time.Date(2021, time.April, 19, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Parse = %v, want %v", got, want)
	}
}

func TestParseRFC3339(t *testing.T) {
	got, err := Parse("2021-03-25T19:25:28Z")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got.Hour() != 19 || got.Day() != 25 {
		t.Errorf("Parse = %v", got)
	}
}

func TestParseEmptyAndNil(t *testing.T) {
	got, err := Parse("  ")
	if err != nil || got != nil {
		t.Errorf("Parse(blank) = %v, %v; want nil, nil", got, err)
	}
	got, err = ParsePtr(nil)
	if err != nil || got != nil {
		t.Errorf("ParsePtr(nil) = %v, %v; want nil, nil", got, err)
	}
}

func TestParseInvalid(t *testing.T) {
	if _, err := Parse("yesterday"); err == nil {
		t.Fatal("expected error for invalid timestamp")
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		in   time.Time
		want string
	}{
		{time.Date(2021, time.April, 19, 0, 0, 0, 0, time.UTC), "19 abr 2021"},
		{time.Date(2020, time.January, 2, 12, 0, 0, 0, time.UTC), "02 jan 2020"},
		{time.Date(2019, time.December, 31, 23, 0, 0, 0, time.UTC), "31 dez 2019"},
		{time.Date(2022, time.February, 9, 0, 0, 0, 0, time.UTC), "09 fev 2022"},
	}
	for _, tt := range tests {
		got := Format(&tt.in, nil)
		if got != tt.want {
			t.Errorf("Format(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatNil(t *testing.T) {
	if got := Format(nil, time.UTC); got != "" {
		t.Errorf("Format(nil) = %q, want empty", got)
	}
}

func TestFormatLocationDoesNotMutate(t *testing.T) {
	in := time.Date(2021, time.April, 19, 0, 0, 0, 0, time.UTC)
	loc := time.FixedZone("BRT", -3*60*60)
	if got := Format(&in, loc); got != "18 abr 2021" {
		t.Errorf("Format in BRT = %q, want %q", got, "18 abr 2021")
	}
	if in.Location() != time.UTC || in.Day() != 19 {
		t.Errorf("input time was modified: %v", in)
	}
}
