package roadmap

import (
	"slices"
	"testing"
)

func TestParseStatus(t *testing.T) {
	for _, s := range Statuses {
		got, err := ParseStatus(string(s))
		if err != nil || got != s {
			t.Errorf("ParseStatus(%q) = %q, %v", s, got, err)
		}
	}
	if _, err := ParseStatus("done"); err == nil {
		t.Error("ParseStatus(done) should fail")
	}
}

func TestParseRelationship(t *testing.T) {
	tests := []struct {
		in      string
		want    Relationship
		wantErr bool
	}{
		{"prerequisite", Prerequisite, false},
		{"related", Related, false},
		{"optional", Optional, false},
		{"", "", true},
		{"Prerequisite", "", true},
	}
	for _, tt := range tests {
		got, err := ParseRelationship(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseRelationship(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestParseDirection(t *testing.T) {
	if d, err := ParseDirection("LR"); err != nil || d != LeftToRight {
		t.Errorf("ParseDirection(LR) = %q, %v", d, err)
	}
	if _, err := ParseDirection("RL"); err == nil {
		t.Error("ParseDirection(RL) should fail")
	}
}

func TestIDSet(t *testing.T) {
	s := NewIDSet("b", "a")
	s.Add("c")
	s.Add("a")
	if s.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", s.Len())
	}
	if got := s.Sorted(); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("Sorted() = %v", got)
	}

	c := s.Clone()
	c.Remove("a")
	if !s.Has("a") || c.Has("a") {
		t.Error("Clone() is not independent")
	}
	if s.Equal(c) {
		t.Error("Equal() = true for different sets")
	}
	c.Add("a")
	if !s.Equal(c) {
		t.Error("Equal() = false for equal sets")
	}

	var empty IDSet
	if empty.Has("a") || empty.Len() != 0 {
		t.Error("nil set should be empty")
	}
	if empty.Clone() == nil {
		t.Error("Clone() of nil set should be non-nil")
	}
}
