package observability

import "testing"

func TestParseOtelHeaders(t *testing.T) {
	got := ParseOtelHeaders(" api-key = abc , broken, =x, team=qsl ")
	if len(got) != 2 {
		t.Fatalf("len: want=2 got=%d (%v)", len(got), got)
	}
	if got["api-key"] != "abc" || got["team"] != "qsl" {
		t.Fatalf("headers: got=%v", got)
	}
	if ParseOtelHeaders("  ") != nil {
		t.Fatalf("empty input should yield nil")
	}
}

func TestClampRatio(t *testing.T) {
	if clampRatio(-1) != 0 || clampRatio(2) != 1 || clampRatio(0.25) != 0.25 {
		t.Fatalf("clampRatio out of range")
	}
}
