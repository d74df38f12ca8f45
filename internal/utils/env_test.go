package utils

import (
	"reflect"
	"testing"
)

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("QSL_TEST_STR", "value")
	t.Setenv("QSL_TEST_INT", " 42 ")
	t.Setenv("QSL_TEST_BAD_INT", "forty")
	t.Setenv("QSL_TEST_BOOL", "true")
	t.Setenv("QSL_TEST_FLOAT", "0.25")

	if got := GetEnv("QSL_TEST_STR", "def", nil); got != "value" {
		t.Fatalf("want=%q got=%q", "value", got)
	}
	if got := GetEnv("QSL_TEST_MISSING", "def", nil); got != "def" {
		t.Fatalf("want=%q got=%q", "def", got)
	}
	if got := GetEnvAsInt("QSL_TEST_INT", 1, nil); got != 42 {
		t.Fatalf("want=%d got=%d", 42, got)
	}
	if got := GetEnvAsInt("QSL_TEST_BAD_INT", 7, nil); got != 7 {
		t.Fatalf("want=%d got=%d", 7, got)
	}
	if got := GetEnvAsBool("QSL_TEST_BOOL", false, nil); !got {
		t.Fatalf("want=true got=false")
	}
	if got := GetEnvAsFloat("QSL_TEST_FLOAT", 1, nil); got != 0.25 {
		t.Fatalf("want=%v got=%v", 0.25, got)
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList(" a, ,b ,c")
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("want=%v got=%v", want, got)
	}
	if got := SplitList(""); got != nil {
		t.Fatalf("want nil got=%v", got)
	}
}
