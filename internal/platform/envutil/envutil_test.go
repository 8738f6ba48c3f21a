package envutil

import "testing"

func TestInt(t *testing.T) {
	t.Setenv("ENVUTIL_INT", "42")
	if got := Int("ENVUTIL_INT", 1, nil); got != 42 {
		t.Fatalf("Int: want=42 got=%d", got)
	}
	t.Setenv("ENVUTIL_INT", "nope")
	if got := Int("ENVUTIL_INT", 7, nil); got != 7 {
		t.Fatalf("Int fallback: want=7 got=%d", got)
	}
	if got := Int("ENVUTIL_INT_MISSING", 3, nil); got != 3 {
		t.Fatalf("Int missing: want=3 got=%d", got)
	}
}

func TestBool(t *testing.T) {
	cases := map[string]bool{"true": true, "1": true, "off": false, "NO": false}
	for raw, want := range cases {
		t.Setenv("ENVUTIL_BOOL", raw)
		if got := Bool("ENVUTIL_BOOL", !want, nil); got != want {
			t.Fatalf("Bool(%q): want=%v got=%v", raw, want, got)
		}
	}
	t.Setenv("ENVUTIL_BOOL", "maybe")
	if got := Bool("ENVUTIL_BOOL", true, nil); !got {
		t.Fatalf("Bool invalid: expected default")
	}
}

func TestStringAndList(t *testing.T) {
	t.Setenv("ENVUTIL_STR", "  value ")
	if got := String("ENVUTIL_STR", "def", nil); got != "value" {
		t.Fatalf("String: got %q", got)
	}
	t.Setenv("ENVUTIL_STR", "   ")
	if got := String("ENVUTIL_STR", "def", nil); got != "def" {
		t.Fatalf("String blank: got %q", got)
	}
	t.Setenv("ENVUTIL_LIST", "a, b,,c ")
	got := List("ENVUTIL_LIST", nil, nil)
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("List: got %v", got)
	}
}

func TestFloat(t *testing.T) {
	t.Setenv("ENVUTIL_FLOAT", "0.25")
	if got := Float("ENVUTIL_FLOAT", 1, nil); got != 0.25 {
		t.Fatalf("Float: got %v", got)
	}
}
