package envutil

import (
	"testing"
	"time"
)

func TestReaders(t *testing.T) {
	t.Setenv("ENVUTIL_INT", "42")
	t.Setenv("ENVUTIL_BAD_INT", "forty")
	t.Setenv("ENVUTIL_FLOAT", "0.25")
	t.Setenv("ENVUTIL_BOOL", "on")
	t.Setenv("ENVUTIL_SECONDS", "7")
	t.Setenv("ENVUTIL_STRING", "  gpt  ")

	if got := Int("ENVUTIL_INT", 1); got != 42 {
		t.Fatalf("Int: want=42 got=%d", got)
	}
	if got := Int("ENVUTIL_BAD_INT", 1); got != 1 {
		t.Fatalf("Int fallback: want=1 got=%d", got)
	}
	if got := Float("ENVUTIL_FLOAT", 0); got != 0.25 {
		t.Fatalf("Float: want=0.25 got=%v", got)
	}
	if got := Bool("ENVUTIL_BOOL", false); !got {
		t.Fatalf("Bool: want=true got=false")
	}
	if got := Bool("ENVUTIL_UNSET", true); !got {
		t.Fatalf("Bool default: want=true got=false")
	}
	if got := Seconds("ENVUTIL_SECONDS", time.Second); got != 7*time.Second {
		t.Fatalf("Seconds: want=7s got=%s", got)
	}
	if got := String("ENVUTIL_STRING", "x"); got != "gpt" {
		t.Fatalf("String: want=gpt got=%q", got)
	}
}
