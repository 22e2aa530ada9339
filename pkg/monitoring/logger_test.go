package monitoring

import (
	"fmt"
	"testing"
)

func TestSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	var got string
	SetLogger(func(format string, v ...interface{}) {
		got = fmt.Sprintf(format, v...)
	})
	Logf("built %d boxes", 3)
	if got != "built 3 boxes" {
		t.Errorf("custom logger got %q", got)
	}

	Warnf("z-level %d is empty", 2)
	if got != "warning: z-level 2 is empty" {
		t.Errorf("Warnf produced %q", got)
	}

	// nil installs a no-op; the previous logger must no longer be called.
	got = ""
	SetLogger(nil)
	Logf("dropped")
	Warnf("dropped")
	if got != "" {
		t.Errorf("no-op logger forwarded %q", got)
	}
}

func TestLogfDefault(t *testing.T) {
	if Logf == nil {
		t.Fatal("Logf should not be nil by default")
	}
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Logf panicked: %v", r)
		}
	}()
	Logf("test message: %s", "value")
}
