package ptr_test

import (
	"testing"

	"github.com/mkarvone/repsmith/internal/ptr"
)

func TestRef(t *testing.T) {
	intPtr := ptr.Ref(42)
	if *intPtr != 42 {
		t.Errorf("Ref(42) = %d, want 42", *intPtr)
	}

	strPtr := ptr.Ref("bench press")
	if *strPtr != "bench press" {
		t.Errorf("Ref(%q) = %q, want %q", "bench press", *strPtr, "bench press")
	}

	type record struct{ weight float64 }
	recPtr := ptr.Ref(record{weight: 102.5})
	if recPtr.weight != 102.5 {
		t.Errorf("Ref(record).weight = %v, want 102.5", recPtr.weight)
	}
}
