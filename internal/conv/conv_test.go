package conv

import (
	"math"
	"strconv"
	"testing"
)

func TestFitsUint32(t *testing.T) {
	tests := []struct {
		n    int
		want bool
	}{
		{-1, false},
		{0, true},
		{1 << 20, true},
		{math.MaxInt32, true},
		// MaxInt fits only where int is 32 bits wide
		{math.MaxInt, strconv.IntSize == 32},
	}

	for _, tt := range tests {
		if got := FitsUint32(tt.n); got != tt.want {
			t.Errorf("FitsUint32(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}

func TestIntToUint32(t *testing.T) {
	if got := IntToUint32(42); got != 42 {
		t.Errorf("IntToUint32(42) = %d", got)
	}

	defer func() {
		if recover() == nil {
			t.Error("expected panic for negative input")
		}
	}()
	IntToUint32(-1)
}
