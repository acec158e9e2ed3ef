package tensor

import (
	"math"
	"testing"
)

// TestFloat16RoundTripExact verifies values exactly representable in half
// precision survive a narrow/widen round trip unchanged.
func TestFloat16RoundTripExact(t *testing.T) {
	values := []float32{0, 1, -1, 0.5, -2.5, 3.25, 1024, -1024, 65504, -65504}

	for _, v := range values {
		h := Float32ToFloat16(v)
		got := Float16ToFloat32(h)
		if got != v {
			t.Errorf("round trip %v: got %v (bits %#04x)", v, got, h)
		}
	}
}

// TestFloat16KnownBitPatterns verifies conversion against known encodings.
func TestFloat16KnownBitPatterns(t *testing.T) {
	tests := []struct {
		name string
		f    float32
		h    uint16
	}{
		{"zero", 0, 0x0000},
		{"one", 1, 0x3C00},
		{"negative two", -2, 0xC000},
		{"max finite", 65504, 0x7BFF},
		{"smallest normal", 6.103515625e-05, 0x0400},
		{"smallest subnormal", 5.960464477539063e-08, 0x0001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Float32ToFloat16(tt.f); got != tt.h {
				t.Errorf("Float32ToFloat16(%v) = %#04x, want %#04x", tt.f, got, tt.h)
			}
			if got := Float16ToFloat32(tt.h); got != tt.f {
				t.Errorf("Float16ToFloat32(%#04x) = %v, want %v", tt.h, got, tt.f)
			}
		})
	}
}

// TestFloat16Saturation verifies values beyond the half range become Inf.
func TestFloat16Saturation(t *testing.T) {
	if h := Float32ToFloat16(65536); h != 0x7C00 {
		t.Errorf("overflow should saturate to +Inf (0x7C00), got %#04x", h)
	}
	if h := Float32ToFloat16(-1e30); h != 0xFC00 {
		t.Errorf("negative overflow should saturate to -Inf (0xFC00), got %#04x", h)
	}
	if got := Float16ToFloat32(0x7C00); !math.IsInf(float64(got), 1) {
		t.Errorf("0x7C00 should widen to +Inf, got %v", got)
	}
}

// TestFloat16Underflow verifies tiny values flush to subnormal or zero.
func TestFloat16Underflow(t *testing.T) {
	// Below the smallest half subnormal: flush to zero, keep the sign.
	if h := Float32ToFloat16(1e-10); h != 0x0000 {
		t.Errorf("underflow should flush to +0, got %#04x", h)
	}
	if h := Float32ToFloat16(-1e-10); h != 0x8000 {
		t.Errorf("negative underflow should flush to -0, got %#04x", h)
	}

	// Between smallest subnormal and smallest normal: representable as subnormal.
	h := Float32ToFloat16(1e-05)
	if h == 0 || h >= 0x0400 {
		t.Errorf("1e-05 should narrow to a subnormal, got %#04x", h)
	}
	got := Float16ToFloat32(h)
	if diff := math.Abs(float64(got) - 1e-05); diff > 1e-07 {
		t.Errorf("subnormal round trip too lossy: got %v", got)
	}
}

// TestFloat16RoundToNearestEven verifies the rounding mode on a halfway case.
func TestFloat16RoundToNearestEven(t *testing.T) {
	// 2049 lies exactly between 2048 and 2050 in half precision; nearest
	// even mantissa selects 2048.
	if got := Float16ToFloat32(Float32ToFloat16(2049)); got != 2048 {
		t.Errorf("2049 should round to 2048, got %v", got)
	}
	// 2051 is halfway between 2050 and 2052; nearest even selects 2052.
	if got := Float16ToFloat32(Float32ToFloat16(2051)); got != 2052 {
		t.Errorf("2051 should round to 2052, got %v", got)
	}
}

// TestFloat16NaN verifies NaN stays NaN through both directions.
func TestFloat16NaN(t *testing.T) {
	h := Float32ToFloat16(float32(math.NaN()))
	if h&0x7C00 != 0x7C00 || h&0x03FF == 0 {
		t.Errorf("NaN should narrow to a half NaN, got %#04x", h)
	}
	if got := Float16ToFloat32(h); !math.IsNaN(float64(got)) {
		t.Errorf("half NaN should widen to NaN, got %v", got)
	}
}

// TestFloat16PrecisionBound verifies the 1e-2 tolerance the pipeline
// guarantees for typical weight magnitudes.
func TestFloat16PrecisionBound(t *testing.T) {
	for _, v := range []float32{1.0, -2.5, 3.25, 0.1, -0.731, 2.718} {
		got := Float16ToFloat32(Float32ToFloat16(v))
		if diff := math.Abs(float64(got - v)); diff > 1e-2 {
			t.Errorf("narrowing %v drifted by %v (> 1e-2)", v, diff)
		}
	}
}
