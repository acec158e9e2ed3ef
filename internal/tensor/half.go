package tensor

import "math"

// IEEE 754 half-precision conversion.
//
// Narrowing follows the standard rules: round to nearest even, values above
// the half-precision range saturate to ±Inf, values below the smallest
// normal magnitude flush to a subnormal (or signed zero), NaN stays NaN.

// Float16ToFloat32 converts an IEEE 754 half-precision bit pattern to float32.
func Float16ToFloat32(h uint16) float32 {
	sign := (h >> 15) & 0x1
	exp := (h >> 10) & 0x1F
	mant := h & 0x3FF

	var result uint32

	switch exp {
	case 0:
		if mant == 0 {
			// Zero.
			result = uint32(sign) << 31
		} else {
			// Subnormal number - normalize it.
			exp = 1
			for (mant & 0x400) == 0 {
				mant <<= 1
				exp--
			}
			mant &= 0x3FF
			result = (uint32(sign) << 31) | (uint32(exp+127-15) << 23) | (uint32(mant) << 13)
		}
	case 0x1F:
		// Inf or NaN.
		result = (uint32(sign) << 31) | 0x7F800000 | (uint32(mant) << 13)
	default:
		// Normal number.
		result = (uint32(sign) << 31) | (uint32(exp+127-15) << 23) | (uint32(mant) << 13)
	}

	return math.Float32frombits(result)
}

// Float32ToFloat16 converts a float32 to an IEEE 754 half-precision bit
// pattern, rounding to nearest even.
func Float32ToFloat16(f float32) uint16 {
	bits := math.Float32bits(f)
	sign := uint16((bits >> 31) << 15)
	exp := int((bits>>23)&0xFF) - 127
	mant := bits & 0x7FFFFF

	switch {
	case exp == 128:
		// Inf or NaN.
		if mant == 0 {
			return sign | 0x7C00
		}
		// Keep the top mantissa bits, force at least one set bit so the
		// value stays a NaN after truncation.
		nanMant := uint16(mant >> 13)
		if nanMant == 0 {
			nanMant = 1
		}
		return sign | 0x7C00 | nanMant

	case exp > 15:
		// Overflow: saturate to infinity.
		return sign | 0x7C00

	case exp >= -14:
		// Normal half-precision range. Round the 13 dropped bits to
		// nearest even.
		h := sign | uint16((exp+15)<<10) | uint16(mant>>13)
		round := mant & 0x1FFF
		if round > 0x1000 || (round == 0x1000 && h&1 == 1) {
			h++ // Carry may roll into the exponent; that is correct rounding.
		}
		return h

	case exp >= -24:
		// Subnormal half: shift the implicit leading bit into the mantissa.
		mant |= 0x800000
		shift := uint(-exp - 14 + 13)
		h := sign | uint16(mant>>shift)
		dropped := mant & ((1 << shift) - 1)
		halfway := uint32(1) << (shift - 1)
		if dropped > halfway || (dropped == halfway && h&1 == 1) {
			h++
		}
		return h

	default:
		// Underflow to signed zero.
		return sign
	}
}
