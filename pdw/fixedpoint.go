package pdw

import (
	"fmt"
	"math"
)

// The analog generator's power and chirp-rate fields use bespoke
// mantissa/exponent encodings rather than IEEE floats. The conversions
// below mirror the hardware's rounding behavior, including the
// mantissa-overflow carry into the exponent.

// convertToFloatingPoint packs a positive value into the generator's
// modified floating-point form: exponent<<mantissaBits | mantissa,
// representing (1 + mantissa/2^mantissaBits) * 2^(exponentOffset+exponent).
// Values too large saturate; values too small or non-positive encode
// as zero.
func convertToFloatingPoint(v float64, exponentOffset, mantissaBits, exponentBits int) uint32 {
	maxExponent := 1<<exponentBits - 1
	maxMantissa := uint32(1<<mantissaBits - 1)

	if v <= 0 {
		return 0
	}
	exponent := int(math.Floor(math.Log2(v))) - exponentOffset
	switch {
	case exponent > maxExponent:
		return uint32(maxExponent)<<mantissaBits | maxMantissa
	case exponent < 0:
		return 0
	}

	scale := float64(int(1) << mantissaBits)
	mantissa := uint32((math.Ldexp(v, -(exponentOffset+exponent))-1)*scale + 0.5)
	if mantissa > maxMantissa {
		// Rounding carried past the mantissa width.
		if exponent < maxExponent {
			mantissa = 0
			exponent++
		} else {
			mantissa = maxMantissa
		}
	}
	return uint32(exponent)<<mantissaBits | mantissa
}

// floatingPointValue inverts convertToFloatingPoint.
func floatingPointValue(code uint32, exponentOffset, mantissaBits int) float64 {
	mantissa := code & uint32(1<<mantissaBits-1)
	exponent := int(code >> mantissaBits)
	frac := 1 + float64(mantissa)/float64(int(1)<<mantissaBits)
	return math.Ldexp(frac, exponentOffset+exponent)
}

// closestM2N finds the nearest mantissa*2^exponent representation of a
// non-negative value with the given mantissa width.
func closestM2N(v float64, mantissaBits int) (exponent, mantissa uint32) {
	maxMantissa := uint32(1<<mantissaBits - 1)
	if v < float64(maxMantissa)+0.5 {
		m := uint32(v + 0.5)
		if m > maxMantissa {
			m = maxMantissa
		}
		return 0, m
	}

	_, exp := math.Frexp(v)
	exp -= mantissaBits
	frac := v / float64(uint64(1)<<exp)
	if frac > float64(maxMantissa)+0.5-1e-9 {
		return uint32(exp + 1), 1 << (mantissaBits - 1)
	}
	m := uint32(frac + 0.5)
	if m > maxMantissa {
		m = maxMantissa
	}
	return uint32(exp), m
}

// chirpRateRes is the chirp-rate quantum in Hz/us the hardware field
// counts in.
const chirpRateRes = 21.822

const (
	chirpMantissaBits = 13
	chirpExponentBits = 4
)

// encodeChirpRate packs a chirp rate in Hz/us into the 17-bit
// exponent<<13 | mantissa field. The hardware doubles the exponent, so
// odd exponents round up with a mantissa halving. Rates the 4-bit
// exponent cannot reach (just under 1.92e14 Hz/us) are rejected rather
// than left to overflow into the neighboring word fields.
func encodeChirpRate(rateHzPerUs float64) (uint32, error) {
	if rateHzPerUs < 0 {
		return 0, fmt.Errorf("%w: chirpRate %.6g Hz/us is negative", ErrFieldOutOfRange, rateHzPerUs)
	}
	if rateHzPerUs == 0 {
		return 0, nil
	}
	exponent, mantissa := closestM2N(rateHzPerUs/chirpRateRes, chirpMantissaBits)
	if exponent&1 != 0 {
		exponent = (exponent + 1) >> 1
		mantissa /= 2
	} else {
		exponent >>= 1
	}
	if exponent > 1<<chirpExponentBits-1 {
		return 0, fmt.Errorf("%w: chirpRate %.6g Hz/us exceeds the %d-bit field",
			ErrFieldOutOfRange, rateHzPerUs, chirpMantissaBits+chirpExponentBits)
	}
	return exponent<<chirpMantissaBits | mantissa&(1<<chirpMantissaBits-1), nil
}

// decodeChirpRate inverts encodeChirpRate.
func decodeChirpRate(code uint32) float64 {
	mantissa := code & (1<<chirpMantissaBits - 1)
	exponent := code >> chirpMantissaBits
	return float64(mantissa) * math.Ldexp(1, int(2*exponent)) * chirpRateRes
}
