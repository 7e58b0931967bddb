package marionette

import (
	"math"

	"github.com/chewxy/math32"
)

// Angle constants in float32.
const (
	Pi     = float32(math.Pi)
	Pi2    = Pi * 2
	HalfPi = Pi / 2
	RadDeg = 180 / Pi
	DegRad = Pi / 180
)

const (
	sinBits       = 14
	sinCount      = 1 << sinBits
	sinMask       = sinCount - 1
	radToIndex    = sinCount / Pi2
	degreeToIndex = sinCount / float32(360)
)

// sinTable samples one full period. Lookups interpolate linearly between
// neighbouring entries.
var sinTable [sinCount]float32

func init() {
	for i := range sinTable {
		sinTable[i] = float32(math.Sin(float64(i) / sinCount * 2 * math.Pi))
	}
}

func sinIndexed(f float32) float32 {
	fl := math32.Floor(f)
	i := int(fl)
	a := sinTable[i&sinMask]
	b := sinTable[(i+1)&sinMask]
	return a + (b-a)*(f-fl)
}

// Sin returns the sine of radians using the lookup table.
func Sin(radians float32) float32 { return sinIndexed(radians * radToIndex) }

// Cos returns the cosine of radians using the lookup table.
func Cos(radians float32) float32 { return sinIndexed((radians + HalfPi) * radToIndex) }

// SinDeg returns the sine of degrees using the lookup table.
func SinDeg(degrees float32) float32 { return sinIndexed(degrees * degreeToIndex) }

// CosDeg returns the cosine of degrees using the lookup table.
func CosDeg(degrees float32) float32 { return sinIndexed((degrees + 90) * degreeToIndex) }

// Atan2 is a polynomial approximation of atan2 with an absolute error below
// 1e-5 radians. It returns values in [-Pi, Pi].
func Atan2(y, x float32) float32 {
	if x == 0 {
		if y > 0 {
			return HalfPi
		}
		if y == 0 {
			return 0
		}
		return -HalfPi
	}
	ax, ay := math32.Abs(x), math32.Abs(y)
	swap := ay > ax
	var z float32
	if swap {
		z = ax / ay
	} else {
		z = ay / ax
	}
	zz := z * z
	r := z * (0.9998660 + zz*(-0.3302995+zz*(0.1801410+zz*(-0.0851330+zz*0.0208351))))
	if swap {
		r = HalfPi - r
	}
	if x < 0 {
		r = Pi - r
	}
	if y < 0 {
		r = -r
	}
	return r
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// WrapDegrees normalizes an angle delta into (-180, 180]. It uses integer
// truncation rather than a modulo so the result is identical on every platform.
func WrapDegrees(r float32) float32 {
	r -= float32((16384 - int(16384.5-float64(r)/360)) * 360)
	if r <= -180 {
		r += 360
	} else if r > 180 {
		r -= 360
	}
	return r
}

// wrapRadians normalizes an angle delta into (-Pi, Pi].
func wrapRadians(r float32) float32 {
	if r > Pi {
		return r - Pi2
	}
	if r <= -Pi {
		return r + Pi2
	}
	return r
}
