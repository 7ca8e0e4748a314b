package color

import "math"

// RGB to CIE XYZ correlation. Fitted on 6500K fluorescent, 3000K fluorescent and 60W
// incandescent sources. The Y row is illuminance.
var rgbToXYZ = [3][3]float64{
	{-0.14282, 1.54924, -0.95641},
	{-0.32466, 1.57837, -0.73191},
	{-0.68202, 0.77073, 0.56332},
}

// McCamy's cubic
const (
	mccamyXE = 0.3320
	mccamyYE = 0.1858
)

// XYZ maps the red, green and blue channels onto tristimulus values.
func XYZ(s Sample) (x, y, z float64) {
	r, g, b := float64(s.Red), float64(s.Green), float64(s.Blue)
	x = rgbToXYZ[0][0]*r + rgbToXYZ[0][1]*g + rgbToXYZ[0][2]*b
	y = rgbToXYZ[1][0]*r + rgbToXYZ[1][1]*g + rgbToXYZ[1][2]*b
	z = rgbToXYZ[2][0]*r + rgbToXYZ[2][1]*g + rgbToXYZ[2][2]*b
	return x, y, z
}

// Chromaticity returns the xy coordinates of the sample. An all-zero sample yields NaN.
func Chromaticity(s Sample) (xc, yc float64) {
	x, y, z := XYZ(s)
	sum := x + y + z
	return x / sum, y / sum
}

// McCamy approximates the correlated colour temperature in Kelvin for a chromaticity.
func McCamy(xc, yc float64) float64 {
	n := (xc - mccamyXE) / (mccamyYE - yc)
	return 449*n*n*n + 3525*n*n + 6823.3*n + 5520.33
}

// ColorTemperature returns the correlated colour temperature in Kelvin.
// Degenerate input (no light, or yc at the McCamy epicentre) does not fail; the result
// goes through the same saturating conversion as any other value, so a dark sample
// reads 0 K.
func ColorTemperature(s Sample) uint16 {
	return saturate(McCamy(Chromaticity(s)))
}

// Lux returns the illuminance derived from the Y tristimulus value.
// The clear channel does not take part in the computation.
func Lux(s Sample) uint16 {
	_, y, _ := XYZ(s)
	return saturate(y)
}

// saturate rounds v to the nearest integer and clamps it to [0, 65535]. NaN maps to 0.
func saturate(v float64) uint16 {
	switch {
	case math.IsNaN(v), v <= 0:
		return 0
	case v >= math.MaxUint16:
		return math.MaxUint16
	}
	return uint16(math.Round(v))
}
