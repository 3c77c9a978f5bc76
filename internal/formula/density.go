package formula

// Water density polynomial coefficients. These are the values used by the
// brewing spreadsheet the tool replaced and must not be re-derived.
const (
	densityC0 = 0.999005559846799
	densityC1 = 0.000020305299748608
	densityC2 = 0.0000058871378337408
	densityC3 = 0.00000001357811768736
)

// Density returns the relative density of water at tempC:
//
//	0.999005559846799 - 0.000020305299748608*T + 0.0000058871378337408*T^2 - 0.00000001357811768736*T^3
//
// Each term is converted to float64 before summing. An explicit conversion
// rounds to float64 and stops the compiler from fusing multiply-adds, so the
// result is identical on every architecture. CorrectGravity keeps the same
// left-to-right evaluation order for its multiply and divide.
func Density(tempC float64) float64 {
	t2 := float64(tempC * tempC)
	t3 := float64(t2 * tempC)
	return densityC0 -
		float64(densityC1*tempC) +
		float64(densityC2*t2) -
		float64(densityC3*t3)
}
