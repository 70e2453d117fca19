package mandel

// EscapeTime iterates z = z² + c from z = 0 and returns the 1-based index of
// the first iterate whose magnitude exceeds 2. It returns 0 when the orbit
// stays bounded for n iterations (and for n <= 0).
//
// The bound is tested as re²+im² > 4. The explicit float64 conversions keep
// every product rounded on its own so results do not depend on FMA fusion.
func EscapeTime(c complex128, n int) int {
	cr, ci := real(c), imag(c)
	var re, im float64
	for i := 1; i <= n; i++ {
		re, im = float64(re*re)-float64(im*im)+cr, float64(2*re*im)+ci
		if float64(re*re)+float64(im*im) > 4 {
			return i
		}
	}
	return 0
}
