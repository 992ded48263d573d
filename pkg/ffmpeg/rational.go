package ffmpeg

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseRational parses a frame-rate expression such as "30000/1001" or "25".
// Only the numerator/denominator form is accepted; nothing is evaluated.
func ParseRational(value string) (float64, error) {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidRational)
	}

	num, den, hasSlash := strings.Cut(cleaned, "/")
	n, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRational, value)
	}
	if !hasSlash {
		return n, nil
	}

	d, err := strconv.ParseFloat(strings.TrimSpace(den), 64)
	if err != nil || math.IsNaN(d) || math.IsInf(d, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRational, value)
	}
	if d == 0 {
		return 0, fmt.Errorf("%w: zero denominator in %q", ErrInvalidRational, value)
	}
	return n / d, nil
}
