package ffmpeg

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseFrameRate converts ffprobe's rational frame-rate notation
// ("30000/1001", or a bare integer) into frames per second. The string is
// parsed strictly as numerator and denominator and divided; it is never
// handed to any kind of expression evaluator. Malformed input is rejected.
// The indeterminate rate "0/0" ffprobe reports for still-image streams maps
// to 0 without error.
func ParseFrameRate(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty frame rate")
	}

	num, den := s, "1"
	if i := strings.IndexByte(s, '/'); i >= 0 {
		num, den = s[:i], s[i+1:]
	}

	n, err := strconv.ParseUint(num, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed frame rate %q", s)
	}
	d, err := strconv.ParseUint(den, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed frame rate %q", s)
	}

	if d == 0 {
		if n == 0 {
			return 0, nil
		}
		return 0, fmt.Errorf("malformed frame rate %q", s)
	}
	return float64(n) / float64(d), nil
}
