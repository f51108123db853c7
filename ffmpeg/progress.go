package ffmpeg

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// ProgressFunc receives best-effort percent-complete events while an
// external transform runs. Implementations must be fast; they are called
// from the pipe-draining goroutine.
type ProgressFunc func(percent float64)

// scanProgress drains ffmpeg's `-progress pipe:1` key=value stream and
// emits monotonically increasing percentages against the known duration.
// out_time_ms is microseconds despite its name. duration <= 0 disables
// intermediate events; "progress=end" always emits 100.
func scanProgress(r io.Reader, duration float64, emit ProgressFunc) {
	if emit == nil {
		io.Copy(io.Discard, r)
		return
	}

	var last float64
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		key, value, ok := splitPair(scanner.Text())
		if !ok {
			continue
		}

		switch key {
		case "out_time_ms":
			if duration <= 0 {
				continue
			}
			us, err := strconv.ParseFloat(value, 64)
			if err != nil {
				continue
			}
			pct := us / 1e6 / duration * 100
			if pct > 100 {
				pct = 100
			}
			// Throttle: only whole-percent advances are worth surfacing.
			if pct-last >= 1 {
				last = pct
				emit(pct)
			}
		case "progress":
			if value == "end" && last < 100 {
				last = 100
				emit(100)
			}
		}
	}
}

func splitPair(line string) (key, value string, ok bool) {
	i := strings.IndexByte(line, '=')
	if i < 0 {
		return "", "", false
	}
	return strings.TrimSpace(line[:i]), strings.TrimSpace(line[i+1:]), true
}
