package ffmpeg

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"
)

// Both the legacy "YMIN:16" log form and the metadata filter's
// "lavfi.signalstats.YMIN=16" form are accepted.
var (
	yMinPattern = regexp.MustCompile(`YMIN[:=](\d+)`)
	yMaxPattern = regexp.MustCompile(`YMAX[:=](\d+)`)
)

// ParseSignalStats extracts per-frame luminance ranges from signalstats
// output. A frame is emitted once both its YMIN and YMAX are seen.
func ParseSignalStats(output string) []FrameStats {
	var (
		frames  []FrameStats
		minSeen bool
		maxSeen bool
		current FrameStats
	)

	flush := func() {
		if minSeen && maxSeen {
			frames = append(frames, current)
			current = FrameStats{}
			minSeen, maxSeen = false, false
		}
	}

	scanner := bufio.NewScanner(strings.NewReader(output))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if m := yMinPattern.FindStringSubmatch(line); m != nil {
			if minSeen {
				// a new frame started before the previous one completed
				current = FrameStats{}
				maxSeen = false
			}
			current.YMin, _ = strconv.Atoi(m[1])
			minSeen = true
		}
		if m := yMaxPattern.FindStringSubmatch(line); m != nil {
			current.YMax, _ = strconv.Atoi(m[1])
			maxSeen = true
		}
		flush()
	}
	return frames
}
