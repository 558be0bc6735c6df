// Package lyrics parses timed lyrics in LRC format.
package lyrics

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Line is one timed lyric line.
type Line struct {
	// Time is the offset in seconds.
	Time float64 `json:"time"`
	Text string  `json:"text"`
}

// Parse reads LRC content. A line may carry several [mm:ss.xx] stamps and
// yields one Line per stamp. Lines without stamps are ignored.
func Parse(content string) []Line {
	var lines []Line
	for raw := range strings.Lines(content) {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		var times []float64
		rest := line
		for strings.HasPrefix(rest, "[") {
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				break
			}
			if t, ok := parseStamp(rest[1:end]); ok {
				times = append(times, t)
			}
			rest = rest[end+1:]
		}
		text := strings.TrimSpace(rest)
		for _, t := range times {
			lines = append(lines, Line{Time: t, Text: text})
		}
	}
	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].Time < lines[j].Time
	})
	return lines
}

// parseStamp converts mm:ss.xx to seconds. Stamps without a colon report
// false. Unparsable numbers count as zero.
func parseStamp(stamp string) (float64, bool) {
	mm, ss, ok := strings.Cut(stamp, ":")
	if !ok {
		return 0, false
	}
	return number(mm)*60 + number(ss), true
}

func number(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// Decode converts raw file contents to a string, honouring a UTF-8 or
// UTF-16 byte order mark. Content without a BOM is taken as UTF-8.
func Decode(raw []byte) (string, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(dec, raw)
	if err != nil {
		return "", fmt.Errorf("could not decode lyrics: %w", err)
	}
	return string(out), nil
}
