// Package lyricsync parses time-tagged (LRC) lyric text and tracks which
// line is active for a moving playback position.
package lyricsync

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// LRC timestamp pattern: [mm:ss], [mm:ss.x], [mm:ss.xx] or [mm:ss.xxx]
var lrcTimeRegex = regexp.MustCompile(`\[(\d{1,2}):(\d{2})(?:[.:](\d{1,3}))?\]`)

// Line is a single lyric line with its display time in seconds.
type Line struct {
	Time float64 `json:"time"`
	Text string  `json:"text"`
}

// Set is a parsed lyric source. When Synced is true, Lines holds the
// time-tagged lines sorted ascending by time. When the source contained
// no parseable tags, Synced is false and Plain holds the tag-stripped
// text lines instead.
type Set struct {
	Lines  []Line   `json:"lines,omitempty"`
	Plain  []string `json:"plain,omitempty"`
	Synced bool     `json:"isSynced"`
}

// Parse converts a raw lyric blob into a Set. It never fails: an empty
// or unparseable source yields an unsynced Set. A line may carry several
// timestamps (karaoke style repeats); each produces its own entry.
// Sorting is stable so lines sharing a timestamp keep declaration order.
func Parse(raw string) Set {
	var lines []Line
	var plain []string

	for _, rawLine := range strings.Split(raw, "\n") {
		rawLine = strings.TrimSpace(rawLine)
		if rawLine == "" {
			continue
		}

		timestamps := []float64{}
		text := rawLine
		for {
			loc := lrcTimeRegex.FindStringIndex(text)
			if loc == nil || loc[0] != 0 {
				break
			}
			match := lrcTimeRegex.FindStringSubmatch(text)
			minutes, _ := strconv.Atoi(match[1])
			seconds, _ := strconv.Atoi(match[2])
			millis := 0
			if match[3] != "" {
				millis, _ = strconv.Atoi(match[3])
				switch len(match[3]) {
				case 1:
					millis *= 100
				case 2:
					millis *= 10
				}
			}
			timestamps = append(timestamps, float64(minutes*60+seconds)+float64(millis)/1000)
			text = text[loc[1]:]
		}

		text = strings.TrimSpace(text)

		if len(timestamps) == 0 {
			// No tag at the start of the line: strip any embedded tags and
			// keep the remainder as plain-text fallback material.
			stripped := strings.TrimSpace(lrcTimeRegex.ReplaceAllString(rawLine, ""))
			if stripped != "" {
				plain = append(plain, stripped)
			}
			continue
		}

		for _, ts := range timestamps {
			lines = append(lines, Line{Time: ts, Text: text})
		}
	}

	if len(lines) == 0 {
		return Set{Plain: plain, Synced: false}
	}

	sort.SliceStable(lines, func(i, j int) bool { return lines[i].Time < lines[j].Time })
	return Set{Lines: lines, Synced: true}
}
