package verify

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// benignPatterns is the allow-list of decoder chatter dropped outright.
// These lines show up on perfectly playable files.
var benignPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)last message repeated`),
	regexp.MustCompile(`(?i)estimating duration from bitrate`),
	regexp.MustCompile(`(?i)deprecated pixel format`),
	regexp.MustCompile(`(?i)guessed channel layout`),
	regexp.MustCompile(`(?i)referenced qt chapter track not found`),
	regexp.MustCompile(`(?i)could not find codec parameters for stream .* attached pic`),
}

// timestampPatterns pull presentation/decode timestamp disorder into its own
// bucket instead of the generic error path.
var timestampPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)non[- ]monotonic(?:ally increasing)? (?:dts|pts)`),
	regexp.MustCompile(`(?i)invalid pts .*<= last`),
	regexp.MustCompile(`(?i)out of order packet`),
	regexp.MustCompile(`(?i)pts .* < dts`),
}

var timestampValues = regexp.MustCompile(`(?i)(?:last|previous)[:=]?\s*(-?\d+).*?(?:current|new)[:=]?\s*(-?\d+)`)

// diagnostics is the classified form of one decode's stderr.
type diagnostics struct {
	errors     []string
	warnings   []string
	timestamps []timestampEvent
}

type timestampEvent struct {
	line     string
	jump     int64
	hasJump  bool
	repeated bool
}

// classifyOutput buckets every diagnostic line: benign noise is dropped,
// timestamp disorder is collected separately, "error" lines are hard
// errors, "warning" lines are warnings, and anything unrecognized is
// conservatively an error.
func classifyOutput(stderr string) diagnostics {
	var result diagnostics
	for _, raw := range strings.Split(stderr, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if matchesAny(benignPatterns, line) {
			continue
		}
		if matchesAny(timestampPatterns, line) {
			result.timestamps = append(result.timestamps, parseTimestampEvent(line))
			continue
		}
		lower := strings.ToLower(line)
		switch {
		case strings.Contains(lower, "error"):
			result.errors = append(result.errors, line)
		case strings.Contains(lower, "warning"):
			result.warnings = append(result.warnings, line)
		default:
			result.errors = append(result.errors, line)
		}
	}
	return result
}

func matchesAny(patterns []*regexp.Regexp, line string) bool {
	for _, pattern := range patterns {
		if pattern.MatchString(line) {
			return true
		}
	}
	return false
}

// parseTimestampEvent extracts the backward jump magnitude when the line
// carries last/current values. Equal values mark a repeated timestamp
// rather than a jump.
func parseTimestampEvent(line string) timestampEvent {
	event := timestampEvent{line: line}
	matches := timestampValues.FindStringSubmatch(line)
	if matches == nil {
		return event
	}
	last, err1 := strconv.ParseInt(matches[1], 10, 64)
	current, err2 := strconv.ParseInt(matches[2], 10, 64)
	if err1 != nil || err2 != nil {
		return event
	}
	event.hasJump = true
	event.jump = last - current
	event.repeated = last == current
	return event
}

// backwardPTSMessage condenses the timestamp bucket into one flag message.
func backwardPTSMessage(events []timestampEvent) string {
	var (
		maxJump  int64
		haveJump bool
		repeated = true
	)
	for _, event := range events {
		if event.hasJump {
			haveJump = true
			if event.jump > maxJump {
				maxJump = event.jump
			}
		}
		if !event.repeated {
			repeated = false
		}
	}

	message := fmt.Sprintf("%d non-monotonic timestamp line(s)", len(events))
	if haveJump {
		if repeated {
			message += "; repeated timestamp value, no backward jump"
		} else {
			message += fmt.Sprintf("; max backward jump %d timebase units", maxJump)
		}
	}
	return message
}
