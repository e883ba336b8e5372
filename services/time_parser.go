package services

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/pkg/errors"
)

// ErrParseFailure is returned when no time expression is found in the text
var ErrParseFailure = errors.New("could not understand the time")

const (
	// maxRelativeAmount bounds each "<n> <unit>" term
	maxRelativeAmount = 1000000
	maxYear           = 9999
)

// TimeParser turns free text ("in one hour", "2 days from now", "tomorrow")
// into an absolute point in time.
type TimeParser struct {
	w *when.Parser
}

func NewTimeParser() *TimeParser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &TimeParser{w: w}
}

// Parse resolves text relative to now. The result has millisecond precision.
// Relative offsets ("in 2 hours and 30 minutes", "3 days ago") are resolved
// here with calendar arithmetic; anything else is left to when.
func (p *TimeParser) Parse(text string, now time.Time) (time.Time, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, ErrParseFailure
	}

	if t, matched, ok := resolveRelative(text, now); matched {
		if !ok {
			return time.Time{}, ErrParseFailure
		}
		return truncateMillis(t), nil
	}

	r, err := p.w.Parse(text, now)
	if err != nil {
		return time.Time{}, errors.Wrap(ErrParseFailure, err.Error())
	}
	if r == nil || !inRange(r.Time) {
		return time.Time{}, ErrParseFailure
	}
	return truncateMillis(r.Time), nil
}

var amountWords = map[string]int{
	"a": 1, "an": 1, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10, "eleven": 11,
	"twelve": 12, "a few": 3, "few": 3, "a couple of": 2, "a couple": 2,
}

const (
	amountPattern = `(\d+|an?|one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve|a\s+few|few|a\s+couple(?:\s+of)?)`
	unitPattern   = `(seconds?|secs?|minutes?|mins?|hours?|hrs?|days?|weeks?|months?|years?)`

	durationTerm = amountPattern + `\s+` + unitPattern
	// "2 hours 30 minutes", "2 hours, 30 minutes", "1 day and 2 hours"
	durationList = durationTerm + `(?:(?:\s*,\s*and|\s*,|\s+and)?\s+` + durationTerm + `)*`
)

type relativePattern struct {
	re   *regexp.Regexp
	sign int
}

var (
	durationTermRe = regexp.MustCompile(`(?i)` + durationTerm)

	relativePatterns = []relativePattern{
		{regexp.MustCompile(`(?i)(?:\W|^)(?:in|within)\s+(` + durationList + `)(?:\W|$)`), 1},
		{regexp.MustCompile(`(?i)(?:\W|^)(` + durationList + `)\s+(?:from\s+now|later|hence)(?:\W|$)`), 1},
		{regexp.MustCompile(`(?i)(?:\W|^)(` + durationList + `)\s+ago(?:\W|$)`), -1},
	}
)

// resolveRelative applies the first relative expression found in text to
// ref. matched reports whether one was found; ok is false when it was found
// but cannot be resolved to a sane time.
func resolveRelative(text string, ref time.Time) (t time.Time, matched, ok bool) {
	for _, p := range relativePatterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		t, ok = applyOffsets(ref, m[1], p.sign)
		return t, true, ok
	}
	return time.Time{}, false, false
}

func applyOffsets(ref time.Time, expr string, sign int) (time.Time, bool) {
	t := ref
	for _, term := range durationTermRe.FindAllStringSubmatch(expr, -1) {
		n, ok := parseAmount(term[1])
		if !ok || n > maxRelativeAmount {
			return time.Time{}, false
		}
		n *= sign

		unit := strings.ToLower(term[2])
		switch {
		case strings.HasPrefix(unit, "sec"):
			t = t.Add(time.Duration(n) * time.Second)
		case strings.HasPrefix(unit, "min"):
			t = t.Add(time.Duration(n) * time.Minute)
		case strings.HasPrefix(unit, "h"):
			t = t.Add(time.Duration(n) * time.Hour)
		case strings.HasPrefix(unit, "day"):
			t = t.AddDate(0, 0, n)
		case strings.HasPrefix(unit, "week"):
			t = t.AddDate(0, 0, 7*n)
		case strings.HasPrefix(unit, "month"):
			t = t.AddDate(0, n, 0)
		case strings.HasPrefix(unit, "year"):
			t = t.AddDate(n, 0, 0)
		default:
			return time.Time{}, false
		}
	}
	return t, inRange(t)
}

func parseAmount(s string) (int, bool) {
	s = strings.Join(strings.Fields(strings.ToLower(s)), " ")
	if n, err := strconv.Atoi(s); err == nil {
		return n, n > 0
	}
	n, ok := amountWords[s]
	return n, ok
}

func inRange(t time.Time) bool {
	y := t.UTC().Year()
	return y >= 1 && y <= maxYear
}

func truncateMillis(t time.Time) time.Time {
	return time.UnixMilli(t.UnixMilli()).UTC()
}
