package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var refNow = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

func TestTimeParser_Relative(t *testing.T) {
	p := NewTimeParser()

	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"in one hour", "in one hour", refNow.Add(time.Hour)},
		{"in digits", "in 30 minutes", refNow.Add(30 * time.Minute)},
		{"days from now", "2 days from now", refNow.Add(48 * time.Hour)},
		{"word amount from now", "three hours from now", refNow.Add(3 * time.Hour)},
		{"weeks later", "2 weeks later", refNow.Add(14 * 24 * time.Hour)},
		{"month from now", "a month from now", refNow.AddDate(0, 1, 0)},
		{"embedded in sentence", "remind me about this in 5 hours please", refNow.Add(5 * time.Hour)},
		{"yesterday", "yesterday", refNow.Add(-24 * time.Hour)},
		{"tomorrow", "tomorrow", refNow.Add(24 * time.Hour)},
		{"centuries", "in 300 years", time.Date(2326, 3, 10, 9, 30, 0, 0, time.UTC)},
		{"months past a year", "in 18 months", time.Date(2027, 9, 10, 9, 30, 0, 0, time.UTC)},
		{"many weeks", "in 520 weeks", refNow.AddDate(0, 0, 520*7)},
		{"compound with and", "in 2 hours and 30 minutes", refNow.Add(2*time.Hour + 30*time.Minute)},
		{"compound with comma", "1 day, 2 hours from now", refNow.Add(26 * time.Hour)},
		{"compound without separator", "in 1 hour 15 minutes", refNow.Add(75 * time.Minute)},
		{"ago", "3 hours ago", refNow.Add(-3 * time.Hour)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Parse(tt.input, refNow)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestTimeParser_Unrecognized(t *testing.T) {
	p := NewTimeParser()

	for _, input := range []string{
		"asdkjhasd",
		"",
		"   ",
		"hello there",
		"in 99999999999 weeks",
		"in 99999999999999999999999 days",
		"in 9000 years",
		"in 0 minutes",
		"in 2 hours and 99999999999 weeks",
	} {
		got, err := p.Parse(input, refNow)
		assert.ErrorIs(t, err, ErrParseFailure, "input %q", input)
		assert.True(t, got.IsZero(), "input %q", input)
		assert.False(t, got.Equal(refNow), "input %q", input)
	}
}

func TestTimeParser_ResolvesAgainstReference(t *testing.T) {
	p := NewTimeParser()

	later := refNow.Add(6 * time.Hour)
	a, err := p.Parse("in one hour", refNow)
	require.NoError(t, err)
	b, err := p.Parse("in one hour", later)
	require.NoError(t, err)

	assert.Equal(t, 6*time.Hour, b.Sub(a))

	// repeated calls are independent of call order
	again, err := p.Parse("in one hour", refNow)
	require.NoError(t, err)
	assert.True(t, a.Equal(again))
}

func TestTimeParser_MillisecondPrecision(t *testing.T) {
	p := NewTimeParser()

	now := refNow.Add(123456789 * time.Nanosecond)
	got, err := p.Parse("in 2 hours", now)
	require.NoError(t, err)

	assert.Equal(t, 0, got.Nanosecond()%int(time.Millisecond))
	assert.Equal(t, now.Add(2*time.Hour).UnixMilli(), got.UnixMilli())
}

func TestParseAmount(t *testing.T) {
	cases := map[string]int{"1": 1, "12": 12, "an": 1, "a few": 3, "a  couple of": 2, "Seven": 7}
	for in, want := range cases {
		n, ok := parseAmount(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, n, in)
	}

	_, ok := parseAmount("0")
	assert.False(t, ok)
	_, ok = parseAmount("lots")
	assert.False(t, ok)
}
