package rawfact

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2016, 2, 20, 16, 30, 0, 0, time.UTC)

func at(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, time.UTC)
}

func TestParse_FullFact(t *testing.T) {
	fact, err := Parse("2016-02-20 12:00 - 2016-02-20 15:00 foo@bar #t1 #t2,lorum_ipsum", ParseOptions{Now: testNow})
	require.NoError(t, err)

	assert.Equal(t, at(2016, 2, 20, 12, 0), fact.Start)
	assert.Equal(t, at(2016, 2, 20, 15, 0), fact.End)
	assert.Equal(t, "foo", fact.Activity)
	assert.Equal(t, "bar", fact.Category)
	assert.Equal(t, []string{"t1", "t2"}, fact.Tags)
	assert.Equal(t, "lorum_ipsum", fact.Description)
	assert.False(t, fact.Ongoing())
	assert.Equal(t, 3*time.Hour, fact.Duration(testNow))
}

func TestParse_TimeInfo(t *testing.T) {
	opts := ParseOptions{Now: testNow, DayStart: 6 * time.Hour}

	tests := []struct {
		name      string
		text      string
		wantStart time.Time
		wantEnd   time.Time
	}{
		{"no timeinfo is ongoing from now", "foo", testNow, time.Time{}},
		{"bare time is today", "09:15 foo", at(2016, 2, 20, 9, 15), time.Time{}},
		{"bare date starts at day start", "2016-02-01 foo", at(2016, 2, 1, 6, 0), time.Time{}},
		{"datetime", "2016-02-01 12:00 foo", at(2016, 2, 1, 12, 0), time.Time{}},
		{"time range is today", "12:00 - 15:00 foo", at(2016, 2, 20, 12, 0), at(2016, 2, 20, 15, 0)},
		{"time to datetime", "12:00 - 2016-02-21 01:00 foo", at(2016, 2, 20, 12, 0), at(2016, 2, 21, 1, 0)},
		{"datetime to bare time takes start date", "2016-02-01 12:00 - 15:00 foo", at(2016, 2, 1, 12, 0), at(2016, 2, 1, 15, 0)},
		{"date range covers whole days", "2016-02-01 - 2016-02-02 foo", at(2016, 2, 1, 6, 0), at(2016, 2, 3, 6, 0)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fact, err := Parse(tc.text, opts)
			require.NoError(t, err)
			assert.Equal(t, tc.wantStart, fact.Start)
			assert.Equal(t, tc.wantEnd, fact.End)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr error
	}{
		{"unparsable", "2016-02-20 12:00-2016-02-20 15:00 foo@bar", ErrNoMatch},
		{"no activity", "2016-02-20 12:00 @bar", ErrMissingActivity},
		{"blank activity", "   @bar", ErrMissingActivity},
		{"impossible month", "2016-13-01 12:00 foo", ErrInvalidTime},
		{"impossible hour", "25:00 foo", ErrInvalidTime},
		{"end before start", "15:00 - 12:00 foo", ErrInvalidRange},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fact, err := Parse(tc.text, ParseOptions{Now: testNow})
			require.ErrorIs(t, err, tc.wantErr)
			assert.Nil(t, fact)
		})
	}
}

func TestParse_TrimsSegments(t *testing.T) {
	fact, err := Parse("-  foo @ home office  #a, some notes ", ParseOptions{Now: testNow})
	require.NoError(t, err)

	assert.Equal(t, "-  foo", fact.Activity)
	assert.Equal(t, "home office", fact.Category)
	assert.Equal(t, []string{"a"}, fact.Tags)
	assert.Equal(t, "some notes", fact.Description)
}

func TestSplitTags(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"", nil},
		{" #t1", []string{"t1"}},
		{" #t1 #t2", []string{"t1", "t2"}},
		{" ##t1 #t#2", []string{"#t1", "t#2"}},
		{" #bar@bar #t1 #t2", []string{"bar@bar", "t1", "t2"}},
		{" #a #b #a", []string{"a", "b"}},
		{" #two words #x", []string{"two words", "x"}},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, SplitTags(tc.raw), "tags of %q", tc.raw)
	}
}

func TestFact_StringRoundtrip(t *testing.T) {
	inputs := []string{
		"2016-02-20 12:00 - 2016-02-20 15:00 foo@bar #t1 #t2,lorum_ipsum",
		"2016-02-20 12:00 coding",
		"2016-02-20 08:00 - 2016-02-20 09:30 standup@work,daily sync",
	}
	for _, in := range inputs {
		fact, err := Parse(in, ParseOptions{Now: testNow})
		require.NoError(t, err)
		assert.Equal(t, in, fact.String())

		again, err := Parse(fact.String(), ParseOptions{Now: testNow})
		require.NoError(t, err)
		assert.Equal(t, fact, again)
	}
}

func TestFact_DurationOngoing(t *testing.T) {
	fact := &Fact{Start: testNow.Add(-45 * time.Minute), Activity: "foo"}
	assert.True(t, fact.Ongoing())
	assert.Equal(t, 45*time.Minute, fact.Duration(testNow))
	assert.Equal(t, time.Duration(0), fact.Duration(testNow.Add(-time.Hour)))
}
