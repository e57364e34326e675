package rawfact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecompose(t *testing.T) {
	tests := []struct {
		name string
		text string
		want map[string]string
	}{
		// Date, time and datetime
		{"datetime", "2016-02-01 12:00 ", map[string]string{
			"timeinfo": "2016-02-01 12:00 ",
		}},
		{"date", "2016-02-01 ", map[string]string{
			"timeinfo": "2016-02-01 ",
		}},
		{"time", "12:00 ", map[string]string{
			"timeinfo": "12:00 ",
		}},

		// Ranges
		{"datetime range", "2016-02-01 12:00 - 2016-02-03 15:00 ", map[string]string{
			"timeinfo": "2016-02-01 12:00 - 2016-02-03 15:00 ",
		}},
		{"time to datetime range", "12:00 - 2016-02-03 15:00 ", map[string]string{
			"timeinfo": "12:00 - 2016-02-03 15:00 ",
		}},
		{"time range", "12:00 - 15:00 ", map[string]string{
			"timeinfo": "12:00 - 15:00 ",
		}},
		{"timeinfo and description", "2016-01-01 12:00 ,lorum_ipsum", map[string]string{
			"timeinfo":    "2016-01-01 12:00 ",
			"description": ",lorum_ipsum",
		}},
		{"all segments", "2016-01-01 12:00 foo@bar #t1 #t2,lorum_ipsum", map[string]string{
			"timeinfo":    "2016-01-01 12:00 ",
			"activity":    "foo",
			"category":    "@bar",
			"tags":        " #t1 #t2",
			"description": ",lorum_ipsum",
		}},
		{"all segments with time range", "12:00 - 15:00 foo@bar #t1 #t2,lorum_ipsum", map[string]string{
			"timeinfo":    "12:00 - 15:00 ",
			"activity":    "foo",
			"category":    "@bar",
			"tags":        " #t1 #t2",
			"description": ",lorum_ipsum",
		}},
		{"all segments with datetime range", "2016-02-20 12:00 - 2016-02-20 15:00 foo@bar #t1 #t2,lorum_ipsum", map[string]string{
			"timeinfo":    "2016-02-20 12:00 - 2016-02-20 15:00 ",
			"activity":    "foo",
			"category":    "@bar",
			"tags":        " #t1 #t2",
			"description": ",lorum_ipsum",
		}},
		{"commas in description", "2016-02-20 12:00 - 2016-02-20 15:00 foo,bar, lorum_ipsum", map[string]string{
			"timeinfo":    "2016-02-20 12:00 - 2016-02-20 15:00 ",
			"activity":    "foo",
			"description": ",bar, lorum_ipsum",
		}},

		// Tag boundaries
		{"space hash starts tags", "2016-02-20 12:00 - 2016-02-20 15:00 foo #bar@bar #t1 #t2,lorum_ipsum", map[string]string{
			"timeinfo":    "2016-02-20 12:00 - 2016-02-20 15:00 ",
			"activity":    "foo",
			"tags":        " #bar@bar #t1 #t2",
			"description": ",lorum_ipsum",
		}},
		{"activity and tag", "a #b", map[string]string{
			"activity": "a",
			"tags":     " #b",
		}},
		{"category inside tag", "a #b@c", map[string]string{
			"activity": "a",
			"tags":     " #b@c",
		}},
		{"activity only", "foo", map[string]string{
			"activity": "foo",
		}},
		{"activity and category", "foo@bar", map[string]string{
			"activity": "foo",
			"category": "@bar",
		}},
		{"category only", "@bar", map[string]string{
			"category": "@bar",
		}},
		{"single tag", " #t1", map[string]string{
			"tags": " #t1",
		}},
		{"two tags", " #t1 #t2", map[string]string{
			"tags": " #t1 #t2",
		}},
		{"hashes inside tags", " ##t1 #t#2", map[string]string{
			"tags": " ##t1 #t#2",
		}},
		{"description only", ",lorum_ipsum", map[string]string{
			"description": ",lorum_ipsum",
		}},

		// Dangling range dash falls through to the activity
		{"dangling dash", "2016-02-20 12:00 -  foo@bar #t1 #t2,lorum_ipsum", map[string]string{
			"timeinfo":    "2016-02-20 12:00 ",
			"activity":    "-  foo",
			"category":    "@bar",
			"tags":        " #t1 #t2",
			"description": ",lorum_ipsum",
		}},
		{"empty line", "", map[string]string{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fields, err := Decompose(tc.text)
			require.NoError(t, err)
			assert.Equal(t, tc.want, fields.Map())
			assert.Equal(t, tc.text, fields.String(), "segments should rebuild the input")
		})
	}
}

func TestDecompose_NoMatch(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"hash inside activity", "2016-02-20 12:00 - 2016-02-20 15:00 foo#bar@bar #t1 #t2,lorum_ipsum"},
		{"range without spaces", "2016-02-20 12:00-2016-02-20 15:00 foo@bar #t1 #t2,lorum_ipsum"},
		{"range without spaces and hash", "2016-02-20 12:00-2016-02-20 15:00 foo#t1@bar #t1 #t2,lorum_ipsum"},
		{"range without spaces and comma", "2016-02-20 12:00-2016-02-20 15:00 foo,blub@bar #t1 #t2,lorum_ipsum"},
		{"range without spaces and colon", "2016-02-20 12:00-2016-02-20 15:00 foo:blub@bar #t1 #t2,lorum_ipsum"},
		{"hash without activity", "foo#bar"},
		{"bare at sign", "foo@"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fields, err := Decompose(tc.text)
			require.ErrorIs(t, err, ErrNoMatch)
			assert.Empty(t, fields.Map())
		})
	}
}

func TestDecompose_SegmentsKeepSourceOrder(t *testing.T) {
	inputs := []string{
		"2016-01-01 12:00 foo@bar #t1 #t2,lorum_ipsum",
		"12:00 - 15:00 write docs@work #a,b",
		"lunch, with team",
		"@home #x",
	}
	for _, in := range inputs {
		fields, err := Decompose(in)
		require.NoError(t, err, in)

		pos := 0
		for _, seg := range []string{fields.TimeInfo, fields.Activity, fields.Category, fields.Tags, fields.Description} {
			if seg == "" {
				continue
			}
			assert.Equal(t, seg, in[pos:pos+len(seg)], "segment %q out of place in %q", seg, in)
			pos += len(seg)
		}
		assert.Equal(t, len(in), pos)
	}
}
