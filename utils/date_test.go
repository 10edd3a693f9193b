package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUTC(t *testing.T) {
	want := time.Date(2025, 10, 13, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{name: "naive datetime", input: "2025-10-13T09:30:00", want: want},
		{name: "naive with microseconds", input: "2025-10-13T09:30:00.123456", want: want.Add(123456 * time.Microsecond)},
		{name: "space separated", input: "2025-10-13 09:30:00", want: want},
		{name: "zulu", input: "2025-10-13T09:30:00Z", want: want},
		{name: "offset is honoured", input: "2025-10-13T19:30:00+10:00", want: want},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseUTC(tt.input)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v want %v", got, tt.want)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestParseUTCRejectsGarbage(t *testing.T) {
	_, err := ParseUTC("")
	assert.Error(t, err)

	_, err = ParseUTC("yesterday")
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2025-02-03", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseDate("03/02/2025", nil)
	assert.Error(t, err)
}
