package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeText(t *testing.T) {
	assert.Equal(t, "a b c", SafeText("  a\n\tb   c \x00"))
	assert.Equal(t, "ok", SafeText("o\xffk"))
}

func TestTruncateCountsRunes(t *testing.T) {
	assert.Equal(t, "при", Truncate("привет", 3))
	assert.Equal(t, "abc", Truncate("abc", 10))
	assert.Equal(t, "", Truncate("abc", 0))
}

func TestSplitCSV(t *testing.T) {
	assert.Equal(t, []string{"CRYPTO", "BIOTECH"}, SplitCSV(" CRYPTO, ,BIOTECH,"))
	assert.Nil(t, SplitCSV(""))
}

func TestStartOfDayUTC(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	got := StartOfDayUTC(time.Date(2026, 10, 19, 3, 0, 0, 0, loc))
	assert.Equal(t, time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC), got)

	day, err := ParseDayUTC("2026-10-19")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), day)
}
