package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "2025-01", Format(date(2025, 1, 15)))
	assert.Equal(t, "2025-12", Format(date(2025, 12, 31)))
}

func TestParse(t *testing.T) {
	y, m, err := Parse("2025-03")
	require.NoError(t, err)
	assert.Equal(t, 2025, y)
	assert.Equal(t, 3, m)

	_, _, err = Parse("2025")
	assert.Error(t, err)
	_, _, err = Parse("2025-13")
	assert.Error(t, err)
	_, _, err = Parse("2025-xx")
	assert.Error(t, err)
}

func TestNext(t *testing.T) {
	next, err := Next("2025-01")
	require.NoError(t, err)
	assert.Equal(t, "2025-02", next)

	next, err = Next("2025-12")
	require.NoError(t, err)
	assert.Equal(t, "2026-01", next)
}

func TestElapsedSince(t *testing.T) {
	// The in-service month itself is never depreciated.
	periods := ElapsedSince(date(2025, 1, 15), date(2025, 4, 10))
	assert.Equal(t, []string{"2025-02", "2025-03", "2025-04"}, periods)

	// Same month means nothing has elapsed yet.
	assert.Empty(t, ElapsedSince(date(2025, 1, 15), date(2025, 1, 31)))

	// Year boundary.
	periods = ElapsedSince(date(2024, 11, 1), date(2025, 2, 1))
	assert.Equal(t, []string{"2024-12", "2025-01", "2025-02"}, periods)
}

func TestEnd(t *testing.T) {
	end, err := End("2025-01")
	require.NoError(t, err)
	assert.Equal(t, date(2025, 1, 31), end)

	end, err = End("2024-02")
	require.NoError(t, err)
	assert.Equal(t, date(2024, 2, 29), end)

	_, err = End("not-a-period")
	assert.Error(t, err)
}

func TestReferences(t *testing.T) {
	assert.Equal(t, "CLOSE-2025-12-31", ClosingReference(date(2025, 12, 31)))
	assert.Equal(t, "DEP-abc-2025-03", DepreciationReference("abc", "2025-03"))
	assert.Equal(t, "VOID-INV-001", VoidReference("INV-001"))
}
