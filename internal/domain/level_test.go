package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/couchcryptid/french-toast-alert-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevels_FiveTiersInSeverityOrder(t *testing.T) {
	require.Len(t, domain.Levels, 5)

	codes := make([]string, 0, len(domain.Levels))
	for i, l := range domain.Levels {
		assert.Equal(t, i, l.Ordinal)
		assert.NotEmpty(t, l.Title)
		assert.NotEmpty(t, l.Color)
		assert.NotEmpty(t, l.Text)
		assert.NotEmpty(t, l.ImageURL)
		codes = append(codes, l.Code)
	}
	assert.Equal(t, []string{"LOW", "GUARDED", "ELEVATED", "HIGH", "SEVERE"}, codes)
}

func TestLevelFor_CaseInsensitive(t *testing.T) {
	for _, code := range []string{"high", "High", "HIGH", " high "} {
		l, err := domain.LevelFor(code)
		require.NoError(t, err, code)
		assert.Equal(t, "HIGH", l.Code)
		assert.Equal(t, "4 Slices / High", l.Title)
		assert.Equal(t, "#FF821D", l.Color)
	}
}

func TestLevelFor_UnknownCode(t *testing.T) {
	_, err := domain.LevelFor("BLIZZARD")
	require.Error(t, err)

	var unknown *domain.UnknownLevelError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "BLIZZARD", unknown.Code)
}

func TestLevelFor_SentinelIsNotALevel(t *testing.T) {
	_, err := domain.LevelFor("")
	assert.Error(t, err)
}

func TestStatus_Seeded(t *testing.T) {
	assert.False(t, domain.Status{}.Seeded())
	assert.True(t, domain.Status{Code: "LOW"}.Seeded())
}

func TestSubscriber_NotifiedAt(t *testing.T) {
	ts := time.Date(2026, time.January, 12, 8, 30, 0, 0, time.UTC)
	other := ts.Add(time.Hour)

	assert.False(t, domain.Subscriber{}.NotifiedAt(ts))
	assert.False(t, domain.Subscriber{LastNotified: &other}.NotifiedAt(ts))
	assert.True(t, domain.Subscriber{LastNotified: &ts}.NotifiedAt(ts))
}

func TestSourceError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &domain.SourceError{Kind: domain.SourceNetwork, Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "network")
}
