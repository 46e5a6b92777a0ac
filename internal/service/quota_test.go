package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQuotaUsage(t *testing.T) {
	cases := []struct {
		name  string
		used  int64
		limit int64
		want  QuotaUsage
	}{
		{"empty", 0, 1000, QuotaUsage{UsedBytes: 0, LimitBytes: 1000, RemainingBytes: 1000}},
		{"partial", 250, 1000, QuotaUsage{UsedBytes: 250, LimitBytes: 1000, RemainingBytes: 750, Percent: 25}},
		{"rounded", 1, 3, QuotaUsage{UsedBytes: 1, LimitBytes: 3, RemainingBytes: 2, Percent: 33.33}},
		{"full", 1000, 1000, QuotaUsage{UsedBytes: 1000, LimitBytes: 1000, Percent: 100, Exceeded: true}},
		{"over", 1500, 1000, QuotaUsage{UsedBytes: 1500, LimitBytes: 1000, Percent: 150, Exceeded: true}},
		{"unlimited", 1500, 0, QuotaUsage{UsedBytes: 1500}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NewQuotaUsage(tc.used, tc.limit))
		})
	}
}

func TestQuotaAllows(t *testing.T) {
	q := NewQuotaUsage(900, 1000)
	assert.True(t, q.Allows(100))
	assert.False(t, q.Allows(101))
	assert.True(t, NewQuotaUsage(5000, 0).Allows(1<<30))
}

func TestQuotaUsageSumsRegistry(t *testing.T) {
	media := testMediaConfig()
	media.QuotaBytes = 100
	f := newFixtureWithMedia(t, media)
	ctx := context.Background()

	q, err := f.svc.QuotaUsage(ctx)
	require.NoError(t, err)
	assert.Zero(t, q.UsedBytes)

	f.seedAsset(t, "a.jpg", 30)
	f.seedAsset(t, "b.jpg", 45)
	q, err = f.svc.QuotaUsage(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 75, q.UsedBytes)
	assert.EqualValues(t, 25, q.RemainingBytes)
	assert.Equal(t, 75.0, q.Percent)
	assert.False(t, q.Exceeded)
}
