package service

import (
	"context"
	"math"
)

// QuotaUsage is the pool size against the configured ceiling. A limit of 0
// means unlimited.
type QuotaUsage struct {
	UsedBytes      int64   `json:"used_bytes"`
	LimitBytes     int64   `json:"limit_bytes"`
	RemainingBytes int64   `json:"remaining_bytes"`
	Percent        float64 `json:"percent"`
	Exceeded       bool    `json:"exceeded"`
}

// NewQuotaUsage derives the quota figures from used and limit.
func NewQuotaUsage(used, limit int64) QuotaUsage {
	q := QuotaUsage{UsedBytes: used, LimitBytes: limit}
	if limit <= 0 {
		return q
	}
	if used < limit {
		q.RemainingBytes = limit - used
	}
	q.Percent = math.Round(float64(used)/float64(limit)*10000) / 100
	q.Exceeded = used >= limit
	return q
}

// Allows reports whether size more bytes fit under the ceiling.
func (q QuotaUsage) Allows(size int64) bool {
	if q.LimitBytes <= 0 {
		return true
	}
	return q.UsedBytes+size <= q.LimitBytes
}

// QuotaUsage sums the pool. Concurrent uploads are not serialized against it,
// so the figure is advisory.
func (s *AssetService) QuotaUsage(ctx context.Context) (QuotaUsage, error) {
	used, err := s.registry.SumBytes(ctx)
	if err != nil {
		return QuotaUsage{}, err
	}
	return NewQuotaUsage(used, s.media.QuotaBytes), nil
}
