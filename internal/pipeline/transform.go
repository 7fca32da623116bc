package pipeline

import "github.com/couchcryptid/shady-map-service/internal/domain"

// normalizeFeed validates raw rows and summarizes the outcome. Dropped rows
// are only counted; they never reach the map.
func normalizeFeed(records []domain.RawRecord) ([]domain.Point, domain.FeedStatus) {
	points, dropped := domain.NormalizeAll(records)
	return points, domain.FeedStatus{
		State:    domain.FeedOK,
		Accepted: len(points),
		Dropped:  dropped,
	}
}
