package notify

import "time"

// BucketLabel names a display time range for grouping the feed.
type BucketLabel string

const (
	BucketToday     BucketLabel = "Today"
	BucketYesterday BucketLabel = "Yesterday"
	BucketThisWeek  BucketLabel = "This Week"
	BucketThisMonth BucketLabel = "This Month"
	BucketEarlier   BucketLabel = "Earlier"
)

// bucketOrder is the fixed display order, independent of member counts.
var bucketOrder = []BucketLabel{
	BucketToday,
	BucketYesterday,
	BucketThisWeek,
	BucketThisMonth,
	BucketEarlier,
}

// bucketBoundaries are the cutoffs for one rendering pass, computed once
// from "now" so the whole view agrees on them.
type bucketBoundaries struct {
	startOfToday     time.Time
	startOfYesterday time.Time
	startOfWeek      time.Time
	startOfMonth     time.Time
}

func boundariesAt(now time.Time) bucketBoundaries {
	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return bucketBoundaries{
		startOfToday:     startOfToday,
		startOfYesterday: startOfToday.Add(-24 * time.Hour),
		startOfWeek:      startOfToday.AddDate(0, 0, -7),
		startOfMonth:     time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()),
	}
}

// BucketFor assigns a timestamp to the first matching bucket, checked in
// display order. Pure function of (now, ts) so it is testable without
// timers.
func BucketFor(now, ts time.Time) BucketLabel {
	b := boundariesAt(now)
	switch {
	case !ts.Before(b.startOfToday):
		return BucketToday
	case !ts.Before(b.startOfYesterday):
		return BucketYesterday
	case !ts.Before(b.startOfWeek):
		return BucketThisWeek
	case !ts.Before(b.startOfMonth):
		return BucketThisMonth
	default:
		return BucketEarlier
	}
}
