package entity

// RatingAggregate is the (average, count) pair derived from a set of reviews.
// Both storage backends go through the same incremental computation, so the
// emitted trajectory for a fixed series of review operations is identical
// regardless of backend.
type RatingAggregate struct {
	Average float64 `bson:"average" json:"average"`
	Count   int     `bson:"count" json:"count"`
}

// WithAdded returns the aggregate after one review of the given rating is
// added: (a*c + r) / (c+1).
func (a RatingAggregate) WithAdded(rating int32) RatingAggregate {
	return RatingAggregate{
		Average: (a.Average*float64(a.Count) + float64(rating)) / float64(a.Count+1),
		Count:   a.Count + 1,
	}
}

// WithRemoved returns the aggregate after one review of the given rating is
// removed: (a*c - r) / (c-1). Count floors at 0 and average resets to 0 when
// the last review goes away.
func (a RatingAggregate) WithRemoved(rating int32) RatingAggregate {
	if a.Count <= 1 {
		return RatingAggregate{}
	}
	return RatingAggregate{
		Average: (a.Average*float64(a.Count) - float64(rating)) / float64(a.Count-1),
		Count:   a.Count - 1,
	}
}
