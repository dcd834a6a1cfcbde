package calculator

import (
	"sort"

	"store-feedback/internal/models"
)

// Locatable is anything with a position on the map.
type Locatable interface {
	Point() models.Coordinate
}

// Ranked pairs a candidate with its distance in miles from the query point.
type Ranked[T Locatable] struct {
	Item     T       `json:"item"`
	Distance float64 `json:"distance"`
}

// FindNearest returns the candidate closest to q. The first candidate wins on
// equal distance. ok is false when candidates is empty.
func FindNearest[T Locatable](q models.Coordinate, candidates []T) (nearest T, ok bool) {
	if len(candidates) == 0 {
		return nearest, false
	}

	nearestIdx := 0
	minDist := Distance(q, candidates[0].Point())
	for i := 1; i < len(candidates); i++ {
		d := Distance(q, candidates[i].Point())
		if d < minDist {
			minDist = d
			nearestIdx = i
		}
	}
	return candidates[nearestIdx], true
}

// RankByDistance orders candidates by ascending distance, keeping input order on ties.
func RankByDistance[T Locatable](q models.Coordinate, candidates []T) []Ranked[T] {
	ranked := make([]Ranked[T], len(candidates))
	for i, c := range candidates {
		ranked[i] = Ranked[T]{Item: c, Distance: Distance(q, c.Point())}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Distance < ranked[j].Distance
	})
	return ranked
}

// WithinRadius keeps the candidates no further than radiusMiles from q, in input order.
func WithinRadius[T Locatable](q models.Coordinate, candidates []T, radiusMiles float64) []Ranked[T] {
	var res []Ranked[T]
	for _, c := range candidates {
		d := Distance(q, c.Point())
		if d <= radiusMiles {
			res = append(res, Ranked[T]{Item: c, Distance: d})
		}
	}
	return res
}
