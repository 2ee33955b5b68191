package match

import "sort"

// Candidate is a scored entity-unit/tag pairing awaiting resolution.
type Candidate struct {
	UnitIndex       int
	TagIndex        int
	Confidence      float64
	SpatialDistance float64
	TextSimilarity  float64
}

// Strategy resolves scored candidates into an accepted one-to-one
// match set. Implementations must never accept two candidates sharing
// a unit or a tag. The default is Greedy; a globally optimal assignment
// can be substituted here without touching callers.
type Strategy interface {
	Resolve(candidates []Candidate) []Candidate
}

// Greedy accepts candidates in descending confidence order, skipping
// any whose unit or tag is already claimed. It is deterministic (ties
// keep discovery order) and fast, but not a globally optimal
// assignment.
type Greedy struct{}

// Resolve implements Strategy.
func (Greedy) Resolve(candidates []Candidate) []Candidate {
	ordered := make([]Candidate, len(candidates))
	copy(ordered, candidates)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Confidence > ordered[j].Confidence
	})

	claimedUnit := make(map[int]bool, len(ordered))
	claimedTag := make(map[int]bool, len(ordered))

	var accepted []Candidate
	for _, c := range ordered {
		if claimedUnit[c.UnitIndex] || claimedTag[c.TagIndex] {
			continue
		}
		claimedUnit[c.UnitIndex] = true
		claimedTag[c.TagIndex] = true
		accepted = append(accepted, c)
	}
	return accepted
}
