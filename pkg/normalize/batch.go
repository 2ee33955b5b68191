package normalize

// Stats aggregates a batch of parse results.
type Stats struct {
	Total          int              `json:"total"`
	Valid          int              `json:"valid"`
	Categories     map[Category]int `json:"categories"`
	MeanConfidence float64          `json:"meanConfidence"`
}

// BatchResult carries per-tag results plus the aggregate statistics.
type BatchResult struct {
	Results []ParseResult `json:"results"`
	Stats   Stats         `json:"stats"`
}

// ParseAll normalizes every tag and computes batch statistics. An empty
// input yields zero counts and a mean confidence of 0.
func (n *Normalizer) ParseAll(raws []string) BatchResult {
	batch := BatchResult{
		Results: make([]ParseResult, 0, len(raws)),
		Stats: Stats{
			Total:      len(raws),
			Categories: make(map[Category]int),
		},
	}

	var sum float64
	for _, raw := range raws {
		r := n.Parse(raw)
		batch.Results = append(batch.Results, r)
		batch.Stats.Categories[r.Category]++
		if r.Valid() {
			batch.Stats.Valid++
		}
		sum += r.Confidence
	}
	if len(raws) > 0 {
		batch.Stats.MeanConfidence = sum / float64(len(raws))
	}

	return batch
}
