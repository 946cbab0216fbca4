package vector

import (
	"sort"

	"github.com/viant/vec/search"

	"paperqa/internal/models"
)

const DefaultTopK = 3

// Search ranks every record by cosine similarity to query and returns the best
// topK. Equal scores keep insertion order.
func (s *Store) Search(query []float32, topK int) []models.SearchResult {
	if topK <= 0 {
		topK = DefaultTopK
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.records) == 0 {
		return []models.SearchResult{}
	}
	qMag := search.Float32s(query).Magnitude()
	scored := make([]models.SearchResult, 0, len(s.records))
	for _, r := range s.records {
		scored = append(scored, models.SearchResult{
			Document: r.Document,
			Metadata: r.Metadata,
			Score:    cosine(r.Vector, query, qMag),
		})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if topK > len(scored) {
		topK = len(scored)
	}
	return scored[:topK]
}

// CosineSimilarity is dot(a,b)/(|a||b|). Zero-norm or mismatched vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	return cosine(a, b, search.Float32s(b).Magnitude())
}

func cosine(v, q []float32, qMag float32) float64 {
	if len(v) != len(q) || len(v) == 0 || qMag == 0 {
		return 0
	}
	vec := search.Float32s(v)
	if vec.Magnitude() == 0 {
		return 0
	}
	return 1 - float64(vec.CosineDistance(q))
}
