package memory

import (
	"math"
	"sort"
	"time"

	"github.com/charlotte-agent/charlotte/pkg/types"
)

// recencyWindow is how long a conversation's last turn counts as recent for
// the ranking boost.
const recencyWindow = 24 * time.Hour

// CosineSimilarity computes the cosine of the angle between two embedding
// vectors. Returns 0.0 for empty vectors, mismatched lengths, or a
// zero-norm vector; it never divides by zero.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0.0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Score computes the final relevance of a candidate against a query:
// similarity scaled by quality, with a 1.5x boost when the candidate was
// last touched within the past 24 hours.
func Score(query, candidate []float32, quality float64, lastTouched, now time.Time) float64 {
	sim := CosineSimilarity(query, candidate)
	boost := 1.0
	if !lastTouched.IsZero() && now.Sub(lastTouched) <= recencyWindow {
		boost = 1.5
	}
	return sim * (1 + quality) * boost
}

// RankConversations orders candidates by descending relevance against the
// query embedding. Candidates with a non-positive score are excluded;
// equal scores keep their input order.
func RankConversations(query []float32, candidates []types.SavedConversation, limit int, now time.Time) []types.ScoredConversation {
	var scored []types.ScoredConversation
	for _, c := range candidates {
		s := Score(query, c.Embedding, c.QualityScore, c.LastTurnTime(), now)
		if s <= 0 {
			continue
		}
		scored = append(scored, types.ScoredConversation{Conversation: c, Relevance: s})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Relevance > scored[j].Relevance
	})

	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

// RankRecords orders memory records by descending cosine similarity against
// the query embedding, keeping only records above the threshold. Records
// without an embedding are skipped.
func RankRecords(query []float32, candidates []types.MemoryRecord, threshold float64, limit int) []types.ScoredRecord {
	var scored []types.ScoredRecord
	for _, r := range candidates {
		if len(r.Embedding) == 0 {
			continue
		}
		sim := CosineSimilarity(query, r.Embedding)
		if sim <= threshold {
			continue
		}
		scored = append(scored, types.ScoredRecord{Record: r, Similarity: sim})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Similarity > scored[j].Similarity
	})

	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}
