package indexer

import (
	"math"
	"sort"
	"unicode/utf8"
)

// RunesPerToken approximates token counts (4 chars per token).
const RunesPerToken = 4.0

// ChunkStats describes the size distribution of indexed chunks.
type ChunkStats struct {
	Count int `json:"count"`
	// Rune lengths.
	Min  int     `json:"min_runes"`
	Max  int     `json:"max_runes"`
	Mean float64 `json:"mean_runes"`
	P95  int     `json:"p95_runes"`
	// ApproxTokens is the estimated token count of all chunks together.
	ApproxTokens int `json:"approx_tokens"`
}

// ComputeChunkStats computes size statistics for chunks.
func ComputeChunkStats(chunks []string) ChunkStats {
	if len(chunks) == 0 {
		return ChunkStats{}
	}

	lengths := make([]int, len(chunks))
	total := 0
	for i, c := range chunks {
		lengths[i] = utf8.RuneCountInString(c)
		total += lengths[i]
	}

	stats := computeStats(lengths)
	stats.Count = len(chunks)
	stats.ApproxTokens = int(math.Round(float64(total) / RunesPerToken))
	return stats
}

// computeStats computes min, max, mean, and p95 from counts.
func computeStats(counts []int) ChunkStats {
	if len(counts) == 0 {
		return ChunkStats{}
	}

	sorted := make([]int, len(counts))
	copy(sorted, counts)
	sort.Ints(sorted)

	sum := 0
	for _, c := range counts {
		sum += c
	}
	mean := float64(sum) / float64(len(counts))

	p95Index := int(math.Ceil(float64(len(sorted))*0.95)) - 1
	if p95Index < 0 {
		p95Index = 0
	}

	return ChunkStats{
		Min:  sorted[0],
		Max:  sorted[len(sorted)-1],
		Mean: math.Round(mean*100) / 100, // 2 decimal places
		P95:  sorted[p95Index],
	}
}
