package usecase

import "InsightStream/internal/domain"

// Stats summarizes a collection for the dashboard view.
type Stats struct {
	Total      int                      `json:"total"`
	Unanalyzed int                      `json:"unanalyzed"`
	ByCategory map[domain.Category]int  `json:"byCategory"`
	Sentiment  map[domain.Sentiment]int `json:"sentiment"`
}

// ComputeStats counts categories over all items and sentiment over analyzed ones.
func ComputeStats(items []domain.Item) Stats {
	st := Stats{
		Total:      len(items),
		ByCategory: make(map[domain.Category]int, 4),
		Sentiment: map[domain.Sentiment]int{
			domain.SentimentPositive: 0,
			domain.SentimentNeutral:  0,
			domain.SentimentNegative: 0,
		},
	}
	for _, cat := range domain.Categories() {
		st.ByCategory[cat] = 0
	}

	for _, item := range items {
		st.ByCategory[item.Category]++
		if !item.Analyzed || item.Analysis == nil {
			st.Unanalyzed++
			continue
		}
		st.Sentiment[domain.NormalizeSentiment(string(item.Analysis.Sentiment))]++
	}
	return st
}

// Analyzed returns how many items carry an analysis.
func (s Stats) Analyzed() int {
	return s.Total - s.Unanalyzed
}
