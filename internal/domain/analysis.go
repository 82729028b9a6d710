package domain

// FallbackAnalysis is shown when the analysis service is unavailable or fails.
// It is cached like a successful result; retries are manual.
func FallbackAnalysis() Analysis {
	return Analysis{
		Summary:   "分析失敗，請稍後再試。",
		Sentiment: SentimentNeutral,
		ActionTip: "請人工確認來源。",
		Keywords:  []string{"Error"},
	}
}
