package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"InsightStream/internal/domain"
)

const analysisPrompt = `你是一位專門服務餐飲外送平台客戶經理 (Account Manager) 的情報分析專家。
請分析以下新聞標題與摘要。

標題: %q
摘要: %q

請提供以下資訊 (必須使用繁體中文回答):
1. 一句話總結重點 (summary)。
2. 情緒判斷 (sentiment): POSITIVE, NEGATIVE, 或 NEUTRAL。
3. 給 AM 的行動建議 (actionTip): 針對此新聞，AM 該如何與客戶溝通或內部應對？
4. 兩個關鍵字標籤 (keywords)。`

const jsonOnlySuffix = `

只回傳 JSON 物件，格式為 {"summary": "...", "sentiment": "POSITIVE|NEGATIVE|NEUTRAL", "actionTip": "...", "keywords": ["...", "..."]}，不要加入其他文字。`

const searchPrompt = `請使用網路搜尋，找出與以下關鍵字相關的最新台灣餐飲與外送產業新聞: %s

回傳 JSON 陣列，每個元素包含 "title"、"source"、"snippet" 三個字串欄位，最多 %d 筆。只回傳 JSON，不要加入其他文字。`

// termSeparator joins all search terms into one query.
const termSeparator = ", "

func buildAnalysisPrompt(title, snippet string) string {
	return fmt.Sprintf(analysisPrompt, title, snippet)
}

func buildSearchPrompt(terms []string, limit int) string {
	return fmt.Sprintf(searchPrompt, strings.Join(terms, termSeparator), limit)
}

type analysisPayload struct {
	Summary   string   `json:"summary"`
	Sentiment string   `json:"sentiment"`
	ActionTip string   `json:"actionTip"`
	Keywords  []string `json:"keywords"`
}

// parseAnalysis decodes the model's JSON answer into a domain.Analysis.
func parseAnalysis(text string) (domain.Analysis, error) {
	text = stripCodeFence(text)
	if text == "" {
		return domain.Analysis{}, fmt.Errorf("%w: empty analysis", ErrMalformedResponse)
	}

	var p analysisPayload
	if err := json.Unmarshal([]byte(text), &p); err != nil {
		return domain.Analysis{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if strings.TrimSpace(p.Summary) == "" {
		return domain.Analysis{}, fmt.Errorf("%w: missing summary", ErrMalformedResponse)
	}

	keywords := make([]string, 0, len(p.Keywords))
	for _, k := range p.Keywords {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}

	return domain.Analysis{
		Summary:   strings.TrimSpace(p.Summary),
		Sentiment: domain.NormalizeSentiment(p.Sentiment),
		ActionTip: strings.TrimSpace(p.ActionTip),
		Keywords:  keywords,
	}, nil
}

type searchHit struct {
	Title   string `json:"title"`
	Source  string `json:"source"`
	Snippet string `json:"snippet"`
}

// parseSearchHits decodes a JSON array of hits, dropping entries without a title.
func parseSearchHits(text string) ([]searchHit, error) {
	text = stripCodeFence(text)
	if start, end := strings.Index(text, "["), strings.LastIndex(text, "]"); start >= 0 && end > start {
		text = text[start : end+1]
	}

	var hits []searchHit
	if err := json.Unmarshal([]byte(text), &hits); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	out := hits[:0]
	for _, h := range hits {
		if strings.TrimSpace(h.Title) != "" {
			out = append(out, h)
		}
	}
	return out, nil
}

func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		text = text[nl+1:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
