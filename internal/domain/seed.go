package domain

import "time"

// DefaultKeywords is the seed keyword list used when no settings are persisted.
var DefaultKeywords = []KeywordConfig{
	{ID: "1", Term: "麥當勞 食安", Category: CategoryDefensive},
	{ID: "2", Term: "肯德基 新口味", Category: CategoryDefensive},
	{ID: "3", Term: "外送平台 法規", Category: CategoryMacro},
	{ID: "4", Term: "Foodpanda 獨家", Category: CategoryOffensive},
	{ID: "5", Term: "台北米其林", Category: CategoryOffensive},
	{ID: "6", Term: "手搖飲 趨勢", Category: CategorySocial},
}

// DefaultSubscriptions is the seed subscription list.
var DefaultSubscriptions = []SubscriptionConfig{
	{ID: "rss1", Name: "Google Alerts: 外送", URL: "https://www.google.com/alerts/feeds/00000000000000000000/1"},
	{ID: "rss2", Name: "數位時代 餐飲科技", URL: "https://www.bnext.com.tw/rss"},
}

// SeedItems returns the static starting collection relative to now.
func SeedItems(now time.Time) []Item {
	return []Item{
		{
			ID:          "n1",
			Title:       "麥當勞宣布與在地小農合作計畫，目標 2025 達成 80% 生菜在地化",
			Source:      "數位時代",
			PublishedAt: now.Add(-2 * time.Hour),
			URL:         NoLinkURL,
			Snippet:     "速食龍頭宣布新策略，將大幅增加台灣在地食材採購比例，減少碳足跡並確保新鮮度。",
			Category:    CategoryDefensive,
			Analyzed:    true,
			Analysis: &Analysis{
				Summary:   "麥當勞承諾 2025 年前將在地生菜採購比例提升至 80%。",
				Sentiment: SentimentPositive,
				ActionTip: "建議在外送平台專區策劃「在地小農」專題活動，強調新鮮與永續。",
				Keywords:  []string{"ESG永續", "供應鏈"},
			},
		},
		{
			ID:          "n2",
			Title:       "網友熱議：連鎖炸雞疑似變相漲價，雞腿縮水？",
			Source:      "Dcard 美食板",
			PublishedAt: now.Add(-5 * time.Hour),
			URL:         NoLinkURL,
			Snippet:     "多篇熱門文章討論近期知名連鎖店的炸雞尺寸變小，網友反應兩極，部分揚言抵制。",
			Category:    CategoryDefensive,
		},
		{
			ID:          "n3",
			Title:       "競爭對手 X 推出「學生專屬」免運訂閱制",
			Source:      "科技新報",
			PublishedAt: now.Add(-24 * time.Hour),
			URL:         NoLinkURL,
			Snippet:     "為搶攻開學季商機，平台祭出憑學生證享首月免運及專屬折扣碼。",
			Category:    CategoryOffensive,
			Analyzed:    true,
			Analysis: &Analysis{
				Summary:   "競品針對學生族群推出免運訂閱方案，意圖搶佔年輕市場。",
				Sentiment: SentimentNegative,
				ActionTip: "建議推出「宵夜場」專屬優惠組合，反制其學生客群流失。",
				Keywords:  []string{"競品分析", "定價策略"},
			},
		},
		{
			ID:          "n4",
			Title:       "勞動部研擬「外送員保險」新制草案，預計下季上路",
			Source:      "中央社",
			PublishedAt: now.Add(-48 * time.Hour),
			URL:         NoLinkURL,
			Snippet:     "新草案將要求平台業者提高意外險保額，恐影響平台營運成本結構。",
			Category:    CategoryMacro,
		},
	}
}
