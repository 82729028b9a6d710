package feed

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"InsightStream/internal/domain"
	"InsightStream/internal/ports"
)

type template struct {
	title    string
	snippet  string
	category domain.Category
}

// templates stand in for a parsed feed entry; polls rotate through them.
var templates = []template{
	{
		title:    "爆紅！漢堡王「隱藏版」疊疊樂漢堡在 TikTok 瘋傳",
		snippet:  "網紅自創的 10 層牛肉堡點法引發挑戰風潮，門市業績暴增。",
		category: domain.CategorySocial,
	},
	{
		title:    "食安警報：某進口辣椒粉驗出蘇丹紅，多家餐飲受波及",
		snippet:  "知名香料供應商Z公司產品遭回收，需清查客戶是否使用該批號原料。",
		category: domain.CategoryDefensive,
	},
	{
		title:    "競品推出深夜時段外送免運，鎖定大學城商圈",
		snippet:  "新方案於晚間十點後生效，首波涵蓋台北、台中、高雄三大學區。",
		category: domain.CategoryOffensive,
	},
	{
		title:    "主計總處：餐飲業營收連續六個月成長，外送占比創新高",
		snippet:  "外送訂單占整體餐飲營收比重突破兩成，業者加速布局雲端廚房。",
		category: domain.CategoryMacro,
	},
}

// Simulator emits one freshly dated item per subscription.
type Simulator struct {
	now      func() time.Time
	rotation atomic.Uint64
	seq      atomic.Uint64
}

var _ ports.FeedSource = (*Simulator)(nil)

// NewSimulator builds a feed stand-in using the wall clock.
func NewSimulator() *Simulator {
	return &Simulator{now: time.Now}
}

// Poll returns one item per subscription in subscription order.
func (s *Simulator) Poll(ctx context.Context, subscriptions []domain.SubscriptionConfig) ([]domain.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(subscriptions) == 0 {
		return nil, nil
	}

	now := s.now()
	offset := s.rotation.Add(1) - 1
	items := make([]domain.Item, 0, len(subscriptions))
	for i, sub := range subscriptions {
		tpl := templates[(offset+uint64(i))%uint64(len(templates))]
		items = append(items, domain.Item{
			ID:          s.itemID(sub, now),
			Title:       tpl.title,
			Snippet:     tpl.snippet,
			Source:      sub.Name,
			URL:         domain.NoLinkURL,
			PublishedAt: now,
			Category:    tpl.category,
		})
	}
	return items, nil
}

func (s *Simulator) itemID(sub domain.SubscriptionConfig, now time.Time) string {
	return newItemID(sub, now, s.seq.Add(1))
}

// newItemID namespaces ids by subscription and refresh time; seq breaks ties
// between back-to-back polls that land on the same clock reading.
func newItemID(sub domain.SubscriptionConfig, now time.Time, seq uint64) string {
	return fmt.Sprintf("feed-%s-%d-%d", sub.ID, now.UnixMilli(), seq)
}
