package domain

import (
	"strings"
	"time"
)

// Category classifies an item for filtering and grouping.
type Category string

const (
	CategoryDefensive Category = "DEFENSIVE"
	CategoryOffensive Category = "OFFENSIVE"
	CategoryMacro     Category = "MACRO"
	CategorySocial    Category = "SOCIAL"

	// CategoryAll is the "show all" sentinel accepted by filters.
	CategoryAll Category = "ALL"
)

// Categories lists the fixed enumeration in display order.
func Categories() []Category {
	return []Category{CategoryDefensive, CategoryOffensive, CategoryMacro, CategorySocial}
}

// ParseCategory accepts any casing and reports whether the value is a known category or ALL.
func ParseCategory(value string) (Category, bool) {
	c := Category(strings.ToUpper(strings.TrimSpace(value)))
	switch c {
	case CategoryDefensive, CategoryOffensive, CategoryMacro, CategorySocial, CategoryAll:
		return c, true
	}
	return "", false
}

// Sentiment is the tone assigned by the analysis service.
type Sentiment string

const (
	SentimentPositive Sentiment = "POSITIVE"
	SentimentNegative Sentiment = "NEGATIVE"
	SentimentNeutral  Sentiment = "NEUTRAL"
)

// NormalizeSentiment maps unknown values to NEUTRAL.
func NormalizeSentiment(value string) Sentiment {
	switch s := Sentiment(strings.ToUpper(strings.TrimSpace(value))); s {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
		return s
	}
	return SentimentNeutral
}

// Analysis is the AI-derived annotation attached to an item.
type Analysis struct {
	Summary   string    `json:"summary"`
	Sentiment Sentiment `json:"sentiment"`
	ActionTip string    `json:"actionTip"`
	Keywords  []string  `json:"keywords"`
}

// Equal compares two analyses field by field.
func (a Analysis) Equal(other Analysis) bool {
	if a.Summary != other.Summary || a.Sentiment != other.Sentiment || a.ActionTip != other.ActionTip {
		return false
	}
	if len(a.Keywords) != len(other.Keywords) {
		return false
	}
	for i := range a.Keywords {
		if a.Keywords[i] != other.Keywords[i] {
			return false
		}
	}
	return true
}

// Item is a single intelligence entry in the collection.
// Analysis is non-nil iff Analyzed is true.
type Item struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Snippet     string    `json:"snippet"`
	Source      string    `json:"source"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"publishedAt"`
	Category    Category  `json:"category"`
	Analyzed    bool      `json:"analyzed"`
	Analysis    *Analysis `json:"analysis,omitempty"`
}

// WithAnalysis returns a copy of the item marked as analyzed.
func (i Item) WithAnalysis(a Analysis) Item {
	a.Keywords = append([]string(nil), a.Keywords...)
	i.Analyzed = true
	i.Analysis = &a
	return i
}

// NoLinkURL marks items whose source link is unknown.
const NoLinkURL = "#"

// KeywordConfig is a user-declared search term bound to a category.
type KeywordConfig struct {
	ID       string   `json:"id"`
	Term     string   `json:"term"`
	Category Category `json:"category"`
}

// SubscriptionConfig is a user-declared feed source.
// URL is opaque to the pipeline unless the rss feed mode is enabled.
type SubscriptionConfig struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Terms extracts search terms in declaration order.
func Terms(keywords []KeywordConfig) []string {
	terms := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if t := strings.TrimSpace(k.Term); t != "" {
			terms = append(terms, t)
		}
	}
	return terms
}

// FetchResult is the tagged outcome of one adapter call: Err set means Items is unusable.
type FetchResult struct {
	Items []Item
	Err   error
}

// OK reports whether the fetch succeeded.
func (r FetchResult) OK() bool {
	return r.Err == nil
}
