package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"InsightStream/internal/domain"
)

var (
	colorDim = lipgloss.Color("241")

	titleStyle = lipgloss.NewStyle().Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(colorDim)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	tipStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).PaddingLeft(2)
	badgeStyle = lipgloss.NewStyle().Padding(0, 1).Bold(true)

	categoryColors = map[domain.Category]lipgloss.Color{
		domain.CategoryDefensive: lipgloss.Color("160"),
		domain.CategoryOffensive: lipgloss.Color("33"),
		domain.CategoryMacro:     lipgloss.Color("136"),
		domain.CategorySocial:    lipgloss.Color("135"),
	}

	sentimentColors = map[domain.Sentiment]lipgloss.Color{
		domain.SentimentPositive: lipgloss.Color("34"),
		domain.SentimentNeutral:  colorDim,
		domain.SentimentNegative: lipgloss.Color("196"),
	}
)

func categoryBadge(c domain.Category) string {
	return badgeStyle.Foreground(categoryColors[c]).Render(string(c))
}

func sentimentBadge(s domain.Sentiment) string {
	return badgeStyle.Foreground(sentimentColors[s]).Render(string(s))
}

func renderItem(w io.Writer, item domain.Item, loc *time.Location) {
	fmt.Fprintf(w, "%s %s\n", categoryBadge(item.Category), titleStyle.Render(item.Title))

	meta := fmt.Sprintf("%s · %s · %s", item.ID, item.Source, item.PublishedAt.In(loc).Format("2006-01-02 15:04"))
	if item.URL != "" && item.URL != domain.NoLinkURL {
		meta += " · " + item.URL
	}
	fmt.Fprintln(w, dimStyle.Render(meta))

	if item.Snippet != "" {
		fmt.Fprintln(w, item.Snippet)
	}
	if item.Analyzed && item.Analysis != nil {
		a := item.Analysis
		fmt.Fprintf(w, "%s %s\n", sentimentBadge(a.Sentiment), a.Summary)
		if a.ActionTip != "" {
			fmt.Fprintln(w, tipStyle.Render("→ "+a.ActionTip))
		}
		if len(a.Keywords) > 0 {
			fmt.Fprintln(w, dimStyle.Render("  #"+strings.Join(a.Keywords, " #")))
		}
	}
	fmt.Fprintln(w)
}
