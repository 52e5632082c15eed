package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/vectora-ai/vectora/pkg/capability"
	"github.com/vectora-ai/vectora/pkg/session"
)

const (
	cardWidth         = 40
	cardMessageLimit  = 100
	modelNameLimit    = 35
	modelNameKeep     = 32
	notConfiguredName = "Not configured"
)

// truncateModel shortens model names longer than modelNameLimit columns to
// modelNameKeep columns plus "...".
func truncateModel(name string) string {
	if name == "" {
		return notConfiguredName
	}
	if runewidth.StringWidth(name) <= modelNameLimit {
		return name
	}
	return runewidth.Truncate(name, modelNameKeep, "") + "..."
}

// truncateMessage keeps the first cardMessageLimit columns of msg.
func truncateMessage(msg string) string {
	return runewidth.Truncate(msg, cardMessageLimit, "")
}

// renderCard draws the result card shown after an analysis. Rejected
// requests get a red card with the full explanation.
func renderCard(resp session.Response) string {
	if !resp.Success {
		return cardBlockedStyle.Render(cardErrorStyle.Render(resp.Message))
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		cardLabelStyle.Render("AI Involvement"),
		cardPercentStyle.Render(fmt.Sprintf("%d%%", roundPercent(resp.AIPercent))),
		cardMessageStyle.Render(truncateMessage(resp.Message)),
		lipgloss.PlaceHorizontal(cardWidth-4, lipgloss.Right, cardFooterStyle.Render("Powered by Vectora")),
	)

	return cardStyle.Render(body)
}

func roundPercent(p float64) int {
	return int(math.Round(p))
}

// capabilityLabels renders "Text, Image" style labels.
func capabilityLabels(caps capability.Set) string {
	list := caps.List()
	if len(list) == 0 {
		return "none"
	}

	labels := make([]string, len(list))
	for i, c := range list {
		labels[i] = c.Label()
	}
	return strings.Join(labels, ", ")
}

// capabilityIcons renders one glyph per capability, in canonical order.
func capabilityIcons(caps capability.Set) string {
	var b strings.Builder
	for _, c := range caps.List() {
		switch c {
		case capability.Text:
			b.WriteString("📝")
		case capability.Image:
			b.WriteString("🖼")
		case capability.WebSearch:
			b.WriteString("🌐")
		}
	}
	return b.String()
}
