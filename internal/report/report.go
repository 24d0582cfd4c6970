// Package report turns check results into the summary banner and per-file cards shown
// to the user, and renders them as HTML or terminal text.
package report

import (
	"fmt"
	"sort"

	"plagcheck/internal/model"
)

const (
	// ExcerptLimit is the number of characters of a match shown before truncation.
	ExcerptLimit = 150
	// MaxMatches is the number of matches shown per file.
	MaxMatches = 3
	// MaxSuggestions is the number of suggestions shown per file.
	MaxSuggestions = 2

	TierLow    = "low"
	TierMedium = "medium"
	TierHigh   = "high"

	NoResults = "No results found."
)

// Summary is the banner above the result cards.
type Summary struct {
	Average float64
	Tier    string
}

// Label is the banner text, e.g. "Average: 40.0%".
func (s Summary) Label() string {
	return fmt.Sprintf("Average: %.1f%%", s.Average)
}

// Card is one rendered file result.
type Card struct {
	FileName        string
	Indicator       string
	Percentage      string
	Tier            string
	Error           string
	Matches         []string
	MoreMatches     int
	Suggestions     []string
	MoreSuggestions int
}

// Title is the file name followed by its type indicator.
func (c Card) Title() string {
	return c.FileName + c.Indicator
}

// View is everything needed to render one check.
type View struct {
	Summary Summary
	Cards   []Card
}

// Empty reports whether the check returned no files.
func (v View) Empty() bool {
	return len(v.Cards) == 0
}

// Build computes the summary and the ordered cards. The input slice is not modified.
func Build(files []model.FileResult) View {
	if len(files) == 0 {
		return View{Summary: Summary{Tier: TierLow}}
	}

	avg := Average(files)
	sorted := Sort(files)

	cards := make([]Card, 0, len(sorted))
	for _, f := range sorted {
		cards = append(cards, buildCard(f))
	}
	return View{
		Summary: Summary{Average: avg, Tier: Tier(avg)},
		Cards:   cards,
	}
}

func buildCard(f model.FileResult) Card {
	c := Card{
		FileName:   f.FileName,
		Indicator:  Indicator(f),
		Percentage: "N/A",
		Tier:       Tier(f.Percentage()),
		Error:      f.Error,
	}
	if f.HasPercentage() {
		c.Percentage = fmt.Sprintf("%.1f%%", f.Percentage())
	}

	shown := f.Matches
	if len(shown) > MaxMatches {
		shown = shown[:MaxMatches]
		c.MoreMatches = len(f.Matches) - MaxMatches
	}
	for _, m := range shown {
		c.Matches = append(c.Matches, Truncate(m, ExcerptLimit))
	}

	c.Suggestions = f.Suggestions
	if len(c.Suggestions) > MaxSuggestions {
		c.Suggestions = c.Suggestions[:MaxSuggestions]
		c.MoreSuggestions = len(f.Suggestions) - MaxSuggestions
	}
	return c
}

// Average is the mean percentage across files, counting absent percentages as zero.
func Average(files []model.FileResult) float64 {
	if len(files) == 0 {
		return 0
	}
	var total float64
	for _, f := range files {
		total += f.Percentage()
	}
	return total / float64(len(files))
}

// Tier classifies a percentage. Each boundary is strict: 50 is medium, 20 is low.
func Tier(p float64) string {
	switch {
	case p > 50:
		return TierHigh
	case p > 20:
		return TierMedium
	default:
		return TierLow
	}
}

// Truncate shortens text longer than n characters to n characters plus "...".
func Truncate(text string, n int) string {
	r := []rune(text)
	if len(r) > n {
		return string(r[:n]) + "..."
	}
	return text
}

// Sort returns a copy of files ordered by descending percentage. Ties keep their order.
func Sort(files []model.FileResult) []model.FileResult {
	out := make([]model.FileResult, len(files))
	copy(out, files)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Percentage() > out[j].Percentage()
	})
	return out
}

// Indicator annotates a result's file name. A processing error wins over the file type.
func Indicator(f model.FileResult) string {
	switch {
	case f.Error != "":
		return " (OCR/Processing Error)"
	case model.IsImageOrPDF(f.FileName):
		return " (Image/PDF - OCR Processed)"
	default:
		return ""
	}
}
