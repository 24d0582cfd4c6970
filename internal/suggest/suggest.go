// Package suggest produces rewrite advice for matched excerpts.
package suggest

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/zap"
)

// MinWords is the word count an excerpt must exceed before it earns a suggestion.
const MinWords = 5

// Suggester returns advice for the matched excerpts of one comparison.
type Suggester interface {
	Suggest(ctx context.Context, matches []string) ([]string, error)
}

// Heuristic asks for a rephrase of every excerpt longer than MinWords words.
type Heuristic struct{}

func (Heuristic) Suggest(_ context.Context, matches []string) ([]string, error) {
	var out []string
	for _, m := range Eligible(matches) {
		out = append(out, fmt.Sprintf("Consider rephrasing: '%s'", m))
	}
	return out, nil
}

// Eligible filters the excerpts long enough to deserve a suggestion.
func Eligible(matches []string) []string {
	var out []string
	for _, m := range matches {
		if len(strings.FieldsFunc(m, isSpace)) > MinWords {
			out = append(out, m)
		}
	}
	return out
}

// Fallback uses Primary and falls back to Secondary when Primary fails.
type Fallback struct {
	Primary   Suggester
	Secondary Suggester
	Log       *zap.Logger
}

func (f Fallback) Suggest(ctx context.Context, matches []string) ([]string, error) {
	out, err := f.Primary.Suggest(ctx, matches)
	if err == nil {
		return out, nil
	}
	if f.Log != nil {
		f.Log.Warn("suggester failed, using fallback", zap.Error(err))
	}
	return f.Secondary.Suggest(ctx, matches)
}

// isSpace also treats the ASCII separators 0x1c-0x1f as word breaks.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}
