// Package similarity scores how much of a main document reappears in another document,
// sentence by sentence.
package similarity

import (
	"regexp"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// sentenceEnd matches the whitespace run after terminal punctuation. The punctuation
// stays with the preceding sentence.
var sentenceEnd = regexp.MustCompile(`[.!?][\s\p{Z}\v\x1c-\x1f\x{85}]+`)

// Result is the outcome of one comparison.
type Result struct {
	Percentage float64  `json:"percentage"`
	Matches    []string `json:"matches"`
}

// Sentences splits text after '.', '!' or '?' followed by whitespace. Text without such
// a boundary, including the empty string, is a single sentence.
func Sentences(text string) []string {
	var out []string
	start := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(text, -1) {
		out = append(out, text[start:loc[0]+1])
		start = loc[1]
	}
	return append(out, text[start:])
}

// Compare aligns the sentences of main and other. The percentage is the matcher ratio
// scaled to 0..100; each matching block contributes the main document's sentences joined
// by a space, in block order.
func Compare(main, other string) Result {
	a := Sentences(main)
	b := Sentences(other)

	m := difflib.NewMatcher(a, b)
	res := Result{Percentage: m.Ratio() * 100}
	for _, block := range m.GetMatchingBlocks() {
		if block.Size == 0 {
			continue
		}
		res.Matches = append(res.Matches, strings.Join(a[block.A:block.A+block.Size], " "))
	}
	return res
}
