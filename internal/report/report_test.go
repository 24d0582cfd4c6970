package report

import (
	"bytes"
	"strings"
	"testing"

	"plagcheck/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTier(t *testing.T) {
	tests := []struct {
		p    float64
		want string
	}{
		{0, TierLow},
		{20, TierLow},
		{20.05, TierMedium},
		{21, TierMedium},
		{50, TierMedium},
		{50.01, TierHigh},
		{51, TierHigh},
		{100, TierHigh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Tier(tt.p), "percentage %v", tt.p)
	}
}

func TestTruncate(t *testing.T) {
	exact := strings.Repeat("a", ExcerptLimit)
	long := strings.Repeat("b", ExcerptLimit+1)

	assert.Equal(t, exact, Truncate(exact, ExcerptLimit))
	assert.Equal(t, strings.Repeat("b", ExcerptLimit)+"...", Truncate(long, ExcerptLimit))
	assert.Equal(t, "short", Truncate("short", ExcerptLimit))

	t.Run("counts characters not bytes", func(t *testing.T) {
		s := strings.Repeat("é", ExcerptLimit)
		assert.Equal(t, s, Truncate(s, ExcerptLimit))
	})
}

func TestAverage(t *testing.T) {
	files := []model.FileResult{
		{FileName: "a", PlagiarismPercentage: model.Percent(80)},
		{FileName: "b", PlagiarismPercentage: model.Percent(30)},
		{FileName: "c", PlagiarismPercentage: model.Percent(10)},
	}
	assert.InDelta(t, 40.0, Average(files), 1e-9)

	t.Run("absent counts as zero", func(t *testing.T) {
		files := []model.FileResult{
			{FileName: "a", PlagiarismPercentage: model.Percent(60)},
			{FileName: "b", Error: "OCR failed"},
		}
		assert.InDelta(t, 30.0, Average(files), 1e-9)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, 0.0, Average(nil))
	})
}

func TestSort(t *testing.T) {
	files := []model.FileResult{
		{FileName: "low", PlagiarismPercentage: model.Percent(10)},
		{FileName: "high", PlagiarismPercentage: model.Percent(80)},
		{FileName: "broken", Error: "unsupported"},
		{FileName: "mid", PlagiarismPercentage: model.Percent(30)},
		{FileName: "zero", PlagiarismPercentage: model.Percent(0)},
	}

	got := Sort(files)

	names := make([]string, 0, len(got))
	for _, f := range got {
		names = append(names, f.FileName)
	}
	assert.Equal(t, []string{"high", "mid", "low", "broken", "zero"}, names)
	assert.Equal(t, "low", files[0].FileName, "input must not be reordered")
}

func TestIndicator(t *testing.T) {
	assert.Equal(t, "", Indicator(model.FileResult{FileName: "essay.docx"}))
	assert.Equal(t, " (Image/PDF - OCR Processed)", Indicator(model.FileResult{FileName: "scan.jpg"}))
	assert.Equal(t, " (Image/PDF - OCR Processed)", Indicator(model.FileResult{FileName: "paper.pdf"}))
	assert.Equal(t, " (OCR/Processing Error)", Indicator(model.FileResult{FileName: "scan.png", Error: "OCR failed"}))
	assert.Equal(t, " (OCR/Processing Error)", Indicator(model.FileResult{FileName: "notes.txt", Error: "bad encoding"}))
}

func TestBuild(t *testing.T) {
	t.Run("ordered cards and summary", func(t *testing.T) {
		v := Build([]model.FileResult{
			{FileName: "b.txt", PlagiarismPercentage: model.Percent(30)},
			{FileName: "a.txt", PlagiarismPercentage: model.Percent(80)},
			{FileName: "c.txt", PlagiarismPercentage: model.Percent(10)},
		})

		require.Len(t, v.Cards, 3)
		assert.Equal(t, "a.txt", v.Cards[0].FileName)
		assert.Equal(t, "b.txt", v.Cards[1].FileName)
		assert.Equal(t, "c.txt", v.Cards[2].FileName)
		assert.Equal(t, "Average: 40.0%", v.Summary.Label())
		assert.Equal(t, TierMedium, v.Summary.Tier)
		assert.Equal(t, "80.0%", v.Cards[0].Percentage)
		assert.Equal(t, TierHigh, v.Cards[0].Tier)
		assert.Equal(t, TierLow, v.Cards[2].Tier)
	})

	t.Run("caps matches and suggestions", func(t *testing.T) {
		long := strings.Repeat("x", 200)
		v := Build([]model.FileResult{{
			FileName:             "a.txt",
			PlagiarismPercentage: model.Percent(55),
			Matches:              []string{long, "m2", "m3", "m4", "m5"},
			Suggestions:          []string{"s1", "s2", "s3"},
		}})

		c := v.Cards[0]
		assert.Len(t, c.Matches, MaxMatches)
		assert.Equal(t, strings.Repeat("x", ExcerptLimit)+"...", c.Matches[0])
		assert.Equal(t, 2, c.MoreMatches)
		assert.Equal(t, []string{"s1", "s2"}, c.Suggestions)
		assert.Equal(t, 1, c.MoreSuggestions)
	})

	t.Run("missing percentage", func(t *testing.T) {
		v := Build([]model.FileResult{{FileName: "scan.png", Error: "OCR failed"}})
		c := v.Cards[0]
		assert.Equal(t, "N/A", c.Percentage)
		assert.Equal(t, TierLow, c.Tier)
		assert.Equal(t, "scan.png (OCR/Processing Error)", c.Title())
	})

	t.Run("empty", func(t *testing.T) {
		v := Build(nil)
		assert.True(t, v.Empty())
	})
}

func TestRenderHTML(t *testing.T) {
	t.Run("cards", func(t *testing.T) {
		v := Build([]model.FileResult{
			{FileName: "paper.pdf", PlagiarismPercentage: model.Percent(10)},
			{FileName: "<b>x</b>.txt", PlagiarismPercentage: model.Percent(80), Matches: []string{"a", "b", "c", "d"}},
		})

		var buf bytes.Buffer
		require.NoError(t, RenderHTML(&buf, v))
		out := buf.String()

		assert.Contains(t, out, `<span class="percentage medium">Average: 45.0%</span>`)
		assert.Contains(t, out, "paper.pdf (Image/PDF - OCR Processed)")
		assert.Contains(t, out, "&lt;b&gt;x&lt;/b&gt;.txt")
		assert.NotContains(t, out, "<b>x</b>")
		assert.Contains(t, out, "+ 1 more matches...")
		assert.Less(t, strings.Index(out, "x&lt;/b&gt;.txt"), strings.Index(out, "paper.pdf"))
	})

	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, RenderHTML(&buf, Build(nil)))
		assert.Contains(t, buf.String(), NoResults)
	})
}

func TestRenderText(t *testing.T) {
	v := Build([]model.FileResult{
		{FileName: "a.txt", PlagiarismPercentage: model.Percent(51), Suggestions: []string{"s1"}},
		{FileName: "scan.jpg", Error: "OCR failed"},
	})

	var buf bytes.Buffer
	require.NoError(t, RenderText(&buf, v))
	out := buf.String()

	assert.Contains(t, out, "Average: 25.5% [medium]")
	assert.Contains(t, out, "a.txt  51.0% [high]")
	assert.Contains(t, out, "scan.jpg (OCR/Processing Error)  N/A [low]")
	assert.Contains(t, out, "Error: OCR failed")
	assert.Contains(t, out, "- s1")
}
