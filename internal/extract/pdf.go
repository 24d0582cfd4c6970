package extract

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"rsc.io/pdf"
)

// pdfText concatenates the text runs of every page. Runs on a new line or separated by
// a visible gap are joined with a space.
func pdfText(data []byte) (text string, err error) {
	// rsc.io/pdf panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("parse pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		var prev *pdf.Text
		for _, t := range page.Content().Text {
			if prev != nil && needsSpace(*prev, t) {
				b.WriteByte(' ')
			}
			b.WriteString(t.S)
			prev = &t
		}
		b.WriteByte(' ')
	}
	return strings.Join(strings.Fields(b.String()), " "), nil
}

func needsSpace(prev, cur pdf.Text) bool {
	size := cur.FontSize
	if size <= 0 {
		size = 1
	}
	if math.Abs(cur.Y-prev.Y) > size/2 {
		return true
	}
	return cur.X-(prev.X+prev.W) > size*0.2
}
