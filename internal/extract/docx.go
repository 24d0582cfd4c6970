package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const wordNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// docxText joins the body paragraphs of a WordprocessingML document with a space.
// Paragraphs inside tables are skipped, and so is the text of paragraphs nested in
// text boxes.
func docxText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", errors.New("open docx: word/document.xml not found")
	}

	rc, err := doc.Open()
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer rc.Close()

	var (
		paragraphs []string
		current    strings.Builder
		inText     bool
		tableDepth int
		paraDepth  int
	)
	dec := xml.NewDecoder(rc)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse docx: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != wordNS {
				continue
			}
			switch t.Name.Local {
			case "tbl":
				tableDepth++
			case "p":
				paraDepth++
				if paraDepth == 1 {
					current.Reset()
				}
			case "t":
				inText = true
			case "tab":
				if paraDepth == 1 {
					current.WriteString("\t")
				}
			case "br", "cr":
				if paraDepth == 1 {
					current.WriteString("\n")
				}
			}
		case xml.EndElement:
			if t.Name.Space != wordNS {
				continue
			}
			switch t.Name.Local {
			case "tbl":
				tableDepth--
			case "t":
				inText = false
			case "p":
				if paraDepth == 1 && tableDepth == 0 {
					paragraphs = append(paragraphs, current.String())
				}
				if paraDepth > 0 {
					paraDepth--
				}
			}
		case xml.CharData:
			if inText && paraDepth == 1 {
				current.Write(t)
			}
		}
	}
	return strings.Join(paragraphs, " "), nil
}
