package model

import "regexp"

var imageOrPDF = regexp.MustCompile(`\.(jpg|png|pdf)$`)

// IsImageOrPDF reports whether a file name marks a document whose text has to be
// recovered by OCR or PDF extraction. Matching is case-sensitive.
func IsImageOrPDF(name string) bool {
	return imageOrPDF.MatchString(name)
}
