package model

// FileResult is the outcome of comparing the main document with one folder file.
// A nil PlagiarismPercentage means the file could not be analysed; Error then says why.
type FileResult struct {
	FileName             string   `json:"file_name"`
	PlagiarismPercentage *float64 `json:"plagiarism_percentage,omitempty"`
	Matches              []string `json:"matches,omitempty"`
	Suggestions          []string `json:"suggestions,omitempty"`
	Error                string   `json:"error,omitempty"`
}

// Percentage returns the plagiarism percentage, treating an absent value as zero.
func (r FileResult) Percentage() float64 {
	if r.PlagiarismPercentage == nil {
		return 0
	}
	return *r.PlagiarismPercentage
}

// HasPercentage reports whether the server computed a percentage for the file.
func (r FileResult) HasPercentage() bool {
	return r.PlagiarismPercentage != nil
}

// Percent is a helper for building results with a percentage.
func Percent(p float64) *float64 {
	return &p
}

// CheckResponse is the body returned by POST /check-plagiarism-folder.
type CheckResponse struct {
	ReportID string       `json:"report_id,omitempty"`
	Files    []FileResult `json:"files"`
}
