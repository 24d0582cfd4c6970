package model

import "time"

// Report is a persisted plagiarism check: the main document, where its uploads were
// archived, and the per-file results.
type Report struct {
	ID                string       `json:"id"`
	MainDocument      string       `json:"main_document"`
	StoragePrefix     string       `json:"storage_prefix"`
	AveragePercentage float64      `json:"average_percentage"`
	FileCount         int          `json:"file_count"`
	Files             []FileResult `json:"files"`
	CreatedAt         time.Time    `json:"created_at"`
}

// UploadedFile is a file received by the service as part of a multipart request.
type UploadedFile struct {
	Name        string
	ContentType string
	Size        int64
	Data        []byte
}
