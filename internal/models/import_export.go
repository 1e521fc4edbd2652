package models

import "time"

// ImportValidationError describes one rejected row of a question bank file.
type ImportValidationError struct {
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Message string `json:"message"`
	Value   string `json:"value"`
}

// ImportSummary reports how a question bank file was read.
type ImportSummary struct {
	Source         string                  `json:"source"`
	Format         string                  `json:"format"`
	TotalRows      int                     `json:"total_rows"`
	SuccessCount   int                     `json:"success_count"`
	ErrorCount     int                     `json:"error_count"`
	Errors         []ImportValidationError `json:"errors"`
	ProcessingTime time.Duration           `json:"processing_time"`
}
