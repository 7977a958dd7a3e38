package domain

// BatchRow is one line of an offline batch classification report.
type BatchRow struct {
	Filename string
	Result   *ClassificationResult
	Error    string
}
