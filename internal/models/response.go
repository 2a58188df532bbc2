package models

// SessionResponse is the snapshot handed back after every session operation.
type SessionResponse struct {
	Session          *Session `json:"session"`
	RemainingSeconds int      `json:"remainingSeconds,omitempty"`
	ResumePending    bool     `json:"resumePending,omitempty"`
	// Notice carries non-fatal transparency messages, e.g. that a fallback
	// evaluation was substituted or archival is still pending.
	Notice string `json:"notice,omitempty"`
}

// RecordListResponse wraps the interviewer-facing record listing.
type RecordListResponse struct {
	Records []InterviewRecord `json:"records"`
	Total   int               `json:"total"`
}

// RecordDetailResponse is one committed transcript with its entries decoded.
type RecordDetailResponse struct {
	Record     InterviewRecord   `json:"record"`
	Transcript []TranscriptEntry `json:"transcript"`
}

// uniform error responses
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *ErrorResponse) Error() string {
	return e.Message
}
