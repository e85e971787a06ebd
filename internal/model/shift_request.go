package model

// ShiftRequest is one structured shift extracted from a free-text
// email. Values are literal strings as returned by the oracle; no
// calendar validation is applied.
type ShiftRequest struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Unit      string `json:"unit"`
	Grade     string `json:"grade"`
}

// MatchResult pairs a requested shift with the nurse slot selected for
// it, if any. Nurse is nil for unmatched shifts.
type MatchResult struct {
	Shift ShiftRequest
	Nurse *NurseAvailability
}
