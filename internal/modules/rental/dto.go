package rental

import "time"

type CreateRequestInput struct {
	RentStartTime time.Time `json:"rent_start_time" binding:"required"`
	RentEndTime   time.Time `json:"rent_end_time" binding:"required"`
}

// BatchAnswers maps rent request ids (as strings) to "yes" or "no".
// Unmapped, malformed or unknown entries are skipped, not fatal.
type BatchAnswers map[string]string

type AnswerOutcome struct {
	RequestID int64  `json:"request_id"`
	Answer    string `json:"answer"`
	Applied   bool   `json:"applied"`
	Reason    string `json:"reason,omitempty"`
}
