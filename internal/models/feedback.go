package models

import (
	"time"
)

// FeedbackRecord is write-once, same as the signature record.
type FeedbackRecord struct {
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment,omitempty"`
	Preferences []string  `json:"preferences"`
	Timestamp   time.Time `json:"timestamp"`
}
