package models

import "time"

// FeedState remembers how far a polled feed has been read.
type FeedState struct {
	URL        string `gorm:"primaryKey"`
	LastItemAt time.Time
	LastPollAt time.Time
	Items      int
}
