package models

import (
	"time"
)

// FirstInteraction represents a user's earliest recorded interaction
// with the project: opening an issue or PR, or commenting on either.
type FirstInteraction struct {
	User       string    `json:"user"`
	Dir        string    `json:"dir"`
	File       string    `json:"file"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewFirstInteraction creates a first-interaction entry from a record
func NewFirstInteraction(r *Record) *FirstInteraction {
	return &FirstInteraction{
		User:       r.User,
		Dir:        r.Dir,
		File:       r.File,
		OccurredAt: r.CreatedAt,
	}
}
