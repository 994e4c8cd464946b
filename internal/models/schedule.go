// Package models holds the shared domain vocabulary for schedule entries.
// The persistence record lives in ports/secondary; the CLI-facing view in
// ports/primary.
package models

import "time"

// Entry kind constants
const (
	KindPost    = "post"
	KindComment = "comment"
)

// Entry status constants
const (
	StatusPending   = "pending"
	StatusPublished = "published"
	StatusFailed    = "failed"
)

// MinCommentOffset is the minimum gap between a parent post's publish time
// and a dependent comment's publish time.
const MinCommentOffset = 5 * time.Minute
