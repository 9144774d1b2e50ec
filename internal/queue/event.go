// Package queue defines message payloads exchanged over the message broker
// and the background consumer that processes them.
package queue

// JobActivityEvent is published when a job application is created or its
// status changes.  It carries enough information for downstream consumers
// to log or notify without querying the primary database.
type JobActivityEvent struct {
    JobID      string `json:"job_id"`
    UserID     string `json:"user_id"`
    Company    string `json:"company"`
    Title      string `json:"title"`
    Status     string `json:"status"`
    Action     string `json:"action"` // "created" or "status-changed"
    OccurredAt string `json:"occurred_at"`
}
