package model

import (
    "strings"
    "time"
)

// JobStatus enumerates the pipeline stage of a job application.  The string
// values are part of the API contract and are stored verbatim in the
// database.
type JobStatus string

const (
    StatusApplied     JobStatus = "applied"
    StatusPhoneScreen JobStatus = "phone-screen"
    StatusInterview   JobStatus = "interview"
    StatusOffer       JobStatus = "offer"
    StatusRejected    JobStatus = "rejected"
    StatusWishlist    JobStatus = "wishlist"
)

// AllStatuses lists every valid status in presentation order.  Summary
// derivations iterate this slice so that zero-count buckets are still
// reported.
var AllStatuses = []JobStatus{
    StatusApplied,
    StatusPhoneScreen,
    StatusInterview,
    StatusOffer,
    StatusRejected,
    StatusWishlist,
}

// Valid reports whether s is one of the six known statuses.
func (s JobStatus) Valid() bool {
    switch s {
    case StatusApplied, StatusPhoneScreen, StatusInterview, StatusOffer, StatusRejected, StatusWishlist:
        return true
    }
    return false
}

// Job represents a job-application record owned by exactly one user.  UserID
// is set at creation and never changes; every repository operation filters
// by (id, user_id) so cross-user access is impossible.
type Job struct {
    ID           string     `json:"id"`
    UserID       string     `json:"userId"`
    Company      string     `json:"company"`
    Title        string     `json:"title"`
    Status       JobStatus  `json:"status"`
    DateApplied  *time.Time `json:"dateApplied,omitempty"`
    NextFollowUp *time.Time `json:"nextFollowUp,omitempty"`
    Notes        *string    `json:"notes"`
    Tags         []string   `json:"tags"`
    CreatedAt    time.Time  `json:"createdAt"`
    UpdatedAt    time.Time  `json:"updatedAt"`
}

// JobInput is the client-supplied payload for creating or fully updating a
// job.  Validate normalizes it in place.
type JobInput struct {
    Company      string     `json:"company"`
    Title        string     `json:"title"`
    Status       string     `json:"status"`
    DateApplied  *time.Time `json:"dateApplied"`
    NextFollowUp *time.Time `json:"nextFollowUp"`
    Notes        *string    `json:"notes"`
    Tags         []string   `json:"tags"`
}

// Validate checks the payload and collects every violation instead of
// stopping at the first.  On success the input is normalized: company/title
// trimmed, status defaulted to "applied" and tags defaulted to an empty
// slice.  Notes may be empty or absent.
func (in *JobInput) Validate() ValidationErrors {
    var errs ValidationErrors

    in.Company = strings.TrimSpace(in.Company)
    if in.Company == "" {
        errs = errs.Add("company", "company is required")
    }
    in.Title = strings.TrimSpace(in.Title)
    if in.Title == "" {
        errs = errs.Add("title", "title is required")
    }
    in.Status = strings.TrimSpace(in.Status)
    if in.Status == "" {
        in.Status = string(StatusApplied)
    } else if !JobStatus(in.Status).Valid() {
        errs = errs.Add("status", "status must be one of applied, phone-screen, interview, offer, rejected, wishlist")
    }
    if in.Tags == nil {
        in.Tags = []string{}
    }
    return errs
}
