package model

import (
    "regexp"
    "strings"
)

// FieldError names a single invalid field and a human-readable reason.
type FieldError struct {
    Field   string `json:"field"`
    Message string `json:"message"`
}

// ValidationErrors aggregates every violation found in a payload so the API
// can report all of them at once rather than just the first.
type ValidationErrors []FieldError

// Add appends a violation and returns the extended list.
func (v ValidationErrors) Add(field, message string) ValidationErrors {
    return append(v, FieldError{Field: field, Message: message})
}

// Error implements the error interface by joining every message.
func (v ValidationErrors) Error() string {
    parts := make([]string, 0, len(v))
    for _, fe := range v {
        parts = append(parts, fe.Field+": "+fe.Message)
    }
    return strings.Join(parts, "; ")
}

// emailRe is intentionally loose: one @ with non-empty local part and a
// dotted domain.  Deliverability is not checked.
var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidateCredentials checks a registration or login payload.  The email is
// normalized to lowercase in place via the returned value; callers must use
// the normalized form for lookups and storage.
func ValidateCredentials(email, password string) (string, ValidationErrors) {
    var errs ValidationErrors
    email = strings.ToLower(strings.TrimSpace(email))
    if email == "" {
        errs = errs.Add("email", "email is required")
    } else if !emailRe.MatchString(email) {
        errs = errs.Add("email", "email must be a valid email address")
    }
    if password == "" {
        errs = errs.Add("password", "password is required")
    } else if len(password) < 8 {
        errs = errs.Add("password", "password must be at least 8 characters")
    }
    return email, errs
}
