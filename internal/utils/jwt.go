package utils // package utils provides helper functions for token creation and hashing

import (
    "errors"
    "time" // time utilities for generating expirations

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// AccessToken represents a signed JWT bearer token along with its expiry.
// The Token field contains the JWT string.  Exp stores the expiration
// timestamp as a time.Time.  Tokens are stateless: nothing is persisted
// server-side, validity is solely a function of signature and expiry.
type AccessToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// TokenClaims holds the identity asserted by a verified bearer token.
type TokenClaims struct {
    UserID string // subject (sub) claim
    Email  string // email claim
}

// ErrInvalidToken is returned by ParseAccessToken for any token that fails
// signature, expiry or claim checks.  Callers do not need to distinguish
// the reasons.
var ErrInvalidToken = errors.New("invalid token")

// NewAccessToken builds and signs an HS256 JWT for a user.  It takes the
// signing secret, the user id and email, and a TTL in minutes.  The JWT
// carries the subject (sub), email, expiration (exp) and issued at (iat)
// claims.
func NewAccessToken(secret, userID, email string, ttlMin int) (AccessToken, error) {
    exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
    claims := jwt.MapClaims{
        "sub":   userID,
        "email": email,
        "exp":   exp.Unix(),
        "iat":   time.Now().UTC().Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies the signature and expiry of a raw bearer token
// and extracts its identity claims.  Only HMAC-signed tokens are accepted;
// a token signed with any other method is rejected.
func ParseAccessToken(secret, raw string) (TokenClaims, error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrInvalidToken
        }
        return []byte(secret), nil
    })
    if err != nil || !tok.Valid {
        return TokenClaims{}, ErrInvalidToken
    }
    claims, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return TokenClaims{}, ErrInvalidToken
    }
    sub, ok := claims["sub"].(string)
    if !ok || sub == "" {
        return TokenClaims{}, ErrInvalidToken
    }
    email, _ := claims["email"].(string)
    return TokenClaims{UserID: sub, Email: email}, nil
}
