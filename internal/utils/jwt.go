package utils // package utils provides helpers for token issuing and password hashing

import (
    "time" // time utilities for generating expirations

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// tokenIssuer is written into the iss claim of every access token.
const tokenIssuer = "tour-ops-dashboard"

// AccessToken represents a signed JWT access token along with its expiry.
// The dashboard has no refresh flow: operators log in again when the
// token expires.
type AccessToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// NewAccessToken builds and signs an HS256 JWT for an operator.  The
// subject (sub) is the operator id and the role claim carries ADMIN or
// OPERATOR so that RequireRole can gate admin-only routes without a
// database round trip.
func NewAccessToken(secret string, userID uint64, role string, ttlMin int) (AccessToken, error) {
    now := time.Now().UTC()
    exp := now.Add(time.Duration(ttlMin) * time.Minute)
    claims := jwt.MapClaims{
        "sub":  userID,
        "role": role,
        "iss":  tokenIssuer,
        "exp":  exp.Unix(),
        "iat":  now.Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}
