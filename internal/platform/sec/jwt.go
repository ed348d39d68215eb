// Copyright (c) 2026 MealGrid. All rights reserved.
// Author: platform@mealgrid.app

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer via small provider interfaces.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// # Token Kinds

// TokenKind distinguishes the two signed-credential variants.
//
// A refresh token can only be exchanged for a fresh access token; it is
// never accepted as a request credential, so a leaked refresh cookie cannot
// authenticate API calls on its own.
type TokenKind string

const (
	// KindAccess is the short-lived per-request credential.
	KindAccess TokenKind = "access"

	// KindRefresh is the long-lived credential used only at the refresh endpoint.
	KindRefresh TokenKind = "refresh"
)

// # Verification Failures

// Verification failures form a closed set. Callers switch on these sentinels
// with [errors.Is]; no code anywhere inspects error strings or library types.
var (
	// ErrTokenExpired means the signature was valid but the validity window has passed.
	ErrTokenExpired = errors.New("sec: token expired")

	// ErrTokenBadSignature means the token was signed with a different secret.
	ErrTokenBadSignature = errors.New("sec: token signature mismatch")

	// ErrTokenMalformed means the token is structurally corrupt or carries bad claims.
	ErrTokenMalformed = errors.New("sec: token malformed")

	// ErrTokenWrongKind means a valid token of the wrong variant was presented
	// (e.g. a refresh token supplied as a request credential).
	ErrTokenWrongKind = errors.New("sec: wrong token kind")
)

// Claims represents the payload embedded inside a signed MealGrid token.
//
// # Why custom claims?
//
// By embedding the UserID and Role directly inside the JWT, the access chain
// can short-circuit obviously wrong-role requests without a database read.
// Claims are abbreviated to keep the token payload small.
type Claims struct {
	jwt.RegisteredClaims

	UserID string    `json:"uid"`
	Role   string    `json:"rol,omitempty"`
	Kind   TokenKind `json:"knd"`
}

// # Token Codec

// TokenCodec issues and verifies HS256-signed, time-limited credentials.
//
// The signing secret is process-wide configuration threaded in through the
// constructor; the codec never reads ambient state and never rotates secrets.
type TokenCodec struct {
	secret []byte
	issuer string
}

// NewTokenCodec creates a codec with the given signing secret.
//
// A missing secret is a fatal configuration error at startup, never a
// runtime fallback.
func NewTokenCodec(secret, issuer string) (*TokenCodec, error) {
	if secret == "" {
		return nil, fmt.Errorf("sec: signing secret is not configured")
	}
	return &TokenCodec{
		secret: []byte(secret),
		issuer: issuer,
	}, nil
}

// Issue produces a signed token encoding subject, role, kind, issued-at,
// and expiry = now + timeToLive.
//
// The validity window is immutable after issuance: renewing always means
// minting a new token, never extending an existing one.
func (codec *TokenCodec) Issue(subject string, role Role, kind TokenKind, timeToLive time.Duration) (string, error) {
	currentTime := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    codec.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
		},
		UserID: subject,
		Role:   string(role),
		Kind:   kind,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(codec.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// Verify checks the signature, expiry, and kind of a token string.
//
// It fails closed: any signature mismatch, structural corruption, or expiry
// produces a sentinel error, never a best-effort partial identity.
func (codec *TokenCodec) Verify(tokenString string, kind TokenKind) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return codec.secret, nil
	})

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenBadSignature
		default:
			return nil, ErrTokenMalformed
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenMalformed
	}

	if claims.Kind != kind {
		return nil, ErrTokenWrongKind
	}

	return claims, nil
}
