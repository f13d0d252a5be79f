package token

import "time"

type Kind string

const (
	KindEmailVerify   Kind = "email_verify"
	KindPasswordReset Kind = "password_reset"
)

// Payload is the kind-specific pending data carried by a token: the
// not-yet-created account for KindEmailVerify, the account being recovered
// for KindPasswordReset.
type Payload struct {
	Username string
	Email    string
	Password string
	UserID   int64
}

// Token correlates an in-progress credential flow with the code mailed to
// the user. It is reachable only while Attempts < the limit and the expiry
// has not passed; any access that observes a violation deletes it.
type Token struct {
	ID        string
	Kind      Kind
	Code      string
	Payload   Payload
	Attempts  int
	CreatedAt time.Time
	ExpiresAt time.Time
}

type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeNotFound
	OutcomeExpired
	OutcomeWrongCode
	OutcomeAttemptsExhausted
)

// Result is the outcome of one Verify call. Remaining is only meaningful for
// OutcomeWrongCode; Kind and Payload are only set for OutcomeSuccess.
type Result struct {
	Outcome   Outcome
	Remaining int
	Kind      Kind
	Payload   Payload
}
