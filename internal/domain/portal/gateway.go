// Package portal defines the contract between the conversation engine and
// the WCU academic portal. Implementations live in infrastructure; the
// application layer only sees this port.
package portal

import (
	"context"
	"errors"
	"fmt"
)

// ErrAuthRejected means the portal refused the supplied credentials. A
// mistyped password is a routine user event, not a portal outage; callers
// must not treat it as one.
var ErrAuthRejected = errors.New("portal rejected credentials")

// GraduateNotice is the exact portal response that marks a graduated
// student. Profile extraction is skipped for graduates; the message is
// relayed as-is.
const GraduateNotice = "It seems you are a graduate, so I am skipping your profile and showing your grade report below."

// ProfileKind tags the shape of a profile fetch result.
type ProfileKind int

const (
	// ProfilePlain is an ordinary text profile.
	ProfilePlain ProfileKind = iota
	// ProfileGraduate means the portal reported a graduated student and
	// returned no profile data.
	ProfileGraduate
	// ProfileWithPhoto carries a student photo with a caption.
	ProfileWithPhoto
)

// Profile is the tagged result of a profile fetch. Exactly the fields for
// the given Kind are set.
type Profile struct {
	Kind     ProfileKind
	PhotoURL string // ProfileWithPhoto
	Caption  string // ProfileWithPhoto
	Text     string // ProfilePlain
}

// Credentials authenticate one portal request. The password is supplied by
// the student per request and is never persisted.
type Credentials struct {
	Campus    string
	StudentID string
	Password  string
}

// Gateway is the port to the academic portal. Both calls authenticate on
// demand with the given credentials; there is no session reuse across
// calls.
type Gateway interface {
	// FetchProfile retrieves the student profile.
	FetchProfile(ctx context.Context, creds Credentials) (*Profile, error)

	// FetchGrades retrieves the raw grade-report lines across all
	// semesters, in portal order.
	FetchGrades(ctx context.Context, creds Credentials) ([]string, error)
}

// GatewayError wraps portal authentication and transport failures with the
// operation that produced them.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("portal: %s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}
