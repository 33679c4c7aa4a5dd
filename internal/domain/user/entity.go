// Package user contains the registered-student aggregate for the WCU
// Student Assistant Bot. All portal-identifying fields live in the record
// only as ciphertext; encryption happens in the application layer before
// the record reaches persistence.
package user

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// ═══════════════════════════════════════════════════════════════════════════
// Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// TelegramID is the unique Telegram account identifier of a student.
type TelegramID int64

// IsValid checks if the Telegram ID is valid.
func (t TelegramID) IsValid() bool {
	return t > 0
}

// Int64 returns the raw identifier.
func (t TelegramID) Int64() int64 {
	return int64(t)
}

// StudentID is the WCU portal identifier as typed by the student,
// e.g. "NSR/2214/13".
type StudentID string

// studentIDPattern matches the id prefix: three letters, slash, four digits,
// slash, two digits. The end of the string is deliberately unanchored; the
// portal itself tolerates trailing characters, so the bot does too.
var studentIDPattern = regexp.MustCompile(`^[A-Z]{3}/\d{4}/\d{2}`)

// Normalized returns the id uppercased, the form the portal expects.
func (s StudentID) Normalized() StudentID {
	return StudentID(strings.ToUpper(strings.TrimSpace(string(s))))
}

// IsValid checks the id against the portal format after normalization.
func (s StudentID) IsValid() bool {
	return studentIDPattern.MatchString(string(s.Normalized()))
}

// String returns the raw id.
func (s StudentID) String() string {
	return string(s)
}

// Campus is one of the WCU campuses a student can register under.
type Campus string

const (
	CampusMain        Campus = "Main"
	CampusDurame      Campus = "Durame"
	CampusNigistEleni Campus = "Nigist Eleni"
)

// AllCampuses returns the campuses offered during registration, in the
// order they appear on the selection keyboard.
func AllCampuses() []Campus {
	return []Campus{CampusMain, CampusDurame, CampusNigistEleni}
}

// IsValid checks if the campus is one of the known WCU campuses.
func (c Campus) IsValid() bool {
	for _, known := range AllCampuses() {
		if c == known {
			return true
		}
	}
	return false
}

// String returns the campus name.
func (c Campus) String() string {
	return string(c)
}

// ═══════════════════════════════════════════════════════════════════════════
// Entity
// ═══════════════════════════════════════════════════════════════════════════

// Record is one registered student. The four Encrypted* fields are
// independent ciphertext blobs produced by the vault; plaintext values are
// never stored. At most one record exists per TelegramID.
type Record struct {
	ID                    string // uuid
	TelegramID            TelegramID
	EncryptedStudentID    []byte
	EncryptedDisplayName  []byte
	EncryptedCampus       []byte
	EncryptedRegisteredAt []byte
	CreatedAt             time.Time
}

// ═══════════════════════════════════════════════════════════════════════════
// Errors
// ═══════════════════════════════════════════════════════════════════════════

var (
	// ErrNotFound is returned when no record exists for a Telegram ID.
	ErrNotFound = errors.New("user: not registered")

	// ErrAlreadyRegistered is returned on a duplicate registration attempt.
	ErrAlreadyRegistered = errors.New("user: already registered")

	// ErrInvalidStudentID is returned when a student id fails format validation.
	ErrInvalidStudentID = errors.New("user: invalid student id format")

	// ErrInvalidCampus is returned when a campus name is not one of the known campuses.
	ErrInvalidCampus = errors.New("user: unknown campus")
)
