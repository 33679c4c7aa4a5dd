// Package conversation models the per-chat dialogue state machine: which
// step of a flow the student is in, plus the data carried between steps
// (selected campus, pending challenge answer, the paginated grade report).
// State is keyed by Telegram ID and serialized by the store, so a dialogue
// survives process restarts.
package conversation

// Stage identifies the current position of a dialogue.
type Stage string

const (
	// StageIdle means no flow is in progress. Menu presses and commands
	// start flows from here.
	StageIdle Stage = "idle"

	// StageAwaitingConsent: the policy prompt was sent, waiting for the
	// agree/disagree button.
	StageAwaitingConsent Stage = "awaiting_consent"

	// StageAwaitingCampus: waiting for a campus selection button.
	StageAwaitingCampus Stage = "awaiting_campus"

	// StageAwaitingStudentID: waiting for the student id as free text.
	StageAwaitingStudentID Stage = "awaiting_student_id"

	// StageAwaitingPassword: waiting for the portal password as free text.
	StageAwaitingPassword Stage = "awaiting_password"

	// StageAwaitingDeletionAnswer: a verification challenge was sent,
	// waiting for one of the answer buttons.
	StageAwaitingDeletionAnswer Stage = "awaiting_deletion_answer"
)

// State is everything the bot remembers about one chat between updates.
// The pagination fields outlive the grade flow itself: the report stays
// browsable after the dialogue returns to idle, until the next report
// overwrites it or the student cancels.
type State struct {
	Stage Stage `json:"stage"`

	// Campus holds the selection made between the campus step and the
	// student-id step of registration.
	Campus string `json:"campus,omitempty"`

	// PendingAnswer is the correct answer of the outstanding deletion
	// challenge. Overwritten on every wrong attempt.
	PendingAnswer int `json:"pending_answer,omitempty"`

	// Semesters are the rendered grade-report blocks, one per page.
	Semesters []string `json:"semesters,omitempty"`

	// Page is the zero-based pagination cursor. Invariant: 0 when
	// Semesters is empty, otherwise always < len(Semesters).
	Page int `json:"page,omitempty"`

	// ReportMessageID is the chat message the paginated report is edited
	// into. Zero means no report message exists yet.
	ReportMessageID int64 `json:"report_message_id,omitempty"`

	// ChallengeMessageID is the chat message the deletion challenge is
	// edited into on wrong answers.
	ChallengeMessageID int64 `json:"challenge_message_id,omitempty"`
}

// NewState returns a fresh idle state.
func NewState() *State {
	return &State{Stage: StageIdle}
}

// SetReport installs a freshly fetched grade report and resets the cursor.
func (s *State) SetReport(semesters []string) {
	s.Semesters = semesters
	s.Page = 0
	s.ReportMessageID = 0
}

// ClampPage forces the cursor back into range. Stored state is external
// data; a stale or corrupt value must not survive a load.
func (s *State) ClampPage() {
	if len(s.Semesters) == 0 {
		s.Page = 0
		return
	}
	if s.Page < 0 {
		s.Page = 0
	}
	if s.Page >= len(s.Semesters) {
		s.Page = len(s.Semesters) - 1
	}
}

// TotalPages returns the number of report pages.
func (s *State) TotalPages() int {
	return len(s.Semesters)
}

// CurrentSemester returns the block under the cursor, or false when no
// report is loaded.
func (s *State) CurrentSemester() (string, bool) {
	if len(s.Semesters) == 0 {
		return "", false
	}
	return s.Semesters[s.Page], true
}

// PrevPage moves the cursor back one page, saturating at the first page.
// Returns true if the cursor moved.
func (s *State) PrevPage() bool {
	if s.Page <= 0 {
		s.Page = 0
		return false
	}
	s.Page--
	return true
}

// NextPage moves the cursor forward one page. Past the last page it is a
// no-op; the controls are gated, the guard stays anyway.
func (s *State) NextPage() bool {
	if s.Page >= len(s.Semesters)-1 {
		return false
	}
	s.Page++
	return true
}

// Reset clears the whole state back to a fresh idle one, report included.
func (s *State) Reset() {
	*s = State{Stage: StageIdle}
}

// EndFlow returns the dialogue to idle while keeping the loaded report
// browsable.
func (s *State) EndFlow() {
	s.Stage = StageIdle
	s.Campus = ""
	s.PendingAnswer = 0
	s.ChallengeMessageID = 0
}
