package conversation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/domain/user"
)

func TestState_Pagination(t *testing.T) {
	s := NewState()
	s.SetReport([]string{"sem1", "sem2", "sem3"})

	assert.Equal(t, 0, s.Page)
	assert.Equal(t, 3, s.TotalPages())

	// Prev at the first page saturates.
	assert.False(t, s.PrevPage())
	assert.Equal(t, 0, s.Page)

	assert.True(t, s.NextPage())
	assert.True(t, s.NextPage())
	assert.Equal(t, 2, s.Page)

	// Next past the last page is a no-op.
	assert.False(t, s.NextPage())
	assert.Equal(t, 2, s.Page)

	cur, ok := s.CurrentSemester()
	require.True(t, ok)
	assert.Equal(t, "sem3", cur)

	assert.True(t, s.PrevPage())
	assert.Equal(t, 1, s.Page)
}

func TestState_CurrentSemester_Empty(t *testing.T) {
	s := NewState()
	_, ok := s.CurrentSemester()
	assert.False(t, ok)
	assert.False(t, s.NextPage())
	assert.False(t, s.PrevPage())
	assert.Equal(t, 0, s.Page)
}

func TestState_SetReport_ResetsCursor(t *testing.T) {
	s := NewState()
	s.SetReport([]string{"a", "b", "c"})
	s.NextPage()
	s.NextPage()

	s.SetReport([]string{"x"})
	assert.Equal(t, 0, s.Page)
	assert.Equal(t, int64(0), s.ReportMessageID)
}

func TestState_ClampPage(t *testing.T) {
	tests := []struct {
		name      string
		semesters []string
		page      int
		want      int
	}{
		{"empty report", nil, 3, 0},
		{"negative cursor", []string{"a", "b"}, -1, 0},
		{"past the end", []string{"a", "b"}, 5, 1},
		{"in range", []string{"a", "b", "c"}, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &State{Stage: StageIdle, Semesters: tt.semesters, Page: tt.page}
			s.ClampPage()
			assert.Equal(t, tt.want, s.Page)

			// After clamping, rendering the current page is always safe.
			if len(tt.semesters) > 0 {
				_, ok := s.CurrentSemester()
				assert.True(t, ok)
			}
		})
	}
}

func TestState_EndFlow_KeepsReport(t *testing.T) {
	s := NewState()
	s.Stage = StageAwaitingDeletionAnswer
	s.PendingAnswer = 7
	s.Campus = "Main"
	s.SetReport([]string{"a", "b"})
	s.NextPage()
	s.ReportMessageID = 42

	s.EndFlow()

	assert.Equal(t, StageIdle, s.Stage)
	assert.Zero(t, s.PendingAnswer)
	assert.Empty(t, s.Campus)
	assert.Equal(t, []string{"a", "b"}, s.Semesters)
	assert.Equal(t, 1, s.Page)
	assert.Equal(t, int64(42), s.ReportMessageID)
}

func TestMemoryStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	id := user.TelegramID(1001)

	// Missing key yields a fresh idle state.
	st, err := store.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StageIdle, st.Stage)

	st.Stage = StageAwaitingStudentID
	st.Campus = "Durame"
	require.NoError(t, store.Save(ctx, id, st))

	// Mutating the saved pointer must not leak into the store.
	st.Campus = "changed"

	got, err := store.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StageAwaitingStudentID, got.Stage)
	assert.Equal(t, "Durame", got.Campus)

	require.NoError(t, store.Clear(ctx, id))
	got, err = store.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StageIdle, got.Stage)
}
