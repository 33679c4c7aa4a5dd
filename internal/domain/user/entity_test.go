package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStudentID_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		id    StudentID
		valid bool
	}{
		{"canonical id", "NSR/2214/13", true},
		{"lowercase is normalized", "nsr/2214/13", true},
		{"mixed case", "Nsr/2214/13", true},
		{"trailing characters are tolerated", "NSR/2214/13extra", true},
		{"trailing slash segment", "NSR/2214/13/99", true},
		{"surrounding whitespace", "  NSR/2214/13  ", true},
		{"empty", "", false},
		{"too few prefix letters", "NS/2214/13", false},
		{"digits in prefix", "N5R/2214/13", false},
		{"three-digit year block", "NSR/221/13", false},
		{"one-digit suffix", "NSR/2214/1", false},
		{"missing slashes", "NSR221413", false},
		{"leading garbage", "xNSR/2214/13", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.id.IsValid())
		})
	}
}

func TestStudentID_Normalized(t *testing.T) {
	assert.Equal(t, StudentID("NSR/2214/13"), StudentID(" nsr/2214/13 ").Normalized())
}

func TestTelegramID_IsValid(t *testing.T) {
	assert.True(t, TelegramID(123456789).IsValid())
	assert.False(t, TelegramID(0).IsValid())
	assert.False(t, TelegramID(-5).IsValid())
}

func TestCampus_IsValid(t *testing.T) {
	for _, c := range AllCampuses() {
		assert.True(t, c.IsValid(), c)
	}
	assert.False(t, Campus("Addis Ababa").IsValid())
	assert.False(t, Campus("").IsValid())
}
