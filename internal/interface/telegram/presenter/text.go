package presenter

import (
	"fmt"

	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/application/query"
)

// ReportPage renders one semester block with the page footer. An
// out-of-range cursor is clamped rather than trusted.
func ReportPage(semesters []string, page int) string {
	if len(semesters) == 0 {
		return ""
	}
	if page < 0 {
		page = 0
	}
	if page >= len(semesters) {
		page = len(semesters) - 1
	}
	return fmt.Sprintf("%s\n\n📄 Page %d of %d", semesters[page], page+1, len(semesters))
}

// ProfileText renders the decrypted registration data.
func ProfileText(view *query.ProfileView) string {
	return fmt.Sprintf(
		"👤 Your Profile\n\n"+
			"🆔 Student ID: %s\n"+
			"📛 Name: %s\n"+
			"🏫 Campus: %s\n"+
			"🗓 Registered: %s\n"+
			"💬 Telegram ID: %d",
		view.StudentID,
		view.DisplayName,
		view.Campus,
		view.RegisteredAt,
		view.TelegramID,
	)
}
