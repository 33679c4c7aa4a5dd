// Package presenter builds the keyboards and message text the bot shows.
// Handlers decide what happens; this package decides what it looks like.
package presenter

import (
	"fmt"

	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/domain/user"
	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/infrastructure/external/telegram"
)

// Main-menu button labels. These arrive back as plain message text, so the
// labels double as routing keys.
const (
	MenuGradeReport   = "Grade Report"
	MenuViewProfile   = "View Profile"
	MenuDeleteAccount = "Delete Account"
)

// Callback data values for inline keyboards.
const (
	CallbackAgree        = "consent:agree"
	CallbackDisagree     = "consent:disagree"
	CallbackCampusPrefix = "campus:"
	CallbackAnswerPrefix = "answer:"
	CallbackPagePrev     = "page:prev"
	CallbackPageNext     = "page:next"
)

// MainMenu returns the persistent reply keyboard shown to registered users.
func MainMenu() *telegram.ReplyKeyboardMarkup {
	return &telegram.ReplyKeyboardMarkup{
		Keyboard: [][]telegram.KeyboardButton{
			{{Text: MenuGradeReport}, {Text: MenuViewProfile}},
			{{Text: MenuDeleteAccount}},
		},
		ResizeKeyboard: true,
		IsPersistent:   true,
	}
}

// ConsentKeyboard returns the policy agree/disagree buttons.
func ConsentKeyboard() *telegram.InlineKeyboardMarkup {
	return &telegram.InlineKeyboardMarkup{
		InlineKeyboard: [][]telegram.InlineKeyboardButton{
			{
				{Text: "I AGREE ✅", CallbackData: CallbackAgree},
				{Text: "I DISAGREE ❌", CallbackData: CallbackDisagree},
			},
		},
	}
}

// CampusKeyboard returns one button per campus, one row each.
func CampusKeyboard(campuses []user.Campus) *telegram.InlineKeyboardMarkup {
	rows := make([][]telegram.InlineKeyboardButton, 0, len(campuses))
	for _, c := range campuses {
		rows = append(rows, []telegram.InlineKeyboardButton{
			{Text: c.String(), CallbackData: CallbackCampusPrefix + c.String()},
		})
	}
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// AnswerKeyboard returns the deletion-challenge answer buttons in the given
// display order.
func AnswerKeyboard(options []int) *telegram.InlineKeyboardMarkup {
	row := make([]telegram.InlineKeyboardButton, 0, len(options))
	for _, opt := range options {
		row = append(row, telegram.InlineKeyboardButton{
			Text:         fmt.Sprintf("%d", opt),
			CallbackData: fmt.Sprintf("%s%d", CallbackAnswerPrefix, opt),
		})
	}
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: [][]telegram.InlineKeyboardButton{row}}
}

// PagerKeyboard returns the report navigation buttons. Nil when there is a
// single page; each direction appears only when it can move.
func PagerKeyboard(page, total int) *telegram.InlineKeyboardMarkup {
	if total <= 1 {
		return nil
	}

	var row []telegram.InlineKeyboardButton
	if page > 0 {
		row = append(row, telegram.InlineKeyboardButton{Text: "⬅️ Previous", CallbackData: CallbackPagePrev})
	}
	if page < total-1 {
		row = append(row, telegram.InlineKeyboardButton{Text: "Next ➡️", CallbackData: CallbackPageNext})
	}
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: [][]telegram.InlineKeyboardButton{row}}
}
