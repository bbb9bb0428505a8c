package app

import (
	"fmt"
	"time"

	"github.com/MarcoPoloResearchLab/lembrete/internal/calendar"
)

var (
	monthNames = [...]string{
		"janeiro", "fevereiro", "março", "abril", "maio", "junho",
		"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
	}
	weekdayLabels = [...]string{"Dom", "Seg", "Ter", "Qua", "Qui", "Sex", "Sab"}
)

// MonthView is a month grid annotated with notes and holidays.
type MonthView struct {
	Year     int       `json:"year"`
	Month    int       `json:"month"`
	Title    string    `json:"title"`
	Weekdays []string  `json:"weekdays"`
	Cells    []DayCell `json:"cells"`
}

// DayCell is one rendered grid slot. Empty cells carry no date.
type DayCell struct {
	Empty   bool   `json:"empty"`
	Date    string `json:"date,omitempty"`
	Day     int    `json:"day,omitempty"`
	HasNote bool   `json:"has_note"`
	Holiday string `json:"holiday,omitempty"`
}

// EditorState mirrors the note editor: at most one day is open at a time.
type EditorState struct {
	Open  bool   `json:"open"`
	Date  string `json:"date,omitempty"`
	Draft string `json:"draft"`
}

// MonthTitle renders "março 2024".
func MonthTitle(month calendar.Date) string {
	return fmt.Sprintf("%s %d", monthNames[month.Month()-1], month.Year())
}

// WeekdayLabels returns the short pt-BR weekday headers starting at weekStart.
func WeekdayLabels(weekStart time.Weekday) []string {
	order := calendar.WeekdayOrder(weekStart)
	labels := make([]string, 0, len(order))
	for _, weekday := range order {
		labels = append(labels, weekdayLabels[weekday])
	}
	return labels
}
