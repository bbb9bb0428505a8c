package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/MarcoPoloResearchLab/lembrete/internal/app"
	"github.com/MarcoPoloResearchLab/lembrete/internal/calendar"
)

const cellWidth = 4

// renderMonth prints the grid seven cells per row. Days with a note carry a
// trailing "*"; holidays are listed under the grid.
func renderMonth(w io.Writer, view app.MonthView) error {
	var builder strings.Builder

	gridWidth := cellWidth * calendar.DaysPerWeek
	padding := (gridWidth - len([]rune(view.Title))) / 2
	if padding < 0 {
		padding = 0
	}
	builder.WriteString(strings.Repeat(" ", padding))
	builder.WriteString(view.Title)
	builder.WriteString("\n")

	for _, label := range view.Weekdays {
		fmt.Fprintf(&builder, "%-*s", cellWidth, label)
	}
	builder.WriteString("\n")

	for index, cell := range view.Cells {
		switch {
		case cell.Empty:
			builder.WriteString(strings.Repeat(" ", cellWidth))
		case cell.HasNote:
			fmt.Fprintf(&builder, "%2d* ", cell.Day)
		default:
			fmt.Fprintf(&builder, "%2d  ", cell.Day)
		}
		if (index+1)%calendar.DaysPerWeek == 0 {
			builder.WriteString("\n")
		}
	}
	if len(view.Cells)%calendar.DaysPerWeek != 0 {
		builder.WriteString("\n")
	}

	for _, cell := range view.Cells {
		if cell.Holiday != "" {
			fmt.Fprintf(&builder, "%s  %s\n", cell.Date, cell.Holiday)
		}
	}

	_, err := io.WriteString(w, builder.String())
	return err
}
