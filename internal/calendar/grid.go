package calendar

import "time"

// DaysPerWeek is the fixed column count of a month grid.
const DaysPerWeek = 7

// DaySlot is one cell of a month grid: either leading padding or a concrete day.
type DaySlot struct {
	date   Date
	filled bool
}

// EmptySlot returns a padding slot.
func EmptySlot() DaySlot {
	return DaySlot{}
}

// DaySlotFor returns a slot holding date.
func DaySlotFor(date Date) DaySlot {
	return DaySlot{date: date, filled: true}
}

// IsEmpty reports whether the slot is padding.
func (s DaySlot) IsEmpty() bool {
	return !s.filled
}

// Date returns the slot's day and whether the slot holds one.
func (s DaySlot) Date() (Date, bool) {
	return s.date, s.filled
}

// FirstOfMonth returns day 1 of the month containing reference.
func FirstOfMonth(reference Date) Date {
	return NewDate(reference.Year(), reference.Month(), 1)
}

// LastOfMonth returns the final day of the month containing reference.
func LastOfMonth(reference Date) Date {
	return NewDate(reference.Year(), reference.Month()+1, 0)
}

// DaysInMonth returns the number of days of the month containing reference.
func DaysInMonth(reference Date) int {
	return LastOfMonth(reference).Day()
}

// AddMonths moves from the month containing reference by n months and
// returns day 1 of the target month.
func AddMonths(reference Date, n int) Date {
	return NewDate(reference.Year(), reference.Month()+time.Month(n), 1)
}

// WeekdayIndex returns the column of weekday when weekStart occupies column 0.
func WeekdayIndex(weekday, weekStart time.Weekday) int {
	index := (int(weekday) - int(weekStart)) % DaysPerWeek
	if index < 0 {
		index += DaysPerWeek
	}
	return index
}

// LeadingEmptyCount returns the number of padding slots before day 1 of the
// month containing reference.
func LeadingEmptyCount(reference Date, weekStart time.Weekday) int {
	return WeekdayIndex(FirstOfMonth(reference).Weekday(), weekStart)
}

// BuildMonth lays out the month containing reference for a seven column
// grid. Slot i always sits in column i%7. The final row is left ragged.
func BuildMonth(reference Date, weekStart time.Weekday) []DaySlot {
	first := FirstOfMonth(reference)
	leading := LeadingEmptyCount(first, weekStart)
	days := DaysInMonth(first)

	slots := make([]DaySlot, 0, leading+days)
	for i := 0; i < leading; i++ {
		slots = append(slots, EmptySlot())
	}
	for day := first; day.Month() == first.Month(); day = day.AddDays(1) {
		slots = append(slots, DaySlotFor(day))
	}
	return slots
}

// WeekdayOrder lists the seven weekdays starting at weekStart.
func WeekdayOrder(weekStart time.Weekday) []time.Weekday {
	order := make([]time.Weekday, 0, DaysPerWeek)
	for i := 0; i < DaysPerWeek; i++ {
		order = append(order, time.Weekday((int(weekStart)+i)%DaysPerWeek))
	}
	return order
}
