package holidays

import (
	"sort"
	"time"

	"github.com/MarcoPoloResearchLab/lembrete/internal/calendar"
)

// Holiday is a named calendar day.
type Holiday struct {
	Date calendar.DateKey `json:"date"`
	Name string           `json:"name"`
}

// Table is an ordered, read-only list of holidays.
type Table []Holiday

// Find scans the table for an exact date key match.
func (t Table) Find(key calendar.DateKey) (Holiday, bool) {
	for _, holiday := range t {
		if holiday.Date == key {
			return holiday, true
		}
	}
	return Holiday{}, false
}

// ForYears returns the Brazilian national holidays for every year in
// [fromYear, toYear], in date order.
func ForYears(fromYear, toYear int) Table {
	if toYear < fromYear {
		return Table{}
	}
	table := make(Table, 0, (toYear-fromYear+1)*12)
	for year := fromYear; year <= toYear; year++ {
		table = append(table, forYear(year)...)
	}
	return table
}

type datedHoliday struct {
	date calendar.Date
	name string
}

func forYear(year int) Table {
	easter := easterSunday(year)
	entries := []datedHoliday{
		{date: calendar.NewDate(year, time.January, 1), name: "Confraternização Universal"},
		{date: easter.AddDays(-48), name: "Carnaval"},
		{date: easter.AddDays(-47), name: "Carnaval"},
		{date: easter.AddDays(-2), name: "Sexta-feira Santa"},
		{date: easter, name: "Páscoa"},
		{date: calendar.NewDate(year, time.April, 21), name: "Tiradentes"},
		{date: calendar.NewDate(year, time.May, 1), name: "Dia do Trabalho"},
		{date: easter.AddDays(60), name: "Corpus Christi"},
		{date: calendar.NewDate(year, time.September, 7), name: "Independência do Brasil"},
		{date: calendar.NewDate(year, time.October, 12), name: "Nossa Senhora Aparecida"},
		{date: calendar.NewDate(year, time.November, 2), name: "Finados"},
		{date: calendar.NewDate(year, time.November, 15), name: "Proclamação da República"},
		{date: calendar.NewDate(year, time.December, 25), name: "Natal"},
	}
	if year >= 2024 {
		entries = append(entries, datedHoliday{date: calendar.NewDate(year, time.November, 20), name: "Dia da Consciência Negra"})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].date.Before(entries[j].date)
	})

	table := make(Table, 0, len(entries))
	for _, entry := range entries {
		table = append(table, Holiday{Date: entry.date.Key(), Name: entry.name})
	}
	return table
}

// easterSunday uses the Meeus/Jones/Butcher algorithm.
func easterSunday(year int) calendar.Date {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := ((h + l - 7*m + 114) % 31) + 1
	return calendar.NewDate(year, time.Month(month), day)
}
