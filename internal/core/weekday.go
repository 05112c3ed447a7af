package core

import "time"

// weekdayLabels maps calendar weekdays to their Russian labels. Labels are
// captured on the entry at insert time and never recomputed afterwards.
var weekdayLabels = map[time.Weekday]string{
	time.Monday:    "Понедельник",
	time.Tuesday:   "Вторник",
	time.Wednesday: "Среда",
	time.Thursday:  "Четверг",
	time.Friday:    "Пятница",
	time.Saturday:  "Суббота",
	time.Sunday:    "Воскресенье",
}

// WeekdayLabel returns the localized weekday label for the given date.
func WeekdayLabel(d Date) string {
	return weekdayLabels[d.Weekday()]
}
