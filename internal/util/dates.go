package util

import "time"

// SameDay 按日历天比较（年/月/日），不按时长差
func SameDay(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func IsToday(t time.Time) bool {
	return SameDay(t, time.Now())
}

func IsYesterday(t time.Time) bool {
	return SameDay(t, time.Now().AddDate(0, 0, -1))
}
