// Package billing содержит календарную арифметику для дня списания подписки.
//
// День списания хранится как число месяца 1..31. Если в конкретном месяце
// такого числа нет (например, 31 февраля), датой списания считается последний
// день месяца — это не ошибка данных.
package billing

import "time"

// DaysIn возвращает количество дней в месяце.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ResolveDate возвращает дату списания в заданном месяце: billingDay,
// прижатый к последнему дню месяца, если месяц короче.
func ResolveDate(year int, month time.Month, billingDay int) time.Time {
	day := billingDay
	if max := DaysIn(year, month); day > max {
		day = max
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// NextDate возвращает ближайшую дату списания строго после from.
func NextDate(from time.Time, billingDay int) time.Time {
	candidate := ResolveDate(from.Year(), from.Month(), billingDay)
	if candidate.After(from) {
		return candidate
	}
	// Месяц сдвигается номером, а не AddDate: прибавление месяца к 31-му
	// числу нормализуется мимо короткого месяца.
	return ResolveDate(from.Year(), from.Month()+1, billingDay)
}
