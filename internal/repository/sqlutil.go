package repository

import (
	"strings"
	"time"
)

// maxInList caps the number of placeholders of one IN (...) list.
const maxInList = 500

// placeholders returns "?,?,?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// inFilter renders " AND column IN (?,…)" for a non-empty id list and
// appends the ids to args. An empty list means no filter.
func inFilter[T any](column string, ids []T, args []any) (string, []any) {
	if len(ids) == 0 {
		return "", args
	}
	for _, id := range ids {
		args = append(args, id)
	}
	return " AND " + column + " IN (" + placeholders(len(ids)) + ")", args
}

// chunks splits ids into slices of at most size elements.
func chunks[T any](ids []T, size int) [][]T {
	var out [][]T
	for len(ids) > size {
		out = append(out, ids[:size])
		ids = ids[size:]
	}
	if len(ids) > 0 {
		out = append(out, ids)
	}
	return out
}

// dayAfter returns the date following a "2006-01-02" date, used as the
// exclusive upper bound of DATETIME range filters.
func dayAfter(date string) string {
	t, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return date
	}
	return t.AddDate(0, 0, 1).Format(time.DateOnly)
}
