package domain

import "strings"

type Address struct {
	ID     int64
	UserID int64
	Label  string
	Text   string
}

func (a Address) Formatted() string {
	return strings.TrimSpace(a.Text)
}
