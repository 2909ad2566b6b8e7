package repository

import "strings"

// IsDuplicateKey reports whether err is a uniqueness-constraint rejection.
// Postgres reports "duplicate key value violates unique constraint", SQLite
// "UNIQUE constraint failed". Callers racing on a partial unique index treat
// this as "the row already exists" and re-fetch the winner.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint")
}
