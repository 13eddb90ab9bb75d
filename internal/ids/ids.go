// Package ids generates the lexicographically sortable identifiers used as
// primary keys for merchants, menus, orders and everything persisted by id.
package ids

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// New returns a new ULID string. IDs generated within the same millisecond
// by this process are strictly increasing.
func New() string {
	return ulid.Make().String()
}

// Valid reports whether s parses as a ULID.
func Valid(s string) bool {
	_, err := ulid.ParseStrict(s)
	return err == nil
}

// Time returns the creation time encoded in id.
func Time(id string) (time.Time, error) {
	u, err := ulid.ParseStrict(id)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(u.Time()), nil
}
