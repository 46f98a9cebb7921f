// Package repository contains the MySQL data access layer.  Sentinel errors
// defined here let handlers and services tell "missing" apart from
// "broken" without inspecting driver errors.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

var (
	ErrCourseNotFound   = errors.New("course not found")
	ErrBaseProductUnset = errors.New("base product not set")
	ErrRuleNotFound     = errors.New("price rule not found")
	ErrSeasonNotFound   = errors.New("season not found")
	ErrTimeBandNotFound = errors.New("time band not found")
	ErrBookingNotFound  = errors.New("booking not found")
)

// ErrConflict is returned when a write violates a unique key, such as a
// duplicate course name or a reused idempotency key.  Handlers should
// translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrTokenInvalid is returned for refresh tokens that are unknown, revoked
// or expired.
var ErrTokenInvalid = errors.New("refresh token invalid")

// mysqlCode reports whether err is the MySQL server error number code.
// Errors that lost their type on the way up are matched by text.
func mysqlCode(err error, code uint16, text string) bool {
	if err == nil {
		return false
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == code
	}
	return strings.Contains(err.Error(), text)
}

// isDuplicate reports whether err is a duplicate-key error (1062).
func isDuplicate(err error) bool { return mysqlCode(err, 1062, "1062") }

// isForeignKey reports whether err is a foreign key failure (1452), which
// happens when a child row names a course that does not exist.
func isForeignKey(err error) bool { return mysqlCode(err, 1452, "1452") }
