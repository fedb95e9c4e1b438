// Package database defines the storage types and interfaces shared by the
// attendance core, its PostgreSQL implementation and the test mocks.
package database

import "time"

// AttendanceSession is one marking event for a (date, subject) pair. Every
// marking call creates exactly one session row, even when no face matched.
type AttendanceSession struct {
	ID         int64     `json:"id"`
	Date       string    `json:"date"` // YYYY-MM-DD
	Subject    string    `json:"subject"`
	MarkedBy   string    `json:"marked_by"`
	TotalMarks int       `json:"total_marks"`
	CreatedAt  time.Time `json:"created_at"`
}

// AttendanceRecord is one presence row. The (date, subject, identity) tuple
// is unique; rows are never mutated or deleted in normal operation.
type AttendanceRecord struct {
	ID        int64     `json:"id"`
	Date      string    `json:"date"`
	Subject   string    `json:"subject"`
	Identity  string    `json:"identity"`
	Marks     int       `json:"marks"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Student is the display metadata for one enrolled identity key.
type Student struct {
	ID         int64  `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	RollNumber string `json:"roll_number"`
	Department string `json:"department"`
	Semester   int    `json:"semester"`
}

// RecordFilter narrows attendance record listings. Empty fields match
// everything; From/To bound the date range inclusively.
type RecordFilter struct {
	Subject  string
	Identity string
	From     string
	To       string
}

// StatusPresent is the only status written by the recorder today; absence
// is represented by the lack of a row.
const StatusPresent = "present"
