package model

import "time"

// Season is a labelled date range on a course.  Rules may reference it via
// SeasonID; the label carries no pricing behavior of its own.
type Season struct {
	ID        string    `json:"id"`        // seasons.id
	CourseID  string    `json:"courseId"`  // seasons.course_id
	Name      string    `json:"name"`      // seasons.name
	StartDate time.Time `json:"startDate"` // seasons.start_date
	EndDate   time.Time `json:"endDate"`   // seasons.end_date
}

// TimeBand is a labelled time-of-day window ("HH:MM") on a course, e.g.
// morning or twilight.
type TimeBand struct {
	ID        string `json:"id"`        // time_bands.id
	CourseID  string `json:"courseId"`  // time_bands.course_id
	Name      string `json:"name"`      // time_bands.name
	StartTime string `json:"startTime"` // time_bands.start_time
	EndTime   string `json:"endTime"`   // time_bands.end_time
}
