package domain

// DateFormat is the calendar-date layout used throughout the API.
const DateFormat = "2006-01-02"

// LogEntry represents one recorded performance of an exercise
type LogEntry struct {
	ID       string  `json:"id"`
	Exercise string  `json:"exercise"`
	Weight   float64 `json:"weight"`
	Reps     int     `json:"reps"`
	Sets     int     `json:"sets"`
}

// Session groups all log entries recorded on one calendar date
type Session struct {
	ID        string     `json:"id"`
	Date      string     `json:"date"`
	Exercises []LogEntry `json:"exercises"`
}

// EntryInput is a fully validated create payload
type EntryInput struct {
	Date     string
	Exercise string
	Weight   float64
	Reps     int
	Sets     int
}

// EntryPatch is a validated partial update. Nil fields are left
// untouched; Date is immutable after creation and cannot be patched.
type EntryPatch struct {
	Exercise *string
	Weight   *float64
	Reps     *int
	Sets     *int
}
