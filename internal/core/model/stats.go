package model

// DayCount is the number of completed work sessions on one calendar day.
type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// Stats summarizes completed work sessions.
type Stats struct {
	Today                 int        `json:"today"`
	Total                 int        `json:"total"`
	LastDays              []DayCount `json:"lastDays"`
	DailyPomodoros        int        `json:"dailyPomodoros"`
	CompletedWorkSessions int        `json:"completedWorkSessions"`
	TotalWorkSessions     int        `json:"totalWorkSessions"`
}
