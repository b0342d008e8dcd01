package model

// EventTime is a timed boundary of a calendar event.
type EventTime struct {
	DateTime string `json:"date_time"`
	TimeZone string `json:"time_zone"`
}

// Reminder is a single event reminder override.
type Reminder struct {
	Method  string `json:"method"`
	Minutes int    `json:"minutes"`
}

// CalendarEvent is a fully-formed event ready for the calendar service.
type CalendarEvent struct {
	Title       string     `json:"title"`
	Location    string     `json:"location"`
	Description string     `json:"description"`
	Start       EventTime  `json:"start"`
	End         EventTime  `json:"end"`
	Attendees   []string   `json:"attendees"`
	Reminders   []Reminder `json:"reminders"`
}
