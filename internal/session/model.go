package session

import "time"

// Session statuses.
const (
	StatusUpcoming  = "upcoming"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Session is a booked engagement. Cost is fixed at creation and never
// changes afterwards.
type Session struct {
	ID            int64     `db:"id" json:"id"`
	StudentID     int64     `db:"student_id" json:"student_id"`
	MentorID      int64     `db:"mentor_id" json:"mentor_id"`
	Subject       string    `db:"subject" json:"subject"`
	DurationHours float64   `db:"duration_hours" json:"duration_hours"`
	ScheduledAt   time.Time `db:"scheduled_at" json:"scheduled_at"`
	Status        string    `db:"status" json:"status"`
	Cost          int64     `db:"cost" json:"cost"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

type SessionWithNames struct {
	Session
	StudentName string `db:"student_name" json:"student_name"`
	MentorName  string `db:"mentor_name" json:"mentor_name"`
}

type BookRequest struct {
	MentorID      int64   `json:"mentor_id" binding:"required"`
	Subject       string  `json:"subject"`
	DurationHours float64 `json:"duration_hours" binding:"required,gt=0"`
	ScheduledAt   string  `json:"scheduled_at" binding:"required"` // RFC3339
}

type BookResponse struct {
	Session          *Session `json:"session"`
	RemainingBalance int64    `json:"remaining_balance"`
}
