package model

import (
	"strings"
	"time"
)

type TaskStatus string

const (
	// StatusUrgent marks a task nobody has been assigned to yet.
	StatusUrgent    TaskStatus = "URGENT"
	StatusAssigned  TaskStatus = "ASSIGNED"
	StatusConfirmed TaskStatus = "CONFIRMED"
	StatusRejected  TaskStatus = "REJECTED"
	// StatusTentative means the cleaner proposed an alternative time.
	StatusTentative TaskStatus = "TENTATIVE"
	StatusCompleted TaskStatus = "COMPLETED"
)

func (s TaskStatus) Known() bool {
	switch s {
	case StatusUrgent, StatusAssigned, StatusConfirmed, StatusRejected, StatusTentative, StatusCompleted:
		return true
	}
	return false
}

// NeedsResponse reports whether the task is waiting on the cleaner to
// confirm/reject/propose.
func (s TaskStatus) NeedsResponse() bool {
	return s == StatusAssigned || s == StatusUrgent
}

// Cleaner is the actor. Fetched from the backend, never mutated by the
// client; login matches on phone + active.
type Cleaner struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Active bool   `json:"active"`
}

type Task struct {
	ID       string     `json:"id"`
	Property string     `json:"property"`
	Date     string     `json:"date"`
	Type     string     `json:"type"`
	Notes    string     `json:"notes,omitempty"`
	Status   TaskStatus `json:"status"`

	// Execution fields, present once a task has been worked on.
	StartTime *Timestamp `json:"start_time,omitempty"`
	EndTime   *Timestamp `json:"end_time,omitempty"`
	Comments  string     `json:"comments,omitempty"`
}

type CommentType string

const (
	CommentInitial      CommentType = "INITIAL"
	CommentConfirmation CommentType = "CONFIRMATION"
	CommentRejection    CommentType = "REJECTION"
	CommentProposal     CommentType = "PROPOSAL"
	CommentGeneral      CommentType = "GENERAL"
)

type Comment struct {
	ID        string      `json:"id"`
	TaskID    string      `json:"taskId"`
	AuthorID  string      `json:"userId"`
	Text      string      `json:"comment"`
	Type      CommentType `json:"comment_type"`
	Timestamp Timestamp   `json:"timestamp"`
}

type Product struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ProductUsage is one selected product with its quantity (currently always 1
// from the execution wizard).
type ProductUsage struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// TaskTiming is an entry/exit log row as returned by getTaskTimings.
type TaskTiming struct {
	TaskID    string    `json:"taskId"`
	UserID    string    `json:"userId"`
	Kind      string    `json:"kind,omitempty"`
	Timestamp Timestamp `json:"timestamp"`
}

// Timestamp wraps time.Time with lenient decoding. The backend is a scripted
// spreadsheet: timestamps arrive as RFC 3339 strings, sheet-style
// "YYYY-MM-DD HH:MM:SS", or bare dates depending on which script wrote them.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	// Unparseable timestamps decode to zero rather than failing the whole
	// payload; callers already tolerate missing times.
	t.Time = time.Time{}
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + t.UTC().Format(time.RFC3339) + `"`), nil
}

func At(tm time.Time) Timestamp { return Timestamp{Time: tm} }
