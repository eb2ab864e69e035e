package domain

// Status is the picking-list lifecycle state.
// Transitions only move forward: pending -> in_progress -> completed.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

type List struct {
	ID                 string `db:"id" json:"id"`
	Name               string `db:"name" json:"name"`
	Status             Status `db:"status" json:"status"`
	AssignedUser       string `db:"assigned_user" json:"assigned_user,omitempty"`
	StartedAt          string `db:"started_at" json:"started_at,omitempty"`
	AccumulatedSeconds int    `db:"accumulated_seconds" json:"accumulated_seconds"`
	CreatedAt          string `db:"created_at" json:"created_at"`
	UpdatedAt          string `db:"updated_at" json:"updated_at"`
}

// Item is one line of a List. Within a list items are addressed by
// Position; malformed source data can carry duplicate positions, and a
// position-keyed update then touches all of them.
type Item struct {
	ListID      string  `db:"list_id" json:"list_id,omitempty"`
	Position    int     `db:"pos" json:"pos"`
	Code        string  `db:"code" json:"code"`
	Description string  `db:"description" json:"description"`
	Quantity    float64 `db:"quantity" json:"quantity"`
	Completed   bool    `db:"completed" json:"completed"`
}

// ListSummary is a List augmented with its item count, as returned by
// the status-filtered listings.
type ListSummary struct {
	List
	ItemCount int `db:"item_count" json:"item_count"`
}

// ActiveList is an in-progress List together with its items ordered by
// position.
type ActiveList struct {
	List  List   `json:"list"`
	Items []Item `json:"items"`
}
