package domain

import "time"

// Task is a unit of work owned by exactly one account. OwnerID is set at
// creation and never changes afterwards.
type Task struct {
	ID          int64      `json:"id" bson:"_id"`
	OwnerID     int64      `json:"owner_id" bson:"owner_id"`
	Title       string     `json:"title" bson:"title"`
	Description string     `json:"description" bson:"description"`
	Completed   bool       `json:"completed" bson:"completed"`
	DueDate     *time.Time `json:"due_date,omitempty" bson:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" bson:"updated_at"`
}
