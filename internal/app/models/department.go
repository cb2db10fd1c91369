package models

import "time"

// Department is the top of the academic hierarchy
type Department struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Code      string    `json:"code" db:"code"`
	HeadID    *int64    `json:"headId,omitempty" db:"head_id"`
	Head      *User     `json:"head,omitempty"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
