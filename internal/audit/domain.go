package audit

import "time"

// Entry is one recorded admin action.
type Entry struct {
	ID         int64     `json:"id"`
	ActorID    int64     `json:"actor_id"`
	ActorName  string    `json:"actor_name"`
	Action     string    `json:"action"`
	Entity     string    `json:"entity"`
	Detail     string    `json:"detail"`
	RecordedAt time.Time `json:"recorded_at"`
}
