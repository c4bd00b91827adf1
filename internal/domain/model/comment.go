package model

import "time"

type Comment struct {
	ID        int64     `json:"id"`
	ThreadID  int64     `json:"thread_id"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}
