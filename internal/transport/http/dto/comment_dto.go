package dto

import "time"

type CommentResponse struct {
	ID        int64     `json:"id"`
	ThreadID  int64     `json:"thread_id"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type CommentsListResponse struct {
	Items []CommentResponse `json:"items"`
}

type CommentCreateRequest struct {
	Author string `json:"author"`
	Body   string `json:"body"`
}
