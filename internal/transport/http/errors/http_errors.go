package errors

import (
	"encoding/json"
	"net/http"
)

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// InUseError reports a delete blocked by dependents, with the dependent
// counts the client needs to explain the refusal.
type InUseError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	ThreadsCount int64  `json:"threads_count,omitempty"`
	SkillsCount  int64  `json:"skills_count,omitempty"`
}

func Write(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
