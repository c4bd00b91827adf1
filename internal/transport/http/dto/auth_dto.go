package dto

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	ExpiresInSec int64  `json:"expires_in_sec"`
}

type LogoutResponse struct {
	OK bool `json:"ok"`
}
