package dto

type LanguageResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type LanguagesListResponse struct {
	Items []LanguageResponse `json:"items"`
}

type LanguageCreateRequest struct {
	Name string `json:"name"`
}
