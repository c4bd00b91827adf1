package model

type Language struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
