package model

type SkillCategory struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Skill struct {
	ID         int64  `json:"id"`
	CategoryID int64  `json:"category_id"`
	Name       string `json:"name"`
	Level      int    `json:"level"`
}
