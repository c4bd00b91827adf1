package dto

type SkillCategoryResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type SkillCategoriesListResponse struct {
	Items []SkillCategoryResponse `json:"items"`
}

type SkillCategoryCreateRequest struct {
	Name string `json:"name"`
}

type SkillResponse struct {
	ID         int64  `json:"id"`
	CategoryID int64  `json:"category_id"`
	Name       string `json:"name"`
	Level      int    `json:"level"`
}

type SkillsListResponse struct {
	Items []SkillResponse `json:"items"`
}

type SkillCreateRequest struct {
	CategoryID int64  `json:"category_id"`
	Name       string `json:"name"`
	Level      int    `json:"level"`
}
