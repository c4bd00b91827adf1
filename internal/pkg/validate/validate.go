package validate

import "strings"

func Required(value string) bool {
	return strings.TrimSpace(value) != ""
}

func PositiveID(id int64) bool {
	return id > 0
}

// SkillLevel checks the 0 to 100 proficiency scale.
func SkillLevel(level int) bool {
	return level >= 0 && level <= 100
}
