package utils

import (
	"fmt"
	"sort"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"frost/builder/models"
)

// SortPosts orders posts newest first, with a title tiebreak for
// posts published the same instant.
func SortPosts(posts []models.PostMetadata) {
	sort.Slice(posts, func(i, j int) bool {
		if posts[i].DateObj.Equal(posts[j].DateObj) {
			return posts[i].Title > posts[j].Title
		}
		return posts[i].DateObj.After(posts[j].DateObj)
	})
}

// TitleCase renders a tag or heading for display.
func TitleCase(s string) string {
	return cases.Title(language.English).String(s)
}

func GetString(m map[string]interface{}, k string) string {
	if v, ok := m[k]; ok {
		return fmt.Sprintf("%v", v)
	}
	return ""
}

func GetSlice(m map[string]interface{}, k string) []string {
	var res []string
	if v, ok := m[k]; ok {
		if l, ok := v.([]interface{}); ok {
			for _, i := range l {
				res = append(res, fmt.Sprintf("%v", i))
			}
		}
	}
	return res
}

func GetBool(m map[string]interface{}, k string) bool {
	if v, ok := m[k]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return false
}
