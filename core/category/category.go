// Package category canonicalizes free-form category labels.
package category

import (
	"regexp"
	"strings"

	"github.com/huangsam/sprintboard/schema"
)

// halfWidthKana widens the half-width katakana that spell テスト.
var halfWidthKana = strings.NewReplacer("ﾃ", "テ", "ｽ", "ス", "ﾄ", "ト")

// wrapping parenthesis pairs, ASCII and full-width.
var parenPairs = [][2]string{{"(", ")"}, {"（", "）"}}

var (
	fePattern   = regexp.MustCompile(`(?i)FE|フロント|FRONTEND`)
	bePattern   = regexp.MustCompile(`(?i)BE|バック|BACKEND`)
	testPattern = regexp.MustCompile(`(?i)テスト|TEST`)
)

// Normalize trims, strips one pair of wrapping parentheses, widens ﾃｽﾄ and uppercases latin letters.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	for _, p := range parenPairs {
		if len(s) >= len(p[0])+len(p[1]) && strings.HasPrefix(s, p[0]) && strings.HasSuffix(s, p[1]) {
			s = strings.TrimSpace(s[len(p[0]) : len(s)-len(p[1])])
			break
		}
	}
	s = halfWidthKana.Replace(s)
	return strings.ToUpper(s)
}

// Bucket returns the aggregate bucket of a raw category.
func Bucket(raw string) schema.Category {
	switch c := schema.Category(Normalize(raw)); c {
	case schema.CategoryFE, schema.CategoryBE, schema.CategoryTest:
		return c
	default:
		return schema.CategoryOther
	}
}

// InferRole guesses a member role from the categories of their features.
// The most frequent normalized category decides; ties go to the first seen.
// Exact matches are checked before substring matches, and FE is the fallback.
func InferRole(categories []string) schema.Role {
	counts := make(map[string]int)
	var order []string
	for _, raw := range categories {
		c := Normalize(raw)
		if c == "" {
			continue
		}
		if counts[c] == 0 {
			order = append(order, c)
		}
		counts[c]++
	}

	top := ""
	for _, c := range order {
		if top == "" || counts[c] > counts[top] {
			top = c
		}
	}

	switch top {
	case "FE":
		return schema.RoleFE
	case "BE":
		return schema.RoleBE
	case "テスト", "TEST":
		return schema.RoleTest
	}
	switch {
	case fePattern.MatchString(top):
		return schema.RoleFE
	case bePattern.MatchString(top):
		return schema.RoleBE
	case testPattern.MatchString(top):
		return schema.RoleTest
	}
	return schema.RoleFE
}
