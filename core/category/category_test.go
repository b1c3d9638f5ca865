package category

import (
	"testing"

	"github.com/huangsam/sprintboard/schema"
	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"FE", "FE"},
		{"(FE)", "FE"},
		{" (be) ", "BE"},
		{"（テスト）", "テスト"},
		{"ﾃｽﾄ", "テスト"},
		{"(ﾃｽﾄ)", "テスト"},
		{"((FE))", "(FE)"},
		{"()", ""},
		{"(FE", "(FE"},
		{"Design", "DESIGN"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.raw))
		})
	}
}

func TestBucket(t *testing.T) {
	assert.Equal(t, schema.CategoryFE, Bucket("fe"))
	assert.Equal(t, schema.CategoryBE, Bucket("(BE)"))
	assert.Equal(t, schema.CategoryTest, Bucket("ﾃｽﾄ"))
	assert.Equal(t, schema.CategoryOther, Bucket("Infra"))
	assert.Equal(t, schema.CategoryOther, Bucket(""))
}

func TestInferRole(t *testing.T) {
	tests := []struct {
		name       string
		categories []string
		want       schema.Role
	}{
		{"no categories", nil, schema.RoleFE},
		{"single BE", []string{"BE"}, schema.RoleBE},
		{"most frequent wins", []string{"FE", "(BE)", "be"}, schema.RoleBE},
		{"tie goes to first seen", []string{"ﾃｽﾄ", "FE"}, schema.RoleTest},
		{"TEST counts as test", []string{"test"}, schema.RoleTest},
		{"substring frontend", []string{"Frontend-Web"}, schema.RoleFE},
		{"substring backend japanese", []string{"バックエンド"}, schema.RoleBE},
		{"substring qa test", []string{"QA Testing"}, schema.RoleTest},
		{"unknown falls back to FE", []string{"Design"}, schema.RoleFE},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferRole(tt.categories))
		})
	}
}
