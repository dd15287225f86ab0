package resume

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTagRole_ContentMatch(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		filename string
		expected Role
	}{
		{
			name:     "software engineer in content",
			text:     "Alice Johnson. Senior software engineer with Go experience.",
			filename: "resume1.pdf",
			expected: RoleSoftwareEngineer,
		},
		{
			name:     "data scientist in content",
			text:     "Bob Williams. Data scientist focused on statistical modeling.",
			filename: "resume2.pdf",
			expected: RoleDataScientist,
		},
		{
			name:     "keyword variant matches",
			text:     "Worked as a site reliability engineer for three years.",
			filename: "resume3.pdf",
			expected: RoleDevOpsEngineer,
		},
		{
			name:     "case insensitive",
			text:     "CAROL DAVIS - UX DESIGNER",
			filename: "resume4.pdf",
			expected: RoleUIUXDesigner,
		},
		{
			name:     "no keywords anywhere",
			text:     "Carpenter with twenty years of woodworking experience.",
			filename: "resume5.pdf",
			expected: RoleUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TagRole(tt.text, tt.filename))
		})
	}
}

func TestTagRole_FilenameMatch(t *testing.T) {
	// 内容没有关键词时文件名也能命中
	role := TagRole("Seasoned professional with strong communication.", "resume - network engineer.pdf")
	assert.Equal(t, RoleNetworkEngineer, role)
}

func TestTagRole_PriorityOrder(t *testing.T) {
	// 多个职位的关键词同时出现时，优先级靠前的胜出
	text := "Started as a data scientist, now working as an AI engineer building ML systems."
	assert.Equal(t, RoleAIEngineer, TagRole(text, "resume.pdf"))

	// 同一份文本无论关键词出现顺序如何，结果一致
	reversed := "An AI engineer who previously worked as a data scientist."
	assert.Equal(t, RoleAIEngineer, TagRole(reversed, "resume.pdf"))
}

func TestTagRole_Deterministic(t *testing.T) {
	text := "Project manager and business analyst with agile experience."
	first := TagRole(text, "resume.pdf")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, TagRole(text, "resume.pdf"), "Tagging must be deterministic")
	}
	assert.Equal(t, RoleProjectManager, first, "Higher-priority role should win")
}

func TestParseRole(t *testing.T) {
	role, ok := ParseRole("Software Engineer")
	assert.True(t, ok)
	assert.Equal(t, RoleSoftwareEngineer, role)

	// 大小写不敏感
	role, ok = ParseRole("data scientist")
	assert.True(t, ok)
	assert.Equal(t, RoleDataScientist, role)

	role, ok = ParseRole("Unknown Role")
	assert.True(t, ok)
	assert.Equal(t, RoleUnknown, role)

	role, ok = ParseRole("astronaut")
	assert.False(t, ok)
	assert.Equal(t, RoleUnknown, role)
}

func TestRoleIsKnown(t *testing.T) {
	assert.True(t, RoleSoftwareEngineer.IsKnown())
	assert.False(t, RoleUnknown.IsKnown())
	assert.False(t, Role("").IsKnown())
}

func TestAllRoles(t *testing.T) {
	roles := AllRoles()
	assert.Len(t, roles, 9)
	assert.NotContains(t, roles, RoleUnknown, "Fallback label is not an assignable role")
	assert.Equal(t, RoleAIEngineer, roles[0], "Order must follow matching priority")
}
