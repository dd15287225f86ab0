package resume

import "strings"

// Role 简历对应的职位类别标签
type Role string

// 职位枚举
// 注意：rolePriority中的顺序即匹配优先级，调整顺序会改变打标结果
const (
	RoleAIEngineer        Role = "AI Engineer"
	RoleGeomaticsEngineer Role = "Geomatics Engineer"
	RoleDataScientist     Role = "Data Scientist"
	RoleSoftwareEngineer  Role = "Software Engineer"
	RoleUIUXDesigner      Role = "UI/UX Designer"
	RoleProjectManager    Role = "Project Manager"
	RoleDevOpsEngineer    Role = "DevOps Engineer"
	RoleBusinessAnalyst   Role = "Business Analyst"
	RoleNetworkEngineer   Role = "Network Engineer"
	// RoleUnknown 没有任何关键词命中时的兜底标签
	RoleUnknown Role = "Unknown Role"
)

// String 实现Stringer接口
func (r Role) String() string {
	return string(r)
}

// IsKnown 判断是否为有效的职位标签（非兜底值）
func (r Role) IsKnown() bool {
	return r != RoleUnknown && r != ""
}

// rolePriority 固定的职位匹配优先级顺序
// 多个职位的关键词同时出现时，排在前面的职位胜出
var rolePriority = []Role{
	RoleAIEngineer,
	RoleGeomaticsEngineer,
	RoleDataScientist,
	RoleSoftwareEngineer,
	RoleUIUXDesigner,
	RoleProjectManager,
	RoleDevOpsEngineer,
	RoleBusinessAnalyst,
	RoleNetworkEngineer,
}

// roleKeywords 每个职位的关键词变体列表
// 匹配时统一转为小写，关键词本身必须保持小写
var roleKeywords = map[Role][]string{
	RoleAIEngineer: {
		"ai engineer", "artificial intelligence engineer",
		"machine learning engineer", "ml engineer",
	},
	RoleGeomaticsEngineer: {
		"geomatics engineer", "geomatics", "geospatial engineer", "geodetic engineer",
	},
	RoleDataScientist: {
		"data scientist", "data science", "analytics scientist", "data analyst",
	},
	RoleSoftwareEngineer: {
		"software engineer", "software developer", "programmer", "developer",
	},
	RoleUIUXDesigner: {
		"ui designer", "ux designer", "ui/ux", "user interface",
		"user experience", "product designer",
	},
	RoleProjectManager: {
		"project manager", "program manager", "product manager", "scrum master",
	},
	RoleDevOpsEngineer: {
		"devops", "devops engineer", "site reliability engineer", "sre",
	},
	RoleBusinessAnalyst: {
		"business analyst", "business analytics", "systems analyst",
	},
	RoleNetworkEngineer: {
		"network engineer", "network administrator", "network architect",
	},
}

// AllRoles 返回所有可识别的职位标签（按优先级顺序，不含RoleUnknown）
func AllRoles() []Role {
	roles := make([]Role, len(rolePriority))
	copy(roles, rolePriority)
	return roles
}

// ParseRole 将字符串解析为职位标签
// 无法识别时返回RoleUnknown和false
func ParseRole(s string) (Role, bool) {
	for _, role := range rolePriority {
		if strings.EqualFold(s, string(role)) {
			return role, true
		}
	}
	if strings.EqualFold(s, string(RoleUnknown)) {
		return RoleUnknown, true
	}
	return RoleUnknown, false
}

// TagRole 根据内容和文件名给文本打职位标签
// 纯函数：按固定优先级顺序逐个职位检查关键词，
// 内容或文件名任一命中即返回该职位，全部未命中返回RoleUnknown
func TagRole(text string, filename string) Role {
	contentLower := strings.ToLower(text)
	filenameLower := strings.ToLower(filename)

	for _, role := range rolePriority {
		for _, keyword := range roleKeywords[role] {
			if strings.Contains(contentLower, keyword) || strings.Contains(filenameLower, keyword) {
				return role
			}
		}
	}

	return RoleUnknown
}
