package resume

import (
	"regexp"
	"strings"

	"github.com/fyerfyer/resume-assistant/internal/vectordb"
)

// namePattern 匹配两个连续首字母大写的单词，作为候选人名
// 这是基于大小写的启发式规则，对任何大写短语（比如职位名）都可能误判，
// 调用方只能把结果当作展示层的相关性提示使用
var namePattern = regexp.MustCompile(`\b([A-Z][a-z]+)\s+([A-Z][a-z]+)\b`)

// ExtractName 从自由文本问题中提取可能的候选人姓名
// 未匹配到时返回空字符串
func ExtractName(query string) string {
	match := namePattern.FindStringSubmatch(query)
	if match == nil {
		return ""
	}
	return match[1] + " " + match[2]
}

// FilterSources 根据问题中提到的人名收窄来源文档列表
// 规则：
//  1. 提取不到人名时原样返回；
//  2. 文件名（不区分大小写）包含人名任一分量的文档保留；
//  3. 收窄后为空时原样返回，绝不静默丢光所有来源
//
// 只用于展示层的来源归属，不影响发送给大模型的上下文
func FilterSources(query string, docs []vectordb.Document) []vectordb.Document {
	name := ExtractName(query)
	if name == "" {
		return docs
	}

	parts := strings.Fields(strings.ToLower(name))

	var filtered []vectordb.Document
	for _, doc := range docs {
		filenameLower := strings.ToLower(doc.FileName)
		for _, part := range parts {
			if strings.Contains(filenameLower, part) {
				filtered = append(filtered, doc)
				break
			}
		}
	}

	if len(filtered) == 0 {
		return docs
	}
	return filtered
}
