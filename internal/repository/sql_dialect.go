package repository

import (
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// dbDialectName 获取数据库方言名称，默认按 sqlite 处理。
func dbDialectName(db *gorm.DB) string {
	if db == nil || db.Dialector == nil {
		return "sqlite"
	}
	name := strings.ToLower(strings.TrimSpace(db.Dialector.Name()))
	if name == "" {
		return "sqlite"
	}
	return name
}

// likeOperatorByDialect 获取模糊匹配操作符，postgres 下使用不区分大小写的 ILIKE。
func likeOperatorByDialect(dialect string) string {
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case "postgres", "postgresql":
		return "ILIKE"
	default:
		return "LIKE"
	}
}

// keywordLikeCondition 构建多列关键字模糊匹配条件，返回 SQL 与参数列表。
func keywordLikeCondition(db *gorm.DB, keyword string, columns ...string) (string, []interface{}) {
	trimmed := strings.TrimSpace(keyword)
	if trimmed == "" || len(columns) == 0 {
		return "", nil
	}
	operator := likeOperatorByDialect(dbDialectName(db))
	like := "%" + trimmed + "%"

	parts := make([]string, 0, len(columns))
	args := make([]interface{}, 0, len(columns))
	for _, column := range columns {
		name := strings.TrimSpace(column)
		if name == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %s ?", name, operator))
		args = append(args, like)
	}
	if len(parts) == 0 {
		return "", nil
	}
	return strings.Join(parts, " OR "), args
}

// jsonStringArrayContains 构建 JSON 字符串数组列包含指定元素的条件。
// 列存储格式为 JSON 数组（例如 ["a","b"]），按边界匹配避免误命中（如 "a" 命中 "aa"）。
func jsonStringArrayContains(column, value string) (string, []interface{}) {
	quoted, err := json.Marshal(value)
	if err != nil {
		return "", nil
	}
	element := string(quoted)
	exact := fmt.Sprintf("[%s]", element)
	prefix := fmt.Sprintf("[%s,%%", element)
	middle := fmt.Sprintf("%%,%s,%%", element)
	suffix := fmt.Sprintf("%%,%s]", element)
	condition := fmt.Sprintf("(%s = ? OR %s LIKE ? OR %s LIKE ? OR %s LIKE ?)", column, column, column, column)
	return condition, []interface{}{exact, prefix, middle, suffix}
}
