package repository

import (
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

// likeOperator 返回模糊匹配操作符（postgres 用 ILIKE 做大小写不敏感匹配）。
func likeOperator(db *gorm.DB) string {
	return likeOperatorByDialect(dbDialectName(db))
}

func likeOperatorByDialect(dialect string) string {
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case "postgres", "postgresql":
		return "ILIKE"
	default:
		return "LIKE"
	}
}

// dateBucketExpr 按统计周期生成日期分组表达式，兼容 sqlite 与 postgres。
// period 取 day/month/year，其他值按 day 处理。
func dateBucketExpr(db *gorm.DB, column, period string) string {
	return dateBucketExprByDialect(dbDialectName(db), column, period)
}

func dateBucketExprByDialect(dialect, column, period string) string {
	normalized := strings.ToLower(strings.TrimSpace(period))
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case "postgres", "postgresql":
		format := "YYYY-MM-DD"
		switch normalized {
		case "month":
			format = "YYYY-MM"
		case "year":
			format = "YYYY"
		}
		return fmt.Sprintf("to_char(%s, '%s')", column, format)
	default:
		format := "%Y-%m-%d"
		switch normalized {
		case "month":
			format = "%Y-%m"
		case "year":
			format = "%Y"
		}
		return fmt.Sprintf("strftime('%s', %s)", format, column)
	}
}
