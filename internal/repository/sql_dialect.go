package repository

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
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

// lockForUpdate 追加行级锁子句。sqlite 不支持 FOR UPDATE 语法，
// 其写入本身即串行，直接返回原查询。
func lockForUpdate(db *gorm.DB) *gorm.DB {
	switch dbDialectName(db) {
	case "postgres", "postgresql":
		return db.Clauses(clause.Locking{Strength: "UPDATE"})
	default:
		return db
	}
}
