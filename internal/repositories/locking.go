package repositories

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// forUpdate adds a row lock on dialects that support SELECT ... FOR UPDATE.
// SQLite serializes writers at the database level instead.
func forUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "postgres" {
		return db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}
