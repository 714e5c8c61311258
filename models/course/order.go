package course

import (
	"database/sql"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// orderScope names the table holding ordered siblings and the parent they are ordered within.
type orderScope struct {
	table       string
	column      string
	parentTable string
}

var (
	moduleOrder  = orderScope{table: "modules", column: "course_id", parentTable: "courses"}
	contentOrder = orderScope{table: "contents", column: "module_id", parentTable: "modules"}
)

// assign sets *order to max(order)+1 within the parent scope, or 0 when the scope is empty.
// An explicit value is kept as-is. It must run inside the create transaction: the parent row
// is locked first so siblings created concurrently under the same parent get distinct values.
func (s orderScope) assign(tx *gorm.DB, parentID uint, order **int) error {
	if *order != nil {
		return nil
	}
	db := tx.Session(&gorm.Session{NewDB: true})

	// sqlite has no FOR UPDATE; it serializes writers on its own.
	if db.Dialector.Name() != "sqlite" {
		var parent struct{ ID uint }
		if err := db.Table(s.parentTable).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Where("id = ?", parentID).
			Take(&parent).Error; err != nil {
			return fmt.Errorf("lock %s %d: %w", s.parentTable, parentID, err)
		}
	}

	var maxOrder sql.NullInt64
	row := db.Table(s.table).Select("MAX(order_index)").Where(s.column+" = ?", parentID).Row()
	if err := row.Scan(&maxOrder); err != nil {
		return fmt.Errorf("next order in %s: %w", s.table, err)
	}

	next := 0
	if maxOrder.Valid {
		next = int(maxOrder.Int64) + 1
	}
	*order = &next
	return nil
}
