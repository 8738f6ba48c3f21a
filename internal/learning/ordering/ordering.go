// Package ordering keeps sibling rows in a dense, zero-based order_index
// sequence. Siblings share a parent column value; every kind is backed by a
// unique (parent, order_index) index, so shifts are done as ranged updates
// that first park the moved run on negative values.
package ordering

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/coursekit-backend/internal/data/db"
	"github.com/yungbote/coursekit-backend/internal/platform/apierr"
	"github.com/yungbote/coursekit-backend/internal/platform/dbctx"
	"github.com/yungbote/coursekit-backend/internal/platform/logger"
)

const orderColumn = "order_index"

// Kind names the table holding one family of siblings and its parent column.
type Kind struct {
	Name         string
	Table        string
	ParentColumn string
}

var (
	Modules     = Kind{Name: "module", Table: "course_module", ParentColumn: "course_id"}
	Topics      = Kind{Name: "topic", Table: "course_topic", ParentColumn: "module_id"}
	Lessons     = Kind{Name: "lesson", Table: "topic_lesson", ParentColumn: "topic_id"}
	Questions   = Kind{Name: "question", Table: "quiz_question", ParentColumn: "quiz_id"}
	Answers     = Kind{Name: "answer", Table: "quiz_answer", ParentColumn: "question_id"}
	PathCourses = Kind{Name: "path_course", Table: "course_learning_path", ParentColumn: "learning_path_id"}
	PathModules = Kind{Name: "path_module", Table: "learning_path_module", ParentColumn: "learning_path_id"}
	PathItems   = Kind{Name: "path_item", Table: "learning_path_item", ParentColumn: "module_id"}
)

type Maintainer interface {
	// NextOrder returns the order_index a new sibling under parentID takes.
	NextOrder(dbc dbctx.Context, kind Kind, parentID uuid.UUID) (int, error)
	// Reorder moves itemID to newOrder and shifts the siblings in between.
	Reorder(dbc dbctx.Context, kind Kind, itemID uuid.UUID, newOrder int) (int, error)
	// Compact closes the gap left by a sibling removed from removedOrder.
	Compact(dbc dbctx.Context, kind Kind, parentID uuid.UUID, removedOrder int) error
}

type maintainer struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMaintainer(gdb *gorm.DB, baseLog *logger.Logger) Maintainer {
	return &maintainer{db: gdb, log: baseLog.With("component", "OrderMaintainer")}
}

type position struct {
	ParentID   uuid.UUID
	OrderIndex int
}

func (m *maintainer) NextOrder(dbc dbctx.Context, kind Kind, parentID uuid.UUID) (int, error) {
	var max sql.NullInt64
	err := dbc.DB(m.db).
		Table(kind.Table).
		Where(kind.ParentColumn+" = ?", parentID).
		Select("MAX(" + orderColumn + ")").
		Row().
		Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("next %s order: %w", kind.Name, err)
	}
	if !max.Valid {
		return 0, nil
	}
	return int(max.Int64) + 1, nil
}

func (m *maintainer) Reorder(dbc dbctx.Context, kind Kind, itemID uuid.UUID, newOrder int) (int, error) {
	err := db.Within(dbc, m.db, func(dbc dbctx.Context) error {
		tx := dbc.DB(m.db)

		pos, err := m.lockPosition(tx, kind, itemID)
		if err != nil {
			return err
		}
		if newOrder == pos.OrderIndex {
			return nil
		}

		var count int64
		if err := tx.Table(kind.Table).Where(kind.ParentColumn+" = ?", pos.ParentID).Count(&count).Error; err != nil {
			return fmt.Errorf("count %s siblings: %w", kind.Name, err)
		}
		if newOrder < 0 || int64(newOrder) >= count {
			return apierr.Invalid("%s order %d out of range [0,%d]", kind.Name, newOrder, count-1)
		}

		now := time.Now().UTC()
		siblings := func() *gorm.DB {
			return tx.Table(kind.Table).Where(kind.ParentColumn+" = ?", pos.ParentID)
		}

		// Park the moved item outside the live range.
		if err := tx.Table(kind.Table).Where("id = ?", itemID).
			UpdateColumn(orderColumn, -1).Error; err != nil {
			return fmt.Errorf("park %s: %w", kind.Name, err)
		}

		var lo, hi, restore int
		if newOrder > pos.OrderIndex {
			// Moving down: (current, new] shifts up by one slot (order - 1).
			lo, hi, restore = pos.OrderIndex+1, newOrder, 3
		} else {
			// Moving up: [new, current) shifts down by one slot (order + 1).
			lo, hi, restore = newOrder, pos.OrderIndex-1, 1
		}
		// o -> -o-2 keeps every parked value <= -2, away from the item at -1.
		if err := siblings().
			Where(orderColumn+" BETWEEN ? AND ?", lo, hi).
			UpdateColumns(map[string]any{
				orderColumn:  gorm.Expr("-" + orderColumn + " - 2"),
				"updated_at": now,
			}).Error; err != nil {
			return fmt.Errorf("shift %s siblings: %w", kind.Name, err)
		}
		// -o-2 -> o-1 (restore=3) or o+1 (restore=1).
		if err := siblings().
			Where(orderColumn+" <= ?", -2).
			UpdateColumn(orderColumn, gorm.Expr(fmt.Sprintf("-%s - %d", orderColumn, restore))).Error; err != nil {
			return fmt.Errorf("restore %s siblings: %w", kind.Name, err)
		}

		if err := tx.Table(kind.Table).Where("id = ?", itemID).
			UpdateColumns(map[string]any{orderColumn: newOrder, "updated_at": now}).Error; err != nil {
			return fmt.Errorf("place %s: %w", kind.Name, err)
		}

		m.log.Debug("Reordered sibling",
			"kind", kind.Name,
			"item_id", itemID,
			"from", pos.OrderIndex,
			"to", newOrder,
		)
		return nil
	})
	if err != nil {
		return 0, apierr.MapDB("reorder "+kind.Name, err)
	}
	return newOrder, nil
}

func (m *maintainer) Compact(dbc dbctx.Context, kind Kind, parentID uuid.UUID, removedOrder int) error {
	err := db.Within(dbc, m.db, func(dbc dbctx.Context) error {
		tx := dbc.DB(m.db)
		siblings := func() *gorm.DB {
			return tx.Table(kind.Table).Where(kind.ParentColumn+" = ?", parentID)
		}
		if err := siblings().
			Where(orderColumn+" > ?", removedOrder).
			UpdateColumn(orderColumn, gorm.Expr("-"+orderColumn+" - 2")).Error; err != nil {
			return fmt.Errorf("park %s siblings: %w", kind.Name, err)
		}
		if err := siblings().
			Where(orderColumn+" <= ?", -2).
			UpdateColumn(orderColumn, gorm.Expr("-"+orderColumn+" - 3")).Error; err != nil {
			return fmt.Errorf("compact %s siblings: %w", kind.Name, err)
		}
		return nil
	})
	return apierr.MapDB("compact "+kind.Name, err)
}

func (m *maintainer) lockPosition(tx *gorm.DB, kind Kind, itemID uuid.UUID) (position, error) {
	q := tx.Table(kind.Table).
		Select(kind.ParentColumn+" AS parent_id", orderColumn).
		Where("id = ?", itemID)
	if db.IsPostgres(tx) {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var pos position
	res := q.Limit(1).Scan(&pos)
	if res.Error != nil {
		return position{}, fmt.Errorf("load %s: %w", kind.Name, res.Error)
	}
	if res.RowsAffected == 0 {
		return position{}, apierr.NotFound("%s %s", kind.Name, itemID)
	}
	return pos, nil
}
