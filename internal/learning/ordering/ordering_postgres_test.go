package ordering

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/coursekit-backend/internal/data/repos/testutil"
	types "github.com/yungbote/coursekit-backend/internal/domain"
	"github.com/yungbote/coursekit-backend/internal/platform/apierr"
	"github.com/yungbote/coursekit-backend/internal/platform/dbctx"
)

func TestPostgresReorderQuestionsUnderRowLock(t *testing.T) {
	db := testutil.PostgresDB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	m := NewMaintainer(db, testutil.Logger(t))

	author := testutil.SeedUser(t, ctx, tx, "pg-author-"+uuid.NewString()[:8])
	course := testutil.SeedCourse(t, ctx, tx, author.ID, "beginner", true)
	tree := testutil.SeedCourseTree(t, ctx, tx, course.ID, 1, 1, 1)
	quiz := testutil.SeedQuiz(t, ctx, tx, course.ID, tree.Lessons[0].ID, author.ID, 70)

	ids := make([]uuid.UUID, 0, 4)
	for i := 0; i < 4; i++ {
		q := &types.QuizQuestion{QuizID: quiz.ID, OrderIndex: i, Text: "q"}
		if err := tx.Create(q).Error; err != nil {
			t.Fatalf("seed question %d: %v", i, err)
		}
		ids = append(ids, q.ID)
	}

	if _, err := m.Reorder(dbc, Questions, ids[3], 0); err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	var rows []types.QuizQuestion
	if err := tx.Where("quiz_id = ?", quiz.ID).Order("order_index ASC").Find(&rows).Error; err != nil {
		t.Fatalf("load questions: %v", err)
	}
	want := []uuid.UUID{ids[3], ids[0], ids[1], ids[2]}
	for i, r := range rows {
		if r.ID != want[i] || r.OrderIndex != i {
			t.Fatalf("slot %d: want=%s got=%s@%d", i, want[i], r.ID, r.OrderIndex)
		}
	}

	next, err := m.NextOrder(dbc, Questions, quiz.ID)
	if err != nil || next != 4 {
		t.Fatalf("NextOrder: want=4 got=%d err=%v", next, err)
	}
}

func TestPostgresDuplicateOrderMapsToConflict(t *testing.T) {
	db := testutil.PostgresDB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	author := testutil.SeedUser(t, ctx, tx, "pg-author-"+uuid.NewString()[:8])
	course := testutil.SeedCourse(t, ctx, tx, author.ID, "beginner", true)
	testutil.SeedCourseModule(t, ctx, tx, course.ID, 0)

	// Savepoint keeps the outer test transaction usable after the violation.
	sp := tx.SavePoint("dup")
	if sp.Error != nil {
		t.Fatalf("savepoint: %v", sp.Error)
	}
	err := tx.Create(&types.CourseModule{CourseID: course.ID, OrderIndex: 0, Title: "dup"}).Error
	_ = tx.RollbackTo("dup")
	if !errors.Is(apierr.MapDB("create module", err), apierr.ErrConflict) {
		t.Fatalf("want conflict, got %v", err)
	}
}
