package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/taskhub-api/internal/domain"
	"github.com/phrazzld/taskhub-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var taskCols = []string{
	"id", "title", "description", "status", "priority", "due_date",
	"created_by", "assigned_to", "team_id", "tags", "metadata", "created_at", "updated_at",
}

func TestTaskStoreCreate(t *testing.T) {
	t.Run("defaults empty tags and metadata", func(t *testing.T) {
		db, mock := newMock(t)
		s := NewPostgresTaskStore(db, nil)
		task, err := domain.NewTask(uuid.New(), "Ship it", "")
		require.NoError(t, err)

		mock.ExpectExec(`INSERT INTO tasks`).
			WithArgs(
				task.ID.String(), "Ship it", "", "todo", "medium", nil,
				task.CreatedBy.String(), nil, nil, []string{}, "{}",
				task.CreatedAt, task.UpdatedAt,
			).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, s.Create(context.Background(), task))
	})

	t.Run("invalid task is rejected before the query", func(t *testing.T) {
		db, _ := newMock(t)
		s := NewPostgresTaskStore(db, nil)
		task, err := domain.NewTask(uuid.New(), "ok", "")
		require.NoError(t, err)
		task.Status = "nope"

		assert.ErrorIs(t, s.Create(context.Background(), task), domain.ErrValidation)
	})

	t.Run("unknown team maps to missing reference", func(t *testing.T) {
		db, mock := newMock(t)
		s := NewPostgresTaskStore(db, nil)
		task, err := domain.NewTask(uuid.New(), "Ship it", "")
		require.NoError(t, err)

		mock.ExpectExec(`INSERT INTO tasks`).
			WillReturnError(&pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: "tasks_team_id_fkey"})

		assert.ErrorIs(t, s.Create(context.Background(), task), store.ErrReferenceMissing)
	})
}

func TestTaskStoreGetByID(t *testing.T) {
	t.Run("scans nullable columns", func(t *testing.T) {
		db, mock := newMock(t)
		s := NewPostgresTaskStore(db, nil)

		id, creator, team := uuid.New(), uuid.New(), uuid.New()
		now := time.Now().UTC().Truncate(time.Second)

		mock.ExpectQuery(`SELECT .+ FROM tasks t WHERE t.id = \$1`).
			WithArgs(id.String()).
			WillReturnRows(sqlmock.NewRows(taskCols).AddRow(
				id.String(), "Title", "Desc", "in_progress", "high", nil,
				creator.String(), nil, team.String(), "{backend,urgent}", []byte(`{"points":3}`), now, now,
			))

		task, err := s.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, domain.TaskStatusInProgress, task.Status)
		assert.Equal(t, domain.TaskPriorityHigh, task.Priority)
		assert.Nil(t, task.DueDate)
		assert.Nil(t, task.AssignedTo)
		require.NotNil(t, task.TeamID)
		assert.Equal(t, team, *task.TeamID)
		assert.Equal(t, []string{"backend", "urgent"}, task.Tags)
		assert.JSONEq(t, `{"points":3}`, string(task.Metadata))
	})

	t.Run("empty metadata document is omitted", func(t *testing.T) {
		db, mock := newMock(t)
		s := NewPostgresTaskStore(db, nil)
		id := uuid.New()
		now := time.Now().UTC()

		mock.ExpectQuery(`FROM tasks t WHERE t.id`).
			WillReturnRows(sqlmock.NewRows(taskCols).AddRow(
				id.String(), "Title", "", "todo", "low", now,
				uuid.NewString(), uuid.NewString(), nil, "{}", []byte(`{}`), now, now,
			))

		task, err := s.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Empty(t, task.Tags)
		assert.NotNil(t, task.Tags)
		assert.Nil(t, task.Metadata)
		assert.NotNil(t, task.DueDate)
		assert.NotNil(t, task.AssignedTo)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := newMock(t)
		s := NewPostgresTaskStore(db, nil)
		mock.ExpectQuery(`FROM tasks t WHERE t.id`).WillReturnError(sql.ErrNoRows)

		_, err := s.GetByID(context.Background(), uuid.New())
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})
}

func TestTaskStoreListVisible(t *testing.T) {
	t.Run("applies filters in order", func(t *testing.T) {
		db, mock := newMock(t)
		s := NewPostgresTaskStore(db, nil)
		user, team := uuid.New(), uuid.New()

		mock.ExpectQuery(`FROM tasks t WHERE .+team_members.+ AND t.status = \$2 AND t.team_id = \$3 ORDER BY t.created_at DESC, t.id LIMIT \$4 OFFSET \$5`).
			WithArgs(user.String(), "done", team.String(), int64(DefaultTaskListLimit), int64(0)).
			WillReturnRows(sqlmock.NewRows(taskCols))

		tasks, err := s.ListVisible(context.Background(), user, store.TaskFilter{
			Status: domain.TaskStatusDone,
			TeamID: &team,
		})
		require.NoError(t, err)
		assert.NotNil(t, tasks)
		assert.Empty(t, tasks)
	})

	t.Run("caps limit", func(t *testing.T) {
		db, mock := newMock(t)
		s := NewPostgresTaskStore(db, nil)

		mock.ExpectQuery(`LIMIT \$2 OFFSET \$3`).
			WithArgs(sqlmock.AnyArg(), int64(MaxTaskListLimit), int64(10)).
			WillReturnRows(sqlmock.NewRows(taskCols))

		_, err := s.ListVisible(context.Background(), uuid.New(), store.TaskFilter{Limit: 10_000, Offset: 10})
		require.NoError(t, err)
	})
}

func TestTaskStoreUpdateAndDelete(t *testing.T) {
	t.Run("update missing task", func(t *testing.T) {
		db, mock := newMock(t)
		s := NewPostgresTaskStore(db, nil)
		task, err := domain.NewTask(uuid.New(), "Title", "")
		require.NoError(t, err)
		task.Metadata = json.RawMessage(`{"a":1}`)

		mock.ExpectExec(`UPDATE tasks`).WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, s.Update(context.Background(), task), store.ErrTaskNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		db, mock := newMock(t)
		s := NewPostgresTaskStore(db, nil)
		id := uuid.New()

		mock.ExpectExec(`DELETE FROM tasks WHERE id = \$1`).
			WithArgs(id.String()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, s.Delete(context.Background(), id))
	})
}
