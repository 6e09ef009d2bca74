package service_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/taskhub-api/internal/domain"
	"github.com/phrazzld/taskhub-api/internal/mocks"
	"github.com/phrazzld/taskhub-api/internal/service"
	"github.com/phrazzld/taskhub-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type taskFixture struct {
	svc    service.TaskService
	tasks  *mocks.MockTaskStore
	teams  *mocks.MockTeamStore
	owner  uuid.UUID
	member uuid.UUID
	other  uuid.UUID
	team   *domain.Team
}

func newTaskFixture(t *testing.T) *taskFixture {
	t.Helper()
	f := &taskFixture{owner: uuid.New(), member: uuid.New(), other: uuid.New()}

	team, err := domain.NewTeam(f.owner, "Core", "")
	require.NoError(t, err)
	team.AddMember(f.member)
	f.team = team

	f.teams = mocks.NewMockTeamStore(team)
	f.tasks = mocks.NewMockTaskStore()
	f.tasks.IsMember = f.teams.HasMember

	f.svc, err = service.NewTaskService(f.tasks, f.teams, nil)
	require.NoError(t, err)
	return f
}

func TestTaskCreate(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	task, err := f.svc.Create(ctx, f.owner, service.CreateTaskInput{
		Title:    "Plan sprint",
		Priority: domain.TaskPriorityHigh,
		TeamID:   &f.team.ID,
		Tags:     []string{"planning"},
		Metadata: json.RawMessage(`{"points":5}`),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusTodo, task.Status)
	assert.Equal(t, domain.TaskPriorityHigh, task.Priority)
	assert.Equal(t, []string{"planning"}, task.Tags)

	_, err = f.svc.Create(ctx, f.other, service.CreateTaskInput{Title: "Sneaky", TeamID: &f.team.ID})
	assert.ErrorIs(t, err, service.ErrNotTeamMember)

	_, err = f.svc.Create(ctx, f.owner, service.CreateTaskInput{Title: ""})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.Create(ctx, f.owner, service.CreateTaskInput{Title: "x", Status: "blocked"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTaskVisibility(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	teamTask, err := f.svc.Create(ctx, f.owner, service.CreateTaskInput{Title: "Team", TeamID: &f.team.ID})
	require.NoError(t, err)
	private, err := f.svc.Create(ctx, f.owner, service.CreateTaskInput{Title: "Private"})
	require.NoError(t, err)
	assigned, err := f.svc.Create(ctx, f.owner, service.CreateTaskInput{Title: "Assigned", AssignedTo: &f.other})
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, f.member, teamTask.ID)
	assert.NoError(t, err, "team members see team tasks")

	_, err = f.svc.Get(ctx, f.member, private.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)

	_, err = f.svc.Get(ctx, f.other, assigned.ID)
	assert.NoError(t, err, "assignees see their tasks")

	_, err = f.svc.Get(ctx, f.other, uuid.New())
	assert.ErrorIs(t, err, store.ErrTaskNotFound)

	memberTasks, err := f.svc.List(ctx, f.member, store.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, memberTasks, 1)
	assert.Equal(t, teamTask.ID, memberTasks[0].ID)

	ownerTasks, err := f.svc.List(ctx, f.owner, store.TaskFilter{TeamID: &f.team.ID})
	require.NoError(t, err)
	assert.Len(t, ownerTasks, 1)
}

func TestTaskUpdate(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	task, err := f.svc.Create(ctx, f.owner, service.CreateTaskInput{Title: "Team", TeamID: &f.team.ID})
	require.NoError(t, err)

	done := domain.TaskStatusDone
	updated, err := f.svc.Update(ctx, f.member, task.ID, domain.TaskPatch{Status: &done})
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusDone, updated.Status)

	stored, err := f.tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusDone, stored.Status)

	_, err = f.svc.Update(ctx, f.other, task.ID, domain.TaskPatch{Status: &done})
	assert.ErrorIs(t, err, store.ErrTaskNotFound)

	foreign := uuid.New()
	_, err = f.svc.Update(ctx, f.owner, task.ID, domain.TaskPatch{TeamID: &foreign})
	assert.ErrorIs(t, err, service.ErrNotTeamMember)

	empty := ""
	_, err = f.svc.Update(ctx, f.owner, task.ID, domain.TaskPatch{Title: &empty})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTaskDeleteCreatorOnly(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	task, err := f.svc.Create(ctx, f.owner, service.CreateTaskInput{Title: "Team", TeamID: &f.team.ID})
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Delete(ctx, f.member, task.ID), service.ErrNotOwned)
	assert.ErrorIs(t, f.svc.Delete(ctx, f.other, task.ID), store.ErrTaskNotFound)
	require.NoError(t, f.svc.Delete(ctx, f.owner, task.ID))

	_, err = f.tasks.GetByID(ctx, task.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}
