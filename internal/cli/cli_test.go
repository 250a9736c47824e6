package cli

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/St1cky1/taskboard/internal/config"
	"github.com/St1cky1/taskboard/internal/entity"
	"github.com/St1cky1/taskboard/internal/infrastructure/auth"
	"github.com/St1cky1/taskboard/internal/usecase"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGateway - API задач в памяти
type fakeGateway struct {
	tasks  []entity.Task
	nextID int
	err    error
}

func (g *fakeGateway) List(ctx context.Context) ([]entity.Task, error) {
	if g.err != nil {
		return nil, &entity.OperationError{Op: entity.OpLoad, Err: g.err}
	}
	return append([]entity.Task(nil), g.tasks...), nil
}

func (g *fakeGateway) Get(ctx context.Context, id string) (*entity.Task, error) {
	if g.err != nil {
		return nil, &entity.OperationError{Op: entity.OpLoad, Err: g.err}
	}
	for _, t := range g.tasks {
		if t.ID == id {
			task := t
			return &task, nil
		}
	}
	return nil, &entity.OperationError{Op: entity.OpLoad, Err: entity.ErrTaskNotFound}
}

func (g *fakeGateway) Create(ctx context.Context, draft entity.TaskDraft) (*entity.Task, error) {
	g.nextID++
	task := entity.Task{
		ID:          "t" + strconv.Itoa(g.nextID),
		Title:       draft.Title,
		Description: draft.Description,
		Status:      draft.Status,
		Priority:    draft.Priority,
		Assignee:    draft.Assignee,
		DueDate:     draft.DueDate,
	}
	g.tasks = append(g.tasks, task)
	return &task, nil
}

func (g *fakeGateway) Update(ctx context.Context, id string, patch entity.TaskPatch) (*entity.Task, error) {
	for i := range g.tasks {
		if g.tasks[i].ID == id {
			g.tasks[i] = patch.Apply(g.tasks[i])
			task := g.tasks[i]
			return &task, nil
		}
	}
	return nil, &entity.OperationError{Op: entity.OpUpdate, Err: entity.ErrTaskNotFound}
}

func (g *fakeGateway) Delete(ctx context.Context, id string) error {
	for i := range g.tasks {
		if g.tasks[i].ID == id {
			g.tasks = append(g.tasks[:i], g.tasks[i+1:]...)
			return nil
		}
	}
	return &entity.OperationError{Op: entity.OpDelete, Err: entity.ErrTaskNotFound}
}

func date(y int, m time.Month, d int) *entity.Date {
	dt := entity.NewDate(y, m, d, time.Local)
	return &dt
}

func boardFixture() *fakeGateway {
	ann := &entity.Assignee{ID: "u1", Name: "Ann"}
	bob := &entity.Assignee{ID: "u2", Name: "Bob"}
	return &fakeGateway{
		nextID: 10,
		tasks: []entity.Task{
			{ID: "1", Title: "Write docs", Status: entity.StatusTodo, Priority: entity.PriorityHigh, Assignee: ann, DueDate: date(2024, time.March, 5)},
			{ID: "2", Title: "Fix login", Description: "OAuth callback", Status: entity.StatusInProgress, Priority: entity.PriorityMedium, Assignee: bob, DueDate: date(2024, time.March, 12)},
			{ID: "3", Title: "Release", Status: entity.StatusDone, Priority: entity.PriorityLow, Assignee: ann, DueDate: date(2024, time.March, 12)},
			{ID: "4", Title: "Plan Q2", Status: entity.StatusTodo, Priority: entity.PriorityMedium, DueDate: date(2024, time.April, 2)},
		},
	}
}

func run(t *testing.T, gw *fakeGateway, args ...string) (string, error) {
	t.Helper()
	for _, v := range []string{"TASKS_API_URL", "TASKS_API_TOKEN", "TASKS_API_TIMEOUT", "BREAKER_FAILURES", "BREAKER_TIMEOUT", "JWT_SECRET_KEY", "LOG_LEVEL"} {
		t.Setenv(v, "")
	}

	var out, errOut bytes.Buffer
	root := NewRootCmd(Options{
		Out: &out,
		Err: &errOut,
		Now: func() time.Time { return time.Date(2024, time.March, 10, 12, 0, 0, 0, time.Local) },
		NewGateway: func(cfg *config.ClientConfig, log logrus.FieldLogger) (usecase.TaskGateway, error) {
			return gw, nil
		},
	})
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestList_FilterAndSearch(t *testing.T) {
	gw := boardFixture()

	out, err := run(t, gw, "list")
	require.NoError(t, err)
	for _, title := range []string{"Write docs", "Fix login", "Release", "Plan Q2"} {
		assert.Contains(t, out, title)
	}

	assert.NotContains(t, out, "(filtered")

	out, err = run(t, gw, "list", "--status", "todo", "--assignee", "u1")
	require.NoError(t, err)
	assert.Contains(t, out, "Write docs")
	assert.NotContains(t, out, "Plan Q2")
	assert.Contains(t, out, "(filtered: 1 of 4 tasks)")

	out, err = run(t, gw, "list", "--search", "oauth")
	require.NoError(t, err)
	assert.Contains(t, out, "Fix login")
	assert.NotContains(t, out, "Write docs")

	out, err = run(t, gw, "list", "--search", "nothing-like-this")
	require.NoError(t, err)
	assert.Contains(t, out, "No tasks.")
}

func TestList_InvalidFilter(t *testing.T) {
	_, err := run(t, boardFixture(), "list", "--status", "blocked")
	var validationErr *entity.ValidationError
	assert.True(t, errors.As(err, &validationErr))
}

func TestBoard_ColumnsInOrder(t *testing.T) {
	out, err := run(t, boardFixture(), "board")
	require.NoError(t, err)

	todo := strings.Index(out, "TO DO (2)")
	progress := strings.Index(out, "IN PROGRESS (1)")
	done := strings.Index(out, "DONE (1)")
	require.True(t, todo >= 0 && progress >= 0 && done >= 0, out)
	assert.Less(t, todo, progress)
	assert.Less(t, progress, done)
}

func TestCalendar(t *testing.T) {
	out, err := run(t, boardFixture(), "calendar")
	require.NoError(t, err)
	assert.Contains(t, out, "March 2024")
	assert.Contains(t, out, "Fix login [in-progress]; Release [done]")
	assert.NotContains(t, out, "Plan Q2")

	out, err = run(t, boardFixture(), "calendar", "--month", "2024-04")
	require.NoError(t, err)
	assert.Contains(t, out, "Plan Q2")

	_, err = run(t, boardFixture(), "calendar", "--month", "April")
	assert.Error(t, err)
}

func TestUpcoming(t *testing.T) {
	out, err := run(t, boardFixture(), "upcoming", "--limit", "1")
	require.NoError(t, err)
	// 5 марта уже прошло, ближайшие - 12 марта
	assert.NotContains(t, out, "Write docs")
	assert.Contains(t, out, "Fix login")
	assert.NotContains(t, out, "Plan Q2")
}

func TestReport(t *testing.T) {
	out, err := run(t, boardFixture(), "report")
	require.NoError(t, err)

	assert.Contains(t, out, "Total tasks:")
	assert.Regexp(t, `Completion rate:\s+25%`, out)
	assert.Regexp(t, `Overdue:\s+1\n`, out)
	assert.Contains(t, out, "Ann")
	assert.Contains(t, out, "Bob")
	assert.Contains(t, out, "task has no assignee")
}

func TestAddEditMoveRemove(t *testing.T) {
	gw := &fakeGateway{}

	out, err := run(t, gw, "add", "  Buy milk  ", "--priority", "high", "--due", "2024-03-20", "--assignee-id", "u1", "--assignee-name", "Ann")
	require.NoError(t, err)
	assert.Contains(t, out, "Created task.")
	require.Len(t, gw.tasks, 1)
	created := gw.tasks[0]
	assert.Equal(t, "Buy milk", created.Title)
	assert.Equal(t, entity.StatusTodo, created.Status)
	assert.Equal(t, entity.PriorityHigh, created.Priority)
	require.NotNil(t, created.DueDate)
	assert.Equal(t, "2024-03-20", created.DueDate.String())

	_, err = run(t, gw, "edit", created.ID, "--title", "Buy oat milk")
	require.NoError(t, err)
	assert.Equal(t, "Buy oat milk", gw.tasks[0].Title)
	assert.Equal(t, entity.PriorityHigh, gw.tasks[0].Priority)

	out, err = run(t, gw, "move", created.ID, "DONE")
	require.NoError(t, err)
	assert.Contains(t, out, "to done")
	assert.Equal(t, entity.StatusDone, gw.tasks[0].Status)

	_, err = run(t, gw, "rm", created.ID)
	require.NoError(t, err)
	assert.Empty(t, gw.tasks)

	// повторное удаление - не ошибка
	_, err = run(t, gw, "rm", created.ID)
	assert.NoError(t, err)
}

func TestAdd_ValidationBeforeGateway(t *testing.T) {
	gw := &fakeGateway{}

	_, err := run(t, gw, "add", "--title", "   ")
	assert.ErrorIs(t, err, entity.ErrInvalidTaskData)

	_, err = run(t, gw, "add", "x", "--due", "next week")
	assert.ErrorIs(t, err, entity.ErrInvalidTaskData)

	_, err = run(t, gw, "move", "t1", "blocked")
	assert.ErrorIs(t, err, entity.ErrInvalidTaskData)

	assert.Empty(t, gw.tasks)
	assert.Zero(t, gw.nextID)
}

func TestEdit_NoFields(t *testing.T) {
	_, err := run(t, boardFixture(), "edit", "1")
	assert.ErrorIs(t, err, entity.ErrNoFieldsToUpdate)
}

func TestLoadErrorDescribed(t *testing.T) {
	gw := &fakeGateway{err: entity.ErrUnauthorized}

	_, err := run(t, gw, "list")
	require.Error(t, err)
	assert.Equal(t, "failed to load tasks: not authorized, check TASKS_API_TOKEN", Describe(err))
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&entity.OperationError{Op: entity.OpUpdate, Err: entity.ErrTaskNotFound}, "failed to update tasks: task not found"},
		{&entity.OperationError{Op: entity.OpDelete, Err: entity.ErrForbidden}, "failed to delete tasks: access denied"},
		{&entity.OperationError{Op: entity.OpLoad, Err: gobreaker.ErrOpenState}, "failed to load tasks: tasks API is unavailable, try again later"},
		{&entity.OperationError{Op: entity.OpCreate, Err: &entity.RemoteError{StatusCode: 500}}, "failed to create tasks: remote error: status 500"},
		{&entity.ValidationError{Field: "title", Reason: "is required"}, "invalid task data: title is required"},
		{errors.New("plain"), "plain"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Describe(tt.err))
	}
}

func TestToken_Offline(t *testing.T) {
	gw := &fakeGateway{err: errors.New("must not be called")}

	out, err := run(t, gw, "token", "--user-id", "user-1", "--email", "ann@example.com")
	require.NoError(t, err)

	claims, err := auth.NewJWTManager("", time.Hour).ValidateAccessToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}

func TestShow(t *testing.T) {
	out, err := run(t, boardFixture(), "show", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Fix login")
	assert.Contains(t, out, "OAuth callback")

	_, err = run(t, boardFixture(), "show", "nope")
	assert.ErrorIs(t, err, entity.ErrTaskNotFound)
}

func TestDashboard(t *testing.T) {
	out, err := run(t, boardFixture(), "dashboard")
	require.NoError(t, err)
	assert.Contains(t, out, "Total 4  |  To do 2  |  In progress 1  |  Done 1")
	assert.Contains(t, out, "Recent tasks")
	assert.Contains(t, out, "Plan Q2")

	out, err = run(t, boardFixture(), "dashboard", "--recent", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Write docs")
	assert.NotContains(t, out, "Fix login")
}

func TestBoard_FilterHint(t *testing.T) {
	out, err := run(t, boardFixture(), "board", "--search", "fix")
	require.NoError(t, err)
	assert.Contains(t, out, "IN PROGRESS (1)")
	assert.Contains(t, out, "(filtered: 1 of 4 tasks)")
}

func TestEdit_ClearDueDateAndAssignee(t *testing.T) {
	gw := boardFixture()

	_, err := run(t, gw, "edit", "1", "--clear-due", "--unassign")
	require.NoError(t, err)
	assert.Nil(t, gw.tasks[0].DueDate)
	assert.Nil(t, gw.tasks[0].Assignee)
	assert.Equal(t, "Write docs", gw.tasks[0].Title)

	_, err = run(t, gw, "edit", "2", "--due", "2024-04-01", "--clear-due")
	assert.ErrorIs(t, err, entity.ErrInvalidTaskData)
	require.NotNil(t, gw.tasks[1].DueDate)
	assert.Equal(t, "2024-03-12", gw.tasks[1].DueDate.String())
}
