package tasklist

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gadeoli/todoapp-mobile/internal/api"
	"github.com/Gadeoli/todoapp-mobile/internal/notify"
	"github.com/Gadeoli/todoapp-mobile/internal/prefs"
	"github.com/Gadeoli/todoapp-mobile/internal/testutil"
	"github.com/Gadeoli/todoapp-mobile/pkg/types"
)

type fixture struct {
	svc    *testutil.FakeService
	store  *prefs.MemoryStore
	notes  *notify.Recorder
	userID int64
	ctrl   *Controller
}

func newFixture(t *testing.T, daysAhead int) *fixture {
	t.Helper()

	svc := testutil.NewFakeService(t)
	userID := svc.AddUser("Ana", "a@b.com", "123456")

	client := api.NewClient(svc.URL)
	client.SetLogger(log.New(io.Discard, "", 0))

	f := &fixture{
		svc:    svc,
		store:  prefs.NewMemoryStore(),
		notes:  &notify.Recorder{},
		userID: userID,
	}
	f.ctrl = NewController(client, api.Auth{Token: svc.Token(userID)}, f.store, f.notes, daysAhead)
	f.ctrl.SetLogger(log.New(io.Discard, "", 0))
	return f
}

// seed stores five tasks due now; 2 and 4 are done
func (f *fixture) seed() {
	now := time.Now()
	done := now.Add(-time.Hour)
	for i := 1; i <= 5; i++ {
		var doneAt *time.Time
		if i%2 == 0 {
			doneAt = &done
		}
		f.svc.AddTask(f.userID, fmt.Sprintf("task %d", i), now, doneAt)
	}
}

func (f *fixture) storedState(t *testing.T) State {
	t.Helper()
	var state State
	require.NoError(t, prefs.GetJSON(context.Background(), f.store, prefs.KeyTasksState, &state))
	return state
}

func TestInitializeDefaultsToShowDone(t *testing.T) {
	f := newFixture(t, 0)
	f.seed()

	require.NoError(t, f.ctrl.Initialize(context.Background()))

	assert.True(t, f.ctrl.ShowDoneTasks())
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids(f.ctrl.Tasks()))
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids(f.ctrl.VisibleTasks()))
	assert.True(t, f.storedState(t).ShowDoneTasks)
	assert.Empty(t, f.notes.All())
}

func TestInitializeRestoresHiddenDoneTasks(t *testing.T) {
	f := newFixture(t, 0)
	f.seed()
	require.NoError(t, f.store.Set(context.Background(), prefs.KeyTasksState, `{"showDoneTasks":false}`))

	require.NoError(t, f.ctrl.Initialize(context.Background()))

	assert.False(t, f.ctrl.ShowDoneTasks())
	assert.Len(t, f.ctrl.Tasks(), 5)
	assert.Equal(t, []int64{1, 3, 5}, ids(f.ctrl.VisibleTasks()))
	assert.False(t, f.storedState(t).ShowDoneTasks, "stored preference must survive initialization")
}

func TestInitializeIgnoresCorruptPreference(t *testing.T) {
	f := newFixture(t, 0)
	require.NoError(t, f.store.Set(context.Background(), prefs.KeyTasksState, `garbage`))

	require.NoError(t, f.ctrl.Initialize(context.Background()))
	assert.True(t, f.ctrl.ShowDoneTasks())
	assert.Empty(t, f.notes.All())
}

func TestInitializeFetchFailureIsNotified(t *testing.T) {
	f := newFixture(t, 0)
	f.svc.Fail(http.MethodGet, "/tasks", http.StatusInternalServerError, "Database offline")
	require.NoError(t, f.store.Set(context.Background(), prefs.KeyTasksState, `{"showDoneTasks":false}`))

	err := f.ctrl.Initialize(context.Background())
	require.Error(t, err)

	assert.False(t, f.ctrl.ShowDoneTasks())
	assert.Empty(t, f.ctrl.Tasks())
	errs := f.notes.Level(notify.LevelError)
	require.Len(t, errs, 1)
	assert.Equal(t, "Database offline", errs[0].Message)
}

func TestLoadTasksSendsWindowEnd(t *testing.T) {
	f := newFixture(t, 7)
	now := time.Date(2026, 10, 18, 10, 0, 0, 0, time.Local)
	f.ctrl.SetClock(func() time.Time { return now })

	require.NoError(t, f.ctrl.LoadTasks(context.Background()))

	reqs := f.svc.RequestsTo(http.MethodGet, "/tasks")
	require.Len(t, reqs, 1)
	q, err := url.ParseQuery(reqs[0].Query)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-25 23:59:59", q.Get("date"))
}

func TestLoadTasksHonoursWindow(t *testing.T) {
	f := newFixture(t, 0)
	now := time.Now()
	f.svc.AddTask(f.userID, "today", now, nil)
	f.svc.AddTask(f.userID, "next week", now.AddDate(0, 0, 7), nil)

	require.NoError(t, f.ctrl.LoadTasks(context.Background()))
	require.Len(t, f.ctrl.Tasks(), 1)
	assert.Equal(t, "today", f.ctrl.Tasks()[0].Desc)
}

func TestLoadTasksFailureKeepsTasks(t *testing.T) {
	f := newFixture(t, 0)
	f.seed()
	require.NoError(t, f.ctrl.LoadTasks(context.Background()))

	f.svc.Fail(http.MethodGet, "/tasks", http.StatusBadGateway, "")
	err := f.ctrl.LoadTasks(context.Background())
	require.Error(t, err)

	assert.Len(t, f.ctrl.Tasks(), 5)
	errs := f.notes.Level(notify.LevelError)
	require.Len(t, errs, 1)
	assert.Equal(t, api.GenericMessage, errs[0].Message)
}

func TestToggleFilterRecomputesAndPersists(t *testing.T) {
	f := newFixture(t, 0)
	f.seed()
	ctx := context.Background()
	require.NoError(t, f.ctrl.Initialize(ctx))

	f.ctrl.ToggleFilter(ctx)
	assert.False(t, f.ctrl.ShowDoneTasks())
	assert.Equal(t, []int64{1, 3, 5}, ids(f.ctrl.VisibleTasks()))
	assert.False(t, f.storedState(t).ShowDoneTasks)

	f.ctrl.ToggleFilter(ctx)
	assert.True(t, f.ctrl.ShowDoneTasks())
	assert.Len(t, f.ctrl.VisibleTasks(), 5)
	assert.True(t, f.storedState(t).ShowDoneTasks)
}

func TestToggleTaskReloadsFromService(t *testing.T) {
	f := newFixture(t, 0)
	f.seed()
	ctx := context.Background()
	require.NoError(t, f.ctrl.Initialize(ctx))
	f.ctrl.ToggleFilter(ctx)

	require.NoError(t, f.ctrl.ToggleTask(ctx, 1))

	assert.Equal(t, []int64{3, 5}, ids(f.ctrl.VisibleTasks()))
	assert.NotNil(t, f.ctrl.Tasks()[0].DoneAt, "doneAt comes from the service")
	assert.Len(t, f.svc.RequestsTo(http.MethodPut, "/tasks/1/toggle"), 1)
	assert.Len(t, f.svc.RequestsTo(http.MethodGet, "/tasks"), 2)
}

func TestToggleTaskFailureLeavesStateUnchanged(t *testing.T) {
	f := newFixture(t, 0)
	f.seed()
	ctx := context.Background()
	require.NoError(t, f.ctrl.Initialize(ctx))
	before := f.ctrl.Tasks()

	f.svc.Fail(http.MethodPut, "/tasks/5/toggle", http.StatusInternalServerError, "Could not toggle")
	err := f.ctrl.ToggleTask(ctx, 5)
	require.Error(t, err)

	assert.Equal(t, before, f.ctrl.Tasks())
	errs := f.notes.Level(notify.LevelError)
	require.Len(t, errs, 1)
	assert.Equal(t, "Could not toggle", errs[0].Message)
	assert.Len(t, f.svc.RequestsTo(http.MethodGet, "/tasks"), 1, "no reload after a failed toggle")
}

func TestAddTaskBlankDescriptionMakesNoRequest(t *testing.T) {
	f := newFixture(t, 0)
	f.ctrl.OpenAdd()

	err := f.ctrl.AddTask(context.Background(), types.Draft{Desc: "  ", Date: time.Now()})
	assert.ErrorIs(t, err, ErrBlankDescription)

	assert.Empty(t, f.svc.Requests())
	assert.True(t, f.ctrl.AddOpen())
	warnings := f.notes.Level(notify.LevelWarning)
	require.Len(t, warnings, 1)
	assert.Equal(t, InvalidDataTitle, warnings[0].Title)
	assert.Equal(t, BlankDescriptionMessage, warnings[0].Message)
}

func TestAddTaskCreatesClosesAndReloads(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	f.ctrl.OpenAdd()

	date := time.Now().Truncate(time.Second)
	require.NoError(t, f.ctrl.AddTask(ctx, types.Draft{Desc: "Buy milk", Date: date}))

	assert.False(t, f.ctrl.AddOpen())
	require.Len(t, f.ctrl.Tasks(), 1)
	assert.Equal(t, "Buy milk", f.ctrl.Tasks()[0].Desc)
	assert.True(t, date.Equal(f.ctrl.Tasks()[0].EstimateAt))

	create := f.svc.RequestsTo(http.MethodPost, "/tasks")
	require.Len(t, create, 1)
	assert.JSONEq(t,
		fmt.Sprintf(`{"desc":"Buy milk","estimateAt":%q}`, date.Format(time.RFC3339Nano)),
		string(create[0].Body))
}

func TestAddTaskFailureStillClosesAndReloads(t *testing.T) {
	f := newFixture(t, 0)
	f.seed()
	ctx := context.Background()
	f.ctrl.OpenAdd()
	f.svc.Fail(http.MethodPost, "/tasks", http.StatusBadRequest, "Quota exceeded")

	err := f.ctrl.AddTask(ctx, types.Draft{Desc: "Buy milk", Date: time.Now()})
	require.Error(t, err)

	assert.False(t, f.ctrl.AddOpen())
	assert.Len(t, f.ctrl.Tasks(), 5)
	assert.Len(t, f.svc.RequestsTo(http.MethodGet, "/tasks"), 1)
	require.Len(t, f.notes.Level(notify.LevelError), 1)
}

func TestAddTaskDefaultsDateToNow(t *testing.T) {
	f := newFixture(t, 0)
	now := time.Date(2026, 10, 18, 10, 0, 0, 0, time.Local)
	f.ctrl.SetClock(func() time.Time { return now })

	require.NoError(t, f.ctrl.AddTask(context.Background(), types.Draft{Desc: "Stretch"}))

	task, ok := f.svc.Task(1)
	require.True(t, ok)
	assert.True(t, now.Equal(task.EstimateAt))
}

func TestDeleteTask(t *testing.T) {
	f := newFixture(t, 0)
	f.seed()
	ctx := context.Background()
	require.NoError(t, f.ctrl.Initialize(ctx))

	require.NoError(t, f.ctrl.DeleteTask(ctx, 3))
	assert.Equal(t, []int64{1, 2, 4, 5}, ids(f.ctrl.Tasks()))

	err := f.ctrl.DeleteTask(ctx, 3)
	assert.True(t, api.IsStatus(err, http.StatusNotFound))
	assert.Equal(t, []int64{1, 2, 4, 5}, ids(f.ctrl.Tasks()))
	require.Len(t, f.notes.Level(notify.LevelError), 1)
}

func TestPersistenceFailureIsNotSurfaced(t *testing.T) {
	svc := testutil.NewFakeService(t)
	userID := svc.AddUser("Ana", "a@b.com", "123456")
	client := api.NewClient(svc.URL)
	client.SetLogger(log.New(io.Discard, "", 0))
	notes := &notify.Recorder{}

	ctrl := NewController(client, api.Auth{Token: svc.Token(userID)}, testutil.FailingStore{}, notes, 0)
	ctrl.SetLogger(log.New(io.Discard, "", 0))

	require.NoError(t, ctrl.Initialize(context.Background()))
	ctrl.ToggleFilter(context.Background())
	assert.False(t, ctrl.ShowDoneTasks())
	assert.Empty(t, notes.All())
}

// blockingService holds ToggleTask until released
type blockingService struct {
	Service
	started chan struct{}
	release chan struct{}
}

func (b *blockingService) ToggleTask(context.Context, api.Auth, int64) (*types.Task, error) {
	close(b.started)
	<-b.release
	return nil, nil
}

func (b *blockingService) ListTasks(context.Context, api.Auth, string) ([]types.Task, error) {
	return []types.Task{{ID: 1, Desc: "only"}}, nil
}

func TestOperationsAreNotReentrant(t *testing.T) {
	svc := &blockingService{started: make(chan struct{}), release: make(chan struct{})}
	ctrl := NewController(svc, api.Auth{Token: "abc"}, prefs.NewMemoryStore(), nil, 0)

	done := make(chan error, 1)
	go func() { done <- ctrl.ToggleTask(context.Background(), 1) }()

	<-svc.started
	assert.True(t, ctrl.Busy())
	assert.ErrorIs(t, ctrl.DeleteTask(context.Background(), 1), ErrBusy)
	assert.ErrorIs(t, ctrl.LoadTasks(context.Background()), ErrBusy)
	assert.ErrorIs(t, ctrl.AddTask(context.Background(), types.Draft{Desc: "x"}), ErrBusy)

	close(svc.release)
	require.NoError(t, <-done)
	assert.False(t, ctrl.Busy())
	assert.Equal(t, []int64{1}, ids(ctrl.Tasks()))
}
