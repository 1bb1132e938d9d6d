package tui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/roster/internal/core/config"
	"github.com/colonyops/roster/internal/core/eventbus"
	"github.com/colonyops/roster/internal/core/identity"
	"github.com/colonyops/roster/internal/core/student"
	"github.com/colonyops/roster/internal/roster"
	"github.com/colonyops/roster/pkg/tuitest"
)

// memStore is an in-memory student.Store.
type memStore struct {
	mu       sync.Mutex
	records  []student.Record
	nextID   int
	failIDs  map[string]bool
	creating int
}

func newMemStore(records ...student.Record) *memStore {
	return &memStore{records: slices.Clone(records), nextID: len(records) + 1, failIDs: map[string]bool{}}
}

func (s *memStore) List(context.Context) ([]student.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.records), nil
}

func (s *memStore) Get(_ context.Context, id string) (student.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.ID == id {
			return r, nil
		}
	}
	return student.Record{}, student.ErrNotFound
}

func (s *memStore) Create(_ context.Context, rec student.Record) (student.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.ID = fmt.Sprintf("s%d", s.nextID)
	s.nextID++
	s.records = append(s.records, rec)
	return rec, nil
}

func (s *memStore) Update(_ context.Context, id string, rec student.Record) (student.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.records {
		if r.ID == id {
			rec.ID = id
			s.records[i] = rec
			return rec, nil
		}
	}
	return student.Record{}, student.ErrNotFound
}

func (s *memStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failIDs[id] {
		return errors.New("server error")
	}
	s.records = slices.DeleteFunc(s.records, func(r student.Record) bool { return r.ID == id })
	return nil
}

// fakeProvider accepts a single password.
type fakeProvider struct{}

const testPassword = "secret1"

func (fakeProvider) session(email string) identity.Session {
	return identity.Session{
		User:         identity.User{UID: "u1", DisplayName: "Ann Lee", Email: email},
		IDToken:      "id-token",
		RefreshToken: "refresh-token",
	}
}

func (p fakeProvider) SignUp(_ context.Context, email, _ string) (identity.Session, error) {
	return p.session(email), nil
}

func (p fakeProvider) SignIn(_ context.Context, email, password string) (identity.Session, error) {
	if password != testPassword {
		return identity.Session{}, &identity.AuthError{Code: "INVALID_PASSWORD", Message: "Wrong email or password."}
	}
	return p.session(email), nil
}

func (p fakeProvider) Refresh(context.Context, string) (identity.Session, error) {
	return p.session("ann@example.com"), nil
}

func (fakeProvider) UpdateProfile(_ context.Context, _ string, pr identity.Profile) (identity.User, error) {
	return identity.User{UID: "u1", DisplayName: pr.DisplayName, PhotoURL: pr.PhotoURL}, nil
}

var (
	ann = student.Record{ID: "s1", Name: "Ann", Age: 20, Email: "ann@example.com", Course: "Math"}
	bob = student.Record{ID: "s2", Name: "Bob", Age: 22, Email: "bob@example.com", Course: "Art"}
)

func newTestApp(t *testing.T, store student.Store) *roster.App {
	t.Helper()

	cfg, err := config.Load("", t.TempDir())
	require.NoError(t, err)
	cfg.Export.Dir = t.TempDir()

	svc := roster.NewStudentService(store, nil, 2, zerolog.Nop())
	auth := identity.NewAuth(fakeProvider{}, nil, zerolog.Nop())
	return roster.NewApp(svc, auth, nil, nil, nil, nil, cfg, nil)
}

func newTestModel(t *testing.T, app *roster.App) Model {
	t.Helper()
	m := New(app, Options{})
	t.Cleanup(m.Close)
	m, _ = update(m, tuitest.WindowSize(120, 40))
	return m
}

// signedIn returns a model on the records screen with the collection loaded.
func signedIn(t *testing.T, store *memStore) Model {
	t.Helper()
	return signedInWith(t, newTestApp(t, store))
}

func signedInWith(t *testing.T, app *roster.App) Model {
	t.Helper()

	_, err := app.Auth.SignIn(context.Background(), identity.Credentials{Email: "ann@example.com", Password: testPassword})
	require.NoError(t, err)

	m := newTestModel(t, app)
	m, cmd := update(m, authChangedMsg{user: app.Auth.CurrentUser()})
	m = settle(t, m, cmd)

	require.Equal(t, screenRecords, m.screen)
	require.True(t, m.loaded)
	return m
}

func update(m Model, msg tea.Msg) (Model, tea.Cmd) {
	res, cmd := m.Update(msg)
	return res.(Model), cmd
}

// collect runs cmd and returns the messages it produces. Commands that
// block, such as event listeners and timers, are abandoned after a short wait.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}

	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()

	select {
	case msg := <-ch:
		switch msg := msg.(type) {
		case nil, spinner.TickMsg, toastTickMsg:
			return nil
		case tea.BatchMsg:
			var out []tea.Msg
			for _, c := range msg {
				out = append(out, collect(c)...)
			}
			return out
		default:
			return []tea.Msg{msg}
		}
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

// settle feeds every message produced by cmd back into the model until no
// more work is pending.
func settle(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()

	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		require.Less(t, steps, 200, "model did not settle")

		c := queue[0]
		queue = queue[1:]
		for _, msg := range collect(c) {
			var next tea.Cmd
			m, next = update(m, msg)
			queue = append(queue, next)
		}
	}
	return m
}

func press(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		var cmd tea.Cmd
		m, cmd = update(m, msg)
		m = settle(t, m, cmd)
	}
	return m
}

func TestModel_SignIn(t *testing.T) {
	app := newTestApp(t, newMemStore(bob, ann))
	m := newTestModel(t, app)
	require.Equal(t, screenLogin, m.screen)

	m = press(t, m, tuitest.Type("ann@example.com")...)
	m = press(t, m, tuitest.KeyTab())
	m = press(t, m, tuitest.Type(testPassword)...)
	m = press(t, m, tuitest.KeyEnter())

	require.NotNil(t, app.Auth.CurrentUser())
	assert.Empty(t, m.login.Error())
	assert.False(t, m.login.Pending())

	m, cmd := update(m, authChangedMsg{user: app.Auth.CurrentUser()})
	m = settle(t, m, cmd)

	assert.Equal(t, screenRecords, m.screen)
	require.Equal(t, 2, m.list.Total())
	assert.Equal(t, []student.Record{ann, bob}, m.list.Visible())

	view := tuitest.StripANSI(m.View().Content)
	assert.Contains(t, view, "Ann Lee")
	assert.Contains(t, view, "ann@example.com")
}

func TestModel_SignInError(t *testing.T) {
	app := newTestApp(t, newMemStore())
	m := newTestModel(t, app)

	t.Run("rejected credentials stay on the form", func(t *testing.T) {
		m := press(t, m, tuitest.Type("ann@example.com")...)
		m = press(t, m, tuitest.KeyTab())
		m = press(t, m, tuitest.Type("wrong-password")...)
		m = press(t, m, tuitest.KeyEnter())

		assert.Equal(t, screenLogin, m.screen)
		assert.Equal(t, "Wrong email or password.", m.login.Error())
		assert.Nil(t, app.Auth.CurrentUser())
	})

	t.Run("field errors are shown inline", func(t *testing.T) {
		m := newTestModel(t, app)
		m = press(t, m, tuitest.KeyCtrl('s'))

		email, ok := m.login.dialog.Field(loginFieldEmail)
		require.True(t, ok)
		assert.Equal(t, "Email is required", email.Error())
		assert.Empty(t, m.login.Error())
	})
}

func TestModel_LoginToggleSignUp(t *testing.T) {
	m := newTestModel(t, newTestApp(t, newMemStore()))

	m = press(t, m, tuitest.Type("ann@example.com")...)
	m = press(t, m, tuitest.KeyCtrl('t'))

	require.True(t, m.login.SignUp())
	_, ok := m.login.dialog.Field(loginFieldName)
	assert.True(t, ok)
	assert.Equal(t, "ann@example.com", m.login.Credentials().Email)
}

func TestModel_CreateStudent(t *testing.T) {
	store := newMemStore(ann)
	m := signedIn(t, store)

	m = press(t, m, tuitest.KeyPress('n'))
	require.Equal(t, stateStudentForm, m.state)

	for i, value := range []string{"Bob", "22", "bob@example.com", "Art"} {
		if i > 0 {
			m = press(t, m, tuitest.KeyTab())
		}
		m = press(t, m, tuitest.Type(value)...)
	}
	m = press(t, m, tuitest.KeyCtrl('s'))

	assert.Equal(t, stateNormal, m.state)
	assert.Nil(t, m.studentForm)
	assert.Equal(t, 2, m.list.Total())
	assert.Equal(t, opSucceeded, m.op.status)
}

// newBusApp is newTestApp with a running event bus and the notification
// router registered, as main wires them.
func newBusApp(t *testing.T, store student.Store) *roster.App {
	t.Helper()

	cfg, err := config.Load("", t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	bus := eventbus.New(64)
	eventbus.NewNotificationRouter(bus).Register()
	go bus.Start(ctx)

	svc := roster.NewStudentService(store, bus, 2, zerolog.Nop())
	auth := identity.NewAuth(fakeProvider{}, nil, zerolog.Nop())
	return roster.NewApp(svc, auth, nil, nil, bus, nil, cfg, nil)
}

// relayNotification feeds the next notification forwarded from the event
// bus into the model.
func relayNotification(t *testing.T, m Model) Model {
	t.Helper()
	select {
	case n := <-m.events.notifications:
		m, _ = update(m, notificationMsg{notification: n, relayed: true})
	case <-time.After(time.Second):
		t.Fatal("no notification relayed from the event bus")
	}
	return m
}

func assertNoNotification(t *testing.T, m Model) {
	t.Helper()
	select {
	case n := <-m.events.notifications:
		t.Fatalf("unexpected notification %q", n.Message)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestModel_SaveNotifiesOnce(t *testing.T) {
	m := signedInWith(t, newBusApp(t, newMemStore(ann)))

	m = press(t, m, tuitest.KeyPress('n'))
	for i, value := range []string{"Bob", "22", "bob@example.com", "Art"} {
		if i > 0 {
			m = press(t, m, tuitest.KeyTab())
		}
		m = press(t, m, tuitest.Type(value)...)
	}
	m = press(t, m, tuitest.KeyCtrl('s'))
	require.Equal(t, stateNormal, m.state)

	m = relayNotification(t, m)
	assertNoNotification(t, m)

	toasts := m.toastController.Toasts()
	require.Len(t, toasts, 1)
	assert.Equal(t, eventbus.MsgStudentCreated, toasts[0].notification.Message)

	m = press(t, m, tuitest.KeyPress('e'))
	require.Equal(t, stateStudentForm, m.state)
	m = press(t, m, tuitest.KeyCtrl('s'))
	require.Equal(t, stateNormal, m.state)

	m = relayNotification(t, m)
	assertNoNotification(t, m)

	toasts = m.toastController.Toasts()
	require.Len(t, toasts, 2)
	assert.Equal(t, eventbus.MsgStudentUpdated, toasts[1].notification.Message)
}

func TestModel_CreateDuplicateEmail(t *testing.T) {
	m := signedIn(t, newMemStore(ann))

	m = press(t, m, tuitest.KeyPress('n'))
	for i, value := range []string{"Annie", "30", "ANN@example.com", "Physics"} {
		if i > 0 {
			m = press(t, m, tuitest.KeyTab())
		}
		m = press(t, m, tuitest.Type(value)...)
	}
	m = press(t, m, tuitest.KeyCtrl('s'))

	require.Equal(t, stateStudentForm, m.state)
	email, ok := m.studentForm.Field(string(student.FieldEmail))
	require.True(t, ok)
	assert.Equal(t, student.ErrDuplicateEmail.Error(), email.Error())

	require.True(t, m.toastController.HasToasts())
	assert.Equal(t, student.ErrDuplicateEmail.Error(), m.toastController.Toasts()[0].notification.Message)
	assert.Equal(t, 1, m.list.Total())
}

func TestModel_EditPrefillsAndCancelClears(t *testing.T) {
	m := signedIn(t, newMemStore(ann, bob))

	m = press(t, m, tuitest.KeyDown(), tuitest.KeyPress('e'))
	require.Equal(t, stateStudentForm, m.state)
	assert.Equal(t, bob.ID, m.editingID)
	assert.Equal(t, bob.Fields(), studentFormFields(m.studentForm))

	m = press(t, m, tuitest.KeyEsc())
	assert.Equal(t, stateNormal, m.state)
	assert.Nil(t, m.studentForm)
	assert.Empty(t, m.editingID)
}

func TestModel_UpdateStudent(t *testing.T) {
	store := newMemStore(ann, bob)
	m := signedIn(t, store)

	m = press(t, m, tuitest.KeyPress('e'))
	// Course is the last field.
	m = press(t, m, tuitest.KeyTab(), tuitest.KeyTab(), tuitest.KeyTab())
	m = press(t, m, tuitest.Type("s")...)
	m = press(t, m, tuitest.KeyEnter())

	assert.Equal(t, stateNormal, m.state)
	rec, err := store.Get(context.Background(), ann.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maths", rec.Course)
}

func TestModel_BulkDeletePartialFailure(t *testing.T) {
	store := newMemStore(ann, bob)
	store.failIDs[bob.ID] = true
	m := signedIn(t, store)

	m = press(t, m, tuitest.KeyPress('a'))
	require.Equal(t, 2, m.list.SelectedCount())

	m = press(t, m, tuitest.KeyPress('d'))
	require.Equal(t, stateConfirming, m.state)
	assert.Contains(t, tuitest.StripANSI(m.View().Content), "2 students will be removed")

	m = press(t, m, tuitest.KeyEnter())

	assert.Equal(t, stateNormal, m.state)
	assert.Equal(t, []string{bob.ID}, m.list.Selected())
	assert.Equal(t, []student.Record{bob}, m.list.Items())
}

func TestModel_DeleteCancelled(t *testing.T) {
	store := newMemStore(ann, bob)
	m := signedIn(t, store)

	m = press(t, m, tuitest.KeyPress('d'), tuitest.KeyEsc())

	assert.Equal(t, stateNormal, m.state)
	assert.Nil(t, m.pendingDelete)
	assert.Equal(t, 2, m.list.Total())
}

func TestModel_SelectionSurvivesPaging(t *testing.T) {
	var records []student.Record
	for i := range 7 {
		records = append(records, student.Record{
			ID: fmt.Sprintf("s%d", i+1), Name: fmt.Sprintf("Student %d", i+1),
			Age: 20, Email: fmt.Sprintf("s%d@example.com", i+1), Course: "Math",
		})
	}
	m := signedIn(t, newMemStore(records...))

	m = press(t, m, tuitest.KeySpace(), tuitest.KeyRight())
	require.Equal(t, 2, m.list.Page())
	m = press(t, m, tuitest.KeySpace(), tuitest.KeyLeft())

	assert.Equal(t, []string{"s1", "s6"}, m.list.Selected())
	assert.False(t, m.list.IsAllVisibleSelected())
}

func TestModel_PageSizeResetsPage(t *testing.T) {
	var records []student.Record
	for i := range 12 {
		records = append(records, student.Record{
			ID: fmt.Sprintf("s%02d", i+1), Name: fmt.Sprintf("Student %02d", i+1),
			Age: 20, Email: fmt.Sprintf("s%d@example.com", i+1), Course: "Math",
		})
	}
	m := signedIn(t, newMemStore(records...))

	m = press(t, m, tuitest.KeyRight(), tuitest.KeyRight())
	require.Equal(t, 3, m.list.Page())

	m = press(t, m, tuitest.KeyPress('z'))
	assert.Equal(t, 1, m.list.Page())
	assert.Equal(t, 10, m.list.PageSize())
	assert.Len(t, m.list.Visible(), 10)
}

func TestModel_SortCycles(t *testing.T) {
	m := signedIn(t, newMemStore(ann, bob))

	m = press(t, m, tuitest.KeyPress('s'))
	assert.Equal(t, []student.Record{bob, ann}, m.list.Visible())

	m = press(t, m, tuitest.KeyPress('s'))
	assert.Equal(t, student.SortAge, m.list.Sort().Key)
	assert.False(t, m.list.Sort().Desc)
}

func TestModel_SupersededRefreshIgnored(t *testing.T) {
	m := signedIn(t, newMemStore(ann))
	m.op = operation{label: "Loading students", status: opPending}

	m, cmd := update(m, studentsLoadedMsg{err: roster.ErrSuperseded})

	assert.Nil(t, cmd)
	assert.Equal(t, opPending, m.op.status)
	assert.Equal(t, 1, m.list.Total())
}

func TestModel_RefreshFailureKeepsCollection(t *testing.T) {
	m := signedIn(t, newMemStore(ann))

	m, _ = update(m, studentsLoadedMsg{err: errors.New("boom")})

	assert.Equal(t, opFailed, m.op.status)
	assert.Equal(t, 1, m.list.Total())
	assert.True(t, m.toastController.HasToasts())
}

func TestModel_SignOutReturnsToLogin(t *testing.T) {
	m := signedIn(t, newMemStore(ann))
	m.list.ToggleSelect(ann.ID, true)

	m, _ = update(m, authChangedMsg{user: nil})

	assert.Equal(t, screenLogin, m.screen)
	assert.Zero(t, m.list.Total())
	assert.Zero(t, m.list.SelectedCount())
	_, _, cached := m.app.Students.Cached()
	assert.False(t, cached)
}

func TestModel_Export(t *testing.T) {
	m := signedIn(t, newMemStore(ann, bob))

	m = press(t, m, tuitest.KeyPress('x'))
	require.Equal(t, stateExporting, m.state)

	m = press(t, m, tuitest.KeyEnter(), tuitest.KeyEnter())

	assert.Equal(t, stateNormal, m.state)
	assert.Equal(t, opSucceeded, m.op.status)
	require.True(t, m.toastController.HasToasts())
	assert.Contains(t, m.toastController.Toasts()[0].notification.Message, "Exported 2 students")
}

func TestModel_StaticPages(t *testing.T) {
	m := newTestModel(t, newTestApp(t, newMemStore()))

	m = press(t, m, tea.KeyPressMsg(tea.Key{Code: tea.KeyF1}))
	require.Equal(t, screenPage, m.screen)
	assert.Equal(t, roster.PageAbout, m.page.Name())

	m = press(t, m, tuitest.KeyEsc())
	assert.Equal(t, screenLogin, m.screen)
}

func TestModel_Overlays(t *testing.T) {
	m := signedIn(t, newMemStore(ann))

	m = press(t, m, tuitest.KeyPress('?'))
	require.Equal(t, stateShowingHelp, m.state)
	assert.Contains(t, tuitest.StripANSI(m.View().Content), "Keyboard shortcuts")
	m = press(t, m, tuitest.KeyEsc())

	m = press(t, m, tuitest.KeyPress('i'))
	require.Equal(t, stateShowingAccount, m.state)
	assert.Contains(t, tuitest.StripANSI(m.View().Content), "Ann Lee")
	m = press(t, m, tuitest.KeyEsc())

	m = press(t, m, tuitest.KeyPress('H'))
	require.Equal(t, stateShowingNotifications, m.state)
	assert.Contains(t, tuitest.StripANSI(m.View().Content), "Notifications")
	m = press(t, m, tuitest.KeyEsc())

	assert.Equal(t, stateNormal, m.state)
}

func TestEventLink(t *testing.T) {
	app := newTestApp(t, newMemStore())
	m := New(app, Options{})

	_ = m.Init()

	select {
	case u := <-m.events.auth:
		assert.Nil(t, u)
	case <-time.After(time.Second):
		t.Fatal("observer did not report the initial user")
	}

	_, err := app.Auth.SignIn(context.Background(), identity.Credentials{Email: "ann@example.com", Password: testPassword})
	require.NoError(t, err)

	select {
	case u := <-m.events.auth:
		require.NotNil(t, u)
		assert.Equal(t, "ann@example.com", u.Email)
	case <-time.After(time.Second):
		t.Fatal("observer did not report sign-in")
	}

	m.Close()

	done := make(chan struct{})
	go func() {
		_ = app.Auth.SignOut(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sign-out blocked after the TUI closed")
	}

	assert.Nil(t, m.events.listenAuth()())
}
