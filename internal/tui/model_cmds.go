package tui

import (
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog/log"

	"github.com/colonyops/roster/internal/core/export"
	"github.com/colonyops/roster/internal/core/identity"
	"github.com/colonyops/roster/internal/core/notify"
	"github.com/colonyops/roster/internal/core/student"
	"github.com/colonyops/roster/internal/data/stores"
	"github.com/colonyops/roster/internal/roster"
)

func notifyCmd(level notify.Level, message string) tea.Cmd {
	return func() tea.Msg {
		return notificationMsg{notification: notify.Notification{Level: level, Message: message}}
	}
}

func (m Model) signInCmd(c identity.Credentials) tea.Cmd {
	auth, ctx := m.app.Auth, m.ctx
	return func() tea.Msg {
		var err error
		if c.SignUp {
			_, err = auth.SignUp(ctx, c)
		} else {
			_, err = auth.SignIn(ctx, c)
		}
		return authResultMsg{err: err}
	}
}

func (m Model) signOutCmd() tea.Cmd {
	auth, ctx := m.app.Auth, m.ctx
	return func() tea.Msg {
		if err := auth.SignOut(ctx); err != nil {
			log.Error().Err(err).Msg("sign out")
		}
		return nil
	}
}

// startRefresh marks the collection as loading and refetches it. A refresh
// started while another is in flight supersedes it.
func (m Model) startRefresh() (Model, tea.Cmd) {
	m.op = operation{label: "Loading students", status: opPending}
	svc, ctx := m.app.Students, m.ctx
	return m, func() tea.Msg {
		records, err := svc.Refresh(ctx)
		return studentsLoadedMsg{records: records, err: err}
	}
}

func (m Model) saveStudentCmd(id string, f student.Fields) tea.Cmd {
	svc, ctx := m.app.Students, m.ctx
	return func() tea.Msg {
		if id == "" {
			rec, err := svc.Create(ctx, f)
			return studentSavedMsg{record: rec, err: err}
		}
		rec, err := svc.Update(ctx, id, f)
		return studentSavedMsg{record: rec, editing: true, err: err}
	}
}

func (m Model) deleteCmd(ids []string) tea.Cmd {
	svc, ctx := m.app.Students, m.ctx
	return func() tea.Msg {
		return deleteStartedMsg{results: svc.DeleteMany(ctx, ids), total: len(ids)}
	}
}

// waitForDeleteResult reads the next completion of a bulk delete.
func waitForDeleteResult(results <-chan roster.DeleteResult) tea.Cmd {
	return func() tea.Msg {
		res, ok := <-results
		if !ok {
			return deleteFinishedMsg{}
		}
		return deleteResultMsg{result: res, results: results}
	}
}

func (m Model) exportCmd(records []student.Record, format export.Format) tea.Cmd {
	svc, dir := m.app.Students, m.cfg.Export.Dir
	return func() tea.Msg {
		path, err := svc.Export(records, format, dir, time.Now())
		return exportDoneMsg{path: path, count: len(records), err: err}
	}
}

func (m Model) savePrefsCmd() tea.Cmd {
	if m.app.Prefs == nil {
		return nil
	}
	prefsStore, ctx := m.app.Prefs, m.ctx
	prefs := stores.ListPrefs{PageSize: m.list.PageSize(), Sort: m.list.Sort()}
	return func() tea.Msg {
		if err := prefsStore.SaveListPrefs(ctx, prefs); err != nil {
			log.Error().Err(err).Msg("failed to save list preferences")
		}
		return nil
	}
}

// ensureToastTick starts the toast countdown if it is not already running.
func (m Model) ensureToastTick() tea.Cmd {
	if m.toastController.Ticking() || !m.toastController.HasToasts() {
		return nil
	}
	m.toastController.SetTicking(true)
	return scheduleToastTick()
}

func (m Model) notifyError(err error) tea.Cmd {
	m.notifyBus.Errorf(m.ctx, "%s", roster.UserMessage(err))
	return m.ensureToastTick()
}
