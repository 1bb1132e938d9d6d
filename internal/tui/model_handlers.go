package tui

import (
	"errors"
	"fmt"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog/log"

	"github.com/colonyops/roster/internal/core/config"
	"github.com/colonyops/roster/internal/core/student"
	"github.com/colonyops/roster/internal/roster"
	"github.com/colonyops/roster/internal/tui/components"
)

// --- Window ---

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	if m.page != nil {
		w, h := m.bodySize()
		m.page.Resize(w, h-2)
	}
	return m, nil
}

// --- Auth ---

func (m Model) handleAuthChanged(msg authChangedMsg) (tea.Model, tea.Cmd) {
	next := m.events.listenAuth()
	wasSignedIn := m.user != nil
	m.user = msg.user

	if msg.user == nil {
		m.app.Students.Invalidate()
		m.list.SetCollection(nil)
		m.list.ClearSelection()
		m.loaded = false
		m.cursor = 0
		m.state = stateNormal
		m.studentForm = nil
		m.editingID = ""
		m.op = operation{}
		m.login = NewLoginView()
		if m.screen == screenRecords {
			m.screen = screenLogin
		}
		return m, next
	}

	if wasSignedIn {
		// Profile or token change; stay where we are.
		return m, next
	}

	if m.login != nil {
		m.login.pending = false
	}
	if m.screen == screenLogin {
		m.screen = screenRecords
	}
	m, refresh := m.startRefresh()
	return m, tea.Batch(next, refresh)
}

func (m Model) handleAuthResult(msg authResultMsg) (tea.Model, tea.Cmd) {
	if m.login == nil {
		return m, nil
	}
	if msg.err != nil {
		log.Debug().Err(msg.err).Msg("authentication failed")
		return m, m.login.Fail(msg.err)
	}
	m.login.pending = false
	return m, nil
}

// --- Data ---

func (m Model) handleStudentsLoaded(msg studentsLoadedMsg) (tea.Model, tea.Cmd) {
	if errors.Is(msg.err, roster.ErrSuperseded) {
		return m, nil
	}
	if msg.err != nil {
		log.Error().Err(msg.err).Msg("failed to load students")
		m.op = operation{label: "Loading students failed", status: opFailed}
		return m, m.notifyError(msg.err)
	}

	m.list.SetCollection(msg.records)
	m.clampCursor()
	m.loaded = true
	m.op = operation{label: fmt.Sprintf("Loaded %s", plural(len(msg.records), "student")), status: opSucceeded}
	return m, nil
}

func (m Model) handleStudentSaved(msg studentSavedMsg) (tea.Model, tea.Cmd) {
	verb := "Creating"
	if msg.editing {
		verb = "Updating"
	}

	if msg.err != nil {
		m.op = operation{label: verb + " student failed", status: opFailed}

		if roster.Classify(msg.err) == roster.KindValidation && m.studentForm != nil {
			var cmds []tea.Cmd
			cmds = append(cmds, m.studentForm.SetErrors(studentFormErrors(msg.err)))
			if roster.IsDuplicateEmail(msg.err) {
				m.notifyBus.Warnf(m.ctx, "%s", student.ErrDuplicateEmail.Error())
				cmds = append(cmds, m.ensureToastTick())
			}
			return m, tea.Batch(cmds...)
		}

		log.Error().Err(msg.err).Msg("failed to save student")
		return m, m.notifyError(msg.err)
	}

	m.state = stateNormal
	m.studentForm = nil
	m.editingID = ""

	// The success toast arrives through the event bus.
	m, refresh := m.startRefresh()
	return m, refresh
}

func (m Model) handleDeleteStarted(msg deleteStartedMsg) (tea.Model, tea.Cmd) {
	m.bulk = bulkProgress{total: msg.total}
	return m, waitForDeleteResult(msg.results)
}

func (m Model) handleDeleteResult(msg deleteResultMsg) (tea.Model, tea.Cmd) {
	if msg.result.Err != nil {
		m.bulk.failed++
		log.Warn().Err(msg.result.Err).Str("id", msg.result.ID).Msg("delete failed")
	} else {
		m.bulk.deleted++
		m.list.Deselect(msg.result.ID)
	}
	m.op = operation{
		label:  fmt.Sprintf("Deleting students %d/%d", m.bulk.deleted+m.bulk.failed, m.bulk.total),
		status: opPending,
	}
	return m, waitForDeleteResult(msg.results)
}

func (m Model) handleDeleteFinished() (tea.Model, tea.Cmd) {
	bulk := m.bulk
	m.bulk = bulkProgress{}

	if bulk.deleted == 0 && bulk.total > 0 {
		m.op = operation{label: fmt.Sprintf("Failed to delete %s", plural(bulk.failed, "student")), status: opFailed}
		return m, nil
	}

	m, cmd := m.startRefresh()
	return m, cmd
}

func (m Model) handleExportDone(msg exportDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		log.Error().Err(msg.err).Msg("export failed")
		m.op = operation{label: "Export failed", status: opFailed}
		m.notifyBus.Errorf(m.ctx, "Export failed: %v", msg.err)
		return m, m.ensureToastTick()
	}

	m.op = operation{label: "Exported " + plural(msg.count, "student"), status: opSucceeded}
	m.notifyBus.Successf(m.ctx, "Exported %s to %s", plural(msg.count, "student"), msg.path)
	return m, m.ensureToastTick()
}

// --- Notifications ---

func (m Model) handleNotification(msg notificationMsg) (tea.Model, tea.Cmd) {
	m.notifyBus.Publish(m.ctx, msg.notification)
	if msg.relayed {
		return m, tea.Batch(m.ensureToastTick(), m.events.listenNotifications())
	}
	return m, m.ensureToastTick()
}

func (m Model) handleToastTick(_ toastTickMsg) (tea.Model, tea.Cmd) {
	m.toastController.Tick(toastTickInterval)
	if m.toastController.HasToasts() {
		return m, scheduleToastTick()
	}
	m.toastController.SetTicking(false)
	return m, nil
}

func (m Model) handleSpinnerTick(msg spinner.TickMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

// handleFallthrough routes messages that don't match any typed case to the
// focused text input, such as cursor blink messages.
func (m Model) handleFallthrough(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.screen == screenLogin && m.login != nil:
		cmd = m.login.Update(msg)
	case m.state == stateStudentForm && m.studentForm != nil:
		m.studentForm, cmd = m.studentForm.Update(msg)
	}
	return m, cmd
}

// --- Input ---

func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	keyStr := msg.String()
	if keyStr == keyCtrlC {
		return m.quit()
	}

	switch m.state {
	case stateStudentForm:
		return m.handleStudentFormKey(msg)
	case stateConfirming:
		return m.handleConfirmModalKey(msg)
	case stateExporting:
		return m.handleExportKey(msg)
	case stateShowingHelp:
		return m.handleHelpDialogKey(keyStr)
	case stateShowingNotifications:
		return m.handleNotificationModalKey(keyStr)
	case stateShowingAccount:
		return m.handleAccountKey(keyStr)
	}

	switch keyStr {
	case "f1":
		return m.openPage(roster.PageAbout)
	case "f2":
		return m.openPage(roster.PageContact)
	}

	switch m.screen {
	case screenLogin:
		return m.handleLoginKey(msg)
	case screenPage:
		return m.handlePageKey(keyStr)
	default:
		return m.handleNormalKey(keyStr)
	}
}

func (m Model) handleLoginKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if m.login == nil {
		m.login = NewLoginView()
	}

	cmd := m.login.Update(msg)
	if !m.login.Submitted() {
		return m, cmd
	}

	creds := m.login.Credentials()
	m.login.Begin()
	return m, tea.Batch(cmd, m.signInCmd(creds))
}

func (m Model) openPage(name string) (tea.Model, tea.Cmd) {
	w, h := m.bodySize()
	if m.screen != screenPage {
		m.prev = m.screen
	}
	m.page = NewPageView(name, w, h-2)
	m.screen = screenPage
	return m, nil
}

func (m Model) handlePageKey(keyStr string) (tea.Model, tea.Cmd) {
	switch keyStr {
	case keyEsc, "q", "backspace":
		m.screen = m.prev
		if m.screen == screenRecords && m.user == nil {
			m.screen = screenLogin
		}
		m.page = nil
	case "j", "down":
		m.page.ScrollDown()
	case "k", "up":
		m.page.ScrollUp()
	}
	return m, nil
}

func (m Model) handleNormalKey(keyStr string) (tea.Model, tea.Cmd) {
	switch keyStr {
	case "q":
		return m.quit()
	case "?":
		return m.showHelpDialog()
	case "i":
		return m.showAccountDialog()
	case "j", "down":
		m.cursor++
		m.clampCursor()
		return m, nil
	case "k", "up":
		m.cursor--
		m.clampCursor()
		return m, nil
	case "h", "left", "pgup":
		m.list.PrevPage()
		m.clampCursor()
		return m, nil
	case "l", "right", "pgdown":
		m.list.NextPage()
		m.clampCursor()
		return m, nil
	case keyEsc:
		m.list.ClearSelection()
		return m, nil
	}

	action, ok := m.keys.Resolve(keyStr)
	if !ok {
		return m, nil
	}
	return m.dispatchAction(action)
}

func (m Model) dispatchAction(action Action) (tea.Model, tea.Cmd) {
	switch action.Name {
	case config.ActionNew:
		m.editingID = ""
		m.studentForm = newStudentForm("New student", student.Fields{})
		m.state = stateStudentForm
		return m, nil

	case config.ActionEdit:
		rec, ok := m.visibleRecord()
		if !ok {
			return m, nil
		}
		m.editingID = rec.ID
		m.studentForm = newStudentForm("Edit student", rec.Fields())
		m.state = stateStudentForm
		return m, nil

	case config.ActionSelect:
		if rec, ok := m.visibleRecord(); ok {
			m.list.ToggleSelect(rec.ID, !m.list.IsSelected(rec.ID))
		}
		return m, nil

	case config.ActionSelectAll:
		m.list.ToggleSelectAll(!m.list.IsAllVisibleSelected())
		return m, nil

	case config.ActionDelete:
		return m.requestDelete(action)

	case config.ActionExport:
		m.exportForm = newExportDialog(m.cfg.Export)
		m.state = stateExporting
		return m, nil

	case config.ActionRefresh:
		return m.startRefresh()

	case config.ActionSort:
		m.cycleSort()
		return m, m.savePrefsCmd()

	case config.ActionPageSize:
		m.list.CyclePageSize(1)
		m.cursor = 0
		return m, m.savePrefsCmd()

	case config.ActionHistory:
		w, h := m.width, m.height
		m.notificationModal = NewNotificationModal(m.ctx, m.notifyBus, w, h)
		m.state = stateShowingNotifications
		return m, nil

	case config.ActionLogout:
		return m, m.signOutCmd()
	}

	return m, nil
}

// cycleSort flips the active key to descending, or moves on to the next key
// ascending once it already is.
func (m *Model) cycleSort() {
	cur := m.list.Sort()
	if !cur.Desc {
		_ = m.list.ToggleSort(cur.Key)
		return
	}

	keys := student.SortKeys()
	next := keys[0]
	for i, k := range keys {
		if k == cur.Key {
			next = keys[(i+1)%len(keys)]
			break
		}
	}
	_ = m.list.ToggleSort(next)
}

// deleteTargets is the selection, or the record under the cursor when
// nothing is selected.
func (m Model) deleteTargets() []string {
	if ids := m.list.Selected(); len(ids) > 0 {
		return ids
	}
	if rec, ok := m.visibleRecord(); ok {
		return []string{rec.ID}
	}
	return nil
}

func (m Model) requestDelete(action Action) (tea.Model, tea.Cmd) {
	ids := m.deleteTargets()
	if len(ids) == 0 || m.bulk.total > 0 {
		return m, nil
	}

	if !action.NeedsConfirm() {
		return m.startDelete(ids)
	}

	m.pendingDelete = ids
	message := fmt.Sprintf("%s\n%s will be removed.", action.Confirm, plural(len(ids), "student"))
	m.confirm = components.NewConfirmModal("Delete students", message, "Delete")
	m.state = stateConfirming
	return m, nil
}

func (m Model) startDelete(ids []string) (tea.Model, tea.Cmd) {
	m.bulk = bulkProgress{total: len(ids)}
	m.op = operation{label: "Deleting " + plural(len(ids), "student"), status: opPending}
	return m, m.deleteCmd(ids)
}

// --- Overlay keys ---

func (m Model) handleStudentFormKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.studentForm, cmd = m.studentForm.Update(msg)

	if m.studentForm.Cancelled() {
		m.state = stateNormal
		m.studentForm = nil
		m.editingID = ""
		return m, cmd
	}

	if m.studentForm.Submitted() {
		m.studentForm.Reopen()
		fields := studentFormFields(m.studentForm)

		verb := "Creating"
		if m.editingID != "" {
			verb = "Updating"
		}
		m.op = operation{label: verb + " student", status: opPending}
		return m, tea.Batch(cmd, m.saveStudentCmd(m.editingID, fields))
	}

	return m, cmd
}

func (m Model) handleConfirmModalKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	m.confirm, _ = m.confirm.Update(msg)

	switch {
	case m.confirm.Confirmed():
		ids := m.pendingDelete
		m.pendingDelete = nil
		m.state = stateNormal
		return m.startDelete(ids)
	case m.confirm.Cancelled():
		m.pendingDelete = nil
		m.state = stateNormal
	}
	return m, nil
}

func (m Model) handleExportKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.exportForm, cmd = m.exportForm.Update(msg)

	if m.exportForm.Cancelled() {
		m.state = stateNormal
		m.exportForm = nil
		return m, cmd
	}

	if !m.exportForm.Submitted() {
		return m, cmd
	}

	format, scope, err := exportChoice(m.exportForm)
	m.state = stateNormal
	m.exportForm = nil
	if err != nil {
		return m, m.notifyError(err)
	}

	records := m.list.Visible()
	if scope == config.ScopeAll {
		records = m.list.Items()
	}

	m.op = operation{label: "Exporting " + plural(len(records), "student"), status: opPending}
	return m, tea.Batch(cmd, m.exportCmd(records, format))
}

func (m Model) handleHelpDialogKey(keyStr string) (tea.Model, tea.Cmd) {
	switch keyStr {
	case keyEsc, "?", "q":
		m.state = stateNormal
		m.helpDialog = nil
	}
	return m, nil
}

func (m Model) handleAccountKey(keyStr string) (tea.Model, tea.Cmd) {
	switch keyStr {
	case keyEsc, "i", "q":
		m.state = stateNormal
		m.accountDialog = nil
	case "j", "down":
		m.accountDialog.ScrollDown()
	case "k", "up":
		m.accountDialog.ScrollUp()
	}
	return m, nil
}

func (m Model) handleNotificationModalKey(keyStr string) (tea.Model, tea.Cmd) {
	switch keyStr {
	case keyEsc, "q":
		m.state = stateNormal
		m.notificationModal = nil
		return m, nil
	case "j", "down":
		m.notificationModal.ScrollDown()
	case "k", "up":
		m.notificationModal.ScrollUp()
	case "D":
		if err := m.notificationModal.Clear(m.ctx); err != nil {
			return m, m.notifyError(err)
		}
	}
	return m, nil
}

// showHelpDialog creates and displays the help dialog.
func (m Model) showHelpDialog() (tea.Model, tea.Cmd) {
	sections := []components.HelpDialogSection{
		{Title: "Records", Entries: m.keys.HelpEntries()},
		{
			Title: "Navigation",
			Entries: []components.HelpEntry{
				{Key: "↑/k ↓/j", Desc: "move cursor"},
				{Key: "←/h →/l", Desc: "previous / next page"},
				{Key: "esc", Desc: "clear selection"},
				{Key: "i", Desc: "account"},
				{Key: "f1", Desc: "about"},
				{Key: "f2", Desc: "contact"},
				{Key: "q", Desc: "quit"},
			},
		},
	}

	m.helpDialog = components.NewHelpDialog("Keyboard shortcuts", sections)
	m.state = stateShowingHelp
	return m, nil
}

// showAccountDialog displays the signed-in user's profile.
func (m Model) showAccountDialog() (tea.Model, tea.Cmd) {
	if m.user == nil {
		return m, nil
	}

	photo := m.user.PhotoURL
	photoStatus := components.InfoStatusPass
	if photo == "" {
		photo = "not set"
		photoStatus = components.InfoStatusWarn
	}

	sections := []components.InfoSection{
		{
			Title: "Profile",
			Items: []components.InfoItem{
				{Label: "Name", Value: m.user.Name()},
				{Label: "Email", Value: m.user.Email},
				{Label: "Photo", Value: photo, Status: photoStatus},
			},
		},
		{
			Title: "Client",
			Items: []components.InfoItem{
				{Label: "API", Value: m.cfg.API.BaseURL},
				{Label: "Version", Value: m.build.Version},
			},
		},
	}

	m.accountDialog = components.NewInfoDialog("Account", sections, "[esc] close", m.width, m.height)
	m.state = stateShowingAccount
	return m, nil
}
