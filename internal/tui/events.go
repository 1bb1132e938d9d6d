package tui

import (
	"sync"

	tea "charm.land/bubbletea/v2"

	"github.com/colonyops/roster/internal/core/identity"
	"github.com/colonyops/roster/internal/core/notify"
)

// eventLink carries callbacks fired outside the update loop into it. Every
// send gives up once the link is closed so no goroutine outlives the TUI.
type eventLink struct {
	auth          chan *identity.User
	notifications chan notify.Notification
	done          chan struct{}

	mu     sync.Mutex
	unsubs []func()
	once   sync.Once
}

func newEventLink() *eventLink {
	return &eventLink{
		auth:          make(chan *identity.User, 4),
		notifications: make(chan notify.Notification, 16),
		done:          make(chan struct{}),
	}
}

func (l *eventLink) sendAuth(u *identity.User) {
	select {
	case l.auth <- u:
	case <-l.done:
	}
}

func (l *eventLink) sendNotification(n notify.Notification) {
	select {
	case l.notifications <- n:
	case <-l.done:
	}
}

// track registers an unsubscribe function to run on close.
func (l *eventLink) track(unsubscribe func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	select {
	case <-l.done:
		unsubscribe()
	default:
		l.unsubs = append(l.unsubs, unsubscribe)
	}
}

func (l *eventLink) close() {
	l.once.Do(func() {
		l.mu.Lock()
		unsubs := l.unsubs
		l.unsubs = nil
		close(l.done)
		l.mu.Unlock()

		for _, fn := range unsubs {
			fn()
		}
	})
}

func (l *eventLink) listenAuth() tea.Cmd {
	return func() tea.Msg {
		select {
		case u := <-l.auth:
			return authChangedMsg{user: u}
		case <-l.done:
			return nil
		}
	}
}

func (l *eventLink) listenNotifications() tea.Cmd {
	return func() tea.Msg {
		select {
		case n := <-l.notifications:
			return notificationMsg{notification: n, relayed: true}
		case <-l.done:
			return nil
		}
	}
}
