// Package roster wires the student records client together: the student
// service, authentication, local stores, and the event bus.
package roster

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/colonyops/roster/internal/core/config"
	"github.com/colonyops/roster/internal/core/eventbus"
	"github.com/colonyops/roster/internal/core/identity"
	"github.com/colonyops/roster/internal/core/notify"
	"github.com/colonyops/roster/internal/data/db"
	"github.com/colonyops/roster/internal/data/stores"
)

// App is the central entry point for all roster operations.
// Commands and TUI consume App instead of cherry-picking raw dependencies.
type App struct {
	Students      *StudentService
	Auth          *identity.Auth
	Prefs         *stores.PrefsStore
	Notifications notify.Store
	Bus           *eventbus.EventBus
	Metrics       *prometheus.Registry

	Config *config.Config
	DB     *db.DB
}

// NewApp constructs an App from explicit dependencies.
func NewApp(
	students *StudentService,
	auth *identity.Auth,
	prefs *stores.PrefsStore,
	notifications notify.Store,
	bus *eventbus.EventBus,
	metrics *prometheus.Registry,
	cfg *config.Config,
	database *db.DB,
) *App {
	return &App{
		Students:      students,
		Auth:          auth,
		Prefs:         prefs,
		Notifications: notifications,
		Bus:           bus,
		Metrics:       metrics,
		Config:        cfg,
		DB:            database,
	}
}
