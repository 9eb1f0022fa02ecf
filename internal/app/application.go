// Package app wires the storage backends and domain services together.
package app

import (
	"github.com/star-labs/star-platform/internal/app/events"
	"github.com/star-labs/star-platform/internal/app/services/points"
	"github.com/star-labs/star-platform/internal/app/services/projects"
	"github.com/star-labs/star-platform/internal/app/services/stats"
	"github.com/star-labs/star-platform/internal/app/services/users"
	"github.com/star-labs/star-platform/internal/app/storage"
	"github.com/star-labs/star-platform/internal/app/storage/memory"
	"github.com/star-labs/star-platform/internal/config"
	"github.com/star-labs/star-platform/pkg/logger"
)

// Stores holds the persistence backends. Any nil store is replaced by a
// shared in-memory backend, which keeps tests and local runs simple.
type Stores struct {
	Users          storage.UserStore
	Projects       storage.ProjectStore
	Participations storage.ParticipationStore
}

// Options carries the tunables and optional collaborators for the services.
type Options struct {
	Economics config.Economics
	Referral  users.Config
	Verifier  points.TxVerifier
	Events    events.Publisher
}

// Application bundles the platform's services behind one handle.
type Application struct {
	Users    *users.Service
	Points   *points.Service
	Projects *projects.Service
	Stats    *stats.Service
}

// New builds an Application from the given stores and options.
func New(st Stores, opts Options, log *logger.Logger) *Application {
	if st.Users == nil || st.Projects == nil || st.Participations == nil {
		mem := memory.New()
		if st.Users == nil {
			st.Users = mem
		}
		if st.Projects == nil {
			st.Projects = mem
		}
		if st.Participations == nil {
			st.Participations = mem
		}
	}
	if log == nil {
		log = logger.NewDefault("app")
	}
	if opts.Economics == (config.Economics{}) {
		opts.Economics = config.DefaultEconomics()
	}

	app := &Application{
		Users:    users.New(st.Users, opts.Referral, log.WithComponent("users")),
		Points:   points.New(st.Users, opts.Economics, log.WithComponent("points")),
		Projects: projects.New(st.Users, st.Projects, st.Participations, opts.Economics, log.WithComponent("projects")),
		Stats:    stats.New(st.Users, st.Projects, log.WithComponent("stats")),
	}
	if opts.Verifier != nil {
		app.Points.AttachVerifier(opts.Verifier)
	}
	if opts.Events != nil {
		app.Points.AttachPublisher(opts.Events)
		app.Projects.AttachPublisher(opts.Events)
	}
	return app
}
