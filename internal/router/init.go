package router

import (
	"github.com/oksasatya/qms-core/internal/application"
	"github.com/oksasatya/qms-core/internal/container"
	pginfra "github.com/oksasatya/qms-core/internal/infrastructure/postgres"
	handlers "github.com/oksasatya/qms-core/internal/interface/http"
	"github.com/oksasatya/qms-core/internal/router/modules"
)

type qmsDeps struct {
	Actors         *handlers.ActorHandler
	Authorization  *handlers.AuthorizationHandler
	Complaints     *handlers.ComplaintHandler
	ChangeControls *handlers.ChangeControlHandler
	Presentation   *handlers.PresentationHandler
}

func buildDeps() qmsDeps {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	pool := container.GetPGPool()

	actorRepo := pginfra.NewActorRepository(pool)
	roleRepo := pginfra.NewRoleRepository(pool)
	complaintRepo := pginfra.NewComplaintRepository(pool)
	changeRepo := pginfra.NewChangeControlRepository(pool)

	gate := application.NewAuthorizationGate(roleRepo, logger, cfg.AuthzLookupTimeout)

	// a nil *RabbitPublisher must not become a non-nil interface
	var pub application.Publisher
	if p := container.GetRabbitPub(); p != nil {
		pub = p
	}

	actorSvc := application.NewActorService(actorRepo, roleRepo, container.GetJWT(), container.GetRedis(), logger)
	complaintSvc := application.NewComplaintService(complaintRepo, container.GetES(), cfg.ESComplaintsIndex, container.GetGCS(), cfg.GCSBucket, logger)
	changeSvc := application.NewChangeControlService(changeRepo, actorRepo, gate, pub, cfg, logger)

	return qmsDeps{
		Actors:         handlers.NewActorHandler(actorSvc, logger, cfg.CookieDomain, cfg.CookieSecure),
		Authorization:  handlers.NewAuthorizationHandler(gate),
		Complaints:     handlers.NewComplaintHandler(complaintSvc, logger),
		ChangeControls: handlers.NewChangeControlHandler(changeSvc, gate, logger),
		Presentation:   handlers.NewPresentationHandler(),
	}
}

// InitModules builds every feature module from the container and adds it to the registry.
// Call once during startup, after the container is populated.
func InitModules(r *Registry) {
	deps := buildDeps()
	jwt := container.GetJWT()

	r.Add(modules.NewActorModule(deps.Actors, jwt))
	r.Add(modules.NewComplaintModule(deps.Complaints, jwt))
	r.Add(modules.NewChangeControlModule(deps.ChangeControls, deps.Authorization, jwt))
	r.Add(modules.NewPresentationModule(deps.Presentation))
	if container.GetConfig().DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
