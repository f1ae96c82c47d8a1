// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/teamlens/teamlens/internal/app/algorithm"
	activitiesfeature "github.com/teamlens/teamlens/internal/app/features/activities"
	authfeature "github.com/teamlens/teamlens/internal/app/features/auth"
	groupsfeature "github.com/teamlens/teamlens/internal/app/features/groups"
	healthfeature "github.com/teamlens/teamlens/internal/app/features/health"
	questionnairesfeature "github.com/teamlens/teamlens/internal/app/features/questionnaires"
	usersfeature "github.com/teamlens/teamlens/internal/app/features/users"
	activitystore "github.com/teamlens/teamlens/internal/app/store/activities"
	userstore "github.com/teamlens/teamlens/internal/app/store/users"
	"github.com/teamlens/teamlens/internal/app/system/auth"
	"github.com/teamlens/teamlens/internal/app/system/mailer"
	"github.com/teamlens/teamlens/internal/app/system/notify"
	"github.com/teamlens/teamlens/internal/app/teams"
)

// BuildHandler constructs the root HTTP handler (router) for this
// WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and the Startup hook have completed. TeamLens assembles its shared
// services here — session manager, notifier, membership engine,
// algorithm dispatcher, SMTP sender — and mounts the JSON feature
// routers on top of them.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.JWTSecret, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	db := deps.TeamLensMongoDatabase

	// Shared services. The notifier writes in-app notifications; the
	// engine owns every group-membership mutation; the dispatcher runs
	// grouping jobs against the external algorithm process.
	notifier := notify.New(userstore.New(db), logger)
	engine := teams.NewEngine(db, notifier, logger)
	runner := &algorithm.ExecRunner{
		Command: appCfg.AlgorithmCommand,
		Script:  appCfg.AlgorithmScript,
	}
	dispatcher := algorithm.NewDispatcher(runner, engine, activitystore.New(db), notifier, logger, appCfg.AlgorithmMaxWorkers)

	mail := &mailer.SMTPSender{
		Host:     appCfg.MailSMTPHost,
		Port:     appCfg.MailSMTPPort,
		Username: appCfg.MailSMTPUser,
		Password: appCfg.MailSMTPPass,
		From:     appCfg.MailFrom,
		FromName: appCfg.MailFromName,
		Log:      logger,
	}

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if the
	// request carries a valid session cookie. This makes the current
	// user available to all handlers via auth.CurrentUser(r).
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.TeamLensMongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication: login, logout, registration, password reset
	authHandler := authfeature.NewHandler(db, sessionMgr, mail, appCfg.BaseURL, logger)
	r.Mount("/auth", authfeature.Routes(authHandler))

	// User profiles, enrollments, questionnaire results, notifications
	usersHandler := usersfeature.NewHandler(db, logger)
	r.Mount("/users", usersfeature.Routes(usersHandler))

	// Activities plus their nested group routes. Groups are mounted
	// under the activity so every group handler can resolve its parent
	// from the URL.
	activitiesHandler := activitiesfeature.NewHandler(db, engine, dispatcher, notifier, mail, sessionMgr.Tokens(), appCfg.BaseURL, logger)
	groupsHandler := groupsfeature.NewHandler(db, engine, logger)
	r.Route("/activities", func(ar chi.Router) {
		ar.Mount("/{activityID}/groups", groupsfeature.Routes(groupsHandler))
		ar.Mount("/", activitiesfeature.Routes(activitiesHandler))
	})

	// Questionnaire editor and catalog
	questionnairesHandler := questionnairesfeature.NewHandler(db, logger)
	r.Mount("/questionnaires", questionnairesfeature.Routes(questionnairesHandler))

	return r, nil
}
