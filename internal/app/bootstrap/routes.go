// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	adminloginfeature "github.com/aiesociety/aiesweb/internal/app/features/adminlogin"
	assistfeature "github.com/aiesociety/aiesweb/internal/app/features/assist"
	catalogfeature "github.com/aiesociety/aiesweb/internal/app/features/catalog"
	countersfeature "github.com/aiesociety/aiesweb/internal/app/features/counters"
	errorsfeature "github.com/aiesociety/aiesweb/internal/app/features/errors"
	healthfeature "github.com/aiesociety/aiesweb/internal/app/features/health"
	logoutfeature "github.com/aiesociety/aiesweb/internal/app/features/logout"
	papersfeature "github.com/aiesociety/aiesweb/internal/app/features/papers"
	publicfeature "github.com/aiesociety/aiesweb/internal/app/features/public"
	registrationfeature "github.com/aiesociety/aiesweb/internal/app/features/registration"
	registrationsfeature "github.com/aiesociety/aiesweb/internal/app/features/registrations"
	uploadsfeature "github.com/aiesociety/aiesweb/internal/app/features/uploads"
	userinfofeature "github.com/aiesociety/aiesweb/internal/app/features/userinfo"
	catalogstore "github.com/aiesociety/aiesweb/internal/app/store/catalog"
	registrationstore "github.com/aiesociety/aiesweb/internal/app/store/registrations"
	settingsstore "github.com/aiesociety/aiesweb/internal/app/store/settings"
	"github.com/aiesociety/aiesweb/internal/app/system/assist"
	"github.com/aiesociety/aiesweb/internal/app/system/auth"
	"github.com/aiesociety/aiesweb/internal/app/system/journalmetrics"
	"github.com/aiesociety/aiesweb/internal/app/system/ratelimit"
	"github.com/aiesociety/aiesweb/internal/app/system/schema"
	"github.com/aiesociety/aiesweb/internal/app/system/viewcache"
	"github.com/aiesociety/aiesweb/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: any DB or backend clients bundled in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// The router serves the public listings, the applicant and member API, and
// the administrator API behind a role check.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionTTL, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	errLog := errorsfeature.NewErrorLogger(logger)
	views := viewcache.New(appCfg.ViewCacheTTL, logger)
	validator := schema.New()
	db := deps.MongoDatabase

	catalogDeps := catalogstore.Deps{
		DB:        db,
		Blobs:     deps.Blobs,
		Views:     views,
		Validator: validator,
		Log:       logger,
	}
	courses := catalogstore.New[models.Course](catalogDeps)
	partners := catalogstore.New[models.Partner](catalogDeps)
	events := catalogstore.New[models.Event](catalogDeps)
	journals := catalogstore.New[models.Journal](catalogDeps)
	papers := catalogstore.New[models.Paper](catalogDeps)
	resources := catalogstore.New[models.Resource](catalogDeps)
	members := catalogstore.New[models.Member](catalogDeps)

	registrations := registrationstore.New(registrationstore.Deps{
		DB:        db,
		Blobs:     deps.Blobs,
		Views:     views,
		Validator: validator,
		Log:       logger,
		HashCost:  appCfg.PasswordHashCost,
	})
	settings := settingsstore.New(db, validator, views)

	var assistSvc *assist.Service
	if deps.TextModel != nil {
		assistSvc = assist.New(deps.TextModel, logger)
	}
	var metrics *journalmetrics.Client
	if appCfg.ElsevierAPIKey != "" {
		metrics = journalmetrics.New(appCfg.ElsevierAPIKey, appCfg.ElsevierBaseURL, logger)
	}

	r := chi.NewRouter()

	// Loads the signed session (if any) into the request context.
	r.Use(sessionMgr.LoadSession)

	r.Mount("/health", healthfeature.Routes(healthfeature.NewHandler(deps.MongoClient, appCfg.StorageType, logger)))

	// Public cached listings.
	counters := publicfeature.CountersOf(settings.Counters)
	pages := []publicfeature.Page{
		{Path: "/api/home", View: viewcache.Home, Load: publicfeature.HomeLoader(
			counters,
			publicfeature.LatestOf(events, publicfeature.HomeLimit),
			publicfeature.LatestOf(papers, publicfeature.HomeLimit),
			publicfeature.LatestOf(resources, publicfeature.HomeLimit),
		)},
		{Path: "/api/courses", View: viewcache.Courses, Load: publicfeature.ListOf(courses)},
		{Path: "/api/about", View: viewcache.Partners, Load: publicfeature.ListOf(partners)},
		{Path: "/api/events", View: viewcache.Events, Load: publicfeature.ListOf(events)},
		{Path: "/api/journals", View: viewcache.Journals, Load: publicfeature.ListOf(journals)},
		{Path: "/api/digital-library", View: viewcache.DigitalLibrary, Load: publicfeature.ListOf(papers)},
		{Path: "/api/resources", View: viewcache.Resources, Load: publicfeature.ListOf(resources)},
		{Path: "/api/membership", View: viewcache.Membership, Load: publicfeature.ListOf(members)},
		{Path: "/api/counters", View: viewcache.Counters, Load: counters},
	}
	publicfeature.MountRoutes(r, publicfeature.NewHandler(pages, views, errLog, logger))

	uploadsHandler := uploadsfeature.NewHandler(deps.Blobs, errLog, logger)
	if appCfg.StorageType == StorageLocal {
		r.Mount(appCfg.StorageLocalURL, uploadsfeature.FileRoutes(uploadsHandler))
	}

	userinfofeature.MountRoutes(r, userinfofeature.NewHandler())

	// Sign-in attempts share one limiter across the admin and member forms.
	loginLimiter := ratelimit.NewLoginLimiter()
	registrationHandler := registrationfeature.NewHandler(registrations, sessionMgr, errLog, logger)
	registrationHandler.Limiter = loginLimiter
	adminLoginHandler := adminloginfeature.NewHandler(appCfg.AdminEmail, appCfg.AdminPasswordHash, sessionMgr, errLog, logger)
	adminLoginHandler.Limiter = loginLimiter

	// Applicant, member and session endpoints.
	r.Route("/api", func(api chi.Router) {
		registrationfeature.MountRoutes(api, registrationHandler, sessionMgr)
		api.Mount("/logout", logoutfeature.Routes(logoutfeature.NewHandler(sessionMgr, logger)))
		api.Mount("/admin/login", adminloginfeature.Routes(adminLoginHandler))

		api.Group(func(signedIn chi.Router) {
			signedIn.Use(sessionMgr.RequireRole(auth.RoleAdmin, auth.RoleMember))
			signedIn.Mount("/uploads", uploadsfeature.Routes(uploadsHandler))
		})

		api.Route("/admin", func(admin chi.Router) {
			admin.Use(sessionMgr.RequireRole(auth.RoleAdmin))

			mountCatalog(admin, courses, views, errLog, logger)
			mountCatalog(admin, partners, views, errLog, logger)
			mountCatalog(admin, events, views, errLog, logger)
			mountCatalog(admin, journals, views, errLog, logger)
			mountCatalog(admin, resources, views, errLog, logger)
			mountCatalog(admin, members, views, errLog, logger)

			paperRoutes := catalogRoutes(papers, views, errLog, logger)
			papersfeature.MountRoutes(paperRoutes, papersfeature.NewHandler(papers, errLog, logger))
			admin.Mount("/"+catalogfeature.Segment(papers.Kind()), paperRoutes)

			admin.Mount("/registrations", registrationsfeature.Routes(registrationsfeature.NewHandler(registrations, errLog, logger)))
			admin.Mount("/counters", countersfeature.Routes(countersfeature.NewHandler(settings, errLog, logger)))
			admin.Mount("/assist", assistfeature.Routes(assistfeature.NewHandler(assistSvc, metrics, errLog, logger)))
		})
	})

	return r, nil
}

func catalogRoutes[T any, PT interface {
	*T
	models.Entity
}](repo *catalogstore.Repo[T, PT], views *viewcache.Cache, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) chi.Router {
	return catalogfeature.Routes(catalogfeature.NewHandler(repo, views, errLog, logger))
}

// mountCatalog mounts the CRUD router of repo's kind at /<segment>.
func mountCatalog[T any, PT interface {
	*T
	models.Entity
}](r chi.Router, repo *catalogstore.Repo[T, PT], views *viewcache.Cache, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) {
	r.Mount("/"+catalogfeature.Segment(repo.Kind()), catalogRoutes(repo, views, errLog, logger))
}
