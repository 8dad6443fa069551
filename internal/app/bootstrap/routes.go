// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	authgooglefeature "github.com/presently-app/presently/internal/app/features/authgoogle"
	claimsfeature "github.com/presently-app/presently/internal/app/features/claims"
	giftsfeature "github.com/presently-app/presently/internal/app/features/gifts"
	healthfeature "github.com/presently-app/presently/internal/app/features/health"
	heartbeatfeature "github.com/presently-app/presently/internal/app/features/heartbeat"
	invitationsfeature "github.com/presently-app/presently/internal/app/features/invitations"
	logoutfeature "github.com/presently-app/presently/internal/app/features/logout"
	occasionsfeature "github.com/presently-app/presently/internal/app/features/occasions"
	profilefeature "github.com/presently-app/presently/internal/app/features/profile"
	signupsfeature "github.com/presently-app/presently/internal/app/features/signups"
	accountstore "github.com/presently-app/presently/internal/app/store/accounts"
	claimstore "github.com/presently-app/presently/internal/app/store/claims"
	giftstore "github.com/presently-app/presently/internal/app/store/gifts"
	invitationstore "github.com/presently-app/presently/internal/app/store/invitations"
	loginstore "github.com/presently-app/presently/internal/app/store/logins"
	occasionstore "github.com/presently-app/presently/internal/app/store/occasions"
	participantstore "github.com/presently-app/presently/internal/app/store/participants"
	profilestore "github.com/presently-app/presently/internal/app/store/profiles"
	"github.com/presently-app/presently/internal/app/store/queries/cascade"
	"github.com/presently-app/presently/internal/app/store/queries/participation"
	signupstore "github.com/presently-app/presently/internal/app/store/signups"
	"github.com/presently-app/presently/internal/app/system/auth"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this
// WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and the Startup hook have completed. It builds every store once,
// hands them to the feature handlers, and mounts the feature routers:
//
//	/health            liveness + Mongo reachability
//	/heartbeat         trivial liveness probe
//	/auth/google       Google OAuth login and callback
//	/logout            session teardown
//	/api               profile endpoints (me, rename, nickname, lookup)
//	/api/occasions     occasion CRUD, participants, nested gifts/claims
//	/api/invitations   invite, accept, ignore, retract
//	/api/signups       signup requests (mine, per occasion, approve)
//	/api/signup        token preview and request
//	/api/gifts         single-gift read, edit, delete
//	/api/claims        claim and release
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	if err := auth.InitSessionStore(appCfg.SessionKey, appCfg.SessionDomain, secure, logger); err != nil {
		logger.Error("session store init failed", zap.Error(err))
		return nil, err
	}

	db := deps.MongoDatabase

	accounts := accountstore.New(db)
	profiles := profilestore.New(db)
	logins := loginstore.New(db)
	occasions := occasionstore.New(db)
	participants := participantstore.New(db)
	invitations := invitationstore.New(db)
	signups := signupstore.New(db)
	gifts := giftstore.New(db)
	claims := claimstore.New(db)

	part := participation.New(db)
	casc := cascade.New(db, logger)

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged
	// in, making the current user available via auth.CurrentUser(r).
	r.Use(auth.LoadSessionUser)

	// Health check endpoints for load balancers and orchestrators.
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	r.Mount("/heartbeat", heartbeatfeature.Routes(heartbeatfeature.NewHandler()))

	// Authentication.
	googleHandler := authgooglefeature.NewHandler(
		accounts, logins,
		appCfg.GoogleClientID, appCfg.GoogleClientSecret,
		appCfg.BaseURL, appCfg.SessionKey, logger)
	r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))

	logoutHandler := logoutfeature.NewHandler(logins, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	// Profiles.
	profileHandler := profilefeature.NewHandler(profiles, logger)
	r.Mount("/api", profilefeature.Routes(profileHandler))

	// Occasions with nested gift and claim routers. The subrouters are
	// mounted inside /{occasionID} so chi hands them the occasion ID.
	giftHandler := giftsfeature.NewHandler(gifts, occasions, participants, logger)
	claimHandler := claimsfeature.NewHandler(claims, gifts, occasions, participants, logger)
	occasionHandler := occasionsfeature.NewHandler(occasions, participants, profiles, part, casc, logger)
	r.Mount("/api/occasions", occasionsfeature.Routes(occasionHandler,
		giftsfeature.OccasionRoutes(giftHandler),
		claimsfeature.OccasionRoutes(claimHandler)))

	r.Mount("/api/gifts", giftsfeature.Routes(giftHandler))
	r.Mount("/api/claims", claimsfeature.Routes(claimHandler))

	// Joining: invitations from organizers, signup requests from link
	// holders.
	invitationHandler := invitationsfeature.NewHandler(invitations, occasions, participants, profiles, part, logger)
	r.Mount("/api/invitations", invitationsfeature.Routes(invitationHandler))

	signupHandler := signupsfeature.NewHandler(signups, occasions, participants, profiles, part, logger)
	r.Mount("/api/signups", signupsfeature.Routes(signupHandler))
	r.Mount("/api/signup", signupsfeature.TokenRoutes(signupHandler))

	return r, nil
}
