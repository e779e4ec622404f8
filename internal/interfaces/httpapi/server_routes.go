package httpapi

import (
	"net/http"
	"time"
)

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerPublicDomainRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/divisions", handler.ListDivisions)
	mux.HandleFunc("GET /v1/divisions/{divisionID}/ladder", handler.GetDivisionLadder)
	mux.HandleFunc("GET /v1/settings", handler.GetSettings)
	mux.HandleFunc("GET /v1/teams/{teamID}", handler.GetTeam)
	mux.HandleFunc("GET /v1/teams/{teamID}/challenges", handler.ListTeamChallenges)
	mux.HandleFunc("GET /v1/teams/{teamID}/challengeable", handler.ListChallengeableTeams)
	mux.HandleFunc("GET /v1/challenges/eligibility", handler.CheckEligibility)
	mux.HandleFunc("GET /v1/challenges/{challengeID}", handler.GetChallenge)
	mux.HandleFunc("GET /v1/ws/updates", handler.StreamUpdates)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier, actionTimeout time.Duration) {
	registerAuthorizedUserRoutes(mux, handler, verifier, actionTimeout)
	registerAuthorizedTeamRoutes(mux, handler, verifier, actionTimeout)
	registerAuthorizedChallengeRoutes(mux, handler, verifier, actionTimeout)
}

func registerInternalAdminRoutes(mux *http.ServeMux, handler *Handler, internalAdminToken string, actionTimeout time.Duration) {
	mux.Handle("PUT /v1/settings", RequireInternalAdminToken(internalAdminToken, ActionTimeout(actionTimeout, http.HandlerFunc(handler.UpdateSettings))))
}

func registerAuthorizedUserRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier, actionTimeout time.Duration) {
	mux.Handle("POST /v1/users", authorizedAction(verifier, actionTimeout, handler.RegisterUser))
	mux.Handle("GET /v1/users/me", RequireAuth(verifier, http.HandlerFunc(handler.GetMe)))
}

func registerAuthorizedTeamRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier, actionTimeout time.Duration) {
	mux.Handle("POST /v1/teams", authorizedAction(verifier, actionTimeout, handler.CreateTeam))
	mux.Handle("POST /v1/teams/{teamID}/join-requests", authorizedAction(verifier, actionTimeout, handler.RequestToJoinTeam))
	mux.Handle("GET /v1/teams/{teamID}/join-requests", RequireAuth(verifier, http.HandlerFunc(handler.ListTeamJoinRequests)))
	mux.Handle("POST /v1/join-requests/{requestID}/respond", authorizedAction(verifier, actionTimeout, handler.RespondToJoinRequest))
}

func registerAuthorizedChallengeRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier, actionTimeout time.Duration) {
	mux.Handle("POST /v1/challenges", authorizedAction(verifier, actionTimeout, handler.CreateChallenge))
	mux.Handle("POST /v1/challenges/{challengeID}/respond", authorizedAction(verifier, actionTimeout, handler.RespondToChallenge))
	mux.Handle("POST /v1/challenges/{challengeID}/score", authorizedAction(verifier, actionTimeout, handler.SubmitScore))
	mux.Handle("POST /v1/challenges/{challengeID}/validate", authorizedAction(verifier, actionTimeout, handler.ValidateScore))
}

// authorizedAction is the standard wrapping for a mutating player route:
// bearer auth first, then the action timeout so a stuck store cannot hold
// the request past the client budget.
func authorizedAction(verifier TokenVerifier, actionTimeout time.Duration, handler http.HandlerFunc) http.Handler {
	return RequireAuth(verifier, ActionTimeout(actionTimeout, handler))
}
