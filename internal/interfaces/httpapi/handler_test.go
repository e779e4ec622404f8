package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/Keanutjardim/FRPadelLeague/internal/domain/user"
	"github.com/Keanutjardim/FRPadelLeague/internal/infrastructure/repository/memory"
	"github.com/Keanutjardim/FRPadelLeague/internal/platform/changefeed"
	"github.com/Keanutjardim/FRPadelLeague/internal/platform/id"
	"github.com/Keanutjardim/FRPadelLeague/internal/usecase"
)

const testAdminToken = "ladder-admin-secret"

// verifierFunc treats the bearer token as the user id, which keeps the
// handler tests focused on routing and wiring instead of token plumbing.
type verifierFunc func(context.Context, string) (user.Principal, error)

func (f verifierFunc) VerifyAccessToken(ctx context.Context, token string) (user.Principal, error) {
	return f(ctx, token)
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	users := memory.NewUserRepository(memory.SeedUsers())
	teams := memory.NewTeamRepository(memory.SeedTeams(), users)
	divisions := memory.NewDivisionRepository(memory.SeedDivisions())
	settings := memory.NewSeededSettingsRepository(memory.SeedSettings())
	challenges := memory.NewChallengeRepository()
	joinRequests := memory.NewJoinRequestRepository()
	idGen := id.NewRandomGenerator()

	ranking := usecase.NewRankingService(teams, nil, nil)
	divisionService := usecase.NewDivisionService(divisions, settings, nil)
	userService := usecase.NewUserService(users, divisions, idGen)
	teamService := usecase.NewTeamService(teams, users, divisions, joinRequests, nil, idGen)
	challengeService := usecase.NewChallengeService(challenges, teams, settings, ranking, nil, idGen)

	handler := NewHandler(divisionService, userService, teamService, challengeService, changefeed.NewBus(), nil)

	verifier := verifierFunc(func(_ context.Context, token string) (user.Principal, error) {
		return user.Principal{UserID: token, Email: token + "@club.test"}, nil
	})

	return NewRouter(handler, verifier, nil, false, nil, testAdminToken, 15*time.Second)
}

func doRequest(t *testing.T, router http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()

	var envelope struct {
		APIVersion string          `json:"apiVersion"`
		Data       json.RawMessage `json:"data"`
	}
	if err := sonic.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal envelope: %v (body=%s)", err, rec.Body.String())
	}
	if envelope.APIVersion != "2.0" {
		t.Fatalf("expected apiVersion 2.0, got %q", envelope.APIVersion)
	}
	if err := sonic.Unmarshal(envelope.Data, out); err != nil {
		t.Fatalf("unmarshal data: %v (body=%s)", err, rec.Body.String())
	}
}

func decodeErrorReason(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var envelope struct {
		Error struct {
			Errors []struct {
				Reason string `json:"reason"`
			} `json:"errors"`
		} `json:"error"`
	}
	if err := sonic.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal error envelope: %v (body=%s)", err, rec.Body.String())
	}
	if len(envelope.Error.Errors) == 0 {
		t.Fatalf("expected error details in body %s", rec.Body.String())
	}
	return envelope.Error.Errors[0].Reason
}

type teamPayload struct {
	ID               string   `json:"id"`
	DivisionID       string   `json:"divisionId"`
	Name             string   `json:"name"`
	Position         int      `json:"position"`
	PreviousPosition *int     `json:"previousPosition"`
	MemberIDs        []string `json:"memberIds"`
}

type ladderEntryPayload struct {
	Team     teamPayload `json:"team"`
	Movement string      `json:"movement"`
}

type challengePayload struct {
	ID               string `json:"id"`
	DivisionID       string `json:"divisionId"`
	ChallengerTeamID string `json:"challengerTeamId"`
	ChallengedTeamID string `json:"challengedTeamId"`
	Status           string `json:"status"`
	ChallengerSets   []int  `json:"challengerSets"`
	ChallengedSets   []int  `json:"challengedSets"`
	ScoreValidated   bool   `json:"scoreValidated"`
	WinnerTeamID     string `json:"winnerTeamId"`
}

type joinRequestPayload struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	TeamID string `json:"teamId"`
	Status string `json:"status"`
}

func TestRouter_Healthz(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/healthz", "", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var data map[string]string
	decodeData(t, rec, &data)
	if data["status"] != "ok" {
		t.Fatalf("expected status ok, got %q", data["status"])
	}
}

func TestRouter_LadderOrderedByPosition(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/v1/divisions/div-men/ladder", "", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var entries []ladderEntryPayload
	decodeData(t, rec, &entries)
	if len(entries) != 3 {
		t.Fatalf("expected 3 ladder entries, got %d", len(entries))
	}
	for i, entry := range entries {
		if entry.Team.Position != i+1 {
			t.Fatalf("expected position %d at index %d, got %d", i+1, i, entry.Team.Position)
		}
	}
	if entries[0].Team.ID != "team-smashers" {
		t.Fatalf("expected team-smashers on top, got %s", entries[0].Team.ID)
	}
}

func TestRouter_RegisterProfileAndFetchMe(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/v1/users", "usr-fresh",
		`{"name":"Nina Swart","gender":"female","rating":1200}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created struct {
		ID     string `json:"id"`
		Gender string `json:"gender"`
		Email  string `json:"email"`
	}
	decodeData(t, rec, &created)
	if created.ID != "usr-fresh" {
		t.Fatalf("expected profile under the caller id, got %q", created.ID)
	}
	if created.Email != "usr-fresh@club.test" {
		t.Fatalf("expected email from the token principal, got %q", created.Email)
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/users/me", "usr-fresh", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var me struct {
		Name string `json:"name"`
	}
	decodeData(t, rec, &me)
	if me.Name != "Nina Swart" {
		t.Fatalf("expected the registered name, got %q", me.Name)
	}
}

func TestRouter_CreateTeamEntersAtBottom(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/v1/teams", "usr-carla", `{"name":"Net Ninjas"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created teamPayload
	decodeData(t, rec, &created)
	if created.DivisionID != memory.DivisionIDWomen {
		t.Fatalf("expected the women's division, got %s", created.DivisionID)
	}
	if created.Position != 3 {
		t.Fatalf("expected bottom position 3, got %d", created.Position)
	}
	if len(created.MemberIDs) != 1 || created.MemberIDs[0] != "usr-carla" {
		t.Fatalf("expected the creator as only member, got %v", created.MemberIDs)
	}
}

func TestRouter_MutationsRequireAuth(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/v1/challenges", "",
		`{"challenger_team_id":"team-loopers","challenged_team_id":"team-drivers"}`)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestRouter_ChallengeLifecycleMovesLadder(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/v1/challenges", "usr-dawid",
		`{"challenger_team_id":"team-loopers","challenged_team_id":"team-drivers"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create challenge: expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created challengePayload
	decodeData(t, rec, &created)
	if created.Status != "accepted" {
		t.Fatalf("expected auto-accepted challenge, got status %q", created.Status)
	}

	scoreBody := `{"challenger_sets":[6,6],"challenged_sets":[3,4]}`
	rec = doRequest(t, router, http.MethodPost, "/v1/challenges/"+created.ID+"/score", "usr-dawid", scoreBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("submit score: expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var scored challengePayload
	decodeData(t, rec, &scored)
	if scored.Status != "completed" || scored.ScoreValidated {
		t.Fatalf("expected completed unvalidated challenge, got status=%q validated=%v", scored.Status, scored.ScoreValidated)
	}

	// The submitting side cannot settle its own score.
	rec = doRequest(t, router, http.MethodPost, "/v1/challenges/"+created.ID+"/validate", "usr-dawid", `{"accept":true}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("self-validate: expected status 401, got %d: %s", rec.Code, rec.Body.String())
	}

	// A dispute clears the score and reopens the challenge.
	rec = doRequest(t, router, http.MethodPost, "/v1/challenges/"+created.ID+"/validate", "usr-jaco", `{"accept":false}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("dispute: expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var disputed struct {
		Challenge challengePayload `json:"challenge"`
	}
	decodeData(t, rec, &disputed)
	if disputed.Challenge.Status != "accepted" || len(disputed.Challenge.ChallengerSets) != 0 {
		t.Fatalf("expected reopened challenge without score, got %+v", disputed.Challenge)
	}

	rec = doRequest(t, router, http.MethodPost, "/v1/challenges/"+created.ID+"/score", "usr-dawid", scoreBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("resubmit score: expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, router, http.MethodPost, "/v1/challenges/"+created.ID+"/validate", "usr-jaco", `{"accept":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("validate: expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var validated struct {
		Challenge challengePayload `json:"challenge"`
		Reshuffle *struct {
			WinnerTeamID string `json:"winnerTeamId"`
			Changes      []struct {
				TeamID   string `json:"teamId"`
				Position int    `json:"position"`
			} `json:"changes"`
		} `json:"reshuffle"`
	}
	decodeData(t, rec, &validated)
	if !validated.Challenge.ScoreValidated || validated.Challenge.WinnerTeamID != "team-loopers" {
		t.Fatalf("expected validated win for team-loopers, got %+v", validated.Challenge)
	}
	if validated.Reshuffle == nil || len(validated.Reshuffle.Changes) != 2 {
		t.Fatalf("expected a two-team reshuffle, got %+v", validated.Reshuffle)
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/divisions/div-men/ladder", "", "")
	var entries []ladderEntryPayload
	decodeData(t, rec, &entries)
	wantOrder := []string{"team-smashers", "team-loopers", "team-drivers"}
	for i, want := range wantOrder {
		if entries[i].Team.ID != want {
			t.Fatalf("expected %s at position %d, got %s", want, i+1, entries[i].Team.ID)
		}
	}
	if entries[1].Movement != "up" || entries[2].Movement != "down" {
		t.Fatalf("expected up/down movement markers, got %s/%s", entries[1].Movement, entries[2].Movement)
	}
}

func TestRouter_RejectsImpossibleSetScore(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/v1/challenges", "usr-dawid",
		`{"challenger_team_id":"team-loopers","challenged_team_id":"team-drivers"}`)
	var created challengePayload
	decodeData(t, rec, &created)

	rec = doRequest(t, router, http.MethodPost, "/v1/challenges/"+created.ID+"/score", "usr-dawid",
		`{"challenger_sets":[6,6],"challenged_sets":[5,4]}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if reason := decodeErrorReason(t, rec); reason != "invalidScore" {
		t.Fatalf("expected reason invalidScore, got %q", reason)
	}
}

func TestRouter_EligibilityVerdicts(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet,
		"/v1/challenges/eligibility?challenger_team_id=team-loopers&challenged_team_id=team-smashers", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var verdict struct {
		Eligible bool   `json:"eligible"`
		Reason   string `json:"reason"`
	}
	decodeData(t, rec, &verdict)
	if !verdict.Eligible {
		t.Fatalf("expected an eligible pairing, got reason %q", verdict.Reason)
	}

	rec = doRequest(t, router, http.MethodGet,
		"/v1/challenges/eligibility?challenger_team_id=team-smashers&challenged_team_id=team-loopers", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	decodeData(t, rec, &verdict)
	if verdict.Eligible || verdict.Reason == "" {
		t.Fatalf("expected an ineligible verdict with a reason, got %+v", verdict)
	}
}

func TestRouter_SettingsGuardedByInternalToken(t *testing.T) {
	router := newTestRouter(t)
	body := `{"challenge_cutover_at":"2026-09-01T00:00:00Z","max_position_difference":2}`

	rec := doRequest(t, router, http.MethodPut, "/v1/settings", "", body)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 without the admin token, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPut, "/v1/settings", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Internal-Admin-Token", testAdminToken)
	withToken := httptest.NewRecorder()
	router.ServeHTTP(withToken, req)

	if withToken.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", withToken.Code, withToken.Body.String())
	}
	var updated struct {
		MaxPositionDifference int `json:"maxPositionDifference"`
	}
	decodeData(t, withToken, &updated)
	if updated.MaxPositionDifference != 2 {
		t.Fatalf("expected max_position_difference 2, got %d", updated.MaxPositionDifference)
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/settings", "", "")
	decodeData(t, rec, &updated)
	if updated.MaxPositionDifference != 2 {
		t.Fatalf("expected the update to be readable, got %d", updated.MaxPositionDifference)
	}
}

func TestRouter_JoinRequestFlowFillsRoster(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/v1/teams/team-loopers/join-requests", "usr-wihan", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("request to join: expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var request joinRequestPayload
	decodeData(t, rec, &request)
	if request.Status != "pending" || request.UserID != "usr-wihan" {
		t.Fatalf("expected a pending request for usr-wihan, got %+v", request)
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/teams/team-loopers/join-requests", "usr-dawid", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list join requests: expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var pending []joinRequestPayload
	decodeData(t, rec, &pending)
	if len(pending) != 1 || pending[0].ID != request.ID {
		t.Fatalf("expected the pending request to be listed, got %+v", pending)
	}

	rec = doRequest(t, router, http.MethodPost, "/v1/join-requests/"+request.ID+"/respond", "usr-dawid", `{"accept":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("respond: expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resolved joinRequestPayload
	decodeData(t, rec, &resolved)
	if resolved.Status != "accepted" {
		t.Fatalf("expected an accepted request, got %q", resolved.Status)
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/teams/team-loopers", "", "")
	var roster teamPayload
	decodeData(t, rec, &roster)
	if len(roster.MemberIDs) != 3 {
		t.Fatalf("expected 3 members after the join, got %v", roster.MemberIDs)
	}
}
