package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Keanutjardim/FRPadelLeague/internal/domain/division"
	"github.com/Keanutjardim/FRPadelLeague/internal/domain/joinrequest"
	"github.com/Keanutjardim/FRPadelLeague/internal/domain/team"
	"github.com/Keanutjardim/FRPadelLeague/internal/domain/user"
	"github.com/Keanutjardim/FRPadelLeague/internal/platform/changefeed"
	idgen "github.com/Keanutjardim/FRPadelLeague/internal/platform/id"
)

type CreateTeamInput struct {
	CreatorUserID string
	Name          string
	MemberIDs     []string
}

type RequestToJoinInput struct {
	UserID string
	TeamID string
}

type RespondToJoinRequestInput struct {
	ActorUserID string
	RequestID   string
	Accept      bool
}

// LadderEntry is one row of a division ladder, enriched with the team's
// movement since its previous position.
type LadderEntry struct {
	Team     team.Team
	Movement team.Movement
}

type TeamService struct {
	teamRepo     team.Repository
	userRepo     user.Repository
	divisionRepo division.Repository
	joinRepo     joinrequest.Repository
	notifier     Notifier
	idGen        idgen.Generator
	now          func() time.Time
}

func NewTeamService(
	teamRepo team.Repository,
	userRepo user.Repository,
	divisionRepo division.Repository,
	joinRepo joinrequest.Repository,
	notifier Notifier,
	idGen idgen.Generator,
) *TeamService {
	if notifier == nil {
		notifier = NewNoopNotifier()
	}
	return &TeamService{
		teamRepo:     teamRepo,
		userRepo:     userRepo,
		divisionRepo: divisionRepo,
		joinRepo:     joinRepo,
		notifier:     notifier,
		idGen:        idGen,
		now:          time.Now,
	}
}

// CreateTeam registers a new team in the division matching the creator's
// gender and enters it at the bottom of that ladder. The creator always
// joins the roster; every listed member must be a free agent of the same
// division.
func (s *TeamService) CreateTeam(ctx context.Context, input CreateTeamInput) (team.Team, error) {
	input.CreatorUserID = strings.TrimSpace(input.CreatorUserID)
	input.Name = strings.TrimSpace(input.Name)
	if input.CreatorUserID == "" {
		return team.Team{}, fmt.Errorf("%w: creator user id is required", ErrInvalidInput)
	}
	if input.Name == "" {
		return team.Team{}, fmt.Errorf("%w: team name is required", ErrInvalidInput)
	}

	memberIDs := []string{input.CreatorUserID}
	seen := map[string]struct{}{input.CreatorUserID: {}}
	for _, memberID := range input.MemberIDs {
		memberID = strings.TrimSpace(memberID)
		if memberID == "" {
			continue
		}
		if _, ok := seen[memberID]; ok {
			continue
		}
		seen[memberID] = struct{}{}
		memberIDs = append(memberIDs, memberID)
	}
	if len(memberIDs) > team.MaxMembers {
		return team.Team{}, fmt.Errorf("%w: roster exceeds %d members", team.ErrRosterFull, team.MaxMembers)
	}

	creator, err := s.getFreeAgent(ctx, input.CreatorUserID)
	if err != nil {
		return team.Team{}, err
	}
	divisionItem, err := s.divisionForUser(ctx, creator)
	if err != nil {
		return team.Team{}, err
	}

	for _, memberID := range memberIDs[1:] {
		member, err := s.getFreeAgent(ctx, memberID)
		if err != nil {
			return team.Team{}, err
		}
		if code, _ := member.Gender.DivisionCode(); code != divisionItem.Code {
			return team.Team{}, fmt.Errorf("%w: member %s plays in a different division", ErrInvalidInput, memberID)
		}
	}

	teamID, err := s.idGen.NewID()
	if err != nil {
		return team.Team{}, fmt.Errorf("generate team id: %w", err)
	}

	now := s.now().UTC()
	item := team.Team{
		ID:         teamID,
		DivisionID: divisionItem.ID,
		Name:       input.Name,
		Position:   1, // placeholder; the store assigns the real bottom slot
		MemberIDs:  memberIDs,
		CreatedBy:  input.CreatorUserID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := item.Validate(); err != nil {
		return team.Team{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	created, err := s.teamRepo.Create(ctx, item)
	if err != nil {
		return team.Team{}, fmt.Errorf("create team: %w", err)
	}

	s.notifier.TableChanged(ctx, changefeed.TableTeams)
	s.notifier.TableChanged(ctx, changefeed.TableUsers)
	s.notifier.Event(ctx, "team.created", created)

	return created, nil
}

func (s *TeamService) GetTeam(ctx context.Context, teamID string) (team.Team, error) {
	return s.getTeam(ctx, teamID)
}

// ListLadder returns a division's teams ordered best first, each tagged
// with its movement since the previous reshuffle.
func (s *TeamService) ListLadder(ctx context.Context, divisionID string) ([]LadderEntry, error) {
	divisionID = strings.TrimSpace(divisionID)
	if divisionID == "" {
		return nil, fmt.Errorf("%w: division id is required", ErrInvalidInput)
	}

	if _, exists, err := s.divisionRepo.GetByID(ctx, divisionID); err != nil {
		return nil, fmt.Errorf("get division: %w", err)
	} else if !exists {
		return nil, fmt.Errorf("%w: division=%s", ErrNotFound, divisionID)
	}

	teams, err := s.teamRepo.ListByDivision(ctx, divisionID)
	if err != nil {
		return nil, fmt.Errorf("list teams by division: %w", err)
	}

	entries := make([]LadderEntry, 0, len(teams))
	for _, item := range teams {
		entries = append(entries, LadderEntry{
			Team:     item,
			Movement: team.ResolveMovement(item.Position, item.PreviousPosition),
		})
	}

	return entries, nil
}

// RequestToJoin files a pending join request from a free agent to a team of
// their own division. A player can hold at most one pending request per
// team.
func (s *TeamService) RequestToJoin(ctx context.Context, input RequestToJoinInput) (joinrequest.JoinRequest, error) {
	input.UserID = strings.TrimSpace(input.UserID)
	input.TeamID = strings.TrimSpace(input.TeamID)
	if input.UserID == "" {
		return joinrequest.JoinRequest{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if input.TeamID == "" {
		return joinrequest.JoinRequest{}, fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}

	applicant, err := s.getFreeAgent(ctx, input.UserID)
	if err != nil {
		return joinrequest.JoinRequest{}, err
	}
	teamItem, err := s.getTeam(ctx, input.TeamID)
	if err != nil {
		return joinrequest.JoinRequest{}, err
	}
	if teamItem.IsFull() {
		return joinrequest.JoinRequest{}, fmt.Errorf("%w: team=%s", team.ErrRosterFull, teamItem.ID)
	}

	divisionItem, err := s.divisionForUser(ctx, applicant)
	if err != nil {
		return joinrequest.JoinRequest{}, err
	}
	if teamItem.DivisionID != divisionItem.ID {
		return joinrequest.JoinRequest{}, fmt.Errorf("%w: team plays in a different division", ErrInvalidInput)
	}

	if _, exists, err := s.joinRepo.FindPendingByUserAndTeam(ctx, input.UserID, input.TeamID); err != nil {
		return joinrequest.JoinRequest{}, fmt.Errorf("find pending join request: %w", err)
	} else if exists {
		return joinrequest.JoinRequest{}, fmt.Errorf("%w: join request already pending", ErrInvalidInput)
	}

	requestID, err := s.idGen.NewID()
	if err != nil {
		return joinrequest.JoinRequest{}, fmt.Errorf("generate join request id: %w", err)
	}

	now := s.now().UTC()
	request := joinrequest.JoinRequest{
		ID:        requestID,
		UserID:    input.UserID,
		TeamID:    input.TeamID,
		Status:    joinrequest.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.joinRepo.Create(ctx, request); err != nil {
		return joinrequest.JoinRequest{}, fmt.Errorf("create join request: %w", err)
	}

	s.notifier.TableChanged(ctx, changefeed.TableJoinRequests)
	s.notifier.Event(ctx, "joinrequest.created", request)

	return request, nil
}

// RespondToJoinRequest lets a member of the target team accept or decline a
// pending request. Acceptance adds the player to the roster and binds their
// membership; it fails when the roster is already at capacity or the player
// joined another team in the meantime.
func (s *TeamService) RespondToJoinRequest(ctx context.Context, input RespondToJoinRequestInput) (joinrequest.JoinRequest, error) {
	input.ActorUserID = strings.TrimSpace(input.ActorUserID)
	input.RequestID = strings.TrimSpace(input.RequestID)
	if input.ActorUserID == "" {
		return joinrequest.JoinRequest{}, fmt.Errorf("%w: actor user id is required", ErrInvalidInput)
	}
	if input.RequestID == "" {
		return joinrequest.JoinRequest{}, fmt.Errorf("%w: request id is required", ErrInvalidInput)
	}

	request, exists, err := s.joinRepo.GetByID(ctx, input.RequestID)
	if err != nil {
		return joinrequest.JoinRequest{}, fmt.Errorf("get join request: %w", err)
	}
	if !exists {
		return joinrequest.JoinRequest{}, fmt.Errorf("%w: join request=%s", ErrNotFound, input.RequestID)
	}
	if !request.IsPending() {
		return joinrequest.JoinRequest{}, fmt.Errorf("%w: join request already %s", ErrInvalidInput, request.Status)
	}

	teamItem, err := s.getTeam(ctx, request.TeamID)
	if err != nil {
		return joinrequest.JoinRequest{}, err
	}
	if !teamItem.HasMember(input.ActorUserID) {
		return joinrequest.JoinRequest{}, fmt.Errorf("%w: only team members can respond to join requests", ErrUnauthorized)
	}

	now := s.now().UTC()
	if !input.Accept {
		request.Status = joinrequest.StatusDeclined
		request.UpdatedAt = now
		if err := s.joinRepo.Update(ctx, request); err != nil {
			return joinrequest.JoinRequest{}, fmt.Errorf("decline join request: %w", err)
		}

		s.notifier.TableChanged(ctx, changefeed.TableJoinRequests)
		s.notifier.Event(ctx, "joinrequest.responded", request)

		return request, nil
	}

	applicant, exists, err := s.userRepo.GetByID(ctx, request.UserID)
	if err != nil {
		return joinrequest.JoinRequest{}, fmt.Errorf("get applicant: %w", err)
	}
	if !exists {
		return joinrequest.JoinRequest{}, fmt.Errorf("%w: user=%s", ErrNotFound, request.UserID)
	}
	if applicant.HasTeam() && applicant.TeamID != teamItem.ID {
		return joinrequest.JoinRequest{}, fmt.Errorf("%w: applicant already joined another team", ErrInvalidInput)
	}
	if teamItem.IsFull() && !teamItem.HasMember(request.UserID) {
		return joinrequest.JoinRequest{}, fmt.Errorf("%w: team=%s", team.ErrRosterFull, teamItem.ID)
	}

	// Roster first, then the request record: AddMember is idempotent, so a
	// retry after a partial failure converges.
	if err := s.teamRepo.AddMember(ctx, teamItem.ID, request.UserID); err != nil {
		if errors.Is(err, team.ErrRosterFull) {
			return joinrequest.JoinRequest{}, fmt.Errorf("%w: team=%s", team.ErrRosterFull, teamItem.ID)
		}
		return joinrequest.JoinRequest{}, fmt.Errorf("add member to team: %w", err)
	}

	request.Status = joinrequest.StatusAccepted
	request.UpdatedAt = now
	if err := s.joinRepo.Update(ctx, request); err != nil {
		return joinrequest.JoinRequest{}, fmt.Errorf("accept join request: %w", err)
	}

	s.notifier.TableChanged(ctx, changefeed.TableTeams)
	s.notifier.TableChanged(ctx, changefeed.TableUsers)
	s.notifier.TableChanged(ctx, changefeed.TableJoinRequests)
	s.notifier.Event(ctx, "joinrequest.responded", request)

	return request, nil
}

// ListJoinRequests returns a team's join requests to its own members.
func (s *TeamService) ListJoinRequests(ctx context.Context, actorUserID, teamID string) ([]joinrequest.JoinRequest, error) {
	actorUserID = strings.TrimSpace(actorUserID)
	teamID = strings.TrimSpace(teamID)
	if actorUserID == "" {
		return nil, fmt.Errorf("%w: actor user id is required", ErrInvalidInput)
	}
	if teamID == "" {
		return nil, fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}

	teamItem, err := s.getTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if !teamItem.HasMember(actorUserID) {
		return nil, fmt.Errorf("%w: only team members can view join requests", ErrUnauthorized)
	}

	requests, err := s.joinRepo.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("list join requests by team: %w", err)
	}

	return requests, nil
}

func (s *TeamService) getTeam(ctx context.Context, teamID string) (team.Team, error) {
	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		return team.Team{}, fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}

	item, exists, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return team.Team{}, fmt.Errorf("get team by id: %w", err)
	}
	if !exists {
		return team.Team{}, fmt.Errorf("%w: team=%s", ErrNotFound, teamID)
	}

	return item, nil
}

func (s *TeamService) getFreeAgent(ctx context.Context, userID string) (user.User, error) {
	item, exists, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return user.User{}, fmt.Errorf("get user by id: %w", err)
	}
	if !exists {
		return user.User{}, fmt.Errorf("%w: user=%s", ErrNotFound, userID)
	}
	if item.HasTeam() {
		return user.User{}, fmt.Errorf("%w: user %s already belongs to a team", ErrInvalidInput, userID)
	}

	return item, nil
}

func (s *TeamService) divisionForUser(ctx context.Context, item user.User) (division.Division, error) {
	code, ok := item.Gender.DivisionCode()
	if !ok {
		return division.Division{}, fmt.Errorf("%w: user %s has no division", ErrInvalidInput, item.ID)
	}

	divisionItem, exists, err := s.divisionRepo.GetByCode(ctx, code)
	if err != nil {
		return division.Division{}, fmt.Errorf("get division by code: %w", err)
	}
	if !exists {
		return division.Division{}, fmt.Errorf("%w: division %q is not configured", ErrDependencyUnavailable, code)
	}

	return divisionItem, nil
}
