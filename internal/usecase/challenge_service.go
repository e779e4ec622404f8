package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Keanutjardim/FRPadelLeague/internal/domain/challenge"
	"github.com/Keanutjardim/FRPadelLeague/internal/domain/division"
	"github.com/Keanutjardim/FRPadelLeague/internal/domain/team"
	"github.com/Keanutjardim/FRPadelLeague/internal/platform/changefeed"
	idgen "github.com/Keanutjardim/FRPadelLeague/internal/platform/id"
)

type CreateChallengeInput struct {
	ActorUserID      string
	ChallengerTeamID string
	ChallengedTeamID string
}

type RespondToChallengeInput struct {
	ActorUserID string
	ChallengeID string
	Accept      bool
}

type SubmitScoreInput struct {
	ActorUserID    string
	ChallengeID    string
	ChallengerSets []int
	ChallengedSets []int
}

type ValidateScoreInput struct {
	ActorUserID string
	ChallengeID string
	Accept      bool
}

// ValidateScoreResult carries the validation outcome plus the ladder
// reshuffle it triggered, if any.
type ValidateScoreResult struct {
	Challenge challenge.Challenge
	Reshuffle LadderReshuffle
}

// ladderReshuffler is the slice of RankingService the challenge flow needs.
type ladderReshuffler interface {
	ApplyValidatedResult(ctx context.Context, divisionID, winnerTeamID, loserTeamID string) (LadderReshuffle, error)
}

type ChallengeService struct {
	challengeRepo challenge.Repository
	teamRepo      team.Repository
	settingsRepo  division.SettingsRepository
	ranking       ladderReshuffler
	notifier      Notifier
	idGen         idgen.Generator
	now           func() time.Time
}

func NewChallengeService(
	challengeRepo challenge.Repository,
	teamRepo team.Repository,
	settingsRepo division.SettingsRepository,
	ranking ladderReshuffler,
	notifier Notifier,
	idGen idgen.Generator,
) *ChallengeService {
	if notifier == nil {
		notifier = NewNoopNotifier()
	}
	return &ChallengeService{
		challengeRepo: challengeRepo,
		teamRepo:      teamRepo,
		settingsRepo:  settingsRepo,
		ranking:       ranking,
		notifier:      notifier,
		idGen:         idGen,
		now:           time.Now,
	}
}

// CanChallenge runs the eligibility rules for the pairing without touching
// any state; nil means the challenge would be allowed right now.
func (s *ChallengeService) CanChallenge(ctx context.Context, challengerTeamID, challengedTeamID string) error {
	challenger, challenged, err := s.getPairing(ctx, challengerTeamID, challengedTeamID)
	if err != nil {
		return err
	}

	settings, err := s.getSettings(ctx)
	if err != nil {
		return err
	}

	return challenge.CanChallenge(challenger, challenged, settings, s.now().UTC())
}

// ListChallengeable returns the division teams the challenger could pick
// right now: eligible under the ladder rules and not already locked in an
// active challenge with the challenger, ordered best first.
func (s *ChallengeService) ListChallengeable(ctx context.Context, challengerTeamID string) ([]team.Team, error) {
	challengerTeamID = strings.TrimSpace(challengerTeamID)
	if challengerTeamID == "" {
		return nil, fmt.Errorf("%w: challenger team id is required", ErrInvalidInput)
	}

	challenger, err := s.getTeam(ctx, challengerTeamID)
	if err != nil {
		return nil, err
	}

	settings, err := s.getSettings(ctx)
	if err != nil {
		return nil, err
	}

	teams, err := s.teamRepo.ListByDivision(ctx, challenger.DivisionID)
	if err != nil {
		return nil, fmt.Errorf("list teams by division: %w", err)
	}

	now := s.now().UTC()
	targets := make([]team.Team, 0, len(teams))
	for _, candidate := range teams {
		if challenge.CanChallenge(challenger, candidate, settings, now) != nil {
			continue
		}
		if _, busy, err := s.challengeRepo.FindActiveBetween(ctx, challenger.ID, candidate.ID); err != nil {
			return nil, fmt.Errorf("find active challenge: %w", err)
		} else if busy {
			continue
		}
		targets = append(targets, candidate)
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i].Position < targets[j].Position })

	return targets, nil
}

// CreateChallenge opens a duel between the actor's team and a higher-ranked
// target. Club policy makes challenges binding, so the new record starts
// accepted. At most one active challenge may exist between any two teams,
// in either direction.
func (s *ChallengeService) CreateChallenge(ctx context.Context, input CreateChallengeInput) (challenge.Challenge, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChallengeService.CreateChallenge")
	defer span.End()

	input.ActorUserID = strings.TrimSpace(input.ActorUserID)
	if input.ActorUserID == "" {
		return challenge.Challenge{}, fmt.Errorf("%w: actor user id is required", ErrInvalidInput)
	}

	challenger, challenged, err := s.getPairing(ctx, input.ChallengerTeamID, input.ChallengedTeamID)
	if err != nil {
		return challenge.Challenge{}, err
	}
	if !challenger.HasMember(input.ActorUserID) {
		return challenge.Challenge{}, fmt.Errorf("%w: only members of the challenger team can create the challenge", ErrUnauthorized)
	}

	settings, err := s.getSettings(ctx)
	if err != nil {
		return challenge.Challenge{}, err
	}
	if err := challenge.CanChallenge(challenger, challenged, settings, s.now().UTC()); err != nil {
		return challenge.Challenge{}, err
	}

	if _, busy, err := s.challengeRepo.FindActiveBetween(ctx, challenger.ID, challenged.ID); err != nil {
		return challenge.Challenge{}, fmt.Errorf("find active challenge: %w", err)
	} else if busy {
		return challenge.Challenge{}, fmt.Errorf("%w: teams %s and %s", challenge.ErrDuplicateActive, challenger.ID, challenged.ID)
	}

	challengeID, err := s.idGen.NewID()
	if err != nil {
		return challenge.Challenge{}, fmt.Errorf("generate challenge id: %w", err)
	}

	now := s.now().UTC()
	item := challenge.Challenge{
		ID:               challengeID,
		DivisionID:       challenger.DivisionID,
		ChallengerTeamID: challenger.ID,
		ChallengedTeamID: challenged.ID,
		Status:           challenge.StatusAccepted,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := item.Validate(); err != nil {
		return challenge.Challenge{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.challengeRepo.Create(ctx, item); err != nil {
		if errors.Is(err, challenge.ErrDuplicateActive) {
			return challenge.Challenge{}, fmt.Errorf("%w: teams %s and %s", challenge.ErrDuplicateActive, challenger.ID, challenged.ID)
		}
		return challenge.Challenge{}, fmt.Errorf("create challenge: %w", err)
	}

	s.notifier.TableChanged(ctx, changefeed.TableChallenges)
	s.notifier.Event(ctx, "challenge.created", item)

	return item, nil
}

// RespondToChallenge lets the challenged team accept or decline an open
// challenge. Declining is terminal; accepting an already accepted challenge
// is a no-op kept for clients built against the pre-binding flow.
func (s *ChallengeService) RespondToChallenge(ctx context.Context, input RespondToChallengeInput) (challenge.Challenge, error) {
	input.ActorUserID = strings.TrimSpace(input.ActorUserID)
	if input.ActorUserID == "" {
		return challenge.Challenge{}, fmt.Errorf("%w: actor user id is required", ErrInvalidInput)
	}

	item, err := s.getChallenge(ctx, input.ChallengeID)
	if err != nil {
		return challenge.Challenge{}, err
	}
	switch item.Status {
	case challenge.StatusPending, challenge.StatusAccepted:
	default:
		return challenge.Challenge{}, fmt.Errorf("%w: challenge is already %s", ErrInvalidInput, item.Status)
	}

	challenged, err := s.getTeam(ctx, item.ChallengedTeamID)
	if err != nil {
		return challenge.Challenge{}, err
	}
	if !challenged.HasMember(input.ActorUserID) {
		return challenge.Challenge{}, fmt.Errorf("%w: only the challenged team can respond", ErrUnauthorized)
	}

	if input.Accept {
		item.Status = challenge.StatusAccepted
	} else {
		item.Status = challenge.StatusDeclined
	}
	item.UpdatedAt = s.now().UTC()
	if err := s.challengeRepo.Update(ctx, item); err != nil {
		return challenge.Challenge{}, fmt.Errorf("respond to challenge: %w", err)
	}

	s.notifier.TableChanged(ctx, changefeed.TableChallenges)
	s.notifier.Event(ctx, "challenge.responded", item)

	return item, nil
}

// SubmitScore records a best-of-three result on an accepted challenge and
// marks it completed, awaiting validation by the other side. Either team
// may submit.
func (s *ChallengeService) SubmitScore(ctx context.Context, input SubmitScoreInput) (challenge.Challenge, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChallengeService.SubmitScore")
	defer span.End()

	input.ActorUserID = strings.TrimSpace(input.ActorUserID)
	if input.ActorUserID == "" {
		return challenge.Challenge{}, fmt.Errorf("%w: actor user id is required", ErrInvalidInput)
	}

	item, err := s.getChallenge(ctx, input.ChallengeID)
	if err != nil {
		return challenge.Challenge{}, err
	}
	switch item.Status {
	case challenge.StatusAccepted:
	case challenge.StatusCompleted:
		return challenge.Challenge{}, fmt.Errorf("%w: score already submitted, awaiting validation", ErrInvalidInput)
	default:
		return challenge.Challenge{}, fmt.Errorf("%w: challenge is %s", ErrInvalidInput, item.Status)
	}

	actorTeamID, err := s.actorTeam(ctx, item, input.ActorUserID)
	if err != nil {
		return challenge.Challenge{}, err
	}

	if _, err := challenge.ValidateMatchScore(input.ChallengerSets, input.ChallengedSets); err != nil {
		return challenge.Challenge{}, err
	}

	item.ChallengerSets = append([]int(nil), input.ChallengerSets...)
	item.ChallengedSets = append([]int(nil), input.ChallengedSets...)
	item.SubmittedByTeamID = actorTeamID
	item.Status = challenge.StatusCompleted
	item.ScoreValidated = false
	item.WinnerTeamID = ""
	item.UpdatedAt = s.now().UTC()
	if err := s.challengeRepo.Update(ctx, item); err != nil {
		return challenge.Challenge{}, fmt.Errorf("submit score: %w", err)
	}

	s.notifier.TableChanged(ctx, changefeed.TableChallenges)
	s.notifier.Event(ctx, "challenge.score_submitted", item)

	return item, nil
}

// ValidateScore lets the non-submitting team confirm or dispute a submitted
// result. A dispute wipes the score and reopens the challenge for a fresh
// submission, any number of times. Confirmation fixes the winner and, when
// the challenger won, promotes them on the ladder before the challenge is
// marked validated; re-running after a partial failure converges because
// the promotion is a no-op once the winner holds the target position.
func (s *ChallengeService) ValidateScore(ctx context.Context, input ValidateScoreInput) (ValidateScoreResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChallengeService.ValidateScore")
	defer span.End()

	input.ActorUserID = strings.TrimSpace(input.ActorUserID)
	if input.ActorUserID == "" {
		return ValidateScoreResult{}, fmt.Errorf("%w: actor user id is required", ErrInvalidInput)
	}

	item, err := s.getChallenge(ctx, input.ChallengeID)
	if err != nil {
		return ValidateScoreResult{}, err
	}
	if item.Status != challenge.StatusCompleted || !item.HasScore() {
		return ValidateScoreResult{}, fmt.Errorf("%w: no submitted score to validate", ErrInvalidInput)
	}
	if item.ScoreValidated {
		return ValidateScoreResult{}, fmt.Errorf("%w: score already validated", ErrInvalidInput)
	}

	actorTeamID, err := s.actorTeam(ctx, item, input.ActorUserID)
	if err != nil {
		return ValidateScoreResult{}, err
	}
	if actorTeamID == item.SubmittedByTeamID {
		return ValidateScoreResult{}, fmt.Errorf("%w: the submitting team cannot validate its own score", ErrUnauthorized)
	}

	now := s.now().UTC()
	if !input.Accept {
		item.ChallengerSets = nil
		item.ChallengedSets = nil
		item.SubmittedByTeamID = ""
		item.Status = challenge.StatusAccepted
		item.ScoreValidated = false
		item.WinnerTeamID = ""
		item.UpdatedAt = now
		if err := s.challengeRepo.Update(ctx, item); err != nil {
			return ValidateScoreResult{}, fmt.Errorf("dispute score: %w", err)
		}

		s.notifier.TableChanged(ctx, changefeed.TableChallenges)
		s.notifier.Event(ctx, "challenge.disputed", item)

		return ValidateScoreResult{Challenge: item}, nil
	}

	side, err := challenge.ValidateMatchScore(item.ChallengerSets, item.ChallengedSets)
	if err != nil {
		return ValidateScoreResult{}, fmt.Errorf("stored score no longer validates: %w", err)
	}
	winnerTeamID := item.ChallengerTeamID
	loserTeamID := item.ChallengedTeamID
	if side == challenge.SideChallenged {
		winnerTeamID, loserTeamID = loserTeamID, winnerTeamID
	}

	result := ValidateScoreResult{}
	if side == challenge.SideChallenger {
		reshuffle, err := s.ranking.ApplyValidatedResult(ctx, item.DivisionID, winnerTeamID, loserTeamID)
		if err != nil {
			return ValidateScoreResult{}, fmt.Errorf("apply ladder result: %w", err)
		}
		result.Reshuffle = reshuffle
	}

	item.ScoreValidated = true
	item.WinnerTeamID = winnerTeamID
	item.UpdatedAt = now
	if err := s.challengeRepo.Update(ctx, item); err != nil {
		return ValidateScoreResult{}, fmt.Errorf("validate score: %w", err)
	}
	result.Challenge = item

	s.notifier.TableChanged(ctx, changefeed.TableChallenges)
	s.notifier.Event(ctx, "challenge.validated", item)

	return result, nil
}

func (s *ChallengeService) GetChallenge(ctx context.Context, challengeID string) (challenge.Challenge, error) {
	return s.getChallenge(ctx, challengeID)
}

func (s *ChallengeService) ListTeamChallenges(ctx context.Context, teamID string) ([]challenge.Challenge, error) {
	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		return nil, fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}

	if _, err := s.getTeam(ctx, teamID); err != nil {
		return nil, err
	}

	items, err := s.challengeRepo.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("list challenges by team: %w", err)
	}

	return items, nil
}

func (s *ChallengeService) getPairing(ctx context.Context, challengerTeamID, challengedTeamID string) (team.Team, team.Team, error) {
	challengerTeamID = strings.TrimSpace(challengerTeamID)
	challengedTeamID = strings.TrimSpace(challengedTeamID)
	if challengerTeamID == "" {
		return team.Team{}, team.Team{}, fmt.Errorf("%w: challenger team id is required", ErrInvalidInput)
	}
	if challengedTeamID == "" {
		return team.Team{}, team.Team{}, fmt.Errorf("%w: challenged team id is required", ErrInvalidInput)
	}

	challenger, err := s.getTeam(ctx, challengerTeamID)
	if err != nil {
		return team.Team{}, team.Team{}, err
	}
	challenged, err := s.getTeam(ctx, challengedTeamID)
	if err != nil {
		return team.Team{}, team.Team{}, err
	}

	return challenger, challenged, nil
}

func (s *ChallengeService) getTeam(ctx context.Context, teamID string) (team.Team, error) {
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

func (s *ChallengeService) getChallenge(ctx context.Context, challengeID string) (challenge.Challenge, error) {
	challengeID = strings.TrimSpace(challengeID)
	if challengeID == "" {
		return challenge.Challenge{}, fmt.Errorf("%w: challenge id is required", ErrInvalidInput)
	}

	item, exists, err := s.challengeRepo.GetByID(ctx, challengeID)
	if err != nil {
		return challenge.Challenge{}, fmt.Errorf("get challenge by id: %w", err)
	}
	if !exists {
		return challenge.Challenge{}, fmt.Errorf("%w: challenge=%s", ErrNotFound, challengeID)
	}

	return item, nil
}

// actorTeam resolves which side of the challenge the actor plays for.
func (s *ChallengeService) actorTeam(ctx context.Context, item challenge.Challenge, actorUserID string) (string, error) {
	challenger, err := s.getTeam(ctx, item.ChallengerTeamID)
	if err != nil {
		return "", err
	}
	if challenger.HasMember(actorUserID) {
		return challenger.ID, nil
	}

	challenged, err := s.getTeam(ctx, item.ChallengedTeamID)
	if err != nil {
		return "", err
	}
	if challenged.HasMember(actorUserID) {
		return challenged.ID, nil
	}

	return "", fmt.Errorf("%w: user %s plays for neither team", ErrUnauthorized, actorUserID)
}

func (s *ChallengeService) getSettings(ctx context.Context) (division.Settings, error) {
	settings, exists, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return division.Settings{}, fmt.Errorf("get ladder settings: %w", err)
	}
	if !exists {
		// Eligibility fails closed on the zero value.
		return division.Settings{}, nil
	}

	return settings, nil
}
