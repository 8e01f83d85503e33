package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"quorum/contexts/election-operations/vote-casting/domain/entities"
	domainerrors "quorum/contexts/election-operations/vote-casting/domain/errors"
	"quorum/contexts/election-operations/vote-casting/ports"

	"github.com/google/uuid"
)

// Store is the in-memory ballot store used by tests and local wiring. It
// implements every vote-casting port behind one mutex, so InsertVote's
// limit and duplicate checks are atomic the same way the SQL store's are.
type Store struct {
	mu sync.RWMutex

	elections   map[string]ports.ElectionProjection
	races       map[string]ports.RaceProjection
	ballot      map[string]ports.BallotProjection
	voters      map[string]entities.Voter
	votes       map[string]entities.Vote
	memberships map[string]ports.Membership

	nowOverride *time.Time
}

func NewStore() *Store {
	return &Store{
		elections:   make(map[string]ports.ElectionProjection),
		races:       make(map[string]ports.RaceProjection),
		ballot:      make(map[string]ports.BallotProjection),
		voters:      make(map[string]entities.Voter),
		votes:       make(map[string]entities.Vote),
		memberships: make(map[string]ports.Membership),
	}
}

func (s *Store) SetElection(election ports.ElectionProjection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elections[strings.TrimSpace(election.ElectionID)] = election
}

func (s *Store) SetRace(race ports.RaceProjection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.races[strings.TrimSpace(race.RaceID)] = race
}

func (s *Store) SetBallotEntry(entry ports.BallotProjection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ballot[strings.TrimSpace(entry.RaceCandidateID)] = entry
}

func (s *Store) SetMembership(membership ports.Membership) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memberships[membershipKey(membership.OrganizationID, membership.UserID)] = membership
}

func (s *Store) SetNow(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	utc := now.UTC()
	s.nowOverride = &utc
}

func (s *Store) GetElection(_ context.Context, electionID string) (ports.ElectionProjection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	election, ok := s.elections[strings.TrimSpace(electionID)]
	if !ok {
		return ports.ElectionProjection{}, domainerrors.ErrElectionNotFound
	}
	return election, nil
}

func (s *Store) GetRace(_ context.Context, raceID string) (ports.RaceProjection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	race, ok := s.races[strings.TrimSpace(raceID)]
	if !ok {
		return ports.RaceProjection{}, domainerrors.ErrRaceNotFound
	}
	return race, nil
}

func (s *Store) ListRacesByElection(_ context.Context, electionID string) ([]ports.RaceProjection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]ports.RaceProjection, 0)
	for _, race := range s.races {
		if race.ElectionID == strings.TrimSpace(electionID) {
			items = append(items, race)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].RaceID < items[j].RaceID
	})
	return items, nil
}

func (s *Store) GetBallotEntry(_ context.Context, raceCandidateID string) (ports.BallotProjection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.ballot[strings.TrimSpace(raceCandidateID)]
	if !ok {
		return ports.BallotProjection{}, domainerrors.ErrCandidateNotFound
	}
	return entry, nil
}

func (s *Store) ListBallotEntries(_ context.Context, raceID string) ([]ports.BallotProjection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]ports.BallotProjection, 0)
	for _, entry := range s.ballot {
		if entry.RaceID == strings.TrimSpace(raceID) {
			items = append(items, entry)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].BallotOrder == items[j].BallotOrder {
			return items[i].DisplayName < items[j].DisplayName
		}
		return items[i].BallotOrder < items[j].BallotOrder
	})
	return items, nil
}

func (s *Store) SaveVoter(_ context.Context, voter entities.Voter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voters[voterKey(voter.OrganizationID, voter.UserID)] = voter
	return nil
}

func (s *Store) GetVoter(_ context.Context, organizationID string, userID string) (entities.Voter, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	voter, ok := s.voters[voterKey(organizationID, userID)]
	return voter, ok, nil
}

func (s *Store) ListPendingVoters(_ context.Context, organizationID string) ([]entities.Voter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Voter, 0)
	for _, voter := range s.voters {
		if voter.OrganizationID == strings.TrimSpace(organizationID) && !voter.Approved {
			items = append(items, voter)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].RegisteredAt.Equal(items[j].RegisteredAt) {
			return items[i].UserID < items[j].UserID
		}
		return items[i].RegisteredAt.Before(items[j].RegisteredAt)
	})
	return items, nil
}

func (s *Store) InsertVote(_ context.Context, vote entities.Vote, maxVotesPerVoter int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if maxVotesPerVoter <= 0 {
		maxVotesPerVoter = 1
	}
	held := 0
	for _, existing := range s.votes {
		if existing.RaceID != vote.RaceID || existing.VoterUserID != vote.VoterUserID {
			continue
		}
		if existing.RaceCandidateID == vote.RaceCandidateID {
			return domainerrors.ErrDuplicateVote
		}
		held++
	}
	if held >= maxVotesPerVoter {
		return domainerrors.ErrVoteLimitReached
	}
	s.votes[strings.TrimSpace(vote.VoteID)] = vote
	return nil
}

func (s *Store) ListVotesByVoter(_ context.Context, raceID string, voterUserID string) ([]entities.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Vote, 0)
	for _, vote := range s.votes {
		if vote.RaceID == strings.TrimSpace(raceID) && vote.VoterUserID == strings.TrimSpace(voterUserID) {
			items = append(items, vote)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CastAt.Before(items[j].CastAt)
	})
	return items, nil
}

func (s *Store) CountVotesByCandidate(_ context.Context, raceID string) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[string]int)
	for _, vote := range s.votes {
		if vote.RaceID == strings.TrimSpace(raceID) {
			counts[vote.RaceCandidateID]++
		}
	}
	return counts, nil
}

func (s *Store) GetMembership(_ context.Context, organizationID string, userID string) (ports.Membership, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	membership, ok := s.memberships[membershipKey(organizationID, userID)]
	return membership, ok, nil
}

func (s *Store) Now() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.nowOverride != nil {
		return *s.nowOverride
	}
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func voterKey(organizationID string, userID string) string {
	return strings.TrimSpace(organizationID) + "/" + strings.TrimSpace(userID)
}

func membershipKey(organizationID string, userID string) string {
	return strings.TrimSpace(organizationID) + "/" + strings.TrimSpace(userID)
}
