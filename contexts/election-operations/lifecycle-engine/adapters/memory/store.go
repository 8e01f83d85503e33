package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"quorum/contexts/election-operations/lifecycle-engine/domain/entities"
	domainerrors "quorum/contexts/election-operations/lifecycle-engine/domain/errors"
	"quorum/contexts/election-operations/lifecycle-engine/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

// Store is the in-memory ballot store used by tests and local wiring. It
// implements every lifecycle port behind one mutex.
type Store struct {
	mu sync.RWMutex

	elections   map[string]entities.Election
	races       map[string]entities.Race
	candidates  map[string]entities.Candidate
	ballot      map[string]entities.BallotEntry
	memberships map[string]ports.Membership
	voteCounts  map[string]int
	outbox      map[string]outboxRecord

	nowOverride *time.Time
}

func NewStore(seed []entities.Election) *Store {
	elections := make(map[string]entities.Election, len(seed))
	for _, election := range seed {
		elections[election.ElectionID] = election
	}
	return &Store{
		elections:   elections,
		races:       make(map[string]entities.Race),
		candidates:  make(map[string]entities.Candidate),
		ballot:      make(map[string]entities.BallotEntry),
		memberships: make(map[string]ports.Membership),
		voteCounts:  make(map[string]int),
		outbox:      make(map[string]outboxRecord),
	}
}

func (s *Store) SetMembership(membership ports.Membership) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memberships[membershipKey(membership.OrganizationID, membership.UserID)] = membership
}

func (s *Store) SetVoteCount(electionID string, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voteCounts[strings.TrimSpace(electionID)] = count
}

func (s *Store) SetNow(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	utc := now.UTC()
	s.nowOverride = &utc
}

func (s *Store) SaveElection(_ context.Context, election entities.Election) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elections[strings.TrimSpace(election.ElectionID)] = election
	return nil
}

func (s *Store) GetElection(_ context.Context, electionID string) (entities.Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	election, ok := s.elections[strings.TrimSpace(electionID)]
	if !ok {
		return entities.Election{}, domainerrors.ErrElectionNotFound
	}
	return election, nil
}

func (s *Store) ListElectionsByOrganization(_ context.Context, organizationID string) ([]entities.Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Election, 0)
	for _, election := range s.elections {
		if election.OrganizationID == strings.TrimSpace(organizationID) {
			items = append(items, election)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) DeleteElection(_ context.Context, electionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := strings.TrimSpace(electionID)
	if _, ok := s.elections[id]; !ok {
		return domainerrors.ErrElectionNotFound
	}
	delete(s.elections, id)
	for raceID, race := range s.races {
		if race.ElectionID != id {
			continue
		}
		delete(s.races, raceID)
		for entryID, entry := range s.ballot {
			if entry.RaceID == raceID {
				delete(s.ballot, entryID)
			}
		}
	}
	return nil
}

func (s *Store) ProcessDueElections(_ context.Context, now time.Time) ([]entities.ElectionTransition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now = now.UTC()
	var transitions []entities.ElectionTransition
	ids := make([]string, 0, len(s.elections))
	for id := range s.elections {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		election := s.elections[id]
		switch {
		case election.Status == entities.StatusScheduled &&
			election.StartAt != nil && !election.StartAt.After(now):
			openedAt := now
			election.Status = entities.StatusOpen
			election.OpenedAt = &openedAt
			election.UpdatedAt = now
			s.elections[id] = election
			transitions = append(transitions, entities.ElectionTransition{
				ElectionID:   election.ElectionID,
				ElectionName: election.Name,
				Action:       entities.TransitionOpened,
				OccurredAt:   now,
			})
		}

		// An election opened in this pass closes in the same pass when its
		// whole window already lies in the past.
		election = s.elections[id]
		if election.Status == entities.StatusOpen &&
			election.EndAt != nil && !election.EndAt.After(now) {
			closedAt := now
			election.Status = entities.StatusClosed
			election.ClosedAt = &closedAt
			election.UpdatedAt = now
			s.elections[id] = election
			transitions = append(transitions, entities.ElectionTransition{
				ElectionID:   election.ElectionID,
				ElectionName: election.Name,
				Action:       entities.TransitionClosed,
				OccurredAt:   now,
			})
		}
	}
	return transitions, nil
}

func (s *Store) SaveRace(_ context.Context, race entities.Race) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.races[strings.TrimSpace(race.RaceID)] = race
	return nil
}

func (s *Store) GetRace(_ context.Context, raceID string) (entities.Race, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	race, ok := s.races[strings.TrimSpace(raceID)]
	if !ok {
		return entities.Race{}, domainerrors.ErrRaceNotFound
	}
	return race, nil
}

func (s *Store) ListRacesByElection(_ context.Context, electionID string) ([]entities.Race, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Race, 0)
	for _, race := range s.races {
		if race.ElectionID == strings.TrimSpace(electionID) {
			items = append(items, race)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) DeleteRace(_ context.Context, raceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := strings.TrimSpace(raceID)
	if _, ok := s.races[id]; !ok {
		return domainerrors.ErrRaceNotFound
	}
	delete(s.races, id)
	for entryID, entry := range s.ballot {
		if entry.RaceID == id {
			delete(s.ballot, entryID)
		}
	}
	return nil
}

func (s *Store) SaveCandidate(_ context.Context, candidate entities.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates[strings.TrimSpace(candidate.CandidateID)] = candidate
	return nil
}

func (s *Store) SaveBallotEntry(_ context.Context, entry entities.BallotEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ballot[strings.TrimSpace(entry.RaceCandidateID)] = entry
	return nil
}

func (s *Store) GetBallotEntry(_ context.Context, raceCandidateID string) (entities.BallotEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.ballot[strings.TrimSpace(raceCandidateID)]
	if !ok {
		return entities.BallotEntry{}, domainerrors.ErrCandidateNotFound
	}
	return entry, nil
}

func (s *Store) ListBallotEntries(_ context.Context, raceID string) ([]entities.BallotEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.BallotEntry, 0)
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

func (s *Store) DeleteBallotEntry(_ context.Context, raceCandidateID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := strings.TrimSpace(raceCandidateID)
	if _, ok := s.ballot[id]; !ok {
		return domainerrors.ErrCandidateNotFound
	}
	delete(s.ballot, id)
	return nil
}

func (s *Store) CountVotesByElection(_ context.Context, electionID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.voteCounts[strings.TrimSpace(electionID)], nil
}

func (s *Store) GetMembership(_ context.Context, organizationID string, userID string) (ports.Membership, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	membership, ok := s.memberships[membershipKey(organizationID, userID)]
	return membership, ok, nil
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	id := strings.TrimSpace(envelope.EventID)
	if id == "" {
		id = uuid.NewString()
	}
	s.outbox[id] = outboxRecord{
		message: ports.OutboxMessage{
			OutboxID:  id,
			EventType: envelope.EventType,
			Payload:   payload,
			CreatedAt: envelope.OccurredAt,
		},
	}
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = 100
	}
	items := make([]ports.OutboxMessage, 0)
	for _, record := range s.outbox {
		if !record.published {
			items = append(items, record.message)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].OutboxID < items[j].OutboxID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.outbox[strings.TrimSpace(outboxID)]
	if !ok {
		return domainerrors.ErrOutboxConflict
	}
	record.published = true
	s.outbox[strings.TrimSpace(outboxID)] = record
	return nil
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

func membershipKey(organizationID string, userID string) string {
	return strings.TrimSpace(organizationID) + "/" + strings.TrimSpace(userID)
}
