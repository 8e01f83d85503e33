package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"quorum/contexts/election-operations/lifecycle-engine/domain/entities"
	domainerrors "quorum/contexts/election-operations/lifecycle-engine/domain/errors"
	"quorum/contexts/election-operations/lifecycle-engine/ports"
	"quorum/internal/platform/db"
	"quorum/internal/shared/outbox"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(gdb *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     gdb,
		logger: logger,
	}
}

func (r *Repository) SaveElection(ctx context.Context, election entities.Election) error {
	row := electionModelFromEntity(election)
	err := db.InRequestScope(ctx, r.db, func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"name":        row.Name,
				"description": row.Description,
				"status":      row.Status,
				"start_at":    row.StartAt,
				"end_at":      row.EndAt,
				"opened_at":   row.OpenedAt,
				"closed_at":   row.ClosedAt,
				"updated_at":  row.UpdatedAt,
			}),
		}).Create(&row).Error
	})
	if err != nil {
		// The only unique key here is the primary key, which the upsert
		// already absorbs. Anything else is a store fault.
		return r.logError("lifecycle_repo_save_election_failed", err,
			"election_id", strings.TrimSpace(election.ElectionID),
		)
	}
	return nil
}

func (r *Repository) GetElection(ctx context.Context, electionID string) (entities.Election, error) {
	var row electionModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(electionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Election{}, domainerrors.ErrElectionNotFound
		}
		return entities.Election{}, r.logError("lifecycle_repo_get_election_failed", err,
			"election_id", strings.TrimSpace(electionID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListElectionsByOrganization(ctx context.Context, organizationID string) ([]entities.Election, error) {
	var rows []electionModel
	if err := r.db.WithContext(ctx).
		Where("organization_id = ?", strings.TrimSpace(organizationID)).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("lifecycle_repo_list_elections_failed", err,
			"organization_id", strings.TrimSpace(organizationID),
		)
	}
	items := make([]entities.Election, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) DeleteElection(ctx context.Context, electionID string) error {
	id := strings.TrimSpace(electionID)
	err := db.InRequestScope(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.
			Where("race_id IN (?)", tx.Session(&gorm.Session{NewDB: true}).
				Model(&raceModel{}).Select("id").Where("election_id = ?", id)).
			Delete(&ballotEntryModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("election_id = ?", id).Delete(&raceModel{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&electionModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrElectionNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrElectionNotFound) {
			return err
		}
		return r.logError("lifecycle_repo_delete_election_failed", err, "election_id", id)
	}
	return nil
}

// ProcessDueElections flips every due scheduled election to open and every
// due open election to closed in one transaction. The status predicate in
// each UPDATE is the idempotency guard: a row already moved by a previous
// sweep no longer matches.
func (r *Repository) ProcessDueElections(ctx context.Context, now time.Time) ([]entities.ElectionTransition, error) {
	now = now.UTC()
	var transitions []entities.ElectionTransition

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var due []electionModel
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("status = ? AND start_at IS NOT NULL AND start_at <= ?", string(entities.StatusScheduled), now).
			Order("start_at ASC").
			Find(&due).Error; err != nil {
			return err
		}
		for _, row := range due {
			if err := tx.Model(&electionModel{}).
				Where("id = ? AND status = ?", row.ID, string(entities.StatusScheduled)).
				Updates(map[string]any{
					"status":     string(entities.StatusOpen),
					"opened_at":  now,
					"updated_at": now,
				}).Error; err != nil {
				return err
			}
			transitions = append(transitions, entities.ElectionTransition{
				ElectionID:   row.ID,
				ElectionName: row.Name,
				Action:       entities.TransitionOpened,
				OccurredAt:   now,
			})
		}

		var expiring []electionModel
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("status = ? AND end_at IS NOT NULL AND end_at <= ?", string(entities.StatusOpen), now).
			Order("end_at ASC").
			Find(&expiring).Error; err != nil {
			return err
		}
		for _, row := range expiring {
			if err := tx.Model(&electionModel{}).
				Where("id = ? AND status = ?", row.ID, string(entities.StatusOpen)).
				Updates(map[string]any{
					"status":     string(entities.StatusClosed),
					"closed_at":  now,
					"updated_at": now,
				}).Error; err != nil {
				return err
			}
			transitions = append(transitions, entities.ElectionTransition{
				ElectionID:   row.ID,
				ElectionName: row.Name,
				Action:       entities.TransitionClosed,
				OccurredAt:   now,
			})
		}
		return nil
	})
	if err != nil {
		return nil, r.logError("lifecycle_repo_process_due_failed", err)
	}
	return transitions, nil
}

func (r *Repository) SaveRace(ctx context.Context, race entities.Race) error {
	row := raceModelFromEntity(race)
	err := db.InRequestScope(ctx, r.db, func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"name":                row.Name,
				"description":         row.Description,
				"max_votes_per_voter": row.MaxVotesPerVoter,
				"max_winners":         row.MaxWinners,
				"updated_at":          row.UpdatedAt,
			}),
		}).Create(&row).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrDuplicateRaceName
		}
		return r.logError("lifecycle_repo_save_race_failed", err,
			"race_id", strings.TrimSpace(race.RaceID),
			"election_id", strings.TrimSpace(race.ElectionID),
		)
	}
	return nil
}

func (r *Repository) GetRace(ctx context.Context, raceID string) (entities.Race, error) {
	var row raceModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(raceID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Race{}, domainerrors.ErrRaceNotFound
		}
		return entities.Race{}, r.logError("lifecycle_repo_get_race_failed", err,
			"race_id", strings.TrimSpace(raceID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListRacesByElection(ctx context.Context, electionID string) ([]entities.Race, error) {
	var rows []raceModel
	if err := r.db.WithContext(ctx).
		Where("election_id = ?", strings.TrimSpace(electionID)).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("lifecycle_repo_list_races_failed", err,
			"election_id", strings.TrimSpace(electionID),
		)
	}
	items := make([]entities.Race, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) DeleteRace(ctx context.Context, raceID string) error {
	id := strings.TrimSpace(raceID)
	err := db.InRequestScope(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Where("race_id = ?", id).Delete(&ballotEntryModel{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&raceModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrRaceNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrRaceNotFound) {
			return err
		}
		return r.logError("lifecycle_repo_delete_race_failed", err, "race_id", id)
	}
	return nil
}

func (r *Repository) SaveCandidate(ctx context.Context, candidate entities.Candidate) error {
	row := candidateModelFromEntity(candidate)
	err := db.InRequestScope(ctx, r.db, func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"full_name":   row.FullName,
				"affiliation": row.Affiliation,
				"bio":         row.Bio,
				"approved":    row.Approved,
			}),
		}).Create(&row).Error
	})
	if err != nil {
		return r.logError("lifecycle_repo_save_candidate_failed", err,
			"candidate_id", strings.TrimSpace(candidate.CandidateID),
		)
	}
	return nil
}

func (r *Repository) SaveBallotEntry(ctx context.Context, entry entities.BallotEntry) error {
	row := ballotEntryModelFromEntity(entry)
	err := db.InRequestScope(ctx, r.db, func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"display_name": row.DisplayName,
				"ballot_order": row.BallotOrder,
				"approved":     row.Approved,
			}),
		}).Create(&row).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrCandidateAlreadyListed
		}
		return r.logError("lifecycle_repo_save_ballot_entry_failed", err,
			"race_candidate_id", strings.TrimSpace(entry.RaceCandidateID),
			"race_id", strings.TrimSpace(entry.RaceID),
		)
	}
	return nil
}

func (r *Repository) GetBallotEntry(ctx context.Context, raceCandidateID string) (entities.BallotEntry, error) {
	var row ballotEntryModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(raceCandidateID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.BallotEntry{}, domainerrors.ErrCandidateNotFound
		}
		return entities.BallotEntry{}, r.logError("lifecycle_repo_get_ballot_entry_failed", err,
			"race_candidate_id", strings.TrimSpace(raceCandidateID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListBallotEntries(ctx context.Context, raceID string) ([]entities.BallotEntry, error) {
	var rows []ballotEntryModel
	if err := r.db.WithContext(ctx).
		Where("race_id = ?", strings.TrimSpace(raceID)).
		Order("ballot_order ASC, display_name ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("lifecycle_repo_list_ballot_entries_failed", err,
			"race_id", strings.TrimSpace(raceID),
		)
	}
	items := make([]entities.BallotEntry, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) DeleteBallotEntry(ctx context.Context, raceCandidateID string) error {
	id := strings.TrimSpace(raceCandidateID)
	err := db.InRequestScope(ctx, r.db, func(tx *gorm.DB) error {
		result := tx.Where("id = ?", id).Delete(&ballotEntryModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrCandidateNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrCandidateNotFound) {
			return err
		}
		return r.logError("lifecycle_repo_delete_ballot_entry_failed", err, "race_candidate_id", id)
	}
	return nil
}

func (r *Repository) CountVotesByElection(ctx context.Context, electionID string) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("votes AS v").
		Joins("JOIN election_races AS er ON er.id = v.race_id").
		Where("er.election_id = ?", strings.TrimSpace(electionID)).
		Count(&count).
		Error
	if err != nil {
		return 0, r.logError("lifecycle_repo_count_votes_failed", err,
			"election_id", strings.TrimSpace(electionID),
		)
	}
	return int(count), nil
}

func (r *Repository) GetMembership(ctx context.Context, organizationID string, userID string) (ports.Membership, bool, error) {
	var row membershipModel
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", strings.TrimSpace(organizationID)).
		Where("user_id = ?", strings.TrimSpace(userID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Membership{}, false, nil
		}
		return ports.Membership{}, false, r.logError("lifecycle_repo_get_membership_failed", err,
			"organization_id", strings.TrimSpace(organizationID),
			"user_id", strings.TrimSpace(userID),
		)
	}
	return ports.Membership{
		OrganizationID: row.OrganizationID,
		UserID:         row.UserID,
		Role:           entities.MemberRole(row.RoleName),
		Active:         row.IsActive,
	}, true, nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return r.logError("lifecycle_repo_append_outbox_marshal_failed", err,
			"event_type", strings.TrimSpace(envelope.EventType),
		)
	}
	row := outboxModel{
		OutboxID:  strings.TrimSpace(envelope.EventID),
		EventType: strings.TrimSpace(envelope.EventType),
		Payload:   payload,
		Status:    outbox.StatusPending,
		CreatedAt: envelope.OccurredAt.UTC(),
	}
	if row.OutboxID == "" {
		row.OutboxID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "outbox_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return r.logError("lifecycle_repo_append_outbox_insert_failed", create.Error,
			"outbox_id", row.OutboxID,
		)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outbox.StatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("lifecycle_repo_list_pending_outbox_failed", err, "limit", limit)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:  row.OutboxID,
			EventType: row.EventType,
			Payload:   append([]byte(nil), row.Payload...),
			CreatedAt: row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outbox.StatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("lifecycle_repo_mark_outbox_published_failed", result.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrOutboxConflict
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "election-operations/lifecycle-engine",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("lifecycle repository operation failed", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// SystemClock satisfies ports.Clock with wall-clock time.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// UUIDGenerator satisfies ports.IDGenerator with random UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
