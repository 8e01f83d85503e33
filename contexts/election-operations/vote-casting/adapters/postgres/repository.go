package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"quorum/contexts/election-operations/vote-casting/domain/entities"
	domainerrors "quorum/contexts/election-operations/vote-casting/domain/errors"
	"quorum/contexts/election-operations/vote-casting/ports"
	"quorum/internal/platform/db"

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

func (r *Repository) GetElection(ctx context.Context, electionID string) (ports.ElectionProjection, error) {
	var row electionRow
	err := r.db.WithContext(ctx).
		Table("elections").
		Select("id", "organization_id", "name", "status").
		Where("id = ?", strings.TrimSpace(electionID)).
		Take(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.ElectionProjection{}, domainerrors.ErrElectionNotFound
		}
		return ports.ElectionProjection{}, r.logError("voting_repo_get_election_failed", err,
			"election_id", strings.TrimSpace(electionID),
		)
	}
	return ports.ElectionProjection{
		ElectionID:     row.ID,
		OrganizationID: row.OrganizationID,
		Name:           row.Name,
		Status:         row.Status,
	}, nil
}

func (r *Repository) GetRace(ctx context.Context, raceID string) (ports.RaceProjection, error) {
	var row raceRow
	err := r.db.WithContext(ctx).
		Table("election_races").
		Select("id", "election_id", "name", "max_votes_per_voter", "max_winners").
		Where("id = ?", strings.TrimSpace(raceID)).
		Take(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.RaceProjection{}, domainerrors.ErrRaceNotFound
		}
		return ports.RaceProjection{}, r.logError("voting_repo_get_race_failed", err,
			"race_id", strings.TrimSpace(raceID),
		)
	}
	return row.toProjection(), nil
}

func (r *Repository) ListRacesByElection(ctx context.Context, electionID string) ([]ports.RaceProjection, error) {
	var rows []raceRow
	if err := r.db.WithContext(ctx).
		Table("election_races").
		Select("id", "election_id", "name", "max_votes_per_voter", "max_winners").
		Where("election_id = ?", strings.TrimSpace(electionID)).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("voting_repo_list_races_failed", err,
			"election_id", strings.TrimSpace(electionID),
		)
	}
	items := make([]ports.RaceProjection, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toProjection())
	}
	return items, nil
}

func (r *Repository) GetBallotEntry(ctx context.Context, raceCandidateID string) (ports.BallotProjection, error) {
	var row ballotRow
	err := r.db.WithContext(ctx).
		Table("candidate_races").
		Select("id", "race_id", "candidate_id", "display_name", "ballot_order", "approved").
		Where("id = ?", strings.TrimSpace(raceCandidateID)).
		Take(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.BallotProjection{}, domainerrors.ErrCandidateNotFound
		}
		return ports.BallotProjection{}, r.logError("voting_repo_get_ballot_entry_failed", err,
			"race_candidate_id", strings.TrimSpace(raceCandidateID),
		)
	}
	return row.toProjection(), nil
}

func (r *Repository) ListBallotEntries(ctx context.Context, raceID string) ([]ports.BallotProjection, error) {
	var rows []ballotRow
	if err := r.db.WithContext(ctx).
		Table("candidate_races").
		Select("id", "race_id", "candidate_id", "display_name", "ballot_order", "approved").
		Where("race_id = ?", strings.TrimSpace(raceID)).
		Order("ballot_order ASC, display_name ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("voting_repo_list_ballot_entries_failed", err,
			"race_id", strings.TrimSpace(raceID),
		)
	}
	items := make([]ports.BallotProjection, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toProjection())
	}
	return items, nil
}

func (r *Repository) SaveVoter(ctx context.Context, voter entities.Voter) error {
	row := voterRowFromEntity(voter)
	err := db.InRequestScope(ctx, r.db, func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "organization_id"}, {Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"approved":    row.Approved,
				"approved_at": row.ApprovedAt,
				"approved_by": row.ApprovedBy,
			}),
		}).Create(&row).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrVoterAlreadyRegistered
		}
		return r.logError("voting_repo_save_voter_failed", err,
			"organization_id", strings.TrimSpace(voter.OrganizationID),
		)
	}
	return nil
}

func (r *Repository) GetVoter(ctx context.Context, organizationID string, userID string) (entities.Voter, bool, error) {
	var row voterRow
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", strings.TrimSpace(organizationID)).
		Where("user_id = ?", strings.TrimSpace(userID)).
		Take(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Voter{}, false, nil
		}
		return entities.Voter{}, false, r.logError("voting_repo_get_voter_failed", err,
			"organization_id", strings.TrimSpace(organizationID),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListPendingVoters(ctx context.Context, organizationID string) ([]entities.Voter, error) {
	var rows []voterRow
	if err := r.db.WithContext(ctx).
		Where("organization_id = ?", strings.TrimSpace(organizationID)).
		Where("approved = ?", false).
		Order("registered_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("voting_repo_list_pending_voters_failed", err,
			"organization_id", strings.TrimSpace(organizationID),
		)
	}
	items := make([]entities.Voter, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

// InsertVote is the integrity gate. The voter's admission row is locked
// FOR UPDATE so concurrent casts by the same voter serialize; the limit
// and duplicate checks then run against a stable snapshot, and the unique
// index on (race_id, voter_user_id, race_candidate_id) backstops the
// duplicate rule even if the lock is bypassed.
func (r *Repository) InsertVote(ctx context.Context, vote entities.Vote, maxVotesPerVoter int) error {
	if maxVotesPerVoter <= 0 {
		maxVotesPerVoter = 1
	}
	row := voteRowFromEntity(vote)
	err := db.InRequestScope(ctx, r.db, func(tx *gorm.DB) error {
		var voter voterRow
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "ov"}}).
			Table("organization_voters AS ov").
			Joins("JOIN elections AS e ON e.organization_id = ov.organization_id").
			Joins("JOIN election_races AS er ON er.election_id = e.id").
			Where("er.id = ?", row.RaceID).
			Where("ov.user_id = ?", row.VoterUserID).
			Select("ov.*").
			Take(&voter).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrVoterNotRegistered
			}
			return err
		}
		if !voter.Approved {
			return domainerrors.ErrVoterNotApproved
		}

		var existing int64
		if err := tx.Table("votes").
			Where("race_id = ?", row.RaceID).
			Where("voter_user_id = ?", row.VoterUserID).
			Where("race_candidate_id = ?", row.RaceCandidateID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return domainerrors.ErrDuplicateVote
		}

		var held int64
		if err := tx.Table("votes").
			Where("race_id = ?", row.RaceID).
			Where("voter_user_id = ?", row.VoterUserID).
			Count(&held).Error; err != nil {
			return err
		}
		if held >= int64(maxVotesPerVoter) {
			return domainerrors.ErrVoteLimitReached
		}

		return tx.Create(&row).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, domainerrors.ErrVoterNotRegistered),
			errors.Is(err, domainerrors.ErrVoterNotApproved),
			errors.Is(err, domainerrors.ErrDuplicateVote),
			errors.Is(err, domainerrors.ErrVoteLimitReached):
			return err
		case isUniqueViolation(err):
			return domainerrors.ErrDuplicateVote
		}
		return r.logError("voting_repo_insert_vote_failed", err,
			"race_id", strings.TrimSpace(vote.RaceID),
		)
	}
	return nil
}

func (r *Repository) ListVotesByVoter(ctx context.Context, raceID string, voterUserID string) ([]entities.Vote, error) {
	var rows []voteRow
	if err := r.db.WithContext(ctx).
		Where("race_id = ?", strings.TrimSpace(raceID)).
		Where("voter_user_id = ?", strings.TrimSpace(voterUserID)).
		Order("cast_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("voting_repo_list_votes_by_voter_failed", err,
			"race_id", strings.TrimSpace(raceID),
		)
	}
	items := make([]entities.Vote, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) CountVotesByCandidate(ctx context.Context, raceID string) (map[string]int, error) {
	type tallyRow struct {
		RaceCandidateID string `gorm:"column:race_candidate_id"`
		Total           int    `gorm:"column:total"`
	}
	var rows []tallyRow
	if err := r.db.WithContext(ctx).
		Table("votes").
		Select("race_candidate_id, COUNT(*) AS total").
		Where("race_id = ?", strings.TrimSpace(raceID)).
		Group("race_candidate_id").
		Find(&rows).Error; err != nil {
		return nil, r.logError("voting_repo_count_votes_failed", err,
			"race_id", strings.TrimSpace(raceID),
		)
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.RaceCandidateID] = row.Total
	}
	return counts, nil
}

func (r *Repository) GetMembership(ctx context.Context, organizationID string, userID string) (ports.Membership, bool, error) {
	var row membershipRow
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", strings.TrimSpace(organizationID)).
		Where("user_id = ?", strings.TrimSpace(userID)).
		Take(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Membership{}, false, nil
		}
		return ports.Membership{}, false, r.logError("voting_repo_get_membership_failed", err,
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

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "election-operations/vote-casting",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("voting repository operation failed", fields...)
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
