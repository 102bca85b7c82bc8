package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"electoral/contexts/governance/election-engine/domain/entities"
	domainerrors "electoral/contexts/governance/election-engine/domain/errors"
	"electoral/contexts/governance/election-engine/ports"
	"electoral/internal/shared/outbox"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists elections in PostgreSQL. Write paths run inside one
// gorm transaction and lock the rows they are about to change.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Migrate creates or updates every table this adapter owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&electionModel{},
		&candidateIdentityModel{},
		&candidateRecordModel{},
		&voteReceiptModel{},
		&outboxModel{},
		&electionResultModel{},
	)
}

func (r *Repository) WithinTransaction(ctx context.Context, fn func(tx ports.Tx) error) error {
	return r.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return fn(&txRepository{db: db, logger: r.logger, lockRows: true})
	})
}

func (r *Repository) GetElection(ctx context.Context, electionKey string) (entities.Election, error) {
	return r.reader().GetElection(ctx, electionKey)
}

func (r *Repository) GetCandidateIdentity(
	ctx context.Context,
	electionKey string,
	owner entities.Identity,
) (entities.CandidateIdentity, error) {
	return r.reader().GetCandidateIdentity(ctx, electionKey, owner)
}

func (r *Repository) GetCandidateRecord(ctx context.Context, electionKey string, candidateID uint64) (entities.CandidateRecord, error) {
	return r.reader().GetCandidateRecord(ctx, electionKey, candidateID)
}

func (r *Repository) GetVoteReceipt(ctx context.Context, electionKey string, voter entities.Identity) (entities.VoteReceipt, error) {
	return r.reader().GetVoteReceipt(ctx, electionKey, voter)
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outbox.StatusPending).
		Order("created_at ASC").
		Order("seq ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, logError(r.logger, "election_repo_list_pending_outbox_failed", err, "limit", limit)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      append([]byte(nil), row.Payload...),
			Status:       row.Status,
			CreatedAt:    row.CreatedAt.UTC(),
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
		return logError(r.logger, "election_repo_mark_outbox_published_failed", result.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrConflict
	}
	return nil
}

func (r *Repository) SaveResult(ctx context.Context, result entities.ElectionResult) (bool, error) {
	row, err := electionResultModelFromEntity(result)
	if err != nil {
		return false, err
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "election_key"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return false, logError(r.logger, "election_repo_save_result_failed", create.Error,
			"election_key", row.ElectionKey,
		)
	}
	return create.RowsAffected > 0, nil
}

func (r *Repository) GetResult(ctx context.Context, electionKey string) (entities.ElectionResult, error) {
	var row electionResultModel
	err := r.db.WithContext(ctx).
		Where("election_key = ?", strings.TrimSpace(electionKey)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.ElectionResult{}, domainerrors.ErrResultNotFound
		}
		return entities.ElectionResult{}, logError(r.logger, "election_repo_get_result_failed", err,
			"election_key", strings.TrimSpace(electionKey),
		)
	}
	return row.toEntity()
}

func (r *Repository) reader() *txRepository {
	return &txRepository{db: r.db, logger: r.logger}
}

// txRepository implements ports.Tx over one gorm handle. With lockRows set,
// reads of mutable rows take FOR UPDATE locks.
type txRepository struct {
	db       *gorm.DB
	logger   *slog.Logger
	lockRows bool
}

func (tx *txRepository) forUpdate(ctx context.Context) *gorm.DB {
	db := tx.db.WithContext(ctx)
	if tx.lockRows {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}

func (tx *txRepository) CreateElection(ctx context.Context, election entities.Election) error {
	row, err := electionModelFromEntity(election)
	if err != nil {
		return err
	}
	create := tx.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "election_key"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return logError(tx.logger, "election_repo_create_election_failed", create.Error,
			"election_key", row.ElectionKey,
		)
	}
	if create.RowsAffected == 0 {
		return domainerrors.ErrRecordExists
	}
	return nil
}

func (tx *txRepository) GetElection(ctx context.Context, electionKey string) (entities.Election, error) {
	var row electionModel
	err := tx.forUpdate(ctx).
		Where("election_key = ?", strings.TrimSpace(electionKey)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Election{}, domainerrors.ErrElectionNotFound
		}
		return entities.Election{}, logError(tx.logger, "election_repo_get_election_failed", err,
			"election_key", strings.TrimSpace(electionKey),
		)
	}
	return row.toEntity()
}

func (tx *txRepository) SaveElection(ctx context.Context, election entities.Election) error {
	row, err := electionModelFromEntity(election)
	if err != nil {
		return err
	}
	result := tx.db.WithContext(ctx).
		Model(&electionModel{}).
		Where("election_key = ?", row.ElectionKey).
		Updates(map[string]any{
			"candidate_count": row.CandidateCount,
			"stage":           row.Stage,
			"winner_ids":      row.WinnerIDs,
			"winner_votes":    row.WinnerVotes,
			"updated_at":      row.UpdatedAt,
		})
	if result.Error != nil {
		return logError(tx.logger, "election_repo_save_election_failed", result.Error,
			"election_key", row.ElectionKey,
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrElectionNotFound
	}
	return nil
}

func (tx *txRepository) CreateCandidateIdentity(ctx context.Context, identity entities.CandidateIdentity) error {
	row := candidateIdentityModel{
		ElectionKey:  strings.TrimSpace(identity.ElectionKey),
		Owner:        identity.Owner.String(),
		SequentialID: identity.SequentialID,
		AppliedAt:    identity.AppliedAt.UTC(),
	}
	create := tx.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "election_key"}, {Name: "owner"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			return domainerrors.ErrConflict
		}
		return logError(tx.logger, "election_repo_create_candidate_identity_failed", create.Error,
			"election_key", row.ElectionKey,
			"owner", row.Owner,
		)
	}
	if create.RowsAffected == 0 {
		return domainerrors.ErrRecordExists
	}
	return nil
}

func (tx *txRepository) GetCandidateIdentity(
	ctx context.Context,
	electionKey string,
	owner entities.Identity,
) (entities.CandidateIdentity, error) {
	var row candidateIdentityModel
	err := tx.db.WithContext(ctx).
		Where("election_key = ? AND owner = ?", strings.TrimSpace(electionKey), owner.String()).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.CandidateIdentity{}, domainerrors.ErrCandidateIdentityNotFound
		}
		return entities.CandidateIdentity{}, logError(tx.logger, "election_repo_get_candidate_identity_failed", err,
			"election_key", strings.TrimSpace(electionKey),
			"owner", owner.String(),
		)
	}
	return row.toEntity()
}

func (tx *txRepository) CreateCandidateRecord(ctx context.Context, record entities.CandidateRecord) error {
	row := candidateRecordModelFromEntity(record)
	create := tx.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "election_key"}, {Name: "candidate_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return logError(tx.logger, "election_repo_create_candidate_record_failed", create.Error,
			"election_key", row.ElectionKey,
			"candidate_id", row.CandidateID,
		)
	}
	if create.RowsAffected == 0 {
		return domainerrors.ErrRecordExists
	}
	return nil
}

func (tx *txRepository) GetCandidateRecord(ctx context.Context, electionKey string, candidateID uint64) (entities.CandidateRecord, error) {
	var row candidateRecordModel
	err := tx.forUpdate(ctx).
		Where("election_key = ? AND candidate_id = ?", strings.TrimSpace(electionKey), candidateID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.CandidateRecord{}, domainerrors.ErrCandidateNotFound
		}
		return entities.CandidateRecord{}, logError(tx.logger, "election_repo_get_candidate_record_failed", err,
			"election_key", strings.TrimSpace(electionKey),
			"candidate_id", candidateID,
		)
	}
	return row.toEntity()
}

func (tx *txRepository) SaveCandidateRecord(ctx context.Context, record entities.CandidateRecord) error {
	result := tx.db.WithContext(ctx).
		Model(&candidateRecordModel{}).
		Where("election_key = ? AND candidate_id = ?", strings.TrimSpace(record.ElectionKey), record.SequentialID).
		Updates(map[string]any{
			"votes":      record.Votes,
			"updated_at": record.UpdatedAt.UTC(),
		})
	if result.Error != nil {
		return logError(tx.logger, "election_repo_save_candidate_record_failed", result.Error,
			"election_key", strings.TrimSpace(record.ElectionKey),
			"candidate_id", record.SequentialID,
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrCandidateNotFound
	}
	return nil
}

func (tx *txRepository) CreateVoteReceipt(ctx context.Context, receipt entities.VoteReceipt) error {
	row := voteReceiptModel{
		ElectionKey: strings.TrimSpace(receipt.ElectionKey),
		Voter:       receipt.Voter.String(),
		CandidateID: receipt.CandidateID,
		CastAt:      receipt.CastAt.UTC(),
	}
	create := tx.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "election_key"}, {Name: "voter"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return logError(tx.logger, "election_repo_create_vote_receipt_failed", create.Error,
			"election_key", row.ElectionKey,
			"voter", row.Voter,
		)
	}
	if create.RowsAffected == 0 {
		return domainerrors.ErrRecordExists
	}
	return nil
}

func (tx *txRepository) GetVoteReceipt(ctx context.Context, electionKey string, voter entities.Identity) (entities.VoteReceipt, error) {
	var row voteReceiptModel
	err := tx.db.WithContext(ctx).
		Where("election_key = ? AND voter = ?", strings.TrimSpace(electionKey), voter.String()).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.VoteReceipt{}, domainerrors.ErrVoteReceiptNotFound
		}
		return entities.VoteReceipt{}, logError(tx.logger, "election_repo_get_vote_receipt_failed", err,
			"election_key", strings.TrimSpace(electionKey),
			"voter", voter.String(),
		)
	}
	return row.toEntity()
}

func (tx *txRepository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return logError(tx.logger, "election_repo_append_outbox_marshal_failed", err,
			"event_id", strings.TrimSpace(envelope.EventID),
			"event_type", strings.TrimSpace(envelope.EventType),
		)
	}
	row := outboxModel{
		OutboxID:     strings.TrimSpace(envelope.EventID),
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       outbox.StatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if row.OutboxID == "" {
		row.OutboxID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if err := tx.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrConflict
		}
		return logError(tx.logger, "election_repo_append_outbox_insert_failed", err,
			"outbox_id", row.OutboxID,
		)
	}
	return nil
}

func logError(logger *slog.Logger, event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "governance/election-engine",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	logger.Error("election repository operation failed", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.RecordStore = (*Repository)(nil)
var _ ports.RecordReader = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
var _ ports.ResultArchive = (*Repository)(nil)
var _ ports.Tx = (*txRepository)(nil)
