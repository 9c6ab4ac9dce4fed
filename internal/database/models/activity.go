package models

import (
	"context"
	"fmt"

	"github.com/ValgulNecron/kasuki/internal/database/dbretry"
	"github.com/ValgulNecron/kasuki/internal/database/types"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// ActivityModel handles database operations for tracked activities.
type ActivityModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewActivity creates an ActivityModel.
func NewActivity(db *bun.DB, logger *zap.Logger) *ActivityModel {
	return &ActivityModel{
		db:     db,
		logger: logger.Named("db_activity"),
	}
}

// Due returns every record scheduled for exactly fireAt.
func (r *ActivityModel) Due(ctx context.Context, fireAt int64) ([]types.ActivityRecord, error) {
	records, err := dbretry.Operation(ctx, func(ctx context.Context) ([]types.ActivityRecord, error) {
		var records []types.ActivityRecord

		err := r.db.NewSelect().
			Model(&records).
			Where("fire_at = ?", fireAt).
			Scan(ctx)

		return records, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get due activities at %d: %w", fireAt, err)
	}

	return records, nil
}

// Upsert creates the record or replaces every column of the existing one.
func (r *ActivityModel) Upsert(ctx context.Context, record *types.ActivityRecord) error {
	err := dbretry.NoResult(ctx, func(ctx context.Context) error {
		_, err := r.db.NewInsert().
			Model(record).
			On("CONFLICT (subject_id, owner_id) DO UPDATE").
			Set("fire_at = EXCLUDED.fire_at").
			Set("notify_target = EXCLUDED.notify_target").
			Set("episode = EXCLUDED.episode").
			Set("display_name = EXCLUDED.display_name").
			Set("delay_seconds = EXCLUDED.delay_seconds").
			Set("image = EXCLUDED.image").
			Exec(ctx)

		return err
	})
	if err != nil {
		return fmt.Errorf("failed to upsert activity %s for %s: %w", record.SubjectID, record.OwnerID, err)
	}

	r.logger.Debug("Upserted activity",
		zap.String("subjectID", record.SubjectID),
		zap.String("ownerID", record.OwnerID),
		zap.Int64("fireAt", record.FireAt))

	return nil
}

// Delete removes the record for (subjectID, ownerID).
// Returns whether a row was removed.
func (r *ActivityModel) Delete(ctx context.Context, subjectID, ownerID string) (bool, error) {
	affected, err := dbretry.Operation(ctx, func(ctx context.Context) (int64, error) {
		result, err := r.db.NewDelete().
			Model((*types.ActivityRecord)(nil)).
			Where("subject_id = ?", subjectID).
			Where("owner_id = ?", ownerID).
			Exec(ctx)
		if err != nil {
			return 0, err
		}

		return result.RowsAffected()
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete activity %s for %s: %w", subjectID, ownerID, err)
	}

	r.logger.Debug("Deleted activity",
		zap.String("subjectID", subjectID),
		zap.String("ownerID", ownerID),
		zap.Int64("affected", affected))

	return affected > 0, nil
}

// DeleteByOwner removes every record of one owner and returns how many were removed.
func (r *ActivityModel) DeleteByOwner(ctx context.Context, ownerID string) (int64, error) {
	affected, err := dbretry.Operation(ctx, func(ctx context.Context) (int64, error) {
		result, err := r.db.NewDelete().
			Model((*types.ActivityRecord)(nil)).
			Where("owner_id = ?", ownerID).
			Exec(ctx)
		if err != nil {
			return 0, err
		}

		return result.RowsAffected()
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete activities for %s: %w", ownerID, err)
	}

	return affected, nil
}

// Get returns the record for (subjectID, ownerID), or nil if none exists.
func (r *ActivityModel) Get(ctx context.Context, subjectID, ownerID string) (*types.ActivityRecord, error) {
	records, err := dbretry.Operation(ctx, func(ctx context.Context) ([]types.ActivityRecord, error) {
		var records []types.ActivityRecord

		err := r.db.NewSelect().
			Model(&records).
			Where("subject_id = ?", subjectID).
			Where("owner_id = ?", ownerID).
			Limit(1).
			Scan(ctx)

		return records, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get activity %s for %s: %w", subjectID, ownerID, err)
	}

	if len(records) == 0 {
		return nil, nil //nolint:nilnil // absence is not an error
	}

	return &records[0], nil
}

// ListByOwner returns the records of one owner ordered by fire time.
func (r *ActivityModel) ListByOwner(ctx context.Context, ownerID string) ([]types.ActivityRecord, error) {
	records, err := dbretry.Operation(ctx, func(ctx context.Context) ([]types.ActivityRecord, error) {
		var records []types.ActivityRecord

		err := r.db.NewSelect().
			Model(&records).
			Where("owner_id = ?", ownerID).
			Order("fire_at ASC").
			Scan(ctx)

		return records, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list activities for %s: %w", ownerID, err)
	}

	return records, nil
}

// List returns every record ordered by owner and subject.
func (r *ActivityModel) List(ctx context.Context) ([]types.ActivityRecord, error) {
	records, err := dbretry.Operation(ctx, func(ctx context.Context) ([]types.ActivityRecord, error) {
		var records []types.ActivityRecord

		err := r.db.NewSelect().
			Model(&records).
			Order("owner_id ASC", "subject_id ASC").
			Scan(ctx)

		return records, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}

	return records, nil
}
