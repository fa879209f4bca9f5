package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/jafarshop/marketorders/internal/domain"
)

type profileRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *sql.DB, logger *zap.Logger) *profileRepository {
	return &profileRepository{
		db:     db,
		logger: logger,
	}
}

func (r *profileRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Profile, error) {
	if len(ids) == 0 {
		return []*domain.Profile{}, nil
	}

	query := `
		SELECT id, full_name, avatar_url
		FROM profiles
		WHERE id = ANY($1::uuid[])
	`

	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = id.String()
	}

	rows, err := r.db.QueryContext(ctx, query, pq.Array(raw))
	if err != nil {
		r.logger.Error("Failed to query profiles", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	profiles := []*domain.Profile{}
	for rows.Next() {
		var profile domain.Profile
		var fullName, avatarURL sql.NullString

		if err := rows.Scan(&profile.ID, &fullName, &avatarURL); err != nil {
			return nil, err
		}
		profile.FullName = nullString(fullName)
		profile.AvatarURL = nullString(avatarURL)
		profiles = append(profiles, &profile)
	}

	return profiles, rows.Err()
}
