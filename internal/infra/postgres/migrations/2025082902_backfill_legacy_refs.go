package migrations

import (
	"context"

	"github.com/uptrace/bun"
)

// Rows imported from the pre-rewrite schema carry their references in
// legacy_survey_id / legacy_participant_id only. Copy them into the
// canonical columns so the unique index covers them; the legacy
// columns stay behind for the union-of-matches read path.
func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.Exec(`
				UPDATE responses
				SET survey_id = legacy_survey_id
				WHERE survey_id = '' AND legacy_survey_id IS NOT NULL`)
			if err != nil {
				return err
			}
			_, err = db.Exec(`
				UPDATE responses
				SET participant_id = legacy_participant_id
				WHERE participant_id = '' AND legacy_participant_id IS NOT NULL`)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			return nil // backfill is not reversible
		},
	)
}
