package models

import "time"

// Asset is a row of the assets table.
type Asset struct {
	AssetID      string    `db:"asset_id"`
	Code         string    `db:"code"`
	AssetType    string    `db:"asset_type"`
	CurriculumID *string   `db:"curriculum_id"` // Nullable, set for curriculum shares only
	Scale        int64     `db:"scale"`
	CreatedAt    time.Time `db:"created_at"`
}
