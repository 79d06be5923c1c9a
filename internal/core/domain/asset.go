package domain

import (
	"strings"
	"time"
)

// AssetType classifies a fungible value type held in the ledger.
type AssetType string

const (
	AssetTypeCurrency        AssetType = "currency"
	AssetTypeCurriculumShare AssetType = "curriculum_share"
)

const (
	// CurrencyCode is the symbol of the Access Note currency.
	CurrencyCode = "AN"
	// CurrencyScale is the number of ticks in one Access Note.
	CurrencyScale int64 = 1000
	// ShareScale is the divisor for curriculum shares, which are whole units.
	ShareScale int64 = 1

	shareCodePrefix = "CURR_SHARE:"
)

// Asset represents a fungible value type (the currency or one curriculum's share token).
type Asset struct {
	AssetID      string    `json:"assetID"`
	Code         string    `json:"code"`
	AssetType    AssetType `json:"assetType"`
	CurriculumID *string   `json:"curriculumID,omitempty"`
	Scale        int64     `json:"scale"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ShareAssetCode returns the asset code of a curriculum's share token.
func ShareAssetCode(curriculumID string) string {
	return shareCodePrefix + curriculumID
}

// CurriculumFromShareCode extracts the curriculum id from a share asset code.
func CurriculumFromShareCode(code string) (string, bool) {
	if !strings.HasPrefix(code, shareCodePrefix) {
		return "", false
	}
	return strings.TrimPrefix(code, shareCodePrefix), true
}

// IsShare reports whether the asset is a curriculum share.
func (a Asset) IsShare() bool {
	return a.AssetType == AssetTypeCurriculumShare
}
