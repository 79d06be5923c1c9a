package mapping

import (
	"github.com/SscSPs/access_exchange/internal/core/domain"
	"github.com/SscSPs/access_exchange/internal/models"
)

// ToModelAsset converts a domain Asset to a model Asset
func ToModelAsset(d domain.Asset) models.Asset {
	return models.Asset{
		AssetID:      d.AssetID,
		Code:         d.Code,
		AssetType:    string(d.AssetType),
		CurriculumID: d.CurriculumID,
		Scale:        d.Scale,
		CreatedAt:    d.CreatedAt,
	}
}

// ToDomainAsset converts a model Asset to a domain Asset
func ToDomainAsset(m models.Asset) domain.Asset {
	return domain.Asset{
		AssetID:      m.AssetID,
		Code:         m.Code,
		AssetType:    domain.AssetType(m.AssetType),
		CurriculumID: m.CurriculumID,
		Scale:        m.Scale,
		CreatedAt:    m.CreatedAt,
	}
}

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:    d.AccountID,
		OwnerUserID:  d.OwnerUserID,
		AccountType:  string(d.AccountType),
		CurrencyCode: d.CurrencyCode,
		Scope:        d.Scope,
		CreatedAt:    d.CreatedAt,
	}
}

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:    m.AccountID,
		OwnerUserID:  m.OwnerUserID,
		AccountType:  domain.AccountType(m.AccountType),
		CurrencyCode: m.CurrencyCode,
		Scope:        m.Scope,
		CreatedAt:    m.CreatedAt,
	}
}
