package domain

import "time"

// AccountType identifies the role of a balance holder.
type AccountType string

const (
	AccountTypeUserWallet       AccountType = "user_wallet"
	AccountTypeTreasury         AccountType = "treasury"
	AccountTypeRewardsPool      AccountType = "rewards_pool"
	AccountTypeEscrowPool       AccountType = "escrow_pool"
	AccountTypeCurriculumWallet AccountType = "curriculum_wallet"
)

// IsValid reports whether t is a known account type.
func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeUserWallet, AccountTypeTreasury, AccountTypeRewardsPool,
		AccountTypeEscrowPool, AccountTypeCurriculumWallet:
		return true
	}
	return false
}

// Account is a holder of balances. OwnerUserID is nil for system accounts.
// Scope distinguishes per-curriculum system accounts (curriculum wallets); it is empty for global singletons.
type Account struct {
	AccountID    string      `json:"accountID"`
	OwnerUserID  *string     `json:"ownerUserID,omitempty"`
	AccountType  AccountType `json:"accountType"`
	CurrencyCode string      `json:"currencyCode"`
	Scope        string      `json:"scope,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
}

// IsUserWallet reports whether overdraft protection applies to the account.
func (a Account) IsUserWallet() bool {
	return a.AccountType == AccountTypeUserWallet
}

// IsCurriculumWallet reports whether the account is a curriculum payout pot. Pots never go negative.
func (a Account) IsCurriculumWallet() bool {
	return a.AccountType == AccountTypeCurriculumWallet
}

// IsSystem reports whether the account is a system account.
func (a Account) IsSystem() bool {
	return a.OwnerUserID == nil
}
