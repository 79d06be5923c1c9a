package models

import "time"

// Account is a row of the accounts table. OwnerUserID is NULL for system accounts.
type Account struct {
	AccountID    string    `db:"account_id"`
	OwnerUserID  *string   `db:"owner_user_id"`
	AccountType  string    `db:"account_type"`
	CurrencyCode string    `db:"currency_code"`
	Scope        string    `db:"scope"`
	CreatedAt    time.Time `db:"created_at"`
}
