package mapping

import (
	"github.com/SscSPs/access_exchange/internal/core/domain"
	"github.com/SscSPs/access_exchange/internal/models"
)

// ToDomainBalance converts a model Balance to a domain Balance
func ToDomainBalance(m models.Balance) domain.Balance {
	return domain.Balance{
		AccountID: m.AccountID,
		AssetID:   m.AssetID,
		Balance:   m.Balance,
		UpdatedAt: m.UpdatedAt,
	}
}

// ToModelLedgerTransaction converts a domain Transaction to a model LedgerTransaction.
// A nil memo is stored as an empty object.
func ToModelLedgerTransaction(d domain.Transaction) models.LedgerTransaction {
	memo := d.Memo
	if memo == nil {
		memo = map[string]any{}
	}
	return models.LedgerTransaction{
		TransactionID:  d.TransactionID,
		EventType:      d.EventType,
		IdempotencyKey: d.IdempotencyKey,
		ActorUserID:    d.ActorUserID,
		ContextType:    d.ContextType,
		ContextID:      d.ContextID,
		Memo:           memo,
		CreatedAt:      d.CreatedAt,
	}
}

// ToDomainTransaction converts a model LedgerTransaction to a domain Transaction
func ToDomainTransaction(m models.LedgerTransaction) domain.Transaction {
	return domain.Transaction{
		TransactionID:  m.TransactionID,
		EventType:      m.EventType,
		IdempotencyKey: m.IdempotencyKey,
		ActorUserID:    m.ActorUserID,
		ContextType:    m.ContextType,
		ContextID:      m.ContextID,
		Memo:           m.Memo,
		CreatedAt:      m.CreatedAt,
	}
}

// ToModelLedgerEntry converts a domain Entry to a model LedgerEntry
func ToModelLedgerEntry(d domain.Entry) models.LedgerEntry {
	return models.LedgerEntry{
		EntryID:       d.EntryID,
		TransactionID: d.TransactionID,
		AccountID:     d.AccountID,
		AssetID:       d.AssetID,
		Delta:         d.Delta,
		EntryType:     string(d.EntryType),
		CreatedAt:     d.CreatedAt,
	}
}

// ToDomainEntry converts a model LedgerEntry to a domain Entry
func ToDomainEntry(m models.LedgerEntry) domain.Entry {
	return domain.Entry{
		EntryID:       m.EntryID,
		TransactionID: m.TransactionID,
		AccountID:     m.AccountID,
		AssetID:       m.AssetID,
		Delta:         m.Delta,
		EntryType:     domain.EntryType(m.EntryType),
		CreatedAt:     m.CreatedAt,
	}
}
