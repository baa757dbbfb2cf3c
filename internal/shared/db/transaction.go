// Package db provides database utilities including transaction management.
package db

import (
	"context"

	"gorm.io/gorm"
)

// txKey is the context key for storing transaction.
type txKey struct{}

// TransactionManager manages database transactions.
type TransactionManager struct {
	db *gorm.DB
}

// NewTransactionManager creates a new TransactionManager.
func NewTransactionManager(db *gorm.DB) *TransactionManager {
	return &TransactionManager{db: db}
}

// RunInTransaction executes fn as one unit of work. Repositories called with the ctx passed to fn
// join the transaction; a returned error rolls it back.
func (tm *TransactionManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// RunInNewTransaction is RunInTransaction detached from any transaction already carried by ctx,
// so its outcome commits independently of the caller's unit of work.
func (tm *TransactionManager) RunInNewTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return tm.RunInTransaction(Detach(ctx), fn)
}

// GetTx returns the transaction from context if available, otherwise returns the default DB.
func (tm *TransactionManager) GetTx(ctx context.Context) *gorm.DB {
	return GetTxFromContext(ctx, tm.db)
}

// GetTxFromContext returns the transaction from context if available.
// This is a standalone function for use in repositories.
func GetTxFromContext(ctx context.Context, defaultDB *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return defaultDB.WithContext(ctx)
}

// Detach shadows any transaction stored in ctx while keeping its deadline and values.
func Detach(ctx context.Context) context.Context {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); !ok {
		return ctx
	}
	return context.WithValue(ctx, txKey{}, (*gorm.DB)(nil))
}
