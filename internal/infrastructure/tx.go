package infrastructure

import (
	"context"

	"Wanderfund/internal/domain/shared"
	appErrors "Wanderfund/internal/errors"

	"gorm.io/gorm"
)

type txKey struct{}

// TxManager runs units of work in a gorm transaction carried by the context.
type TxManager struct {
	DB *gorm.DB
}

var _ shared.Transactor = (*TxManager)(nil)

func (m *TxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}

	err := m.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
	if err != nil {
		return appErrors.NewDatabaseError(err)
	}
	return nil
}

// dbFrom returns the transaction in ctx, or base when there is none.
func dbFrom(ctx context.Context, base *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return base.WithContext(ctx)
}
