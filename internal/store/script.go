package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/shaiso/funckabots/internal/telemetry"
)

// TxBeginner открывает транзакции. Реализуется *pgxpool.Pool и pgx.Tx.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Script выполняет fn в новой транзакции.
//
// При успехе и autoCommit транзакция коммитится, без autoCommit
// откатывается (скрипт только читает). Ошибка или паника fn
// откатывает транзакцию; паника пробрасывается дальше. Ошибки
// возвращаются как *ScriptError и логируются логгером из ctx.
func Script[T any](ctx context.Context, db TxBeginner, name string, autoCommit bool, fn func(ctx context.Context, tx pgx.Tx) (T, error)) (T, error) {
	var zero T
	logger := telemetry.FromContext(ctx).With("script", name)

	tx, err := db.Begin(ctx)
	if err != nil {
		return zero, &ScriptError{Name: name, Op: "begin", Err: err}
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		// Rollback после Commit или на закрытой транзакции возвращает ErrTxClosed
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			logger.Warn("rollback failed", "error", err)
		}
	}()

	result, err := fn(ctx, tx)
	if err != nil {
		logger.Error("script execution failed, transaction rolled back", "error", err)
		return zero, &ScriptError{Name: name, Op: "run", Err: err}
	}

	if !autoCommit {
		return result, nil
	}

	if err := tx.Commit(ctx); err != nil {
		logger.Error("script commit failed", "error", err)
		return zero, &ScriptError{Name: name, Op: "commit", Err: err}
	}
	committed = true

	return result, nil
}

// WithTx выполняет fn в транзакции с коммитом при успехе.
func WithTx(ctx context.Context, db TxBeginner, name string, fn func(ctx context.Context, tx pgx.Tx) error) error {
	_, err := Script(ctx, db, name, true, func(ctx context.Context, tx pgx.Tx) (struct{}, error) {
		return struct{}{}, fn(ctx, tx)
	})
	return err
}
