package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

type Tx interface{}

// TransactionManager executes a function within a database transaction,
// passing the transaction handle via `tx`. The concrete type of `tx` is
// infra-defined (pgx.Tx for Postgres); repositories must gracefully accept
// a nil tx and fall back to their non-transactional path.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
