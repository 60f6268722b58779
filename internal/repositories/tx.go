package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TxStarter is satisfied by *pgxpool.Pool. Services begin a transaction here
// and run repository code against the pgx.Tx, so the composite stock
// workflows commit or roll back as a unit.
type TxStarter interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
