package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AccountStore holds coin balances. It sits entirely outside the game
// engine's write path; nothing here runs during a bid, play, or score.
type AccountStore struct {
	db *sql.DB
}

func NewAccountStore(db *sql.DB) *AccountStore {
	return &AccountStore{db: db}
}

// GetBalance returns the coin balance, zero for an unknown player.
func (s *AccountStore) GetBalance(ctx context.Context, playerID string) (int64, error) {
	var coins int64
	err := s.db.QueryRowContext(ctx,
		`SELECT coins FROM accounts WHERE player_id = $1`, playerID,
	).Scan(&coins)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get balance %s: %w", playerID, err)
	}
	return coins, nil
}

// Credit adjusts the balance (negative amount debits) and records the
// transaction, atomically.
func (s *AccountStore) Credit(ctx context.Context, playerID string, amount int64, reason string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO accounts (player_id, coins) VALUES ($1, $2)
		ON CONFLICT (player_id) DO UPDATE SET coins = accounts.coins + $2`,
		playerID, amount); err != nil {
		return fmt.Errorf("credit %s: %w", playerID, err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO coin_transactions (player_id, amount, reason) VALUES ($1, $2, $3)`,
		playerID, amount, reason); err != nil {
		return fmt.Errorf("record transaction %s: %w", playerID, err)
	}
	return tx.Commit()
}

// BalanceHandler serves GET /account/:id/balance.
func (s *AccountStore) BalanceHandler(c *gin.Context) {
	coins, err := s.GetBalance(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "balance lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"playerId": c.Param("id"), "coins": coins})
}
