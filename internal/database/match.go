// internal/database/match.go
package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"
)

// InsertMatchStart upserts the match row as in-progress with the starting
// snapshot (seat order, dealt hand sizes). Failures are logged, not fatal;
// the in-memory match is authoritative either way.
func InsertMatchStart(ctx context.Context, matchID, lobbyID uuid.UUID, initialState interface{}) {
	data, err := json.Marshal(initialState)
	if err != nil {
		logrus.WithError(err).WithField("match_id", matchID).Warn("failed to marshal initial match state")
		return
	}
	err = pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		q := `
			INSERT INTO matches (id, lobby_id, status, initial_state, start_time)
			VALUES ($1, $2, 'in_progress', $3, NOW())
			ON CONFLICT (id)
			DO UPDATE SET initial_state = EXCLUDED.initial_state, status='in_progress'
		`
		_, e := tx.Exec(ctx, q, matchID, lobbyID, data)
		return e
	})
	if err != nil {
		logrus.WithError(err).WithField("match_id", matchID).Warn("failed to persist match start")
	}
}

// RecordMatchResult marks the match completed and records each seat's
// outcome: winner flag and complete-set count at game end.
func RecordMatchResult(ctx context.Context, matchID uuid.UUID, winnerID uuid.UUID, completeSets map[uuid.UUID]int) error {
	err := pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		upsert := `
			INSERT INTO matches (id, status, end_time)
			VALUES ($1, 'completed', NOW())
			ON CONFLICT (id) DO UPDATE SET status = 'completed', end_time = NOW()
		`
		if _, e := tx.Exec(ctx, upsert, matchID); e != nil {
			return e
		}
		for playerID, sets := range completeSets {
			q := `
				INSERT INTO match_results (match_id, player_id, complete_sets, did_win)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (match_id, player_id)
				DO UPDATE SET complete_sets=$3, did_win=$4
			`
			if _, e := tx.Exec(ctx, q, matchID, playerID, sets, playerID == winnerID); e != nil {
				return e
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("tx upsert match results: %w", err)
	}
	return nil
}

// StoreFinalMatchState updates matches.final_state with the full end-of-game
// snapshot for later review.
func StoreFinalMatchState(ctx context.Context, matchID uuid.UUID, finalState interface{}) error {
	data, err := json.Marshal(finalState)
	if err != nil {
		return fmt.Errorf("failed to marshal final match state: %w", err)
	}
	query := `
		UPDATE matches
		SET final_state = $1
		WHERE id = $2
	`
	err = pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, e := tx.Exec(ctx, query, data, matchID)
		return e
	})
	if err != nil {
		return fmt.Errorf("storing final match state: %w", err)
	}
	return nil
}
