package utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sakashimaa/pos-console/pkg/mylogger"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	dedupAttempts = 3
	dedupBackoff  = 500 * time.Millisecond
)

// ProcessWithDeduplication claims eventID in processed_events and runs action inside the same transaction.
// A duplicate claim skips the action; a failed action releases the claim so redelivery can try again.
func ProcessWithDeduplication(
	ctx context.Context,
	pool *pgxpool.Pool,
	logger *zap.Logger,
	eventID string,
	action func(ctx context.Context) error,
) error {
	span := trace.SpanFromContext(ctx)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		shutdownCtx := context.WithoutCancel(ctx)

		if err := tx.Rollback(shutdownCtx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			mylogger.Error(
				shutdownCtx,
				logger,
				"Error rolling back transaction",
				zap.Error(err),
			)
		}
	}()

	query := `
		INSERT INTO processed_events (event_id)
		VALUES ($1)
	`

	if _, err := tx.Exec(ctx, query, eventID); err != nil {
		var pgError *pgconn.PgError
		if errors.As(err, &pgError) && pgError.Code == "23505" {
			mylogger.Info(
				ctx,
				logger,
				"Event already processed, skipping",
				zap.String("event_id", eventID),
			)

			return nil
		}

		span.RecordError(err)
		return err
	}

	for attempt := 1; ; attempt++ {
		err = action(ctx)
		if err == nil {
			break
		}

		if attempt == dedupAttempts {
			mylogger.Error(ctx, logger, "Failed to process event after retries",
				zap.String("event_id", eventID),
				zap.Int("attempts", attempt),
				zap.Error(err),
			)

			return fmt.Errorf("failed to process event %s: %w", eventID, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(dedupBackoff):
		}
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			logger,
			"Failed to commit transaction",
			zap.Error(err),
		)

		return fmt.Errorf("failed to commit processed event: %w", err)
	}

	return nil
}
