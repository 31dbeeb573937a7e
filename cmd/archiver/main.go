// cmd/archiver/main.go is an asynchronous archiver service that pops match
// action records from a Redis queue and persists them to PostgreSQL.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"

	"github.com/subwaydeal/server/internal/cache"
	"github.com/subwaydeal/server/internal/database"
)

// ArchiverService encapsulates the Redis and DB logic for capturing match
// actions and marking matches abandoned after prolonged inactivity.
type ArchiverService struct {
	redisClient  *redis.Client
	batchSize    int
	flushDelay   time.Duration
	inactivity   time.Duration
	lastActivity sync.Map // map[uuid.UUID]time.Time per match

	batchMu  sync.Mutex
	batch    []cache.MatchActionRecord
	ctx      context.Context
	cancelFn context.CancelFunc
}

// NewArchiverService constructs an ArchiverService from environment variables
// or defaults.
func NewArchiverService() *ArchiverService {
	batchSize := getEnvInt("ARCHIVER_BATCH_SIZE", 20)
	flushMs := getEnvInt("ARCHIVER_FLUSH_MS", 500)
	inactivitySec := getEnvInt("MATCH_INACTIVITY_TIMEOUT_SEC", 600)

	redisAddr := getEnv("REDIS_ADDR", "localhost:6379")
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	ctx, cancel := context.WithCancel(context.Background())
	return &ArchiverService{
		redisClient: rdb,
		batchSize:   batchSize,
		flushDelay:  time.Duration(flushMs) * time.Millisecond,
		inactivity:  time.Duration(inactivitySec) * time.Second,
		batch:       make([]cache.MatchActionRecord, 0, batchSize),
		ctx:         ctx,
		cancelFn:    cancel,
	}
}

// Run connects to the database and starts the consume and inactivity loops.
func (as *ArchiverService) Run() {
	database.ConnectDB()

	go as.readRedisLoop()
	go as.inactivityLoop()

	log.Println("subwaydeal-archiver service started.")
	<-as.ctx.Done()
	log.Println("subwaydeal-archiver shutting down.")
}

// readRedisLoop continuously uses BLPop to retrieve action records from the
// Redis queue, accumulating them into a batch that flushes on size or timer.
func (as *ArchiverService) readRedisLoop() {
	ticker := time.NewTicker(as.flushDelay)
	defer ticker.Stop()

	queueName := getEnv("ARCHIVER_QUEUE_NAME", cache.DefaultQueueName)

	for {
		select {
		case <-as.ctx.Done():
			return

		case <-ticker.C:
			as.flushBatchToDB()

		default:
			// BLPop with a short timeout so context cancellation is handled.
			res, err := as.redisClient.BLPop(as.ctx, 3*time.Second, queueName).Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				log.Printf("[ERROR] BLPop: %v\n", err)
				continue
			}
			if len(res) < 2 {
				continue
			}

			// res[0] is the queue name and res[1] the payload.
			var record cache.MatchActionRecord
			if err := json.Unmarshal([]byte(res[1]), &record); err != nil {
				log.Printf("invalid action record: %v\n", err)
				continue
			}

			as.lastActivity.Store(record.MatchID, time.Now())
			as.appendToBatch(record)
		}
	}
}

// appendToBatch adds a record to the in-memory batch and flushes when the
// threshold is reached.
func (as *ArchiverService) appendToBatch(record cache.MatchActionRecord) {
	as.batchMu.Lock()
	defer as.batchMu.Unlock()

	as.batch = append(as.batch, record)
	if len(as.batch) >= as.batchSize {
		as.flushBatchLocked()
	}
}

// flushBatchToDB flushes the current batch under the batch lock.
func (as *ArchiverService) flushBatchToDB() {
	as.batchMu.Lock()
	defer as.batchMu.Unlock()
	as.flushBatchLocked()
}

// flushBatchLocked writes the batch in a single transaction. The batch lock
// must be held by the caller.
func (as *ArchiverService) flushBatchLocked() {
	if len(as.batch) == 0 {
		return
	}
	batchCopy := make([]cache.MatchActionRecord, len(as.batch))
	copy(batchCopy, as.batch)
	as.batch = as.batch[:0]

	ctx := context.Background()
	err := pgx.BeginTxFunc(ctx, database.DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, rec := range batchCopy {
			if err := insertMatchActionTx(ctx, tx, rec); err != nil {
				return fmt.Errorf("insertMatchActionTx: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("[ERROR] flush batch: %v\n", err)
	} else {
		log.Printf("Flushed %d actions to DB.\n", len(batchCopy))
	}
}

// inactivityLoop periodically marks matches as abandoned when no action has
// arrived within the configured threshold.
func (as *ArchiverService) inactivityLoop() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-as.ctx.Done():
			return

		case <-ticker.C:
			now := time.Now()
			as.lastActivity.Range(func(key, val interface{}) bool {
				matchID, ok1 := key.(uuid.UUID)
				last, ok2 := val.(time.Time)
				if ok1 && ok2 && now.Sub(last) > as.inactivity {
					as.markMatchAbandoned(matchID)
					as.lastActivity.Delete(matchID)
				}
				return true
			})
		}
	}
}

// markMatchAbandoned marks a match 'abandoned' if it is still in progress.
func (as *ArchiverService) markMatchAbandoned(matchID uuid.UUID) {
	ctx := context.Background()
	err := pgx.BeginTxFunc(ctx, database.DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		q := `
			UPDATE matches
			SET status = 'abandoned', end_time = NOW()
			WHERE id = $1 AND status = 'in_progress'
		`
		_, e := tx.Exec(ctx, q, matchID)
		return e
	})
	if err != nil {
		log.Printf("failed to mark match %v abandoned: %v", matchID, err)
	} else {
		log.Printf("Marked match %v as 'abandoned' due to inactivity.", matchID)
	}
}

// insertMatchActionTx inserts a single action record into match_actions and
// upserts the owning match row so out-of-order startup is tolerated.
func insertMatchActionTx(ctx context.Context, tx pgx.Tx, rec cache.MatchActionRecord) error {
	upsertMatchQ := `
		INSERT INTO matches (id, status, start_time)
		VALUES ($1, 'in_progress', NOW())
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := tx.Exec(ctx, upsertMatchQ, rec.MatchID); err != nil {
		return err
	}

	actionInsertQ := `
		INSERT INTO match_actions (
			match_id, action_index, actor_id, action_type, payload, occurred_at
		) VALUES ($1, $2, $3, $4, $5, to_timestamp($6 / 1000.0))
	`
	payload := rec.Payload
	if payload == nil {
		payload = json.RawMessage("null")
	}
	_, err := tx.Exec(ctx, actionInsertQ,
		rec.MatchID, rec.ActionIndex, rec.ActorID, rec.ActionType, payload, rec.Timestamp,
	)
	return err
}

// Stop gracefully stops the archiver service.
func (as *ArchiverService) Stop() {
	as.cancelFn()
}

func main() {
	as := NewArchiverService()
	go as.Run()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	as.Stop()
	log.Println("Archiver shutdown complete.")
}

// getEnv retrieves an environment variable's value or returns a default.
func getEnv(key, defVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defVal
}

// getEnvInt parses an environment variable as an integer or returns a default.
func getEnvInt(key string, defVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defVal
	}
	return i
}
