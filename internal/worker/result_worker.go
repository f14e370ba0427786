package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/interview-master/backend/internal/config"
	"github.com/interview-master/backend/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	ResultBatchSize    = 50
	ResultBatchTimeout = 2 * time.Second
	ResultPollTimeout  = 1 * time.Second // Must be >= 1s to satisfy Redis
)

// ResultWorker drains finalized interview results from Redis and
// persists them to Postgres in batches, then recomputes the affected
// users' aggregate stats.
type ResultWorker struct {
	pool       *pgxpool.Pool
	rdb        *redis.Client
	interviews *repository.InterviewRepository
	log        zerolog.Logger
}

func NewResultWorker(pool *pgxpool.Pool, rdb *redis.Client, interviews *repository.InterviewRepository, log zerolog.Logger) *ResultWorker {
	return &ResultWorker{
		pool:       pool,
		rdb:        rdb,
		interviews: interviews,
		log:        log.With().Str("component", "result_worker").Logger(),
	}
}

// ResultPayload is the queue message produced when a session finalizes.
type ResultPayload struct {
	SessionID       string `json:"session_id"`
	UserID          int    `json:"user_id"`
	Domain          string `json:"domain"`
	Difficulty      string `json:"difficulty"`
	CorrectCount    int    `json:"correct_count"`
	TotalQuestions  int    `json:"total_questions"`
	AccuracyPercent int    `json:"accuracy_percent"`
	CreditsEarned   int    `json:"credits_earned"`
	ElapsedSeconds  int    `json:"elapsed_seconds"`
	Reason          string `json:"reason"`
	FinishedAt      int64  `json:"finished_at"`
}

func (w *ResultWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ResultWorker started")

	buffer := make([]*ResultPayload, 0, ResultBatchSize)
	lastFlush := time.Now()

	for {
		if len(buffer) > 0 &&
			(len(buffer) >= ResultBatchSize || time.Since(lastFlush) >= ResultBatchTimeout) {

			w.flushSafe(ctx, buffer)
			buffer = buffer[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.shutdown(buffer)
			return
		default:
		}

		item, err := w.rdb.BLPop(ctx, ResultPollTimeout, config.WorkerKey.PersistResultsQueue).Result()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			w.log.Error().Err(err).Msg("Redis connection error, sleeping 3s")
			time.Sleep(3 * time.Second)
			continue
		}

		if len(item) < 2 {
			continue
		}

		var p ResultPayload
		if err := json.Unmarshal([]byte(item[1]), &p); err != nil {
			w.log.Error().Err(err).Str("data", item[1]).Msg("Discarding malformed JSON")
			continue
		}

		buffer = append(buffer, &p)
	}
}

// flushSafe attempts bulk insert, then row-by-row recovery with
// requeue. Stats are recomputed once per affected user after the rows
// are in.
func (w *ResultWorker) flushSafe(ctx context.Context, batch []*ResultPayload) {
	if len(batch) == 0 {
		return
	}

	if err := w.bulkInsert(ctx, batch); err != nil {
		w.log.Warn().Err(err).Int("count", len(batch)).Msg("Bulk insert failed, attempting row-by-row recovery")
		w.fallbackInsert(ctx, batch)
	}

	w.recalculateStats(ctx, batch)
	w.clearActiveSessions(ctx, batch)
}

func (w *ResultWorker) bulkInsert(ctx context.Context, batch []*ResultPayload) error {
	rows := make([][]interface{}, 0, len(batch))
	for _, p := range batch {
		sessionID, err := uuid.Parse(p.SessionID)
		if err != nil {
			return err
		}
		rows = append(rows, []interface{}{
			sessionID, p.UserID, p.Domain, p.Difficulty, p.CorrectCount, p.TotalQuestions,
			p.AccuracyPercent, p.CreditsEarned, p.ElapsedSeconds, p.Reason, time.Unix(p.FinishedAt, 0),
		})
	}

	_, err := w.pool.CopyFrom(
		ctx,
		pgx.Identifier{"interview_results"},
		[]string{"id", "user_id", "domain", "difficulty", "correct_count", "total_questions",
			"accuracy_percent", "credits_earned", "elapsed_seconds", "reason", "finished_at"},
		pgx.CopyFromRows(rows),
	)
	return err
}

func (w *ResultWorker) fallbackInsert(ctx context.Context, batch []*ResultPayload) {
	requeueList := make([]*ResultPayload, 0)

	for _, p := range batch {
		sessionID, err := uuid.Parse(p.SessionID)
		if err != nil {
			w.log.Error().Str("session_id", p.SessionID).Msg("Dropping result with invalid UUID")
			continue
		}

		_, err = w.pool.Exec(ctx,
			`INSERT INTO interview_results
			   (id, user_id, domain, difficulty, correct_count, total_questions,
			    accuracy_percent, credits_earned, elapsed_seconds, reason, finished_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			 ON CONFLICT (id) DO NOTHING`,
			sessionID, p.UserID, p.Domain, p.Difficulty, p.CorrectCount, p.TotalQuestions,
			p.AccuracyPercent, p.CreditsEarned, p.ElapsedSeconds, p.Reason, time.Unix(p.FinishedAt, 0),
		)

		if err != nil {
			w.log.Error().Err(err).Int("user_id", p.UserID).Msg("Insert failed, requeueing")
			requeueList = append(requeueList, p)
		}
	}

	if len(requeueList) > 0 {
		w.requeue(ctx, requeueList)
	}
}

// recalculateStats runs the aggregate update once per user in the
// batch, not once per row.
func (w *ResultWorker) recalculateStats(ctx context.Context, batch []*ResultPayload) {
	users := make(map[int]struct{}, len(batch))
	for _, p := range batch {
		users[p.UserID] = struct{}{}
	}

	for userID := range users {
		if err := w.interviews.RecalculateStats(ctx, userID); err != nil {
			w.log.Error().Err(err).Int("user_id", userID).Msg("Stats recalculation failed")
		}
	}
}

// clearActiveSessions drops the Redis markers that pinned each user to
// their now-finished session.
func (w *ResultWorker) clearActiveSessions(ctx context.Context, batch []*ResultPayload) {
	pipe := w.rdb.Pipeline()
	for _, p := range batch {
		pipe.Del(ctx, config.CacheKey.UserActiveInterviewKey(p.UserID))
	}
	_, _ = pipe.Exec(ctx)
}

func (w *ResultWorker) requeue(ctx context.Context, items []*ResultPayload) {
	pipe := w.rdb.Pipeline()
	for _, p := range items {
		data, _ := json.Marshal(p)
		pipe.RPush(ctx, config.WorkerKey.PersistResultsQueue, data)
	}
	_, err := pipe.Exec(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("CRITICAL: Failed to requeue items to Redis. Data loss occurred.")
	} else {
		w.log.Info().Int("count", len(items)).Msg("Requeued failed items back to Redis")
		time.Sleep(2 * time.Second)
	}
}

func (w *ResultWorker) shutdown(buffer []*ResultPayload) {
	w.log.Info().Msg("Worker stopping, flushing remaining buffer...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if len(buffer) > 0 {
		w.flushSafe(shutdownCtx, buffer)
	}
}
