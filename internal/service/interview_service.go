package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/interview-master/backend/internal/config"
	"github.com/interview-master/backend/internal/model"
	"github.com/interview-master/backend/internal/proctor"
	"github.com/interview-master/backend/internal/repository"
	"github.com/interview-master/backend/internal/worker"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Session lifecycle errors.
var (
	ErrActiveSessionExists = errors.New("an interview session is already in progress")
	ErrSessionNotFound     = errors.New("interview session not found")
	ErrNotSessionOwner     = errors.New("interview session belongs to another user")
	ErrSessionFinished     = errors.New("interview session has already finished")
	ErrSessionStillActive  = errors.New("interview session has not finished yet")
)

// finishedRetention is how long a finalized session stays queryable in
// memory before it is evicted. The persisted row outlives it.
const finishedRetention = 5 * time.Minute

// redisOpTimeout bounds Redis calls made from scheduler goroutines.
const redisOpTimeout = 3 * time.Second

// SessionEvent is one lifecycle event pushed to monitor streams and
// published on the session's Redis PubSub channel for observers.
type SessionEvent struct {
	Type             string               `json:"type"`
	SessionID        string               `json:"session_id"`
	Index            *int                 `json:"index,omitempty"`
	Kind             string               `json:"kind,omitempty"`
	Detail           string               `json:"detail,omitempty"`
	Reason           string               `json:"reason,omitempty"`
	TotalQuestions   int                  `json:"total_questions,omitempty"`
	TimeLimitSeconds int                  `json:"time_limit_seconds,omitempty"`
	Result           *model.SessionResult `json:"result,omitempty"`
	Timestamp        int64                `json:"timestamp"`
}

// Event type discriminators.
const (
	EventSessionStarted = "session_started"
	EventQuestionShown  = "question_changed"
	EventAlert          = "alert"
	EventAlertCleared   = "alert_cleared"
	EventTerminated     = "terminated"
	EventFinalized      = "finalized"
)

// SessionState is the candidate-facing snapshot of a running session.
type SessionState struct {
	SessionID        string             `json:"session_id"`
	Domain           string             `json:"domain"`
	Difficulty       string             `json:"difficulty"`
	Phase            string             `json:"phase"`
	Index            int                `json:"index"`
	TotalQuestions   int                `json:"total_questions"`
	RemainingSeconds int                `json:"remaining_seconds"`
	Question         model.QuestionView `json:"question"`
	Answer           string             `json:"answer,omitempty"`
	AnsweredIndexes  []int              `json:"answered_indexes"`
}

// liveSession is one in-memory running (or recently finished) session.
type liveSession struct {
	id         uuid.UUID
	userID     int
	domain     string
	difficulty string
	frames     *proctor.FrameBuffer
	ctrl       *proctor.Controller

	subMu sync.Mutex
	subs  map[int]chan []byte
	next  int
}

// InterviewService owns the registry of live sessions and routes their
// lifecycle events to monitor streams, observers and persistence queues.
type InterviewService struct {
	cfg        *config.Config
	rdb        *redis.Client
	questions  *QuestionService
	interviews *repository.InterviewRepository
	log        zerolog.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*liveSession
	byUser   map[int]uuid.UUID
}

// NewInterviewService creates a new InterviewService.
func NewInterviewService(
	cfg *config.Config,
	rdb *redis.Client,
	questions *QuestionService,
	interviews *repository.InterviewRepository,
	log zerolog.Logger,
) *InterviewService {
	return &InterviewService{
		cfg:        cfg,
		rdb:        rdb,
		questions:  questions,
		interviews: interviews,
		log:        log.With().Str("component", "interview_service").Logger(),
		sessions:   make(map[uuid.UUID]*liveSession),
		byUser:     make(map[int]uuid.UUID),
	}
}

// Start draws a question set, spins up the session controller and
// registers the session. One live session per user is enforced both
// in memory and through a Redis marker, so a second device cannot
// start a parallel run.
func (s *InterviewService) Start(ctx context.Context, userID int, req *model.StartInterviewRequest) (*SessionState, error) {
	questions, rule, err := s.questions.SelectForSession(ctx, req.Domain, req.Difficulty)
	if err != nil {
		return nil, err
	}

	sessionID := uuid.New()

	// The marker TTL outlives the exam clock slightly so a crashed
	// process cannot lock the user out forever.
	activeKey := config.CacheKey.UserActiveInterviewKey(userID)
	ok, err := s.rdb.SetNX(ctx, activeKey, sessionID.String(), rule.TimeLimit+time.Minute).Result()
	if err != nil {
		return nil, fmt.Errorf("register active session: %w", err)
	}
	if !ok {
		return nil, ErrActiveSessionExists
	}

	sess := &liveSession{
		id:         sessionID,
		userID:     userID,
		domain:     req.Domain,
		difficulty: req.Difficulty,
		frames:     proctor.NewFrameBuffer(),
		subs:       make(map[int]chan []byte),
	}

	ctrl, err := proctor.NewController(proctor.Config{
		Questions: questions,
		TimeLimit: rule.TimeLimit,
		Frames:    sess.frames,
		Sink:      &sessionSink{svc: s, sess: sess},
	})
	if err != nil {
		s.rdb.Del(ctx, activeKey)
		return nil, err
	}
	sess.ctrl = ctrl

	s.mu.Lock()
	if existing, busy := s.byUser[userID]; busy {
		s.mu.Unlock()
		// The marker written above belongs to the rejected session, not
		// the live one, so it must not linger until its TTL lapses.
		s.rdb.Del(ctx, activeKey)
		s.log.Warn().Int("user_id", userID).Str("session_id", existing.String()).Msg("Start rejected, session already live")
		return nil, ErrActiveSessionExists
	}
	s.sessions[sessionID] = sess
	s.byUser[userID] = sessionID
	s.mu.Unlock()

	if err := ctrl.Start(); err != nil {
		s.unregister(sess)
		return nil, err
	}

	s.log.Info().
		Int("user_id", userID).
		Str("session_id", sessionID.String()).
		Str("domain", req.Domain).
		Str("difficulty", req.Difficulty).
		Int("questions", len(questions)).
		Msg("Interview session started")

	return s.snapshot(sess), nil
}

// State returns the current snapshot of the caller's session.
func (s *InterviewService) State(sessionID uuid.UUID, userID int) (*SessionState, error) {
	sess, err := s.ownedSession(sessionID, userID)
	if err != nil {
		return nil, err
	}
	return s.snapshot(sess), nil
}

// Next persists the displayed answer and advances, finalizing when the
// last question is passed.
func (s *InterviewService) Next(sessionID uuid.UUID, userID int, answer string) (*SessionState, error) {
	sess, err := s.ownedSession(sessionID, userID)
	if err != nil {
		return nil, err
	}
	if err := sess.ctrl.Next(answer); err != nil {
		return nil, mapControllerErr(err)
	}
	return s.snapshot(sess), nil
}

// Previous persists the displayed answer and steps back.
func (s *InterviewService) Previous(sessionID uuid.UUID, userID int, answer string) (*SessionState, error) {
	sess, err := s.ownedSession(sessionID, userID)
	if err != nil {
		return nil, err
	}
	if err := sess.ctrl.Previous(answer); err != nil {
		return nil, mapControllerErr(err)
	}
	return s.snapshot(sess), nil
}

// RecordAnswer stores an answer for an explicit index.
func (s *InterviewService) RecordAnswer(sessionID uuid.UUID, userID int, index int, answer string) error {
	sess, err := s.ownedSession(sessionID, userID)
	if err != nil {
		return err
	}
	if err := sess.ctrl.RecordAnswer(index, answer); err != nil {
		return mapControllerErr(err)
	}
	return nil
}

// Submit finalizes the session voluntarily.
func (s *InterviewService) Submit(sessionID uuid.UUID, userID int, answer string) (*model.SessionResult, error) {
	sess, err := s.ownedSession(sessionID, userID)
	if err != nil {
		return nil, err
	}
	if err := sess.ctrl.Submit(answer); err != nil {
		return nil, mapControllerErr(err)
	}
	result, _ := sess.ctrl.Result()
	return result, nil
}

// SubmitFrame feeds one camera capture into the session's frame buffer.
func (s *InterviewService) SubmitFrame(sessionID uuid.UUID, userID int, frame proctor.Frame) error {
	sess, err := s.ownedSession(sessionID, userID)
	if err != nil {
		return err
	}
	sess.frames.Store(frame)
	return nil
}

// ReportVisibility forwards a page-visibility report.
func (s *InterviewService) ReportVisibility(sessionID uuid.UUID, userID int, hidden bool) error {
	sess, err := s.ownedSession(sessionID, userID)
	if err != nil {
		return err
	}
	sess.ctrl.Observe(hidden)
	return nil
}

// ReportFullscreenExit terminates the session immediately.
func (s *InterviewService) ReportFullscreenExit(sessionID uuid.UUID, userID int) error {
	sess, err := s.ownedSession(sessionID, userID)
	if err != nil {
		return err
	}
	sess.ctrl.ReportFullscreenExit()
	return nil
}

// Result returns the outcome of a finalized session. Sessions still in
// the retention window are served from memory with their full answer
// map; older ones fall back to the persisted row, which carries the
// scores but not the answers.
func (s *InterviewService) Result(ctx context.Context, sessionID uuid.UUID, userID int) (*model.SessionResult, error) {
	sess, err := s.ownedSession(sessionID, userID)
	if err == nil {
		result, ok := sess.ctrl.Result()
		if !ok {
			return nil, ErrSessionStillActive
		}
		return result, nil
	}
	if !errors.Is(err, ErrSessionNotFound) {
		return nil, err
	}

	rec, err := s.interviews.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if rec.UserID != userID {
		return nil, ErrNotSessionOwner
	}
	return &model.SessionResult{
		CorrectCount:    rec.CorrectCount,
		TotalQuestions:  rec.TotalQuestions,
		AccuracyPercent: rec.AccuracyPercent,
		ElapsedSeconds:  rec.ElapsedSeconds,
		CreditsEarned:   rec.CreditsEarned,
		Reason:          rec.Reason,
	}, nil
}

// History returns the user's persisted results, newest first.
func (s *InterviewService) History(ctx context.Context, userID, page, perPage int) ([]model.InterviewRecord, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return s.interviews.ListByUser(ctx, userID, perPage, (page-1)*perPage)
}

// Subscribe attaches a monitor stream to the session's event feed.
// The returned cancel must be called when the stream closes.
func (s *InterviewService) Subscribe(sessionID uuid.UUID, userID int) (<-chan []byte, func(), error) {
	sess, err := s.ownedSession(sessionID, userID)
	if err != nil {
		return nil, nil, err
	}

	ch := make(chan []byte, 32)
	sess.subMu.Lock()
	id := sess.next
	sess.next++
	sess.subs[id] = ch
	sess.subMu.Unlock()

	cancel := func() {
		sess.subMu.Lock()
		if _, ok := sess.subs[id]; ok {
			delete(sess.subs, id)
			close(ch)
		}
		sess.subMu.Unlock()
	}
	return ch, cancel, nil
}

// EventChannel exposes the Redis PubSub channel name for observers.
func (s *InterviewService) EventChannel(sessionID uuid.UUID) string {
	return config.CacheKey.InterviewEventChannel(sessionID.String())
}

// SessionExists reports whether a session ID is (still) registered,
// without an ownership check. Observer streams use it.
func (s *InterviewService) SessionExists(sessionID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[sessionID]
	return ok
}

func (s *InterviewService) ownedSession(sessionID uuid.UUID, userID int) (*liveSession, error) {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	s.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	if sess.userID != userID {
		return nil, ErrNotSessionOwner
	}
	return sess, nil
}

func (s *InterviewService) snapshot(sess *liveSession) *SessionState {
	ctrl := sess.ctrl
	index := ctrl.Index()
	question, _ := ctrl.QuestionAt(index)
	answer, _ := ctrl.StoredAnswer(index)

	total := ctrl.TotalQuestions()
	var answered []int
	for i := 0; i < total; i++ {
		if _, ok := ctrl.StoredAnswer(i); ok {
			answered = append(answered, i)
		}
	}

	return &SessionState{
		SessionID:        sess.id.String(),
		Domain:           sess.domain,
		Difficulty:       sess.difficulty,
		Phase:            ctrl.Phase().String(),
		Index:            index,
		TotalQuestions:   total,
		RemainingSeconds: ctrl.Remaining(),
		Question:         question.View(),
		Answer:           answer,
		AnsweredIndexes:  answered,
	}
}

// unregister drops a session from the registry and releases the Redis
// marker.
func (s *InterviewService) unregister(sess *liveSession) {
	s.mu.Lock()
	delete(s.sessions, sess.id)
	if s.byUser[sess.userID] == sess.id {
		delete(s.byUser, sess.userID)
	}
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	s.rdb.Del(ctx, config.CacheKey.UserActiveInterviewKey(sess.userID))
}

// publish fans one event out to local monitor streams and the Redis
// PubSub channel. Slow local subscribers are skipped, not waited for.
func (s *InterviewService) publish(sess *liveSession, ev SessionEvent) {
	ev.SessionID = sess.id.String()
	ev.Timestamp = time.Now().Unix()

	raw, err := json.Marshal(ev)
	if err != nil {
		s.log.Error().Err(err).Str("type", ev.Type).Msg("Event marshal failed")
		return
	}

	sess.subMu.Lock()
	for _, ch := range sess.subs {
		select {
		case ch <- raw:
		default:
		}
	}
	sess.subMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	s.rdb.Publish(ctx, config.CacheKey.InterviewEventChannel(sess.id.String()), raw)
}

// queueIntegrityEvent pushes one audit row to the persistence queue.
func (s *InterviewService) queueIntegrityEvent(sess *liveSession, kind, detail string) {
	payload, _ := json.Marshal(worker.IntegrityPayload{
		SessionID: sess.id.String(),
		UserID:    sess.userID,
		Kind:      kind,
		Detail:    detail,
		Timestamp: time.Now().Unix(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistIntegrityEventsQueue, payload).Err(); err != nil {
		s.log.Error().Err(err).Str("session_id", sess.id.String()).Msg("Integrity event enqueue failed")
	}
}

// queueResult pushes the finalized outcome to the persistence queue.
// The ResultWorker owns the Postgres write and the stats update.
func (s *InterviewService) queueResult(sess *liveSession, result *model.SessionResult) {
	payload, _ := json.Marshal(worker.ResultPayload{
		SessionID:       sess.id.String(),
		UserID:          sess.userID,
		Domain:          sess.domain,
		Difficulty:      sess.difficulty,
		CorrectCount:    result.CorrectCount,
		TotalQuestions:  result.TotalQuestions,
		AccuracyPercent: result.AccuracyPercent,
		CreditsEarned:   result.CreditsEarned,
		ElapsedSeconds:  result.ElapsedSeconds,
		Reason:          string(result.Reason),
		FinishedAt:      time.Now().Unix(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistResultsQueue, payload).Err(); err != nil {
		s.log.Error().Err(err).Str("session_id", sess.id.String()).Msg("CRITICAL: result enqueue failed")
	}
}

// retireLater releases the user's active slot right away and evicts
// the finalized session from memory after the retention window,
// closing any remaining subscriber streams. The session stays readable
// by ID so late Result calls still succeed.
func (s *InterviewService) retireLater(sess *liveSession) {
	s.mu.Lock()
	if s.byUser[sess.userID] == sess.id {
		delete(s.byUser, sess.userID)
	}
	s.mu.Unlock()

	time.AfterFunc(finishedRetention, func() {
		s.mu.Lock()
		delete(s.sessions, sess.id)
		s.mu.Unlock()

		sess.subMu.Lock()
		for id, ch := range sess.subs {
			delete(sess.subs, id)
			close(ch)
		}
		sess.subMu.Unlock()
	})
}

func mapControllerErr(err error) error {
	switch {
	case errors.Is(err, proctor.ErrSessionNotActive):
		return ErrSessionFinished
	default:
		return err
	}
}

// sessionSink adapts controller events onto the service's fan-out and
// persistence queues. Callbacks arrive on scheduler goroutines.
type sessionSink struct {
	svc  *InterviewService
	sess *liveSession
}

func (k *sessionSink) SessionStarted(totalQuestions int, timeLimit time.Duration) {
	k.svc.publish(k.sess, SessionEvent{
		Type:             EventSessionStarted,
		TotalQuestions:   totalQuestions,
		TimeLimitSeconds: int(timeLimit / time.Second),
	})
}

func (k *sessionSink) QuestionChanged(index int) {
	k.svc.publish(k.sess, SessionEvent{Type: EventQuestionShown, Index: &index})
}

func (k *sessionSink) IntegrityAlert(kind proctor.AlertKind, detail string) {
	k.svc.publish(k.sess, SessionEvent{Type: EventAlert, Kind: string(kind), Detail: detail})
	k.svc.queueIntegrityEvent(k.sess, string(kind), detail)
}

func (k *sessionSink) IntegrityAlertCleared(kind proctor.AlertKind) {
	k.svc.publish(k.sess, SessionEvent{Type: EventAlertCleared, Kind: string(kind)})
}

func (k *sessionSink) SessionTerminated(reason model.TerminationReason) {
	k.svc.log.Info().
		Str("session_id", k.sess.id.String()).
		Int("user_id", k.sess.userID).
		Str("reason", string(reason)).
		Msg("Interview session terminated")

	k.svc.publish(k.sess, SessionEvent{Type: EventTerminated, Reason: string(reason)})
	if reason != model.ReasonSubmitted {
		k.svc.queueIntegrityEvent(k.sess, string(reason), "session terminated")
	}
}

func (k *sessionSink) SessionFinalized(result *model.SessionResult) {
	k.svc.publish(k.sess, SessionEvent{Type: EventFinalized, Result: result})
	k.svc.queueResult(k.sess, result)
	k.svc.retireLater(k.sess)
}
