package scheduler

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"

	"aimawatch/internal/checker"
	"aimawatch/internal/config"
	"aimawatch/internal/notifier"
	"aimawatch/internal/policy"
	"aimawatch/pkg/domain"
	"aimawatch/pkg/logger"
	"aimawatch/pkg/metrics"
	"aimawatch/pkg/serrors"
	"aimawatch/pkg/storage"
	"aimawatch/pkg/vault"
)

const (
	// spreadWindow is the slice of each hour the cycle spreads its checks
	// over. The remaining ten minutes absorb slow checks and jitter.
	spreadWindow = 50 * time.Minute

	// maxJitter is how far an individual check may drift from its even
	// slot, redrawn per user per cycle.
	maxJitter = 2 * time.Minute

	// sweepPause separates back-to-back checks during the report sweeps so
	// the notifier is not hammered.
	sweepPause = time.Second

	// Report sweep hours in the scheduler's location. Cycles starting at
	// these hours run back-to-back so every user lands inside the
	// notification window.
	morningSweepHour = 10
	eveningSweepHour = 19
)

// Options configure the check cycle.
type Options struct {
	// Secret is the shared key material user encryption keys are derived
	// from.
	Secret []byte
	// Location anchors cycle boundaries and report sweeps.
	Location *time.Location
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) (Options, error) {
	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		return Options{}, fmt.Errorf("could not load scheduler timezone: %w", err)
	}

	return Options{
		Secret:   []byte(cfg.Telegram.BotToken),
		Location: location,
	}, nil
}

// scheduler is the concrete Service implementation.
type scheduler struct {
	options  Options
	storage  storage.Storage
	checker  checker.Checker
	notifier notifier.Notifier
	policy   *policy.Policy
	metrics  *metrics.Metrics

	// now, sleep and jitter are swapped out in tests.
	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error
	jitter func() time.Duration

	// mu guards inProgress, the per-user in-flight set shared by the
	// periodic cycle and CheckNow.
	mu         sync.Mutex
	inProgress map[domain.UserID]struct{}
}

// New creates a Service wired to the given collaborators.
func New(options Options,
	store storage.Storage,
	chk checker.Checker,
	ntf notifier.Notifier,
	pol *policy.Policy,
	m *metrics.Metrics) Service {
	return newScheduler(options, store, chk, ntf, pol, m)
}

func newScheduler(options Options,
	store storage.Storage,
	chk checker.Checker,
	ntf notifier.Notifier,
	pol *policy.Policy,
	m *metrics.Metrics) *scheduler {
	return &scheduler{
		options:    options,
		storage:    store,
		checker:    chk,
		notifier:   ntf,
		policy:     pol,
		metrics:    m,
		now:        time.Now,
		sleep:      sleepContext,
		jitter:     randomJitter,
		inProgress: make(map[domain.UserID]struct{}),
	}
}

// Run executes one cycle at the top of every hour until the context is
// canceled.
func (s *scheduler) Run(ctx context.Context) error {
	logger.Info(ctx, "check scheduler started",
		zap.String("timezone", s.options.Location.String()))

	for {
		next := s.now().In(s.options.Location).Truncate(time.Hour).Add(time.Hour)
		if err := s.sleep(ctx, next.Sub(s.now())); err != nil {
			logger.Info(ctx, "check scheduler stopped")

			return err
		}

		s.runCycle(ctx)
	}
}

// runCycle visits every active user once, strictly sequentially. Normal
// cycles spread users across the spread window; cycles starting at a report
// hour sweep users back-to-back so everyone is decided inside the window.
func (s *scheduler) runCycle(ctx context.Context) {
	users, err := s.storage.ActiveUsers(ctx)
	if err != nil {
		logger.Error(ctx, "could not load active users", zap.Error(err))

		return
	}
	if len(users) == 0 {
		logger.Debug(ctx, "no users with periodic checks enabled")

		return
	}

	start := s.now()
	sweep := isSweepHour(start.In(s.options.Location).Hour())
	step := spreadWindow / time.Duration(len(users))

	logger.Info(ctx, "check cycle started",
		zap.Int("users", len(users)),
		zap.Bool("sweep", sweep),
		zap.Duration("step", step))

	for i, user := range users {
		if ctx.Err() != nil {
			return
		}

		// the first user fires immediately; later users wait for their
		// slot relative to the cycle start
		if i > 0 {
			offset := s.userOffset(i, step, sweep)
			if wait := start.Add(offset).Sub(s.now()); wait > 0 {
				if err := s.sleep(ctx, wait); err != nil {
					return
				}
			}
		}

		s.checkUser(ctx, user)
	}

	logger.Info(ctx, "check cycle completed", zap.Int("users", len(users)))
}

// userOffset computes when user i is due, relative to cycle start.
func (s *scheduler) userOffset(i int, step time.Duration, sweep bool) time.Duration {
	if sweep {
		return time.Duration(i) * sweepPause
	}

	offset := time.Duration(i)*step + s.jitter()
	if offset < 0 {
		offset = 0
	}
	if offset > spreadWindow {
		offset = spreadWindow
	}

	return offset
}

// checkUser runs the guarded check-decide-notify sequence for one user.
// Every failure mode is contained here; a bad user never aborts the cycle.
func (s *scheduler) checkUser(ctx context.Context, user domain.User) {
	ctx = logger.WithFields(ctx, zap.Int64("userId", int64(user.ID)))

	if !s.acquire(user.ID) {
		logger.Warn(ctx, "check already in progress, skipping")

		return
	}
	defer s.release(user.ID)

	email, password, err := s.credentials(user)
	if err != nil {
		s.metrics.RecordDecryptFailure(ctx)
		logger.Error(ctx, "could not decrypt credentials", zap.Error(err))

		return
	}

	started := s.now()
	result := s.checker.Check(ctx, email, password)
	s.metrics.RecordCheck(ctx, result.Outcome, s.now().Sub(started))

	verdict := s.policy.Decide(user.LastStatus, result, s.now())
	s.metrics.RecordVerdict(ctx, verdict)

	if result.Outcome == domain.OutcomeSuccess {
		if err := s.storage.UpdateStatus(ctx, user.ID, result.StatusText, result.FetchedAt); err != nil {
			logger.Error(ctx, "could not persist status", zap.Error(err))
		}
	} else {
		logger.Warn(ctx, "status check failed",
			zap.String("outcome", string(result.Outcome)),
			zap.Error(result.Err))
	}

	if verdict == domain.VerdictSuppressed {
		return
	}

	message := notifier.FailureMessage(result, s.options.Location)
	if result.Outcome == domain.OutcomeSuccess {
		message = notifier.StatusMessage(verdict,
			result.StatusText, result.FetchedAt, s.now(), s.options.Location)
	}

	if err := s.notifier.Send(ctx, user.ID, message); err != nil {
		logger.Error(ctx, "could not deliver notification", zap.Error(err))
	}
}

// CheckNow runs the guarded check sequence for one user outside the periodic
// cycle and hands the result back to the caller instead of the notifier.
func (s *scheduler) CheckNow(ctx context.Context, userID domain.UserID) (domain.StatusResult, error) {
	user, err := s.storage.UserByID(ctx, userID)
	if err != nil {
		return domain.StatusResult{}, fmt.Errorf("could not load user: %w", err)
	}
	if user == nil {
		return domain.StatusResult{}, serrors.With(serrors.ErrNotFound, "user %d not found", userID)
	}

	if !s.acquire(userID) {
		return domain.StatusResult{}, serrors.With(serrors.ErrConflict,
			"a check for user %d is already in progress", userID)
	}
	defer s.release(userID)

	email, password, err := s.credentials(*user)
	if err != nil {
		s.metrics.RecordDecryptFailure(ctx)

		return domain.StatusResult{}, err
	}

	started := s.now()
	result := s.checker.Check(ctx, email, password)
	s.metrics.RecordCheck(ctx, result.Outcome, s.now().Sub(started))

	if result.Outcome == domain.OutcomeSuccess {
		if err := s.storage.UpdateStatus(ctx, userID, result.StatusText, result.FetchedAt); err != nil {
			logger.Error(ctx, "could not persist status", zap.Error(err))
		}
	}

	return result, nil
}

// credentials derives the user's key and decrypts both stored credentials.
func (s *scheduler) credentials(user domain.User) (string, string, error) {
	key, err := vault.DeriveKey(s.options.Secret, user.ID)
	if err != nil {
		return "", "", fmt.Errorf("could not derive key: %w", err)
	}

	email, err := vault.Decrypt(key, user.EmailEncrypted)
	if err != nil {
		return "", "", fmt.Errorf("could not decrypt email: %w", err)
	}
	password, err := vault.Decrypt(key, user.PasswordEncrypted)
	if err != nil {
		return "", "", fmt.Errorf("could not decrypt password: %w", err)
	}

	return string(email), string(password), nil
}

// acquire marks the user as in flight. It returns false when a check for the
// user is already running.
func (s *scheduler) acquire(userID domain.UserID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.inProgress[userID]; busy {
		return false
	}
	s.inProgress[userID] = struct{}{}

	return true
}

func (s *scheduler) release(userID domain.UserID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.inProgress, userID)
}

func isSweepHour(hour int) bool {
	return hour == morningSweepHour || hour == eveningSweepHour
}

// sleepContext waits for d or until the context is canceled.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// randomJitter draws a uniform offset in [-maxJitter, maxJitter].
func randomJitter() time.Duration {
	return time.Duration(rand.Int64N(int64(2*maxJitter+1))) - maxJitter //nolint: gosec
}
