package jobs

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const (
	cleanupLockKey = "jobs:credential-cleanup:lock"
	cleanupLockTTL = 10 * time.Minute
)

// CredentialPruner deletes refresh-credential rows whose expiry has passed.
type CredentialPruner interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// Scheduler runs periodic maintenance. The redis lock keeps the prune to a
// single instance when several replicas share the database.
type Scheduler struct {
	cron  *cron.Cron
	locks *redis.Client
	creds CredentialPruner
	log   zerolog.Logger
}

func NewScheduler(locks *redis.Client, creds CredentialPruner, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds())
	return &Scheduler{
		cron:  c,
		locks: locks,
		creds: creds,
		log:   log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("0 0 3 * * *", s.pruneExpiredCredentials); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop waits for a running job to finish, bounded by a short grace period.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
	}
}

func (s *Scheduler) pruneExpiredCredentials() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if s.locks != nil {
		acquired, err := s.locks.SetNX(ctx, cleanupLockKey, time.Now().Unix(), cleanupLockTTL).Result()
		if err != nil {
			s.log.Error().Err(err).Msg("cleanup lock failed")
			return
		}
		if !acquired {
			return
		}
	}

	removed, err := s.creds.DeleteExpired(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("credential cleanup failed")
		return
	}
	if removed > 0 {
		s.log.Info().Int64("removed", removed).Msg("expired credentials pruned")
	}
}
