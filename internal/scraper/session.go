package scraper

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/MeshiKro/ApartmentHunterBot/config"
)

const defaultMaxLoginAttempts = 5

// SessionManager establishes an authenticated session with a bounded retry
// budget. Exhausting the budget is fatal for the run; nothing above retries
// it again.
type SessionManager struct {
	MaxAttempts int
	SoftBackoff time.Duration
	HardBackoff time.Duration
	log         *log.Logger
}

func NewSessionManager(maxAttempts int) *SessionManager {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxLoginAttempts
	}
	return &SessionManager{
		MaxAttempts: maxAttempts,
		SoftBackoff: 5 * time.Second,
		HardBackoff: 10 * time.Second,
		log:         log.New(os.Stdout, "[Session] ", log.LstdFlags),
	}
}

func (m *SessionManager) Establish(ctx context.Context, sess Session, creds *config.Credentials) error {
	for attempt := 1; attempt <= m.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		m.log.Printf("Attempt %d to log in...", attempt)

		outcome, err := sess.Login(ctx, creds)
		if err != nil {
			m.log.Printf("login attempt %d failed: %v", attempt, err)
			m.wait(ctx, m.SoftBackoff)
			continue
		}

		switch outcome {
		case LoginSuccess:
			m.log.Println("Login successful")
			return nil
		case LoginSoftFailure:
			m.log.Println("Still on the login page, retrying...")
			m.wait(ctx, m.SoftBackoff)
		case LoginHardFailure:
			m.log.Println("Login failed, retrying...")
			m.wait(ctx, m.HardBackoff)
		}
	}
	return &AuthError{Attempts: m.MaxAttempts}
}

func (m *SessionManager) wait(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}
