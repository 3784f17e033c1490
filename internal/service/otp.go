package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/peseat/api/internal/database"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
)

const (
	otpLength      = 6
	otpTTL         = 5 * time.Minute
	otpMaxAttempts = 5

	// otpResendInterval is the minimum gap between two codes for one phone.
	otpResendInterval = time.Minute
)

// Errors returned by the staff login flow.
var (
	ErrInvalidPhone       = errors.New("phone must contain 10 to 15 digits")
	ErrStaffNotFound      = errors.New("no staff member registered with this phone")
	ErrOTPInvalid         = errors.New("invalid or expired code")
	ErrOTPTooManyAttempts = errors.New("too many attempts, request a new code")
	ErrOTPResendTooSoon   = errors.New("a code was sent recently, wait a minute before requesting another")
)

// MessageSender delivers a text message to a phone number.
type MessageSender interface {
	SendSMS(ctx context.Context, phone, body string) error
}

// StaffAuthStore defines the DB methods needed for staff OTP login.
// Satisfied by *database.Queries (and its WithTx variant).
type StaffAuthStore interface {
	GetStaffByPhone(ctx context.Context, phone string) (database.Staff, error)
	CreateOTP(ctx context.Context, arg database.CreateOTPParams) (database.Otp, error)
	GetActiveOTPForUpdate(ctx context.Context, phone string) (database.Otp, error)
	IncrementOTPAttempts(ctx context.Context, id uuid.UUID) error
	MarkOTPUsed(ctx context.Context, id uuid.UUID) error
	DeleteExpiredOTPs(ctx context.Context, expiresAt time.Time) (int64, error)
}

// NewStaffAuthStore creates a StaffAuthStore from a DBTX (pool or tx).
type NewStaffAuthStore func(db database.DBTX) StaffAuthStore

// StaffAuthService issues and verifies one-time login codes for staff.
type StaffAuthService struct {
	pool     Pool
	newStore NewStaffAuthStore
	sender   MessageSender
	now      func() time.Time
	genCode  func() (string, error)
	resend   *phoneLimiter
}

// phoneLimiter throttles code issuance per phone.
type phoneLimiter struct {
	mu      sync.Mutex
	byPhone map[string]*phoneLimit
}

type phoneLimit struct {
	limiter *rate.Limiter
	last    time.Time
}

func newPhoneLimiter() *phoneLimiter {
	return &phoneLimiter{byPhone: make(map[string]*phoneLimit)}
}

func (l *phoneLimiter) allow(phone string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.byPhone[phone]
	if !ok {
		e = &phoneLimit{limiter: rate.NewLimiter(rate.Every(otpResendInterval), 1)}
		l.byPhone[phone] = e
	}
	e.last = now
	return e.limiter.AllowN(now, 1)
}

// prune forgets phones not seen since before.
func (l *phoneLimiter) prune(before time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for phone, e := range l.byPhone {
		if e.last.Before(before) {
			delete(l.byPhone, phone)
		}
	}
}

// NewStaffAuthService creates a new StaffAuthService.
func NewStaffAuthService(pool Pool, newStore NewStaffAuthStore, sender MessageSender) *StaffAuthService {
	return &StaffAuthService{
		pool:     pool,
		newStore: newStore,
		sender:   sender,
		now:      time.Now,
		genCode:  generateCode,
		resend:   newPhoneLimiter(),
	}
}

// NormalizePhone strips everything but digits and checks the length.
func NormalizePhone(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	phone := b.String()
	if len(phone) < 10 || len(phone) > 15 {
		return "", ErrInvalidPhone
	}
	return phone, nil
}

// SendOTP creates a fresh code for a registered staff phone and texts it.
// At most one code per phone is issued every otpResendInterval.
func (s *StaffAuthService) SendOTP(ctx context.Context, rawPhone string) error {
	phone, err := NormalizePhone(rawPhone)
	if err != nil {
		return err
	}

	store := s.newStore(s.pool)
	if _, err := store.GetStaffByPhone(ctx, phone); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrStaffNotFound
		}
		return fmt.Errorf("get staff: %w", err)
	}
	if !s.resend.allow(phone, s.now()) {
		return ErrOTPResendTooSoon
	}

	code, err := s.genCode()
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash code: %w", err)
	}

	if _, err := store.CreateOTP(ctx, database.CreateOTPParams{
		Phone:     phone,
		CodeHash:  string(hash),
		ExpiresAt: s.now().Add(otpTTL),
	}); err != nil {
		return fmt.Errorf("create otp: %w", err)
	}

	body := fmt.Sprintf("Your PESeat staff login code is %s. It expires in %d minutes.", code, int(otpTTL.Minutes()))
	if err := s.sender.SendSMS(ctx, phone, body); err != nil {
		return fmt.Errorf("send sms: %w", err)
	}
	return nil
}

// VerifyOTP checks a code against the newest unused, unexpired code for the
// phone. A wrong guess is counted; a correct one consumes the code.
func (s *StaffAuthService) VerifyOTP(ctx context.Context, rawPhone, code string) (database.Staff, error) {
	phone, err := NormalizePhone(rawPhone)
	if err != nil {
		return database.Staff{}, err
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return database.Staff{}, ErrOTPInvalid
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.Staff{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	otp, err := store.GetActiveOTPForUpdate(ctx, phone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Staff{}, ErrOTPInvalid
		}
		return database.Staff{}, fmt.Errorf("get otp: %w", err)
	}
	if otp.Attempts >= otpMaxAttempts {
		return database.Staff{}, ErrOTPTooManyAttempts
	}

	if bcrypt.CompareHashAndPassword([]byte(otp.CodeHash), []byte(code)) != nil {
		if err := store.IncrementOTPAttempts(ctx, otp.ID); err != nil {
			return database.Staff{}, fmt.Errorf("increment attempts: %w", err)
		}
		if err := tx.Commit(ctx); err != nil {
			return database.Staff{}, fmt.Errorf("commit tx: %w", err)
		}
		return database.Staff{}, ErrOTPInvalid
	}

	if err := store.MarkOTPUsed(ctx, otp.ID); err != nil {
		return database.Staff{}, fmt.Errorf("mark otp used: %w", err)
	}
	staff, err := store.GetStaffByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Staff{}, ErrStaffNotFound
		}
		return database.Staff{}, fmt.Errorf("get staff: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return database.Staff{}, fmt.Errorf("commit tx: %w", err)
	}
	return staff, nil
}

// PurgeExpired deletes codes that expired before now and forgets idle resend limits.
func (s *StaffAuthService) PurgeExpired(ctx context.Context) (int64, error) {
	s.resend.prune(s.now().Add(-otpResendInterval))
	n, err := s.newStore(s.pool).DeleteExpiredOTPs(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("delete expired otps: %w", err)
	}
	return n, nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", otpLength, n.Int64()), nil
}
