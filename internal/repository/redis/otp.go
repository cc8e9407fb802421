package redis

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	otpPrefix      = "otp:"
	otpMaxAttempts = 3
)

// OTP verification errors surfaced to the caller.
var (
	ErrOTPExpired     = errors.New("otp expired or not issued")
	ErrOTPMismatch    = errors.New("otp does not match")
	ErrOTPMaxAttempts = errors.New("otp attempt limit reached")
)

type otpRecord struct {
	Code     string `json:"code"`
	Attempts int    `json:"attempts"`
}

// OTPStore issues and verifies one-time codes for phone verification.
// Codes live in Redis under a TTL and allow a bounded number of attempts.
type OTPStore struct {
	client *Client
	ttl    time.Duration
}

// NewOTPStore creates a new OTP store
func NewOTPStore(client *Client, ttl time.Duration) *OTPStore {
	return &OTPStore{client: client, ttl: ttl}
}

// Issue generates a fresh 6-digit code for the phone number, replacing any
// outstanding code and resetting the attempt counter.
func (s *OTPStore) Issue(ctx context.Context, phone string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	code := fmt.Sprintf("%06d", n.Int64())

	data, err := json.Marshal(otpRecord{Code: code})
	if err != nil {
		return "", fmt.Errorf("failed to marshal otp record: %w", err)
	}

	key := fmt.Sprintf("%s%s", otpPrefix, phone)
	if err := s.client.rdb.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store otp: %w", err)
	}
	return code, nil
}

// Verify checks the submitted code. The record is deleted on success and
// after the attempt limit, so a code can never be brute-forced or reused.
func (s *OTPStore) Verify(ctx context.Context, phone, code string) error {
	key := fmt.Sprintf("%s%s", otpPrefix, phone)

	data, err := s.client.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return ErrOTPExpired
	}

	var rec otpRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return fmt.Errorf("failed to unmarshal otp record: %w", err)
	}

	if rec.Code == code {
		s.client.rdb.Del(ctx, key)
		return nil
	}

	rec.Attempts++
	if rec.Attempts >= otpMaxAttempts {
		s.client.rdb.Del(ctx, key)
		return ErrOTPMaxAttempts
	}

	updated, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal otp record: %w", err)
	}
	// Keep the original expiry window
	if err := s.client.rdb.Set(ctx, key, updated, redis.KeepTTL).Err(); err != nil {
		return fmt.Errorf("failed to update otp record: %w", err)
	}
	return ErrOTPMismatch
}
