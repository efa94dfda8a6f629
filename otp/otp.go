// Package otp issues and checks the six-digit email verification codes
// that gate the public contact and application forms.
package otp

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"gorm.io/gorm"

	"vendhansite/constants"
	"vendhansite/database"
)

var (
	ErrInvalidCode = errors.New("invalid verification code")
	ErrExpired     = errors.New("verification code has expired")
)

type Service struct {
	db *gorm.DB

	// overridable for tests
	now func() time.Time
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, now: time.Now}
}

// generateCode returns a uniform six-digit numeric code, leading zeros kept.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// Issue creates a fresh code for email, invalidating any earlier unverified
// code for the same address, and returns the code so the caller can mail it.
func (s *Service) Issue(email string) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ? AND verified_at IS NULL", email).
			Delete(&database.OTPCode{}).Error; err != nil {
			return err
		}
		return tx.Create(&database.OTPCode{
			Email:     email,
			Code:      code,
			ExpiresAt: s.now().Add(constants.OTP_TTL),
		}).Error
	})
	if err != nil {
		return "", err
	}

	return code, nil
}

// Verify checks (email, code) against the stored record. On success the
// record is marked verified, which grants the email exactly one unlock.
// The code cannot validate a second time.
func (s *Service) Verify(email, code string) error {
	var rec database.OTPCode
	result := s.db.Where("email = ? AND code = ? AND verified_at IS NULL", email, code).
		First(&rec)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return ErrInvalidCode
		}
		return result.Error
	}

	if s.now().After(rec.ExpiresAt) {
		return ErrExpired
	}

	now := s.now()
	rec.VerifiedAt = &now
	return s.db.Save(&rec).Error
}

// HasUnlock reports whether email currently holds an unconsumed unlock.
// Comparison is exact string equality, no normalization.
func (s *Service) HasUnlock(email string) bool {
	var count int64
	s.db.Model(&database.OTPCode{}).
		Where("email = ? AND verified_at IS NOT NULL AND consumed = ?", email, false).
		Count(&count)
	return count > 0
}

// ConsumeUnlock spends the unlock for email. The conditional update means
// two racing submissions sharing one unlock resolve to a single winner at
// the database, with no extra locking.
func (s *Service) ConsumeUnlock(email string) bool {
	result := s.db.Model(&database.OTPCode{}).
		Where("email = ? AND verified_at IS NOT NULL AND consumed = ?", email, false).
		Update("consumed", true)
	return result.Error == nil && result.RowsAffected > 0
}
