// Package auth はユーザー登録、メール認証、ログイン、セッション管理を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/foodhub/internal/model"
	"github.com/hitoshi/foodhub/internal/repository"
)

// OTPVerifier はOTPの発行・検証インターフェース。
// otp.Verifierを差し替え可能にするための抽象化。
type OTPVerifier interface {
	// Issue は新しいコードを生成・保存し、メールで配信する。
	Issue(ctx context.Context, user *model.User) error
	// Verify は提出コードを検証し、成功時にユーザーを認証済みにする。
	Verify(ctx context.Context, user *model.User, submitted string) error
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int // セッション有効期間（秒）
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	otp         OTPVerifier
	config      ServiceConfig
}

// NewService はServiceを生成する。
func NewService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	otpVerifier OTPVerifier,
	config ServiceConfig,
) *Service {
	return &Service{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		otp:         otpVerifier,
		config:      config,
	}
}

// Register は未認証ユーザーを作成し、認証コードをメールで配信する。
// OTPの配信成功をアカウント存在の前提条件とし、配信に失敗した場合は
// 作成済みのユーザー行を同期的に削除してからエラーを返す。
// 配信されなかったコードを持つ行は残さない。
func (s *Service) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if username == "" || email == "" || password == "" {
		return nil, model.NewValidationError("ユーザー名・メールアドレス・パスワードは必須です。")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		IsVerified:   false,
		CreatedAt:    time.Now(),
	}

	id, err := s.userRepo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.NewDuplicateUserError()
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	user.ID = id

	if err := s.otp.Issue(ctx, user); err != nil {
		// 配信失敗: アカウントは存在しなかったことにする
		if delErr := s.userRepo.DeleteByID(ctx, id); delErr != nil {
			slog.Error("failed to roll back unverified user",
				slog.Int64("user_id", id),
				slog.String("error", delErr.Error()),
			)
		}
		return nil, err
	}

	slog.Info("user registered",
		slog.Int64("user_id", id),
		slog.String("username", username),
	)
	return user, nil
}

// VerifyEmail は認証コードを検証し、成功時にユーザーを認証済みにする。
// メールアドレスが未登録の場合もコード不一致と同じ結果を返す。
func (s *Service) VerifyEmail(ctx context.Context, email, code string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return model.NewInvalidOrExpiredOTPError()
	}

	return s.otp.Verify(ctx, user, strings.TrimSpace(code))
}

// Login はメールアドレスとパスワードを検証し、セッションを発行する。
// メールアドレス不明とパスワード不一致は同一のINVALID_CREDENTIALSを返す。
// パスワードが正しくても未認証の場合はNOT_VERIFIEDを返し、
// 呼び出し側はOTP認証フローへ誘導する。
func (s *Service) Login(ctx context.Context, email, password string) (*model.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewInvalidCredentialsError()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, model.NewInvalidCredentialsError()
	}

	if !user.IsVerified {
		return nil, model.NewNotVerifiedError()
	}

	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	slog.Info("user logged in", slog.Int64("user_id", user.ID))
	return session, nil
}

// Logout はセッションを破棄する。
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}

	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("user logged out", slog.String("session_id", sessionID))
	return nil
}

// GetCurrentUser はセッションから現在のユーザーを取得する。
func (s *Service) GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error) {
	if sessionID == "" {
		return nil, model.NewUnauthenticatedError()
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil {
		return nil, model.NewUnauthenticatedError()
	}

	user, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}

	return user, nil
}

// createSession はセッションを作成し永続化する。
func (s *Service) createSession(ctx context.Context, userID int64) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	session := &model.Session{
		ID:        sessionID,
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: time.Now(),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
