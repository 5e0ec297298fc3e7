// Package otp はメール認証用ワンタイムパスワードの発行と検証を提供する。
package otp

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/hitoshi/foodhub/internal/mail"
	"github.com/hitoshi/foodhub/internal/model"
)

// CodeLength はOTPコードの桁数。
const CodeLength = 6

// DefaultExpiry はOTPコードのデフォルト有効期間。
const DefaultExpiry = 10 * time.Minute

// codeSpace はコードの取りうる値の数（000000〜999999）。
var codeSpace = big.NewInt(1000000)

// GenerateCode は暗号論的乱数源から6桁のゼロ埋め数字コードを生成する。
// 000000〜999999の一様分布。
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", fmt.Errorf("failed to generate otp code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// UserStore はOTP発行・検証に必要なユーザー永続化の部分インターフェース。
// repository.UserRepositoryの部分集合として定義する。
type UserStore interface {
	SetOTP(ctx context.Context, userID int64, code string, expiresAt time.Time) error
	MarkVerified(ctx context.Context, userID int64) error
}

// Recorder はOTP関連メトリクスの記録インターフェース。
type Recorder interface {
	RecordOTPIssued()
	RecordOTPDeliveryFail()
	RecordOTPVerifyFail()
}

// Verifier はOTPの発行と検証を行う。
type Verifier struct {
	users   UserStore
	mailer  mail.Sender
	expiry  time.Duration
	metrics Recorder

	// now はテストで時刻を固定するために差し替え可能にする。
	now func() time.Time
}

// NewVerifier はVerifierを生成する。expiryが0の場合はDefaultExpiryを使う。
// metricsはnil可（記録しない）。
func NewVerifier(users UserStore, mailer mail.Sender, expiry time.Duration, metrics Recorder) *Verifier {
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	return &Verifier{
		users:   users,
		mailer:  mailer,
		expiry:  expiry,
		metrics: metrics,
		now:     time.Now,
	}
}

// Issue は新しいコードを生成してユーザーに保存し、メールで配信する。
// 配信失敗時はOTP_DELIVERY_FAILEDのAPIErrorを返す。
// 呼び出し側（登録フロー）は配信失敗を受けて作成済みユーザー行を削除する。
func (v *Verifier) Issue(ctx context.Context, user *model.User) error {
	code, err := GenerateCode()
	if err != nil {
		return err
	}

	expiresAt := v.now().Add(v.expiry)
	if err := v.users.SetOTP(ctx, user.ID, code, expiresAt); err != nil {
		return fmt.Errorf("failed to persist otp: %w", err)
	}

	if err := v.mailer.SendOTP(ctx, user.Email, code); err != nil {
		slog.Error("otp delivery failed",
			slog.Int64("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		if v.metrics != nil {
			v.metrics.RecordOTPDeliveryFail()
		}
		return model.NewOTPDeliveryFailedError()
	}

	if v.metrics != nil {
		v.metrics.RecordOTPIssued()
	}
	slog.Info("otp issued", slog.Int64("user_id", user.ID))
	return nil
}

// Verify は提出コードを検証し、成功時にユーザーを認証済みにする。
// 失敗理由（コード不一致・期限切れ・コード未発行）は呼び出し側に区別させず、
// 常に同一のINVALID_OR_EXPIRED_OTPを返す。
// 有効期限が欠落している場合は期限切れとして扱う（フェイルクローズ）。
func (v *Verifier) Verify(ctx context.Context, user *model.User, submitted string) error {
	if !v.isValid(user, submitted) {
		if v.metrics != nil {
			v.metrics.RecordOTPVerifyFail()
		}
		return model.NewInvalidOrExpiredOTPError()
	}

	if err := v.users.MarkVerified(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to mark user verified: %w", err)
	}

	slog.Info("user verified", slog.Int64("user_id", user.ID))
	return nil
}

// isValid はコードの一致と有効期限を判定する。
func (v *Verifier) isValid(user *model.User, submitted string) bool {
	if submitted == "" {
		return false
	}
	if !user.OTPCode.Valid || user.OTPCode.String != submitted {
		return false
	}
	if !user.OTPExpiresAt.Valid {
		return false
	}
	return !v.now().After(user.OTPExpiresAt.Time)
}
