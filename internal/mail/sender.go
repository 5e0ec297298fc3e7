// Package mail は認証コードのメール配信を提供する。
package mail

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

// Sender は認証コードメールの送信インターフェース。
type Sender interface {
	// SendOTP は認証コードを指定アドレスへ送信する。
	// 配信に失敗した場合はエラーを返す（呼び出し側でロールバック判断に使う）。
	SendOTP(ctx context.Context, to, code string) error
}

// ResendSender はResend APIを使用したメール送信実装。
type ResendSender struct {
	client *resend.Client
	from   string
}

// NewResendSender はResendSenderを生成する。
// fromは "FoodHub <noreply@example.com>" 形式の送信元アドレス。
func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

// SendOTP は認証コードを固定件名のプレーンテキストメールで送信する。
func (s *ResendSender) SendOTP(ctx context.Context, to, code string) error {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: "Your FoodHub Verification Code",
		Text:    fmt.Sprintf("Your verification code is: %s\n\nPlease enter this code to verify your account.", code),
	}

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to send otp email: %w", err)
	}

	slog.Info("otp email sent",
		slog.String("to", to),
		slog.String("mail_id", sent.Id),
	)
	return nil
}

// compile-time interface check
var _ Sender = (*ResendSender)(nil)
