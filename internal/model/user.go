// Package model はドメインモデルを定義する。
package model

import (
	"database/sql"
	"time"
)

// User はサービス利用ユーザーを表す。
// 登録直後は未認証状態で、OTPコードと有効期限が設定される。
// メール認証が成功するとIsVerifiedがtrueになり、OTPペアはクリアされる。
type User struct {
	ID           int64
	Username     string
	Email        string // 登録時に小文字へ正規化して保存する
	PasswordHash string
	Bio          string
	AvatarFile   string // uploads/avatars 以下のファイル名。未設定は空文字
	IsVerified   bool
	OTPCode      sql.NullString
	OTPExpiresAt sql.NullTime
	CreatedAt    time.Time
}

// Session はユーザーのログインセッションを表す。
type Session struct {
	ID        string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}
