// Package model はドメインモデルを定義する。
package model

import "time"

// Message はグループチャットの発言を表す。追記専用で更新・削除されない。
type Message struct {
	ID        int64
	GroupID   int64
	UserID    int64
	Content   string
	CreatedAt time.Time
}

// MessageWithAuthor はチャット履歴表示用に投稿者の表示名を付加した構造体。
type MessageWithAuthor struct {
	Message
	Username string
}
