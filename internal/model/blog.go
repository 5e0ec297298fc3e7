// Package model はドメインモデルを定義する。
package model

import "time"

// Blog はユーザーが投稿するブログ記事を表す。
type Blog struct {
	ID        int64
	UserID    int64
	Title     string
	Content   string
	CreatedAt time.Time
}
