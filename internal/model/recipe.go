// Package model はドメインモデルを定義する。
package model

import "time"

// Recipe はユーザーが保存するレシピを表す。
type Recipe struct {
	ID          int64
	UserID      int64
	Title       string
	Description string
	Ingredients string
	Steps       string
	ImageFile   string // uploads/recipes 以下のファイル名。未設定は空文字
	CreatedAt   time.Time
}

// RecipeSuggestion はAI提案またはオフライン生成によるレシピ案を表す。
type RecipeSuggestion struct {
	Title       string   `json:"title"`
	Summary     string   `json:"summary"`
	Ingredients []string `json:"ingredients"`
	Steps       []string `json:"steps"`
}
