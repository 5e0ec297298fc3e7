package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/foodhub/internal/model"
	"github.com/hitoshi/foodhub/internal/suggestion"
)

// SuggestionServiceInterface はレシピ提案ハンドラーが必要とするサービスインターフェース。
type SuggestionServiceInterface interface {
	Suggest(ctx context.Context, ingredients []string) model.RecipeSuggestion
}

// SuggestHandler はAIレシピ提案のHTTPハンドラー。
type SuggestHandler struct {
	service SuggestionServiceInterface
}

// NewSuggestHandler はSuggestHandlerを生成する。
func NewSuggestHandler(service SuggestionServiceInterface) *SuggestHandler {
	return &SuggestHandler{service: service}
}

// suggestRequest はレシピ提案リクエストのボディ。
// 食材はカンマ区切りの文字列で受け取る。
type suggestRequest struct {
	Ingredients string `json:"ingredients"`
}

// Suggest は手持ちの食材からレシピ案を生成する。
// 外部APIが未設定・失敗の場合も決定的なオフライン提案を返すため、常に200を返す。
// POST /api/suggestions
func (h *SuggestHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	var req suggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	ingredients := suggestion.ParseIngredients(req.Ingredients)
	result := h.service.Suggest(r.Context(), ingredients)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
