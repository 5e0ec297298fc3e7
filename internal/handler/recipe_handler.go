package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"time"

	"github.com/hitoshi/foodhub/internal/middleware"
	"github.com/hitoshi/foodhub/internal/model"
	"github.com/hitoshi/foodhub/internal/recipe"
)

// maxRecipeFormSize はレシピ投稿multipartフォームの最大サイズ（バイト）。
const maxRecipeFormSize = 10 << 20 // 10MB

// RecipeServiceInterface はレシピハンドラーが必要とするサービスインターフェース。
type RecipeServiceInterface interface {
	Create(ctx context.Context, userID int64, title, description, ingredients, steps string, image *recipe.ImageUpload) (*model.Recipe, error)
	ListByUser(ctx context.Context, userID int64) ([]*model.Recipe, error)
}

// RecipeHandler はレシピのHTTPハンドラー。
type RecipeHandler struct {
	service RecipeServiceInterface
}

// NewRecipeHandler はRecipeHandlerを生成する。
func NewRecipeHandler(service RecipeServiceInterface) *RecipeHandler {
	return &RecipeHandler{service: service}
}

// recipeResponse はレシピのAPIレスポンス。
type recipeResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Ingredients string    `json:"ingredients"`
	Steps       string    `json:"steps"`
	ImageFile   string    `json:"image_file,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Create はレシピを投稿する。
// multipart/form-data: title, description, ingredients, steps（テキスト）、
// image（画像ファイル、省略可）。
// POST /api/recipes
func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	if err := r.ParseMultipartForm(maxRecipeFormSize); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("multipartフォームの解析に失敗しました"))
		return
	}

	var image *recipe.ImageUpload
	file, header, err := r.FormFile("image")
	if err == nil {
		defer file.Close()
		image = &recipe.ImageUpload{
			Ext:    filepath.Ext(header.Filename),
			Reader: file,
		}
	}

	created, err := h.service.Create(
		r.Context(),
		userID,
		r.FormValue("title"),
		r.FormValue("description"),
		r.FormValue("ingredients"),
		r.FormValue("steps"),
		image,
	)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toRecipeResponse(created))
}

// List は自分のレシピ一覧を新しい順に返す。
// GET /api/recipes
func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	recipes, err := h.service.ListByUser(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]recipeResponse, len(recipes))
	for i, rec := range recipes {
		results[i] = toRecipeResponse(rec)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}

// toRecipeResponse はmodel.RecipeからAPIレスポンスに変換する。
func toRecipeResponse(rec *model.Recipe) recipeResponse {
	return recipeResponse{
		ID:          rec.ID,
		Title:       rec.Title,
		Description: rec.Description,
		Ingredients: rec.Ingredients,
		Steps:       rec.Steps,
		ImageFile:   rec.ImageFile,
		CreatedAt:   rec.CreatedAt,
	}
}
