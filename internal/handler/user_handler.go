package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/foodhub/internal/middleware"
	"github.com/hitoshi/foodhub/internal/model"
	"github.com/hitoshi/foodhub/internal/user"
)

// maxProfileFormSize はプロフィール編集multipartフォームの最大サイズ（バイト）。
const maxProfileFormSize = 5 << 20 // 5MB

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	GetProfile(ctx context.Context, username string) (*user.Profile, error)
	UpdateProfile(ctx context.Context, userID int64, bio string, avatar *user.AvatarUpload) error
}

// UserHandler はプロフィール参照・編集のHTTPハンドラー。
type UserHandler struct {
	service UserServiceInterface
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{service: service}
}

// profileResponse は公開プロフィールのAPIレスポンス。
type profileResponse struct {
	User    userResponse     `json:"user"`
	Blogs   []blogResponse   `json:"blogs"`
	Recipes []recipeResponse `json:"recipes"`
}

// GetProfile は公開プロフィール（ユーザー情報・投稿記事・レシピ）を返す。
// GET /api/users/{username}
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	profile, err := h.service.GetProfile(r.Context(), username)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	blogs := make([]blogResponse, len(profile.Blogs))
	for i, b := range profile.Blogs {
		blogs[i] = toBlogResponse(b)
	}
	recipes := make([]recipeResponse, len(profile.Recipes))
	for i, rec := range profile.Recipes {
		recipes[i] = toRecipeResponse(rec)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(profileResponse{
		User:    toUserResponse(profile.User),
		Blogs:   blogs,
		Recipes: recipes,
	})
}

// UpdateProfile は自分のプロフィール（自己紹介・アバター画像）を更新する。
// multipart/form-data: bio（テキスト）、avatar（画像ファイル、省略可）。
// PUT /api/users/me
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	if err := r.ParseMultipartForm(maxProfileFormSize); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("multipartフォームの解析に失敗しました"))
		return
	}

	bio := r.FormValue("bio")

	var avatar *user.AvatarUpload
	file, header, err := r.FormFile("avatar")
	if err == nil {
		defer file.Close()
		avatar = &user.AvatarUpload{
			Ext:    filepath.Ext(header.Filename),
			Reader: file,
		}
	}

	if err := h.service.UpdateProfile(r.Context(), userID, bio, avatar); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
