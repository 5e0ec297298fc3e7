// Package user はプロフィールの参照と編集を提供する。
package user

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/hitoshi/foodhub/internal/model"
	"github.com/hitoshi/foodhub/internal/repository"
	"github.com/hitoshi/foodhub/internal/security"
	"github.com/hitoshi/foodhub/internal/storage"
)

// AvatarUpload はプロフィール編集時のアバター添付を表す。
type AvatarUpload struct {
	Ext    string
	Reader io.Reader
}

// Profile は公開プロフィール表示用の集約。
type Profile struct {
	User    *model.User
	Blogs   []*model.Blog
	Recipes []*model.Recipe
}

// Service はプロフィールに関するビジネスロジックを提供する。
type Service struct {
	userRepo   repository.UserRepository
	blogRepo   repository.BlogRepository
	recipeRepo repository.RecipeRepository
	sanitizer  security.ContentSanitizerService
	images     storage.ImageStore
}

// NewService はServiceを生成する。
func NewService(
	userRepo repository.UserRepository,
	blogRepo repository.BlogRepository,
	recipeRepo repository.RecipeRepository,
	sanitizer security.ContentSanitizerService,
	images storage.ImageStore,
) *Service {
	return &Service{
		userRepo:   userRepo,
		blogRepo:   blogRepo,
		recipeRepo: recipeRepo,
		sanitizer:  sanitizer,
		images:     images,
	}
}

// GetProfile はユーザー名から公開プロフィール（ユーザー情報・記事・
// レシピ）を取得する。
func (s *Service) GetProfile(ctx context.Context, username string) (*Profile, error) {
	username = strings.TrimSpace(username)

	u, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if u == nil {
		return nil, model.NewUserNotFoundError()
	}

	blogs, err := s.blogRepo.ListByUser(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list blogs: %w", err)
	}
	recipes, err := s.recipeRepo.ListByUser(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}

	return &Profile{User: u, Blogs: blogs, Recipes: recipes}, nil
}

// UpdateProfile は自己紹介文とアバターを更新する。avatarはnil可。
// アバターの拡張子が不正な場合はプロフィール全体を更新しない。
func (s *Service) UpdateProfile(ctx context.Context, userID int64, bio string, avatar *AvatarUpload) error {
	bio = strings.TrimSpace(s.sanitizer.Sanitize(bio))

	avatarFile := ""
	if avatar != nil {
		name, err := s.images.SaveAvatar(userID, avatar.Ext, avatar.Reader)
		if err != nil {
			return err
		}
		avatarFile = name
	}

	if err := s.userRepo.UpdateProfile(ctx, userID, bio, avatarFile); err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	slog.Info("profile updated",
		slog.Int64("user_id", userID),
		slog.Bool("avatar_changed", avatar != nil),
	)
	return nil
}
