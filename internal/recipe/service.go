// Package recipe はレシピの保存・一覧・画像添付を提供する。
package recipe

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/hitoshi/foodhub/internal/model"
	"github.com/hitoshi/foodhub/internal/repository"
	"github.com/hitoshi/foodhub/internal/security"
	"github.com/hitoshi/foodhub/internal/storage"
)

// ImageUpload はレシピ作成時の画像添付を表す。
type ImageUpload struct {
	Ext    string
	Reader io.Reader
}

// Service はレシピに関するビジネスロジックを提供する。
type Service struct {
	recipeRepo repository.RecipeRepository
	sanitizer  security.ContentSanitizerService
	images     storage.ImageStore
}

// NewService はServiceを生成する。
func NewService(
	recipeRepo repository.RecipeRepository,
	sanitizer security.ContentSanitizerService,
	images storage.ImageStore,
) *Service {
	return &Service{
		recipeRepo: recipeRepo,
		sanitizer:  sanitizer,
		images:     images,
	}
}

// Create はレシピを作成する。imageはnil可で、添付された場合は
// 拡張子検証のうえ保存し、ファイル名をレシピに記録する。
// 画像の拡張子が不正な場合はレシピ自体を作成しない。
func (s *Service) Create(ctx context.Context, userID int64, title, description, ingredients, steps string, image *ImageUpload) (*model.Recipe, error) {
	title = strings.TrimSpace(s.sanitizer.SanitizeStrict(title))
	description = strings.TrimSpace(s.sanitizer.Sanitize(description))
	ingredients = strings.TrimSpace(s.sanitizer.SanitizeStrict(ingredients))
	steps = strings.TrimSpace(s.sanitizer.Sanitize(steps))

	if title == "" || ingredients == "" || steps == "" {
		return nil, model.NewValidationError("タイトル・材料・手順は必須です。")
	}

	recipe := &model.Recipe{
		UserID:      userID,
		Title:       title,
		Description: description,
		Ingredients: ingredients,
		Steps:       steps,
		CreatedAt:   time.Now(),
	}
	id, err := s.recipeRepo.Create(ctx, recipe)
	if err != nil {
		return nil, fmt.Errorf("failed to create recipe: %w", err)
	}
	recipe.ID = id

	if image != nil {
		name, err := s.images.SaveRecipeImage(userID, image.Ext, image.Reader)
		if err != nil {
			return nil, err
		}
		recipe.ImageFile = name
		if err := s.recipeRepo.SetImageFile(ctx, id, name); err != nil {
			return nil, fmt.Errorf("failed to record recipe image: %w", err)
		}
	}

	slog.Info("recipe created",
		slog.Int64("recipe_id", id),
		slog.Int64("user_id", userID),
		slog.Bool("has_image", image != nil),
	)
	return recipe, nil
}

// ListByUser は指定ユーザーのレシピを新しい順に返す。
func (s *Service) ListByUser(ctx context.Context, userID int64) ([]*model.Recipe, error) {
	recipes, err := s.recipeRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	return recipes, nil
}
