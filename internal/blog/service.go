// Package blog はブログ記事の投稿と一覧を提供する。
package blog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hitoshi/foodhub/internal/model"
	"github.com/hitoshi/foodhub/internal/repository"
	"github.com/hitoshi/foodhub/internal/security"
)

// Service はブログに関するビジネスロジックを提供する。
type Service struct {
	blogRepo  repository.BlogRepository
	sanitizer security.ContentSanitizerService
}

// NewService はServiceを生成する。
func NewService(blogRepo repository.BlogRepository, sanitizer security.ContentSanitizerService) *Service {
	return &Service{
		blogRepo:  blogRepo,
		sanitizer: sanitizer,
	}
}

// Create はブログ記事を作成する。タイトルはタグ除去、本文は
// 許可リストベースでサニタイズしてから保存する。
func (s *Service) Create(ctx context.Context, userID int64, title, content string) (*model.Blog, error) {
	title = strings.TrimSpace(s.sanitizer.SanitizeStrict(title))
	content = strings.TrimSpace(s.sanitizer.Sanitize(content))

	if title == "" || content == "" {
		return nil, model.NewValidationError("タイトルと本文は必須です。")
	}

	blog := &model.Blog{
		UserID:    userID,
		Title:     title,
		Content:   content,
		CreatedAt: time.Now(),
	}
	id, err := s.blogRepo.Create(ctx, blog)
	if err != nil {
		return nil, fmt.Errorf("failed to create blog: %w", err)
	}
	blog.ID = id

	slog.Info("blog created",
		slog.Int64("blog_id", id),
		slog.Int64("user_id", userID),
	)
	return blog, nil
}

// ListByUser は指定ユーザーの記事を新しい順に返す。
func (s *Service) ListByUser(ctx context.Context, userID int64) ([]*model.Blog, error) {
	blogs, err := s.blogRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list blogs: %w", err)
	}
	return blogs, nil
}
