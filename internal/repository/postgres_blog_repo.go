package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/foodhub/internal/model"
)

// PostgresBlogRepo はPostgreSQLを使用したブログリポジトリ。
type PostgresBlogRepo struct {
	db *sql.DB
}

// NewPostgresBlogRepo はPostgresBlogRepoを生成する。
func NewPostgresBlogRepo(db *sql.DB) *PostgresBlogRepo {
	return &PostgresBlogRepo{db: db}
}

// Create はブログ記事を作成し、採番されたIDを返す。
func (r *PostgresBlogRepo) Create(ctx context.Context, blog *model.Blog) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO blogs (user_id, title, content, created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		blog.UserID, blog.Title, blog.Content, blog.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert blog: %w", err)
	}
	return id, nil
}

// ListByUser は指定ユーザーの記事を新しい順に返す。
func (r *PostgresBlogRepo) ListByUser(ctx context.Context, userID int64) ([]*model.Blog, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, title, content, created_at
		 FROM blogs
		 WHERE user_id = $1
		 ORDER BY id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list blogs: %w", err)
	}
	defer rows.Close()

	var result []*model.Blog
	for rows.Next() {
		blog := &model.Blog{}
		err := rows.Scan(&blog.ID, &blog.UserID, &blog.Title, &blog.Content, &blog.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan blog row: %w", err)
		}
		result = append(result, blog)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate blog rows: %w", err)
	}

	return result, nil
}

// compile-time interface check
var _ BlogRepository = (*PostgresBlogRepo)(nil)
