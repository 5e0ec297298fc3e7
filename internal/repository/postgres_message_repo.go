package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/foodhub/internal/model"
)

// PostgresMessageRepo はPostgreSQLを使用したメッセージリポジトリ。
// メッセージは追記専用で、更新・削除のメソッドは提供しない。
type PostgresMessageRepo struct {
	db *sql.DB
}

// NewPostgresMessageRepo はPostgresMessageRepoを生成する。
func NewPostgresMessageRepo(db *sql.DB) *PostgresMessageRepo {
	return &PostgresMessageRepo{db: db}
}

// Create はメッセージを作成し、採番されたIDと記録時刻をmsgに書き戻す。
func (r *PostgresMessageRepo) Create(ctx context.Context, msg *model.Message) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO messages (group_id, user_id, content, created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		msg.GroupID, msg.UserID, msg.Content, msg.CreatedAt,
	).Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

// ListByGroup はグループの全メッセージを作成順（昇順）で、
// 投稿者の表示名とJOINして返す。
func (r *PostgresMessageRepo) ListByGroup(ctx context.Context, groupID int64) ([]model.MessageWithAuthor, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT m.id, m.group_id, m.user_id, m.content, m.created_at, u.username
		 FROM messages m
		 JOIN users u ON u.id = m.user_id
		 WHERE m.group_id = $1
		 ORDER BY m.id ASC`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var result []model.MessageWithAuthor
	for rows.Next() {
		var m model.MessageWithAuthor
		err := rows.Scan(&m.ID, &m.GroupID, &m.UserID, &m.Content, &m.CreatedAt, &m.Username)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate message rows: %w", err)
	}

	return result, nil
}

// compile-time interface check
var _ MessageRepository = (*PostgresMessageRepo)(nil)
