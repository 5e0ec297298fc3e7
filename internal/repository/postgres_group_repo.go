package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/foodhub/internal/model"
)

// PostgresGroupRepo はPostgreSQLを使用したグループリポジトリ。
type PostgresGroupRepo struct {
	db *sql.DB
}

// NewPostgresGroupRepo はPostgresGroupRepoを生成する。
func NewPostgresGroupRepo(db *sql.DB) *PostgresGroupRepo {
	return &PostgresGroupRepo{db: db}
}

const groupColumns = `id, name, description, is_public, owner_id, invite_code, created_at`

// scanGroup は1行をmodel.Groupにスキャンする。
func scanGroup(row *sql.Row) (*model.Group, error) {
	group := &model.Group{}
	err := row.Scan(
		&group.ID, &group.Name, &group.Description, &group.IsPublic,
		&group.OwnerID, &group.InviteCode, &group.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan group: %w", err)
	}
	return group, nil
}

// CreateWithOwner はグループとオーナーのメンバーシップ行を
// 同一トランザクションで作成し、採番されたグループIDを返す。
// オーナー行が孤立しないよう、両方の書き込みが揃って初めてコミットされる。
func (r *PostgresGroupRepo) CreateWithOwner(ctx context.Context, group *model.Group) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO groups (name, description, is_public, owner_id, invite_code, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		group.Name, group.Description, group.IsPublic, group.OwnerID, group.InviteCode, group.CreatedAt,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("group name already exists: %w", ErrDuplicate)
		}
		return 0, fmt.Errorf("failed to insert group: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO group_members (group_id, user_id, role) VALUES ($1, $2, $3)`,
		id, group.OwnerID, model.RoleOwner,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert owner membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return id, nil
}

// FindByID は指定IDのグループを取得する。見つからない場合はnilを返す。
func (r *PostgresGroupRepo) FindByID(ctx context.Context, id int64) (*model.Group, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+groupColumns+` FROM groups WHERE id = $1`, id)
	group, err := scanGroup(row)
	if err != nil {
		return nil, fmt.Errorf("failed to find group by ID: %w", err)
	}
	return group, nil
}

// FindByInviteCode は招待コードの完全一致でグループを検索する。
// 見つからない場合はnilを返す。
func (r *PostgresGroupRepo) FindByInviteCode(ctx context.Context, code string) (*model.Group, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+groupColumns+` FROM groups WHERE invite_code = $1`, code)
	group, err := scanGroup(row)
	if err != nil {
		return nil, fmt.Errorf("failed to find group by invite code: %w", err)
	}
	return group, nil
}

// ListWithMembership は全グループを作成の新しい順に返す。
// 各グループにはオーナー表示名と、指定ユーザーの所属状態を付加する。
func (r *PostgresGroupRepo) ListWithMembership(ctx context.Context, userID int64) ([]model.GroupWithMembership, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT g.id, g.name, g.description, g.is_public, g.owner_id, g.invite_code, g.created_at,
		        u.username,
		        EXISTS (
		            SELECT 1 FROM group_members gm
		            WHERE gm.group_id = g.id AND gm.user_id = $1
		        ) AS is_member
		 FROM groups g
		 JOIN users u ON u.id = g.owner_id
		 ORDER BY g.id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var result []model.GroupWithMembership
	for rows.Next() {
		var g model.GroupWithMembership
		err := rows.Scan(
			&g.ID, &g.Name, &g.Description, &g.IsPublic,
			&g.OwnerID, &g.InviteCode, &g.CreatedAt,
			&g.OwnerName, &g.IsMember,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan group row: %w", err)
		}
		result = append(result, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate group rows: %w", err)
	}

	return result, nil
}

// compile-time interface check
var _ GroupRepository = (*PostgresGroupRepo)(nil)
