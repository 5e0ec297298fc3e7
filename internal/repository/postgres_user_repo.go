package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/foodhub/internal/model"
)

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

const userColumns = `id, username, email, password_hash, bio, avatar_file, is_verified, otp_code, otp_expires_at, created_at`

// scanUser は1行をmodel.Userにスキャンする。
func scanUser(row *sql.Row) (*model.User, error) {
	user := &model.User{}
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.Bio, &user.AvatarFile, &user.IsVerified,
		&user.OTPCode, &user.OTPExpiresAt, &user.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return user, nil
}

// Create はユーザーを作成し、採番されたIDを返す。
// username / email の一意制約違反の場合はErrDuplicateを返す。
func (r *PostgresUserRepo) Create(ctx context.Context, user *model.User) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (username, email, password_hash, bio, is_verified, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		user.Username, user.Email, user.PasswordHash, user.Bio, user.IsVerified, user.CreatedAt,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("username or email already exists: %w", ErrDuplicate)
		}
		return 0, fmt.Errorf("failed to insert user: %w", err)
	}
	return id, nil
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return user, nil
}

// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	user, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return user, nil
}

// FindByUsername はユーザー名でユーザーを検索する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	user, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by username: %w", err)
	}
	return user, nil
}

// SetOTP はOTPコードと有効期限をユーザーに設定する。
func (r *PostgresUserRepo) SetOTP(ctx context.Context, userID int64, code string, expiresAt time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET otp_code = $1, otp_expires_at = $2 WHERE id = $3`,
		code, expiresAt, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to set otp: %w", err)
	}
	return requireRowsAffected(result, "user", userID)
}

// MarkVerified はOTPペアをクリアし、認証済みフラグを立てる。
func (r *PostgresUserRepo) MarkVerified(ctx context.Context, userID int64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET is_verified = TRUE, otp_code = NULL, otp_expires_at = NULL WHERE id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark user verified: %w", err)
	}
	return requireRowsAffected(result, "user", userID)
}

// UpdateProfile はbioを更新する。avatarFileが空でない場合はアバターも更新する。
func (r *PostgresUserRepo) UpdateProfile(ctx context.Context, userID int64, bio, avatarFile string) error {
	var result sql.Result
	var err error
	if avatarFile != "" {
		result, err = r.db.ExecContext(ctx,
			`UPDATE users SET bio = $1, avatar_file = $2 WHERE id = $3`,
			bio, avatarFile, userID,
		)
	} else {
		result, err = r.db.ExecContext(ctx,
			`UPDATE users SET bio = $1 WHERE id = $2`,
			bio, userID,
		)
	}
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return requireRowsAffected(result, "user", userID)
}

// DeleteByID は指定IDのユーザーを削除する。
func (r *PostgresUserRepo) DeleteByID(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return requireRowsAffected(result, "user", id)
}

// requireRowsAffected は更新系クエリが1行以上に作用したことを確認する。
func requireRowsAffected(result sql.Result, entity string, id int64) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s not found: %d", entity, id)
	}
	return nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
