// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/hitoshi/foodhub/internal/model"
)

// ErrDuplicate は一意制約違反を表すセンチネルエラー。
// どの制約に違反したかはリポジトリごとのラップメッセージで判別する。
var ErrDuplicate = errors.New("unique constraint violation")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// Create はユーザーを作成し、採番されたIDを返す。
	// username / email の一意制約違反の場合はErrDuplicateを返す。
	Create(ctx context.Context, user *model.User) (int64, error)

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.User, error)

	// FindByEmail はメールアドレス（小文字正規化済み）でユーザーを検索する。
	// 見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindByUsername はユーザー名でユーザーを検索する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	// SetOTP はOTPコードと有効期限をユーザーに設定する。
	SetOTP(ctx context.Context, userID int64, code string, expiresAt time.Time) error

	// MarkVerified はOTPペアをクリアし、認証済みフラグを立てる。
	MarkVerified(ctx context.Context, userID int64) error

	// UpdateProfile はbioを更新する。avatarFileが空でない場合はアバターも更新する。
	UpdateProfile(ctx context.Context, userID int64, bio, avatarFile string) error

	// DeleteByID は指定IDのユーザーを削除する。
	// OTP配信失敗時の登録ロールバックに使用する。
	DeleteByID(ctx context.Context, id int64) error
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID int64) error
}

// GroupRepository はグループデータの永続化インターフェース。
type GroupRepository interface {
	// CreateWithOwner はグループとオーナーのメンバーシップ行を
	// 同一トランザクションで作成し、採番されたグループIDを返す。
	// グループ名の一意制約違反の場合はErrDuplicateを返す。
	CreateWithOwner(ctx context.Context, group *model.Group) (int64, error)

	// FindByID は指定IDのグループを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Group, error)

	// FindByInviteCode は招待コードの完全一致でグループを検索する。
	// 見つからない場合はnilを返す。
	FindByInviteCode(ctx context.Context, code string) (*model.Group, error)

	// ListWithMembership は全グループを作成の新しい順に返す。
	// 各グループにはオーナー表示名と、指定ユーザーの所属状態を付加する。
	ListWithMembership(ctx context.Context, userID int64) ([]model.GroupWithMembership, error)
}

// MembershipRepository はグループ所属の永続化インターフェース。
type MembershipRepository interface {
	// Add はメンバーシップ行を冪等に作成する。
	// 既に所属している場合は何もしない（エラーにならない）。
	Add(ctx context.Context, groupID, userID int64, role model.MemberRole) error

	// Exists は(group, user)のメンバーシップ行の有無を返す。
	Exists(ctx context.Context, groupID, userID int64) (bool, error)
}

// MessageRepository はチャットメッセージの永続化インターフェース。追記専用。
type MessageRepository interface {
	// Create はメッセージを作成し、採番されたIDと記録時刻をmsgに書き戻す。
	Create(ctx context.Context, msg *model.Message) error

	// ListByGroup はグループの全メッセージを作成順（昇順）で、
	// 投稿者の表示名とJOINして返す。
	ListByGroup(ctx context.Context, groupID int64) ([]model.MessageWithAuthor, error)
}

// BlogRepository はブログ記事の永続化インターフェース。
type BlogRepository interface {
	// Create はブログ記事を作成し、採番されたIDを返す。
	Create(ctx context.Context, blog *model.Blog) (int64, error)

	// ListByUser は指定ユーザーの記事を新しい順に返す。
	ListByUser(ctx context.Context, userID int64) ([]*model.Blog, error)
}

// RecipeRepository はレシピの永続化インターフェース。
type RecipeRepository interface {
	// Create はレシピを作成し、採番されたIDを返す。
	Create(ctx context.Context, recipe *model.Recipe) (int64, error)

	// SetImageFile はレシピの画像ファイル名を記録する。
	// 画像のファイル名に採番済みIDを含めるため、作成後に呼ぶ。
	SetImageFile(ctx context.Context, recipeID int64, imageFile string) error

	// ListByUser は指定ユーザーのレシピを新しい順に返す。
	ListByUser(ctx context.Context, userID int64) ([]*model.Recipe, error)
}
