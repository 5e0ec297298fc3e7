// Package group はチャットグループの作成・参加・入室を提供する。
package group

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hitoshi/foodhub/internal/model"
	"github.com/hitoshi/foodhub/internal/repository"
)

// inviteCodeBytes は招待コードの乱数バイト数。
// base64url符号化で11文字になり、推測は現実的に不可能。
const inviteCodeBytes = 8

// Service はグループに関するビジネスロジックを提供する。
type Service struct {
	groupRepo      repository.GroupRepository
	membershipRepo repository.MembershipRepository
	messageRepo    repository.MessageRepository
}

// NewService はServiceを生成する。
func NewService(
	groupRepo repository.GroupRepository,
	membershipRepo repository.MembershipRepository,
	messageRepo repository.MessageRepository,
) *Service {
	return &Service{
		groupRepo:      groupRepo,
		membershipRepo: membershipRepo,
		messageRepo:    messageRepo,
	}
}

// CreateGroup はグループを作成し、作成者をオーナーとして登録する。
// 非公開グループには招待コードを生成し、公開グループには生成しない。
func (s *Service) CreateGroup(ctx context.Context, ownerID int64, name, description string, isPublic bool) (*model.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.NewValidationError("グループ名は必須です。")
	}

	group := &model.Group{
		Name:        name,
		Description: strings.TrimSpace(description),
		IsPublic:    isPublic,
		OwnerID:     ownerID,
		CreatedAt:   time.Now(),
	}

	if !isPublic {
		code, err := generateInviteCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate invite code: %w", err)
		}
		group.InviteCode = sql.NullString{String: code, Valid: true}
	}

	id, err := s.groupRepo.CreateWithOwner(ctx, group)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.NewDuplicateGroupNameError()
		}
		return nil, fmt.Errorf("failed to create group: %w", err)
	}
	group.ID = id

	slog.Info("group created",
		slog.Int64("group_id", id),
		slog.String("name", name),
		slog.Bool("is_public", isPublic),
		slog.Int64("owner_id", ownerID),
	)
	return group, nil
}

// ListGroups は全グループを新しい順に返す。
// 各グループにはオーナー表示名とリクエストユーザーの所属状態が付く。
func (s *Service) ListGroups(ctx context.Context, userID int64) ([]model.GroupWithMembership, error) {
	groups, err := s.groupRepo.ListWithMembership(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return groups, nil
}

// JoinPublicGroup は公開グループへの参加を登録する。
// 既に参加済みの場合は冪等に成功する。非公開グループにはPRIVATE_GROUPを返す。
func (s *Service) JoinPublicGroup(ctx context.Context, groupID, userID int64) error {
	group, err := s.groupRepo.FindByID(ctx, groupID)
	if err != nil {
		return fmt.Errorf("failed to find group: %w", err)
	}
	if group == nil {
		return model.NewGroupNotFoundError(groupID)
	}
	if !group.IsPublic {
		return model.NewPrivateGroupError()
	}

	if err := s.membershipRepo.Add(ctx, groupID, userID, model.RoleMember); err != nil {
		return fmt.Errorf("failed to add membership: %w", err)
	}

	slog.Info("user joined group",
		slog.Int64("group_id", groupID),
		slog.Int64("user_id", userID),
	)
	return nil
}

// JoinByInviteCode は招待コードの完全一致で非公開グループへ参加する。
// コードが未知の場合はINVALID_INVITE_CODEを返す。参加は冪等。
func (s *Service) JoinByInviteCode(ctx context.Context, userID int64, code string) (*model.Group, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, model.NewInvalidInviteCodeError()
	}

	group, err := s.groupRepo.FindByInviteCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to find group by invite code: %w", err)
	}
	if group == nil {
		return nil, model.NewInvalidInviteCodeError()
	}

	if err := s.membershipRepo.Add(ctx, group.ID, userID, model.RoleMember); err != nil {
		return nil, fmt.Errorf("failed to add membership: %w", err)
	}

	slog.Info("user joined group via invite",
		slog.Int64("group_id", group.ID),
		slog.Int64("user_id", userID),
	)
	return group, nil
}

// EnterGroup はグループ入室時の情報（グループとメッセージ履歴）を返す。
// メンバーでないユーザーにはNOT_A_MEMBERを返し、履歴は一切開示しない。
func (s *Service) EnterGroup(ctx context.Context, groupID, userID int64) (*model.Group, []model.MessageWithAuthor, error) {
	group, err := s.groupRepo.FindByID(ctx, groupID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find group: %w", err)
	}
	if group == nil {
		return nil, nil, model.NewGroupNotFoundError(groupID)
	}

	isMember, err := s.membershipRepo.Exists(ctx, groupID, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if !isMember {
		return nil, nil, model.NewNotAMemberError()
	}

	messages, err := s.messageRepo.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list messages: %w", err)
	}

	return group, messages, nil
}

// IsMember は(group, user)の所属有無を返す。チャット中継の認可判定に使う。
func (s *Service) IsMember(ctx context.Context, groupID, userID int64) (bool, error) {
	return s.membershipRepo.Exists(ctx, groupID, userID)
}

// generateInviteCode はURLセーフな招待コードを生成する。
func generateInviteCode() (string, error) {
	b := make([]byte, inviteCodeBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
