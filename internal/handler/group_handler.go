package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/foodhub/internal/middleware"
	"github.com/hitoshi/foodhub/internal/model"
)

// GroupServiceInterface はグループハンドラーが必要とするサービスインターフェース。
type GroupServiceInterface interface {
	CreateGroup(ctx context.Context, ownerID int64, name, description string, isPublic bool) (*model.Group, error)
	ListGroups(ctx context.Context, userID int64) ([]model.GroupWithMembership, error)
	JoinPublicGroup(ctx context.Context, groupID, userID int64) error
	JoinByInviteCode(ctx context.Context, userID int64, code string) (*model.Group, error)
	EnterGroup(ctx context.Context, groupID, userID int64) (*model.Group, []model.MessageWithAuthor, error)
}

// GroupHandler はチャットグループ管理のHTTPハンドラー。
type GroupHandler struct {
	service GroupServiceInterface
}

// NewGroupHandler はGroupHandlerを生成する。
func NewGroupHandler(service GroupServiceInterface) *GroupHandler {
	return &GroupHandler{service: service}
}

// createGroupRequest はグループ作成リクエストのボディ。
type createGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPublic    bool   `json:"is_public"`
}

// joinByCodeRequest は招待コード参加リクエストのボディ。
type joinByCodeRequest struct {
	InviteCode string `json:"invite_code"`
}

// groupResponse はグループ情報のAPIレスポンス。
// 招待コードは非公開グループのオーナーが作成直後に受け取る場合のみ含まれる。
type groupResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPublic    bool   `json:"is_public"`
	OwnerID     int64  `json:"owner_id"`
	InviteCode  string `json:"invite_code,omitempty"`
}

// groupListItemResponse はグループ一覧のAPIレスポンス要素。
type groupListItemResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPublic    bool   `json:"is_public"`
	OwnerName   string `json:"owner_name"`
	IsMember    bool   `json:"is_member"`
}

// messageResponse はチャット履歴のAPIレスポンス要素。
type messageResponse struct {
	Username  string    `json:"username"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// groupDetailResponse はグループ入室時のAPIレスポンス。
type groupDetailResponse struct {
	Group    groupResponse     `json:"group"`
	Messages []messageResponse `json:"messages"`
}

// CreateGroup はグループを作成する。非公開グループには招待コードが発行され、
// 作成レスポンスにのみ含まれる。
// POST /api/groups
func (h *GroupHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	var req createGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	group, err := h.service.CreateGroup(r.Context(), userID, req.Name, req.Description, req.IsPublic)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toGroupResponse(group, true))
}

// ListGroups は全グループの一覧を所属状態付きで返す。
// GET /api/groups
func (h *GroupHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	groups, err := h.service.ListGroups(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]groupListItemResponse, len(groups))
	for i, g := range groups {
		results[i] = groupListItemResponse{
			ID:          g.ID,
			Name:        g.Name,
			Description: g.Description,
			IsPublic:    g.IsPublic,
			OwnerName:   g.OwnerName,
			IsMember:    g.IsMember,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}

// JoinGroup は公開グループへの参加を処理する。参加済みの場合も成功を返す（冪等）。
// POST /api/groups/{id}/join
func (h *GroupHandler) JoinGroup(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	groupID, ok := parseGroupID(w, r)
	if !ok {
		return
	}

	if err := h.service.JoinPublicGroup(r.Context(), groupID, userID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// JoinByCode は招待コードによる非公開グループへの参加を処理する。
// POST /api/groups/join
func (h *GroupHandler) JoinByCode(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	var req joinByCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	group, err := h.service.JoinByInviteCode(r.Context(), userID, req.InviteCode)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toGroupResponse(group, false))
}

// EnterGroup はグループ詳細とチャット履歴（古い順）を返す。メンバーのみ参照可能。
// GET /api/groups/{id}
func (h *GroupHandler) EnterGroup(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	groupID, ok := parseGroupID(w, r)
	if !ok {
		return
	}

	group, history, err := h.service.EnterGroup(r.Context(), groupID, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	messages := make([]messageResponse, len(history))
	for i, m := range history {
		messages[i] = messageResponse{
			Username:  m.Username,
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(groupDetailResponse{
		Group:    toGroupResponse(group, false),
		Messages: messages,
	})
}

// toGroupResponse はmodel.GroupからAPIレスポンスに変換する。
// includeInviteCode がtrueの場合のみ招待コードを含める（作成直後のオーナー向け）。
func toGroupResponse(group *model.Group, includeInviteCode bool) groupResponse {
	resp := groupResponse{
		ID:          group.ID,
		Name:        group.Name,
		Description: group.Description,
		IsPublic:    group.IsPublic,
		OwnerID:     group.OwnerID,
	}
	if includeInviteCode && group.InviteCode.Valid {
		resp.InviteCode = group.InviteCode.String
	}
	return resp
}

// parseGroupID はURLパラメータからグループIDを取り出す。
// 不正な値の場合は404を書き込みfalseを返す。
func parseGroupID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	groupID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || groupID <= 0 {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewGroupNotFoundError(0))
		return 0, false
	}
	return groupID, true
}
