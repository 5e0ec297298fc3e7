package chat

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/hitoshi/foodhub/internal/model"
)

// フレーム種別
const (
	FrameJoin    = "join"
	FrameLeave   = "leave"
	FrameMessage = "message"
)

// 破棄理由。metricsのラベルとして使う。
const (
	DropReasonMalformed   = "malformed_frame"
	DropReasonEmptyText   = "empty_text"
	DropReasonBadRoomKey  = "bad_room_key"
	DropReasonNotMember   = "not_a_member"
	DropReasonUnknownUser = "unknown_user"
	DropReasonPersistFail = "persist_fail"
)

// Inbound はクライアントから受信するフレーム。
// 送信者はフレームではなく接続の認証済みセッションから決まる。
type Inbound struct {
	Type string `json:"type"`
	Room string `json:"room"`
	Text string `json:"text,omitempty"`
}

// Outbound はルームへ配信するフレーム。
type Outbound struct {
	Type      string    `json:"type"`
	Room      string    `json:"room"`
	Username  string    `json:"username"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Peer は中継対象の接続。本番実装は*Client。
type Peer interface {
	subscriber
	UserID() int64
}

// MembershipChecker はグループ所属の認可判定インターフェース。
type MembershipChecker interface {
	IsMember(ctx context.Context, groupID, userID int64) (bool, error)
}

// UserFinder は投稿者の表示名解決インターフェース。
type UserFinder interface {
	FindByID(ctx context.Context, id int64) (*model.User, error)
}

// MessageStore はメッセージ永続化インターフェース。
type MessageStore interface {
	Create(ctx context.Context, msg *model.Message) error
}

// Recorder は中継メトリクスの記録インターフェース。
type Recorder interface {
	RecordMessageRelayed()
	RecordMessageDropped(reason string)
}

// Relay はフレームの認可・永続化・配信を行う。
// 不正なフレームはクライアントへのエラー応答なしに破棄し、
// 破棄理由をメトリクスとログに残す。
type Relay struct {
	hub     *Hub
	members MembershipChecker
	users   UserFinder
	store   MessageStore
	metrics Recorder
}

// NewRelay はRelayを生成する。
func NewRelay(hub *Hub, members MembershipChecker, users UserFinder, store MessageStore, metrics Recorder) *Relay {
	return &Relay{
		hub:     hub,
		members: members,
		users:   users,
		store:   store,
		metrics: metrics,
	}
}

// Hub は配下のHubを返す。
func (r *Relay) Hub() *Hub {
	return r.hub
}

// Handle は受信フレームを種別にしたがって処理する。
func (r *Relay) Handle(ctx context.Context, c Peer, frame Inbound) {
	switch frame.Type {
	case FrameJoin:
		r.handleJoin(ctx, c, frame.Room)
	case FrameLeave:
		r.hub.Unsubscribe(frame.Room, c)
	case FrameMessage:
		r.relayMessage(ctx, c, frame.Room, frame.Text)
	default:
		r.dropFrame(c.UserID(), DropReasonMalformed)
	}
}

// handleJoin はルーム購読を登録する。メンバーでない場合は購読しない。
func (r *Relay) handleJoin(ctx context.Context, c Peer, room string) {
	groupID, ok := ParseRoomKey(room)
	if !ok {
		r.dropFrame(c.UserID(), DropReasonBadRoomKey)
		return
	}

	isMember, err := r.members.IsMember(ctx, groupID, c.UserID())
	if err != nil {
		slog.Error("membership check failed",
			slog.Int64("group_id", groupID),
			slog.Int64("user_id", c.UserID()),
			slog.String("error", err.Error()),
		)
		return
	}
	if !isMember {
		r.dropFrame(c.UserID(), DropReasonNotMember)
		return
	}

	r.hub.Subscribe(room, c)
}

// relayMessage はメッセージを認可・永続化し、ルーム全員に配信する。
// 購読時だけでなく中継のたびにメンバーシップを確認する。脱退済みの
// 接続が購読を握ったまま投稿し続けることを防ぐ。
func (r *Relay) relayMessage(ctx context.Context, c Peer, room, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		r.dropFrame(c.UserID(), DropReasonEmptyText)
		return
	}

	groupID, ok := ParseRoomKey(room)
	if !ok {
		r.dropFrame(c.UserID(), DropReasonBadRoomKey)
		return
	}

	isMember, err := r.members.IsMember(ctx, groupID, c.UserID())
	if err != nil {
		slog.Error("membership check failed",
			slog.Int64("group_id", groupID),
			slog.Int64("user_id", c.UserID()),
			slog.String("error", err.Error()),
		)
		return
	}
	if !isMember {
		r.dropFrame(c.UserID(), DropReasonNotMember)
		return
	}

	user, err := r.users.FindByID(ctx, c.UserID())
	if err != nil {
		slog.Error("failed to resolve message author",
			slog.Int64("user_id", c.UserID()),
			slog.String("error", err.Error()),
		)
		return
	}
	if user == nil {
		r.dropFrame(c.UserID(), DropReasonUnknownUser)
		return
	}

	msg := &model.Message{
		GroupID:   groupID,
		UserID:    user.ID,
		Content:   text,
		CreatedAt: time.Now(),
	}
	if err := r.store.Create(ctx, msg); err != nil {
		slog.Error("failed to persist message",
			slog.Int64("group_id", groupID),
			slog.Int64("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		r.metrics.RecordMessageDropped(DropReasonPersistFail)
		return
	}

	out := Outbound{
		Type:      FrameMessage,
		Room:      room,
		Username:  user.Username,
		Text:      text,
		CreatedAt: msg.CreatedAt,
	}
	data, err := json.Marshal(out)
	if err != nil {
		// Outboundは常にマーシャル可能なはずだが、握りつぶさない
		slog.Error("failed to encode outbound frame", slog.String("error", err.Error()))
		return
	}

	delivered := r.hub.Broadcast(room, data)
	r.metrics.RecordMessageRelayed()
	slog.Debug("message relayed",
		slog.Int64("group_id", groupID),
		slog.Int64("user_id", user.ID),
		slog.Int("delivered", delivered),
	)
}

// dropFrame は破棄をメトリクスとログに記録する。
func (r *Relay) dropFrame(userID int64, reason string) {
	r.metrics.RecordMessageDropped(reason)
	slog.Debug("frame dropped",
		slog.Int64("user_id", userID),
		slog.String("reason", reason),
	)
}
