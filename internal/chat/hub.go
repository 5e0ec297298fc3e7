// Package chat はグループチャットのリアルタイム中継を提供する。
// 接続はルームキー（"group_<id>"）単位で購読し、配信は購読者全員
// （送信者自身を含む）に行われる。メッセージの永続化はRelayが担う。
package chat

import (
	"strconv"
	"strings"
	"sync"
)

// roomKeyPrefix はルームキーの固定プレフィックス。
const roomKeyPrefix = "group_"

// RoomKey はグループIDからルームキーを組み立てる。
func RoomKey(groupID int64) string {
	return roomKeyPrefix + strconv.FormatInt(groupID, 10)
}

// ParseRoomKey はルームキーからグループIDを取り出す。
// "group_<正の整数>" 以外の形式はfalseを返す。
func ParseRoomKey(key string) (int64, bool) {
	rest, ok := strings.CutPrefix(key, roomKeyPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// subscriber はルーム購読者への配信インターフェース。
// 本番実装は*Client、テストではフェイクを使う。
type subscriber interface {
	Send(data []byte) error
}

// Hub はルームごとの購読者集合を管理する。全メソッドは並行安全。
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[subscriber]struct{}
}

// NewHub はHubを生成する。
func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]map[subscriber]struct{}),
	}
}

// Subscribe は購読者をルームに登録する。重複登録は無害。
func (h *Hub) Subscribe(room string, s subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.rooms[room]
	if !ok {
		subs = make(map[subscriber]struct{})
		h.rooms[room] = subs
	}
	subs[s] = struct{}{}
}

// Unsubscribe は購読者をルームから外す。空になったルームは削除する。
func (h *Hub) Unsubscribe(room string, s subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(room, s)
}

// UnsubscribeAll は購読者を全ルームから外す。切断時に呼ぶ。
func (h *Hub) UnsubscribeAll(s subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for room := range h.rooms {
		h.removeLocked(room, s)
	}
}

func (h *Hub) removeLocked(room string, s subscriber) {
	subs, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(subs, s)
	if len(subs) == 0 {
		delete(h.rooms, room)
	}
}

// Broadcast はルームの全購読者（送信者自身を含む）にdataを配信し、
// 配信できた購読者数を返す。送信バッファが詰まった購読者は黙って飛ばす。
func (h *Hub) Broadcast(room string, data []byte) int {
	h.mu.RLock()
	subs := make([]subscriber, 0, len(h.rooms[room]))
	for s := range h.rooms[room] {
		subs = append(subs, s)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, s := range subs {
		if err := s.Send(data); err == nil {
			delivered++
		}
	}
	return delivered
}

// RoomCount はルームの現在の購読者数を返す。
func (h *Hub) RoomCount(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
