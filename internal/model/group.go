// Package model はドメインモデルを定義する。
package model

import (
	"database/sql"
	"time"
)

// Group はチャットグループを表す。
// 非公開グループは招待コードを持ち、公開グループは持たない
// （InviteCode.Valid == !IsPublic が常に成り立つ）。
type Group struct {
	ID          int64
	Name        string
	Description string
	IsPublic    bool
	OwnerID     int64
	InviteCode  sql.NullString
	CreatedAt   time.Time
}

// MemberRole はグループ内での役割を表す。
type MemberRole string

const (
	// RoleOwner はグループ作成者の役割。
	RoleOwner MemberRole = "owner"
	// RoleMember は参加メンバーの役割。
	RoleMember MemberRole = "member"
)

// Membership はユーザーとグループの所属関係を表す。
// (GroupID, UserID) で一意。
type Membership struct {
	ID      int64
	GroupID int64
	UserID  int64
	Role    MemberRole
}

// GroupWithMembership はグループ一覧表示用に、リクエストユーザーの
// 所属状態とオーナー表示名を付加した構造体。
type GroupWithMembership struct {
	Group
	OwnerName string
	IsMember  bool
}
