// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, group, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeDuplicateUser      = "DUPLICATE_USER"
	ErrCodeDuplicateGroupName = "DUPLICATE_GROUP_NAME"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeNotVerified        = "NOT_VERIFIED"
	ErrCodeInvalidOrExpired   = "INVALID_OR_EXPIRED_OTP"
	ErrCodeOTPDeliveryFailed  = "OTP_DELIVERY_FAILED"
	ErrCodeUnauthenticated    = "UNAUTHENTICATED"
	ErrCodeGroupNotFound      = "GROUP_NOT_FOUND"
	ErrCodePrivateGroup       = "PRIVATE_GROUP"
	ErrCodeInvalidInviteCode  = "INVALID_INVITE_CODE"
	ErrCodeNotAMember         = "NOT_A_MEMBER"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeUnsupportedImage   = "UNSUPPORTED_IMAGE"
)

// NewValidationError は入力値不正エラーを生成する。
func NewValidationError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  message,
		Category: "validation",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewDuplicateUserError はユーザー名またはメールアドレスの重複エラーを生成する。
func NewDuplicateUserError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateUser,
		Message:  "そのユーザー名またはメールアドレスは既に使われています。",
		Category: "validation",
		Action:   "別のユーザー名・メールアドレスで登録してください。",
	}
}

// NewDuplicateGroupNameError はグループ名の重複エラーを生成する。
func NewDuplicateGroupNameError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateGroupName,
		Message:  "その名前のグループは既に存在します。",
		Category: "group",
		Action:   "別のグループ名を指定してください。",
	}
}

// NewInvalidCredentialsError は認証失敗エラーを生成する。
// メールアドレス不明かパスワード不一致かは意図的に区別しない。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度ログインしてください。",
	}
}

// NewNotVerifiedError はメール未認証エラーを生成する。
func NewNotVerifiedError() *APIError {
	return &APIError{
		Code:     ErrCodeNotVerified,
		Message:  "メールアドレスが未認証です。",
		Category: "auth",
		Action:   "メールに届いた認証コードを入力してください。",
	}
}

// NewInvalidOrExpiredOTPError はOTP検証失敗エラーを生成する。
// コード不一致か期限切れかは意図的に区別しない。
func NewInvalidOrExpiredOTPError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidOrExpired,
		Message:  "認証コードが無効か、有効期限が切れています。",
		Category: "auth",
		Action:   "再度登録するか、新しいコードを取得してください。",
	}
}

// NewOTPDeliveryFailedError は認証メール送信失敗エラーを生成する。
func NewOTPDeliveryFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeOTPDeliveryFailed,
		Message:  "認証コードのメール送信に失敗しました。",
		Category: "system",
		Action:   "しばらく待ってから再度登録してください。",
	}
}

// NewUnauthenticatedError は未認証エラーを生成する。
func NewUnauthenticatedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthenticated,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewGroupNotFoundError はグループ未検出エラーを生成する。
func NewGroupNotFoundError(groupID int64) *APIError {
	return &APIError{
		Code:     ErrCodeGroupNotFound,
		Message:  fmt.Sprintf("指定されたグループが見つかりません: %d", groupID),
		Category: "group",
		Action:   "グループ一覧から選択し直してください。",
	}
}

// NewPrivateGroupError は非公開グループへの直接参加エラーを生成する。
func NewPrivateGroupError() *APIError {
	return &APIError{
		Code:     ErrCodePrivateGroup,
		Message:  "このグループは非公開です。",
		Category: "group",
		Action:   "招待コードを使って参加してください。",
	}
}

// NewInvalidInviteCodeError は無効な招待コードエラーを生成する。
func NewInvalidInviteCodeError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidInviteCode,
		Message:  "招待コードが無効です。",
		Category: "group",
		Action:   "グループのオーナーに正しい招待コードを確認してください。",
	}
}

// NewNotAMemberError は非メンバーによるグループ入室エラーを生成する。
func NewNotAMemberError() *APIError {
	return &APIError{
		Code:     ErrCodeNotAMember,
		Message:  "このグループのメンバーではありません。",
		Category: "group",
		Action:   "先にグループへ参加してください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewUnsupportedImageError は非対応の画像形式エラーを生成する。
func NewUnsupportedImageError(ext string) *APIError {
	return &APIError{
		Code:     ErrCodeUnsupportedImage,
		Message:  fmt.Sprintf("非対応の画像形式です: %s", ext),
		Category: "validation",
		Action:   "png / jpg / jpeg / webp のいずれかをアップロードしてください。",
	}
}
