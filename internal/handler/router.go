package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/foodhub/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	CSRFConfig        middleware.CSRFConfig
	Logger            *slog.Logger
	StatusMetrics     middleware.StatusMetricsRecorder

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// ユーザー
	UserService UserServiceInterface

	// グループ
	GroupService GroupServiceInterface

	// チャット
	ChatHandler *ChatHandler

	// 投稿
	BlogService   BlogServiceInterface
	RecipeService RecipeServiceInterface

	// レシピ提案
	SuggestionService SuggestionServiceInterface

	// アップロード画像の配信元ディレクトリ
	UploadDir string
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → CORS → SecurityHeaders → Logging → Recovery
//	→ （保護ルートのみ）Session → RateLimit(General) → CSRF
//
// 登録・認証コード検証エンドポイントにはセッション前段のIP別レート制限を適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.StatusMetrics))
	}
	r.Use(middleware.NewRecoveryMiddleware())

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	userHandler := NewUserHandler(deps.UserService)
	groupHandler := NewGroupHandler(deps.GroupService)
	blogHandler := NewBlogHandler(deps.BlogService)
	recipeHandler := NewRecipeHandler(deps.RecipeService)
	suggestHandler := NewSuggestHandler(deps.SuggestionService)

	// --- 認証不要のルート ---

	r.Get("/health", HealthCheck)

	// SPAがログイン前に取得するCSRFトークン発行エンドポイント
	r.Get("/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig).ServeHTTP)

	r.Route("/api/auth", func(r chi.Router) {
		// 登録と認証コード検証は未ログイン状態で呼ばれるため、
		// IPアドレス単位のレート制限を適用する
		r.With(deps.RateLimiter.OTPIssueMiddleware()).Post("/register", authHandler.Register)
		r.With(deps.RateLimiter.OTPIssueMiddleware()).Post("/verify", authHandler.Verify)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	// アップロード画像の静的配信（読み取り専用）
	if deps.UploadDir != "" {
		fileServer := http.FileServer(http.Dir(deps.UploadDir))
		r.Method(http.MethodGet, "/uploads/*", http.StripPrefix("/uploads/", fileServer))
	}

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → RateLimit(General) → CSRF
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		r.Use(deps.RateLimiter.GeneralMiddleware())
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))

		// プロフィール
		r.Route("/api/users", func(r chi.Router) {
			r.Put("/me", userHandler.UpdateProfile)
			r.Get("/{username}", userHandler.GetProfile)
		})

		// グループ管理
		r.Route("/api/groups", func(r chi.Router) {
			r.Get("/", groupHandler.ListGroups)
			r.Post("/", groupHandler.CreateGroup)
			r.Post("/join", groupHandler.JoinByCode)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", groupHandler.EnterGroup)
				r.Post("/join", groupHandler.JoinGroup)
			})
		})

		// ブログ
		r.Route("/api/blogs", func(r chi.Router) {
			r.Get("/", blogHandler.List)
			r.Post("/", blogHandler.Create)
		})

		// レシピ
		r.Route("/api/recipes", func(r chi.Router) {
			r.Get("/", recipeHandler.List)
			r.Post("/", recipeHandler.Create)
		})

		// レシピ提案
		r.Post("/api/suggestions", suggestHandler.Suggest)

		// websocketチャット（セッションCookieはハンドシェイク時に送信される）
		if deps.ChatHandler != nil {
			r.Get("/ws", deps.ChatHandler.ServeWS)
		}
	})

	return r
}

// HealthCheck は稼働確認エンドポイント。
// GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
