package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/hitoshi/foodhub/internal/auth"
	"github.com/hitoshi/foodhub/internal/blog"
	"github.com/hitoshi/foodhub/internal/chat"
	"github.com/hitoshi/foodhub/internal/config"
	"github.com/hitoshi/foodhub/internal/database"
	"github.com/hitoshi/foodhub/internal/group"
	"github.com/hitoshi/foodhub/internal/handler"
	"github.com/hitoshi/foodhub/internal/logger"
	"github.com/hitoshi/foodhub/internal/mail"
	"github.com/hitoshi/foodhub/internal/metrics"
	"github.com/hitoshi/foodhub/internal/middleware"
	"github.com/hitoshi/foodhub/internal/otp"
	"github.com/hitoshi/foodhub/internal/recipe"
	"github.com/hitoshi/foodhub/internal/repository"
	"github.com/hitoshi/foodhub/internal/security"
	"github.com/hitoshi/foodhub/internal/storage"
	"github.com/hitoshi/foodhub/internal/suggestion"
	"github.com/hitoshi/foodhub/internal/user"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. リポジトリの初期化
	userRepo := repository.NewPostgresUserRepo(db)
	sessionRepo := repository.NewPostgresSessionRepo(db)
	groupRepo := repository.NewPostgresGroupRepo(db)
	membershipRepo := repository.NewPostgresMembershipRepo(db)
	messageRepo := repository.NewPostgresMessageRepo(db)
	blogRepo := repository.NewPostgresBlogRepo(db)
	recipeRepo := repository.NewPostgresRecipeRepo(db)

	// 3. メトリクスの初期化
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	// 4. 横断サービスの初期化
	sanitizer := security.NewContentSanitizer()

	imageStore, err := storage.NewFileImageStore(cfg.UploadDir)
	if err != nil {
		return fmt.Errorf("failed to prepare upload directory: %w", err)
	}

	mailSender := mail.NewResendSender(cfg.ResendAPIKey, cfg.MailSender)
	otpVerifier := otp.NewVerifier(userRepo, mailSender, cfg.OTPExpiry, collector)

	// 5. ドメインサービスの初期化
	authService := auth.NewService(
		userRepo, sessionRepo, otpVerifier,
		auth.ServiceConfig{SessionMaxAge: cfg.SessionMaxAge},
	)
	groupService := group.NewService(groupRepo, membershipRepo, messageRepo)
	userService := user.NewService(userRepo, blogRepo, recipeRepo, sanitizer, imageStore)
	blogService := blog.NewService(blogRepo, sanitizer)
	recipeService := recipe.NewService(recipeRepo, sanitizer, imageStore)

	// APIキー未設定はオフライン生成のみで動作する正常な構成
	var completionProvider suggestion.CompletionProvider
	if cfg.OpenAIAPIKey != "" {
		completionProvider = suggestion.NewOpenAIProvider(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel)
	}
	suggestionService := suggestion.NewService(completionProvider, collector)

	// 6. チャット中継の初期化
	hub := chat.NewHub()
	relay := chat.NewRelay(hub, groupService, userRepo, messageRepo, collector)
	chatHandler := handler.NewChatHandler(relay, collector, cfg.CORSAllowedOrigin)

	// 7. ルーターの構築
	// configのレート制限はreq/min単位なのでreq/secに変換する
	rateLimiterCfg := middleware.DefaultRateLimiterConfig()
	rateLimiterCfg.GeneralRate = rate.Limit(float64(cfg.RateLimitGeneral) / 60.0)
	rateLimiterCfg.GeneralBurst = cfg.RateLimitGeneral
	rateLimiterCfg.OTPIssueRate = rate.Limit(float64(cfg.RateLimitOTPIssue) / 60.0)
	rateLimiterCfg.OTPIssueBurst = cfg.RateLimitOTPIssue

	deps := &handler.RouterDeps{
		SessionFinder:     sessionRepo,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       middleware.NewRateLimiter(rateLimiterCfg),
		CSRFConfig: middleware.CSRFConfig{
			CookieSecure: cfg.CookieSecure,
			CookieDomain: cfg.CookieDomain,
		},
		Logger:            slog.Default(),
		StatusMetrics:     collector,

		AuthService: authService,
		AuthConfig: handler.AuthHandlerConfig{
			CookieDomain:  cfg.CookieDomain,
			CookieSecure:  cfg.CookieSecure,
			SessionMaxAge: cfg.SessionMaxAge,
		},

		UserService:  userService,
		GroupService: groupService,
		ChatHandler:  chatHandler,

		BlogService:   blogService,
		RecipeService: recipeService,

		SuggestionService: suggestionService,

		UploadDir: imageStore.Dir(),
	}

	router := handler.NewRouter(deps)

	// /metricsはAPIルーターのミドルウェアチェーンを通さず直接マウントする
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.SetupMetricsRoute(reg))
	mux.Handle("/", router)

	// 8. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
