// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層とチャット中継から利用する。
type MetricsCollector interface {
	RecordOTPIssued()
	RecordOTPDeliveryFail()
	RecordOTPVerifyFail()
	RecordMessageRelayed()
	RecordMessageDropped(reason string)
	RecordSuggestionFallback(reason string)
	RecordHTTPStatus(statusCode int)
	WSConnectionOpened()
	WSConnectionClosed()
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	otpIssued          prometheus.Counter
	otpDeliveryFail    prometheus.Counter
	otpVerifyFail      prometheus.Counter
	messagesRelayed    prometheus.Counter
	messagesDropped    *prometheus.CounterVec
	suggestionFallback *prometheus.CounterVec
	httpStatus         *prometheus.CounterVec
	wsConnections      prometheus.Gauge
}

// CollectorがMetricsCollectorを満たすことはコンパイル時チェックで保証する
var _ MetricsCollector = (*Collector)(nil)

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		otpIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "foodhub_otp_issued_total",
			Help: "発行された認証コードの合計数",
		}),
		otpDeliveryFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "foodhub_otp_delivery_fail_total",
			Help: "認証コードのメール配信失敗の合計数",
		}),
		otpVerifyFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "foodhub_otp_verify_fail_total",
			Help: "認証コード検証失敗の合計数",
		}),
		messagesRelayed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "foodhub_messages_relayed_total",
			Help: "中継されたチャットメッセージの合計数",
		}),
		messagesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "foodhub_messages_dropped_total",
			Help: "破棄されたチャットフレームの理由別合計数",
		}, []string{"reason"}),
		suggestionFallback: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "foodhub_suggestion_fallback_total",
			Help: "レシピ提案のオフラインフォールバックの理由別合計数",
		}, []string{"reason"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "foodhub_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		wsConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "foodhub_ws_connections",
			Help: "現在のwebsocket接続数",
		}),
	}

	reg.MustRegister(
		c.otpIssued,
		c.otpDeliveryFail,
		c.otpVerifyFail,
		c.messagesRelayed,
		c.messagesDropped,
		c.suggestionFallback,
		c.httpStatus,
		c.wsConnections,
	)

	return c
}

// RecordOTPIssued は認証コードの発行を記録する。
func (c *Collector) RecordOTPIssued() {
	c.otpIssued.Inc()
}

// RecordOTPDeliveryFail は認証コードの配信失敗を記録する。
func (c *Collector) RecordOTPDeliveryFail() {
	c.otpDeliveryFail.Inc()
}

// RecordOTPVerifyFail は認証コードの検証失敗を記録する。
func (c *Collector) RecordOTPVerifyFail() {
	c.otpVerifyFail.Inc()
}

// RecordMessageRelayed はチャットメッセージの中継を記録する。
func (c *Collector) RecordMessageRelayed() {
	c.messagesRelayed.Inc()
}

// RecordMessageDropped はチャットフレームの破棄を理由付きで記録する。
func (c *Collector) RecordMessageDropped(reason string) {
	c.messagesDropped.WithLabelValues(reason).Inc()
}

// RecordSuggestionFallback は提案のフォールバックを理由付きで記録する。
func (c *Collector) RecordSuggestionFallback(reason string) {
	c.suggestionFallback.WithLabelValues(reason).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// WSConnectionOpened はwebsocket接続の確立を記録する。
func (c *Collector) WSConnectionOpened() {
	c.wsConnections.Inc()
}

// WSConnectionClosed はwebsocket接続の終了を記録する。
func (c *Collector) WSConnectionClosed() {
	c.wsConnections.Dec()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
