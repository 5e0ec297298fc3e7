package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestCollector_Counters はカウンターの加算を検証する。
func TestCollector_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordOTPIssued()
	c.RecordOTPIssued()
	c.RecordOTPDeliveryFail()
	c.RecordOTPVerifyFail()
	c.RecordMessageRelayed()

	if got := testutil.ToFloat64(c.otpIssued); got != 2 {
		t.Errorf("otp_issued = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.otpDeliveryFail); got != 1 {
		t.Errorf("otp_delivery_fail = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.otpVerifyFail); got != 1 {
		t.Errorf("otp_verify_fail = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.messagesRelayed); got != 1 {
		t.Errorf("messages_relayed = %v, want 1", got)
	}
}

// TestCollector_LabeledCounters は理由ラベル付きカウンターを検証する。
func TestCollector_LabeledCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordMessageDropped("empty_text")
	c.RecordMessageDropped("empty_text")
	c.RecordMessageDropped("not_a_member")
	c.RecordSuggestionFallback("call_failed")
	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(404)

	if got := testutil.ToFloat64(c.messagesDropped.WithLabelValues("empty_text")); got != 2 {
		t.Errorf("messages_dropped{empty_text} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.messagesDropped.WithLabelValues("not_a_member")); got != 1 {
		t.Errorf("messages_dropped{not_a_member} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.suggestionFallback.WithLabelValues("call_failed")); got != 1 {
		t.Errorf("suggestion_fallback{call_failed} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.httpStatus.WithLabelValues("200")); got != 1 {
		t.Errorf("http_status{200} = %v, want 1", got)
	}
}

// TestCollector_WSGauge はwebsocket接続数ゲージの増減を検証する。
func TestCollector_WSGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.WSConnectionOpened()
	c.WSConnectionOpened()
	c.WSConnectionClosed()

	if got := testutil.ToFloat64(c.wsConnections); got != 1 {
		t.Errorf("ws_connections = %v, want 1", got)
	}
}
