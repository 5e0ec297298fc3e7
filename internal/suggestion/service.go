package suggestion

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hitoshi/foodhub/internal/model"
)

// Recorder はフォールバック発生の記録インターフェース。
type Recorder interface {
	RecordSuggestionFallback(reason string)
}

// フォールバック理由。metricsのラベルとして使う。
const (
	FallbackReasonNotConfigured = "not_configured"
	FallbackReasonCallFailed    = "call_failed"
	FallbackReasonParseFailed   = "parse_failed"
)

// Service はレシピ提案を提供する。providerがnilの場合は常に
// オフライン生成を使う（APIキー未設定は正常な構成）。
type Service struct {
	provider CompletionProvider
	metrics  Recorder
}

// NewService はServiceを生成する。providerはnil可。
func NewService(provider CompletionProvider, metrics Recorder) *Service {
	return &Service{
		provider: provider,
		metrics:  metrics,
	}
}

// Suggest は材料リストからレシピ案を返す。補完APIの呼び出しや
// 応答の解釈に失敗してもエラーは返さず、オフライン生成に
// フォールバックして必ず提案を返す。失敗は理由付きで記録する。
func (s *Service) Suggest(ctx context.Context, ingredients []string) model.RecipeSuggestion {
	if s.provider == nil {
		s.fallback(FallbackReasonNotConfigured, nil)
		return Offline(ingredients)
	}

	content, err := s.provider.Complete(ctx, buildPrompt(ingredients))
	if err != nil {
		s.fallback(FallbackReasonCallFailed, err)
		return Offline(ingredients)
	}

	parsed, err := extractSuggestion(content)
	if err != nil {
		s.fallback(FallbackReasonParseFailed, err)
		return Offline(ingredients)
	}
	return parsed
}

// buildPrompt は材料リストから補完プロンプトを組み立てる。
func buildPrompt(ingredients []string) string {
	return "Create a concise recipe using ONLY these ingredients (you may assume pantry basics: salt, pepper, oil):\n" +
		strings.Join(ingredients, ", ") + "\n" +
		"Return JSON with keys: title, summary, ingredients (list), steps (list). Keep it simple."
}

// extractSuggestion は補完テキストから最初のバランスの取れた
// JSONオブジェクトを取り出して解釈する。モデルがJSONの前後に
// 説明文やコードフェンスを付けても動くようにする。
func extractSuggestion(content string) (model.RecipeSuggestion, error) {
	raw, err := firstJSONObject(content)
	if err != nil {
		return model.RecipeSuggestion{}, err
	}

	var suggestion model.RecipeSuggestion
	if err := json.Unmarshal([]byte(raw), &suggestion); err != nil {
		return model.RecipeSuggestion{}, fmt.Errorf("failed to decode suggestion JSON: %w", err)
	}
	if suggestion.Title == "" {
		return model.RecipeSuggestion{}, fmt.Errorf("suggestion JSON has no title")
	}
	return suggestion, nil
}

// firstJSONObject は文字列中の最初の { から対応する } までを返す。
// 文字列リテラル内の括弧とエスケープを考慮する。
func firstJSONObject(s string) (string, error) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", fmt.Errorf("no JSON object in completion output")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("unbalanced JSON object in completion output")
}

// fallback はフォールバック発生を記録する。
func (s *Service) fallback(reason string, err error) {
	if s.metrics != nil {
		s.metrics.RecordSuggestionFallback(reason)
	}
	attrs := []any{slog.String("reason", reason)}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	slog.Warn("recipe suggestion fell back to offline generation", attrs...)
}
