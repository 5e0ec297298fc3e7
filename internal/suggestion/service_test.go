package suggestion

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

// --- モック ---

type mockProvider struct {
	completeFn func(ctx context.Context, prompt string) (string, error)
}

func (m *mockProvider) Complete(ctx context.Context, prompt string) (string, error) {
	return m.completeFn(ctx, prompt)
}

type mockRecorder struct {
	fallbacks map[string]int
}

func newMockRecorder() *mockRecorder {
	return &mockRecorder{fallbacks: make(map[string]int)}
}
func (m *mockRecorder) RecordSuggestionFallback(reason string) {
	m.fallbacks[reason]++
}

// --- テスト ---

// TestOffline はオフライン生成の決定性とタイトル規則を検証する。
func TestOffline(t *testing.T) {
	tests := []struct {
		name        string
		ingredients []string
		wantTitle   string
		wantIngs    []string
	}{
		{
			name:        "材料2つ以上は先頭2つでタイトル",
			ingredients: []string{"egg", "rice", "onion"},
			wantTitle:   "Quick Egg & Rice Surprise",
			wantIngs:    []string{"egg", "rice", "onion"},
		},
		{
			name:        "材料1つ",
			ingredients: []string{"tofu"},
			wantTitle:   "Quick Tofu Surprise",
			wantIngs:    []string{"tofu"},
		},
		{
			name:        "材料なしは汎用タイトル",
			ingredients: nil,
			wantTitle:   "Quick Pantry Surprise",
			wantIngs:    []string{},
		},
		{
			name:        "空白のみの要素は除外される",
			ingredients: []string{"  egg  ", "   ", "rice"},
			wantTitle:   "Quick Egg & Rice Surprise",
			wantIngs:    []string{"egg", "rice"},
		},
		{
			name:        "大文字済みの材料はそのまま",
			ingredients: []string{"Egg", "Rice"},
			wantTitle:   "Quick Egg & Rice Surprise",
			wantIngs:    []string{"Egg", "Rice"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Offline(tt.ingredients)
			if got.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", got.Title, tt.wantTitle)
			}
			if !reflect.DeepEqual(got.Ingredients, tt.wantIngs) {
				t.Errorf("Ingredients = %v, want %v", got.Ingredients, tt.wantIngs)
			}
			if len(got.Steps) != 3 {
				t.Errorf("len(Steps) = %d, want 3", len(got.Steps))
			}
			if got.Summary == "" {
				t.Error("Summary が空であってはならない")
			}

			// 決定性: 同一入力には常に同一出力
			again := Offline(tt.ingredients)
			if !reflect.DeepEqual(got, again) {
				t.Error("オフライン生成は決定的であるべき")
			}
		})
	}
}

// TestParseIngredients はカンマ区切り入力の分解を検証する。
func TestParseIngredients(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"egg, rice, onion", []string{"egg", "rice", "onion"}},
		{"  egg  ,, ,rice", []string{"egg", "rice"}},
		{"", []string{}},
		{" , , ", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := ParseIngredients(tt.raw); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseIngredients(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

// TestService_Suggest_UsesProvider は補完結果のJSONが使われることを検証する。
func TestService_Suggest_UsesProvider(t *testing.T) {
	ctx := context.Background()
	provider := &mockProvider{
		completeFn: func(ctx context.Context, prompt string) (string, error) {
			return "Here is your recipe:\n" +
				"```json\n" +
				`{"title":"Egg Fried Rice","summary":"Simple.","ingredients":["egg","rice"],"steps":["Beat eggs.","Fry rice."]}` +
				"\n```", nil
		},
	}
	rec := newMockRecorder()
	svc := NewService(provider, rec)

	got := svc.Suggest(ctx, []string{"egg", "rice"})
	if got.Title != "Egg Fried Rice" {
		t.Errorf("Title = %q, want %q", got.Title, "Egg Fried Rice")
	}
	if len(got.Steps) != 2 {
		t.Errorf("len(Steps) = %d, want 2", len(got.Steps))
	}
	if len(rec.fallbacks) != 0 {
		t.Errorf("fallbacks = %v, want なし", rec.fallbacks)
	}
}

// TestService_Suggest_Fallbacks は各失敗パターンでオフライン生成に
// フォールバックし、理由が記録されることを検証する。
func TestService_Suggest_Fallbacks(t *testing.T) {
	ctx := context.Background()
	ingredients := []string{"egg", "rice"}
	offline := Offline(ingredients)

	tests := []struct {
		name       string
		provider   CompletionProvider
		wantReason string
	}{
		{
			name:       "プロバイダ未設定",
			provider:   nil,
			wantReason: FallbackReasonNotConfigured,
		},
		{
			name: "API呼び出し失敗",
			provider: &mockProvider{
				completeFn: func(ctx context.Context, prompt string) (string, error) {
					return "", errors.New("connection refused")
				},
			},
			wantReason: FallbackReasonCallFailed,
		},
		{
			name: "JSONなしの応答",
			provider: &mockProvider{
				completeFn: func(ctx context.Context, prompt string) (string, error) {
					return "Sorry, I cannot help with that.", nil
				},
			},
			wantReason: FallbackReasonParseFailed,
		},
		{
			name: "壊れたJSON",
			provider: &mockProvider{
				completeFn: func(ctx context.Context, prompt string) (string, error) {
					return `{"title": "broken`, nil
				},
			},
			wantReason: FallbackReasonParseFailed,
		},
		{
			name: "titleのないJSON",
			provider: &mockProvider{
				completeFn: func(ctx context.Context, prompt string) (string, error) {
					return `{"summary":"no title"}`, nil
				},
			},
			wantReason: FallbackReasonParseFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := newMockRecorder()
			svc := NewService(tt.provider, rec)

			got := svc.Suggest(ctx, ingredients)
			if !reflect.DeepEqual(got, offline) {
				t.Errorf("Suggest() = %+v, want オフライン生成結果", got)
			}
			if rec.fallbacks[tt.wantReason] != 1 {
				t.Errorf("fallbacks[%s] = %d, want 1", tt.wantReason, rec.fallbacks[tt.wantReason])
			}
		})
	}
}

// TestFirstJSONObject はバランスの取れたJSONオブジェクトの抽出を検証する。
func TestFirstJSONObject(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "前後に説明文",
			input: `Sure! {"a":1} Enjoy.`,
			want:  `{"a":1}`,
		},
		{
			name:  "入れ子のオブジェクト",
			input: `{"a":{"b":2},"c":3}`,
			want:  `{"a":{"b":2},"c":3}`,
		},
		{
			name:  "文字列中の括弧は無視される",
			input: `{"a":"has } brace","b":"and { too"}`,
			want:  `{"a":"has } brace","b":"and { too"}`,
		},
		{
			name:  "文字列中のエスケープ",
			input: `{"a":"quote \" then } brace"}`,
			want:  `{"a":"quote \" then } brace"}`,
		},
		{
			name:    "JSONなし",
			input:   "no json here",
			wantErr: true,
		},
		{
			name:    "閉じていないオブジェクト",
			input:   `{"a":1`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := firstJSONObject(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("firstJSONObject(%q) = %q, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("firstJSONObject(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("firstJSONObject(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
