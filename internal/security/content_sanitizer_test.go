package security

import (
	"strings"
	"testing"
)

// TestSanitize_AllowedTags は許可タグが正しく通過することを検証する。
func TestSanitize_AllowedTags(t *testing.T) {
	sanitizer := NewContentSanitizer()

	tests := []struct {
		name  string
		input string
		// want に含まれるべき部分文字列
		wantContains []string
	}{
		{
			name:         "pタグが許可される",
			input:        "<p>今日のレシピは肉じゃがです</p>",
			wantContains: []string{"<p>今日のレシピは肉じゃがです</p>"},
		},
		{
			name:         "brタグが許可される",
			input:        "材料を切る<br>鍋で煮る",
			wantContains: []string{"<br>", "材料を切る", "鍋で煮る"},
		},
		{
			name:         "aタグが許可される",
			input:        `<a href="https://example.com/recipe">参考レシピ</a>`,
			wantContains: []string{"<a", "href", "https://example.com/recipe", "参考レシピ", "</a>"},
		},
		{
			name:         "ulタグとliタグが許可される",
			input:        "<ul><li>じゃがいも</li><li>玉ねぎ</li></ul>",
			wantContains: []string{"<ul>", "<li>", "じゃがいも", "玉ねぎ", "</li>", "</ul>"},
		},
		{
			name:         "olタグが許可される",
			input:        "<ol><li>炒める</li><li>煮込む</li></ol>",
			wantContains: []string{"<ol>", "炒める", "煮込む", "</ol>"},
		},
		{
			name:         "blockquoteタグが許可される",
			input:        "<blockquote>祖母直伝のコツ</blockquote>",
			wantContains: []string{"<blockquote>祖母直伝のコツ</blockquote>"},
		},
		{
			name:         "strongタグとemタグが許可される",
			input:        "<strong>弱火で</strong><em>じっくり</em>",
			wantContains: []string{"<strong>弱火で</strong>", "<em>じっくり</em>"},
		},
		{
			name:         "imgタグがhttps srcで許可される",
			input:        `<img src="https://example.com/dish.png" alt="完成写真">`,
			wantContains: []string{"<img", "src", "https://example.com/dish.png"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizer.Sanitize(tt.input)
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("Sanitize(%q) = %q, expected to contain %q", tt.input, got, want)
				}
			}
		})
	}
}

// TestSanitize_ForbiddenContent は危険なタグ・属性が除去されることを検証する。
func TestSanitize_ForbiddenContent(t *testing.T) {
	sanitizer := NewContentSanitizer()

	tests := []struct {
		name         string
		input        string
		wantAbsent   []string
		wantContains []string
	}{
		{
			name:         "scriptタグが除去される",
			input:        `<p>本文</p><script>alert('xss')</script><p>続き</p>`,
			wantAbsent:   []string{"<script", "</script>", "alert"},
			wantContains: []string{"本文", "続き"},
		},
		{
			name:         "iframeタグが除去される",
			input:        `<p>本文</p><iframe src="https://evil.com"></iframe>`,
			wantAbsent:   []string{"<iframe", "evil.com"},
			wantContains: []string{"本文"},
		},
		{
			name:         "styleタグが除去される",
			input:        `<p>本文</p><style>body{display:none}</style>`,
			wantAbsent:   []string{"<style", "display:none"},
			wantContains: []string{"本文"},
		},
		{
			name:         "divとspanは本文だけ残る",
			input:        `<div><span>本文</span></div>`,
			wantAbsent:   []string{"<div", "<span"},
			wantContains: []string{"本文"},
		},
		{
			name:       "formとinputが除去される",
			input:      `<form action="https://evil.com"><input type="text"></form>`,
			wantAbsent: []string{"<form", "<input"},
		},
		{
			name:       "onclickが除去される",
			input:      `<p onclick="alert('xss')">本文</p>`,
			wantAbsent: []string{"onclick", "alert"},
		},
		{
			name:       "onerrorが除去される",
			input:      `<img src="https://example.com/img.png" onerror="alert('xss')">`,
			wantAbsent: []string{"onerror", "alert"},
		},
		{
			name:       "http imgが拒否される",
			input:      `<img src="http://example.com/image.png" alt="平文">`,
			wantAbsent: []string{"http://example.com/image.png"},
		},
		{
			name:       "javascript imgが拒否される",
			input:      `<img src="javascript:alert('xss')" alt="XSS">`,
			wantAbsent: []string{"javascript:", "alert"},
		},
		{
			name:       "data URI imgが拒否される",
			input:      `<img src="data:image/png;base64,abc" alt="データ">`,
			wantAbsent: []string{"data:image"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizer.Sanitize(tt.input)
			for _, absent := range tt.wantAbsent {
				if strings.Contains(got, absent) {
					t.Errorf("Sanitize(%q) = %q, should NOT contain %q", tt.input, got, absent)
				}
			}
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("Sanitize(%q) = %q, expected to contain %q", tt.input, got, want)
				}
			}
		})
	}
}

// TestSanitize_LinkRelAttributes は外部リンクへの保護属性付与を検証する。
func TestSanitize_LinkRelAttributes(t *testing.T) {
	sanitizer := NewContentSanitizer()

	got := sanitizer.Sanitize(`<a href="https://example.com">リンク</a>`)
	if !strings.Contains(got, `target="_blank"`) {
		t.Errorf("Sanitize() = %q, target=_blank が付与されるべき", got)
	}
	if !strings.Contains(got, "noopener") || !strings.Contains(got, "noreferrer") {
		t.Errorf("Sanitize() = %q, rel に noopener noreferrer が付与されるべき", got)
	}
}

// TestSanitize_Idempotent は同一入力に同一出力が返ることを検証する。
func TestSanitize_Idempotent(t *testing.T) {
	sanitizer := NewContentSanitizer()
	input := `<p>本文</p><script>alert(1)</script><a href="https://example.com">x</a>`

	first := sanitizer.Sanitize(input)
	second := sanitizer.Sanitize(first)
	if first != second {
		t.Errorf("サニタイズは冪等であるべき: first = %q, second = %q", first, second)
	}
}

// TestSanitize_EmptyInput は空文字列に空文字列が返ることを検証する。
func TestSanitize_EmptyInput(t *testing.T) {
	sanitizer := NewContentSanitizer()
	if got := sanitizer.Sanitize(""); got != "" {
		t.Errorf("Sanitize(\"\") = %q, want \"\"", got)
	}
}

// TestSanitizeStrict はタグが全て除去されテキストのみ残ることを検証する。
func TestSanitizeStrict(t *testing.T) {
	sanitizer := NewContentSanitizer()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"プレーンテキストはそのまま", "肉じゃが", "肉じゃが"},
		{"pタグも除去される", "<p>肉じゃが</p>", "肉じゃが"},
		{"scriptは中身ごと除去される", `名前<script>alert(1)</script>`, "名前"},
		{"空文字列", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizer.SanitizeStrict(tt.input); got != tt.want {
				t.Errorf("SanitizeStrict(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
