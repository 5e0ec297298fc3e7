// Package suggestion は材料リストからのレシピ提案を提供する。
// 外部の補完APIが設定されている場合はそれを使い、未設定または
// 失敗時は決定的なオフライン生成へフォールバックする。
package suggestion

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hitoshi/foodhub/internal/model"
)

// offlineSummary はオフライン生成の固定サマリー。
const offlineSummary = "A speedy, flexible recipe generated offline when no API key is set."

// offlineSteps はオフライン生成の固定手順。
var offlineSteps = []string{
	"Prep all ingredients and heat a pan.",
	"Sauté aromatics, add mains, and season to taste.",
	"Simmer until flavors meld. Serve hot.",
}

// Offline は材料リストから決定的にレシピ案を生成する。純粋関数で、
// 同一入力には常に同一出力を返す。タイトルは先頭2つの材料から組み立て、
// 材料が空の場合は汎用タイトルになる。
func Offline(ingredients []string) model.RecipeSuggestion {
	cleaned := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		if s := strings.TrimSpace(ing); s != "" {
			cleaned = append(cleaned, s)
		}
	}

	title := "Quick Pantry Surprise"
	if len(cleaned) > 0 {
		head := cleaned
		if len(head) > 2 {
			head = head[:2]
		}
		titled := make([]string, len(head))
		for i, ing := range head {
			titled[i] = capitalize(ing)
		}
		title = "Quick " + strings.Join(titled, " & ") + " Surprise"
	}

	steps := make([]string, len(offlineSteps))
	copy(steps, offlineSteps)

	return model.RecipeSuggestion{
		Title:       title,
		Summary:     offlineSummary,
		Ingredients: cleaned,
		Steps:       steps,
	}
}

// capitalize は材料名の先頭1文字を大文字にする。タイトル組み立て専用で、
// Ingredientsリスト自体は入力どおりに保つ。
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// ParseIngredients はカンマ区切りの材料入力をトリム済みの
// 空でない要素のリストに分解する。
func ParseIngredients(raw string) []string {
	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			result = append(result, s)
		}
	}
	return result
}
