package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/foodhub/internal/model"
)

func newTestStore(t *testing.T) *FileImageStore {
	t.Helper()
	store, err := NewFileImageStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileImageStore() error = %v", err)
	}
	return store
}

// TestSaveAvatar はアバターの保存と上書きを検証する。
func TestSaveAvatar(t *testing.T) {
	store := newTestStore(t)

	name, err := store.SaveAvatar(42, ".png", strings.NewReader("first"))
	if err != nil {
		t.Fatalf("SaveAvatar() error = %v", err)
	}
	if name != "user_42.png" {
		t.Errorf("name = %q, want %q", name, "user_42.png")
	}

	// 再アップロードは同名ファイルを上書きする
	if _, err := store.SaveAvatar(42, ".png", strings.NewReader("second")); err != nil {
		t.Fatalf("SaveAvatar() 2回目 error = %v", err)
	}
	data, err := os.ReadFile(filepath.Join(store.Dir(), name))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "second" {
		t.Errorf("content = %q, want %q", data, "second")
	}
}

// TestSaveAvatar_ExtensionNormalized は拡張子の正規化を検証する。
func TestSaveAvatar_ExtensionNormalized(t *testing.T) {
	store := newTestStore(t)

	tests := []struct {
		ext  string
		want string
	}{
		{".PNG", "user_1.png"},
		{"jpg", "user_1.jpg"},
		{" .JPEG ", "user_1.jpeg"},
		{"webp", "user_1.webp"},
	}
	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			name, err := store.SaveAvatar(1, tt.ext, strings.NewReader("x"))
			if err != nil {
				t.Fatalf("SaveAvatar(%q) error = %v", tt.ext, err)
			}
			if name != tt.want {
				t.Errorf("name = %q, want %q", name, tt.want)
			}
		})
	}
}

// TestSaveAvatar_UnsupportedExtension は許可リスト外の拡張子の拒否を検証する。
func TestSaveAvatar_UnsupportedExtension(t *testing.T) {
	store := newTestStore(t)

	for _, ext := range []string{".gif", ".svg", ".exe", "", ".php"} {
		t.Run(ext, func(t *testing.T) {
			_, err := store.SaveAvatar(1, ext, strings.NewReader("x"))
			var apiErr *model.APIError
			if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUnsupportedImage {
				t.Errorf("err = %v, want UNSUPPORTED_IMAGE", err)
			}
		})
	}
}

// TestSaveRecipeImage はレシピ画像の命名規則を検証する。
func TestSaveRecipeImage(t *testing.T) {
	store := newTestStore(t)
	fixed := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	name, err := store.SaveRecipeImage(7, ".jpg", strings.NewReader("photo"))
	if err != nil {
		t.Fatalf("SaveRecipeImage() error = %v", err)
	}
	want := "recipe_7_" + "1788264000" + ".jpg"
	if name != want {
		t.Errorf("name = %q, want %q", name, want)
	}
	if _, err := os.Stat(filepath.Join(store.Dir(), name)); err != nil {
		t.Errorf("保存されたファイルが存在すべき: %v", err)
	}
}
