// Package storage はアップロード画像のファイルシステム保存を提供する。
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hitoshi/foodhub/internal/model"
)

// allowedExtensions はアップロードを受け付ける画像拡張子。
var allowedExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".webp": {},
}

// ImageStore は画像保存のインターフェース。
type ImageStore interface {
	// SaveAvatar はユーザーのアバター画像を保存し、ファイル名を返す。
	// 同一ユーザーの再アップロードは同名ファイルを上書きする。
	SaveAvatar(userID int64, ext string, r io.Reader) (string, error)

	// SaveRecipeImage はレシピ画像を保存し、ファイル名を返す。
	// ファイル名には保存時刻が入るため、同一レシピでも毎回別名になる。
	SaveRecipeImage(ownerID int64, ext string, r io.Reader) (string, error)
}

// FileImageStore はImageStoreのローカルファイルシステム実装。
type FileImageStore struct {
	dir string
	now func() time.Time
}

// FileImageStoreがImageStoreを満たすことはコンパイル時チェックで保証する
var _ ImageStore = (*FileImageStore)(nil)

// NewFileImageStore はFileImageStoreを生成し、保存先ディレクトリを作成する。
func NewFileImageStore(dir string) (*FileImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &FileImageStore{dir: dir, now: time.Now}, nil
}

// Dir は保存先ディレクトリを返す。静的配信の設定に使う。
func (s *FileImageStore) Dir() string {
	return s.dir
}

// SaveAvatar はアバター画像を user_<id><ext> として保存する。
func (s *FileImageStore) SaveAvatar(userID int64, ext string, r io.Reader) (string, error) {
	ext, err := normalizeExtension(ext)
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("user_%d%s", userID, ext)
	if err := s.write(name, r); err != nil {
		return "", err
	}
	return name, nil
}

// SaveRecipeImage はレシピ画像を recipe_<ownerID>_<unix><ext> として保存する。
func (s *FileImageStore) SaveRecipeImage(ownerID int64, ext string, r io.Reader) (string, error) {
	ext, err := normalizeExtension(ext)
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("recipe_%d_%d%s", ownerID, s.now().Unix(), ext)
	if err := s.write(name, r); err != nil {
		return "", err
	}
	return name, nil
}

func (s *FileImageStore) write(name string, r io.Reader) error {
	path := filepath.Join(s.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		// 書きかけのファイルは残さない
		_ = os.Remove(path)
		return fmt.Errorf("failed to write image file: %w", err)
	}
	return nil
}

// normalizeExtension は拡張子を小文字に正規化し、許可リストと照合する。
func normalizeExtension(ext string) (string, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if _, ok := allowedExtensions[ext]; !ok {
		return "", model.NewUnsupportedImageError(ext)
	}
	return ext, nil
}
