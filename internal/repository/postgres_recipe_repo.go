package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/foodhub/internal/model"
)

// PostgresRecipeRepo はPostgreSQLを使用したレシピリポジトリ。
type PostgresRecipeRepo struct {
	db *sql.DB
}

// NewPostgresRecipeRepo はPostgresRecipeRepoを生成する。
func NewPostgresRecipeRepo(db *sql.DB) *PostgresRecipeRepo {
	return &PostgresRecipeRepo{db: db}
}

// Create はレシピを作成し、採番されたIDを返す。
func (r *PostgresRecipeRepo) Create(ctx context.Context, recipe *model.Recipe) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO recipes (user_id, title, description, ingredients, steps, image_file, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		recipe.UserID, recipe.Title, recipe.Description, recipe.Ingredients,
		recipe.Steps, recipe.ImageFile, recipe.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert recipe: %w", err)
	}
	return id, nil
}

// SetImageFile はレシピの画像ファイル名を記録する。
func (r *PostgresRecipeRepo) SetImageFile(ctx context.Context, recipeID int64, imageFile string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE recipes SET image_file = $1 WHERE id = $2`,
		imageFile, recipeID,
	)
	if err != nil {
		return fmt.Errorf("failed to set recipe image: %w", err)
	}
	return requireRowsAffected(result, "recipe", recipeID)
}

// ListByUser は指定ユーザーのレシピを新しい順に返す。
func (r *PostgresRecipeRepo) ListByUser(ctx context.Context, userID int64) ([]*model.Recipe, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, title, description, ingredients, steps, image_file, created_at
		 FROM recipes
		 WHERE user_id = $1
		 ORDER BY id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	defer rows.Close()

	var result []*model.Recipe
	for rows.Next() {
		recipe := &model.Recipe{}
		err := rows.Scan(
			&recipe.ID, &recipe.UserID, &recipe.Title, &recipe.Description,
			&recipe.Ingredients, &recipe.Steps, &recipe.ImageFile, &recipe.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recipe row: %w", err)
		}
		result = append(result, recipe)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recipe rows: %w", err)
	}

	return result, nil
}

// compile-time interface check
var _ RecipeRepository = (*PostgresRecipeRepo)(nil)
