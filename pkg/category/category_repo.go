package category

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type CategoryRepo interface {
	Store(ctx context.Context, userId int, category Category) (int, error)
	GetAll(ctx context.Context, userId int) ([]Category, error)
	Update(ctx context.Context, userId int, category Category) (bool, error)
	Delete(ctx context.Context, userId int, categoryId int) (bool, error)
}

type CategoryRepoImpl struct {
	db *pgxpool.Pool
}

func NewCategoryRepo(db *pgxpool.Pool) *CategoryRepoImpl {
	return &CategoryRepoImpl{db: db}
}

func (c CategoryRepoImpl) Store(ctx context.Context, userId int, category Category) (int, error) {
	query := `INSERT INTO category (name, icon, user_id) VALUES ($1, $2, $3) RETURNING id`

	var lastInsertID int
	err := c.db.QueryRow(ctx, query, category.Name, category.Icon, userId).Scan(&lastInsertID)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return 0, err
	}

	return lastInsertID, nil
}

func (c CategoryRepoImpl) GetAll(ctx context.Context, userId int) ([]Category, error) {
	query := `SELECT id, name, icon FROM category WHERE user_id = $1 ORDER BY name`
	rows, err := c.db.Query(ctx, query, userId)
	if err != nil {
		err := fmt.Errorf("could not query categories: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var category Category
		var icon sql.NullString
		if err := rows.Scan(&category.Id, &category.Name, &icon); err != nil {
			err := fmt.Errorf("could not scan category: %w", err)
			log.Error(err)
			return nil, err
		}
		category.Icon = icon.String
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}

	return categories, nil
}

func (c CategoryRepoImpl) Update(ctx context.Context, userId int, category Category) (bool, error) {
	query := "UPDATE category SET name = $1, icon = $2 WHERE id = $3 AND user_id = $4"
	result, err := c.db.Exec(ctx, query, category.Name, category.Icon, category.Id, userId)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

func (c CategoryRepoImpl) Delete(ctx context.Context, userId int, categoryId int) (bool, error) {
	query := "DELETE FROM category WHERE id = $1 AND user_id = $2"
	result, err := c.db.Exec(ctx, query, categoryId, userId)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}
