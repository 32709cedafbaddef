package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-WorkshopBooking/internal/domain"
	"github.com/m04kA/SMC-WorkshopBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-WorkshopBooking/pkg/psqlbuilder"
)

// Repository чтение услуг и товаров (таблицами владеет админка)
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория каталога
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetService получает услугу по ID
func (r *Repository) GetService(ctx context.Context, id int64) (*domain.Service, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "name", "current_price", "has_products").
		From("services").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetService - build select query: %v", ErrBuildQuery, err)
	}

	var service domain.Service
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&service.ID,
		&service.Name,
		&service.BasePrice,
		&service.AllowsSubstitution,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetService - scan service: %w", ErrScanRow, err)
	}

	return &service, nil
}

// GetProducts возвращает товары услуги из списка productIDs
// Отсутствующие или чужие товары в результат не попадают
func (r *Repository) GetProducts(ctx context.Context, serviceID int64, productIDs []int64) ([]domain.Product, error) {
	if len(productIDs) == 0 {
		return []domain.Product{}, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "service_id", "name", "price").
		From("service_products").
		Where(squirrel.Eq{"service_id": serviceID}).
		Where(squirrel.Eq{"id": productIDs}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetProducts - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetProducts - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0, len(productIDs))
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.ServiceID, &p.Name, &p.Price); err != nil {
			return nil, fmt.Errorf("%w: GetProducts - scan row: %w", ErrScanRow, err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetProducts - rows error: %w", ErrScanRow, err)
	}

	return products, nil
}
