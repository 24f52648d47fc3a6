package queries

import (
	"context"
)

type CatalogQueries interface {
	List(ctx context.Context, search string, limit int) ([]*ProductView, error)
	GetByID(ctx context.Context, id string) (*ProductView, error)
}

type CatalogViewRepo interface {
	Search(ctx context.Context, search string, limit int) ([]*ProductView, error)
	FindByID(ctx context.Context, id string) (*ProductView, error)
}

type catalogQueriesImpl struct {
	repo CatalogViewRepo
}

func NewCatalogQueries(repo CatalogViewRepo) CatalogQueries {
	return &catalogQueriesImpl{repo: repo}
}

func (q *catalogQueriesImpl) List(ctx context.Context, search string, limit int) ([]*ProductView, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return q.repo.Search(ctx, search, limit)
}

func (q *catalogQueriesImpl) GetByID(ctx context.Context, id string) (*ProductView, error) {
	return q.repo.FindByID(ctx, id)
}
