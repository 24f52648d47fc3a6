package queries

import (
	"context"
)

type OrderQueries interface {
	GetByID(ctx context.Context, id string) (*OrderView, error)
}

type OrderViewRepo interface {
	FindByID(ctx context.Context, id string) (*OrderView, error)
}

type orderQueriesImpl struct {
	repo OrderViewRepo
}

func NewOrderQueries(repo OrderViewRepo) OrderQueries {
	return &orderQueriesImpl{repo: repo}
}

func (q *orderQueriesImpl) GetByID(ctx context.Context, id string) (*OrderView, error) {
	return q.repo.FindByID(ctx, id)
}
