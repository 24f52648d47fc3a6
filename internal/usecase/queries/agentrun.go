package queries

import (
	"context"

	"github.com/google/uuid"
)

type AgentRunQueries interface {
	GetByID(ctx context.Context, id uuid.UUID) (*AgentRunView, error)
}

type AgentRunViewRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*AgentRunView, error)
}

type agentRunQueriesImpl struct {
	repo AgentRunViewRepo
}

func NewAgentRunQueries(repo AgentRunViewRepo) AgentRunQueries {
	return &agentRunQueriesImpl{repo: repo}
}

func (q *agentRunQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*AgentRunView, error) {
	return q.repo.FindByID(ctx, id)
}
