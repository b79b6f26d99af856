package mocks

import (
	"context"

	"github.com/cinex/cinema-ticketing/internal/domain"
)

type MockMovieRepo struct {
	domain.MovieRepository
	GetByIdFunc func(ctx context.Context, id int) (*domain.Movie, error)
}

func (m *MockMovieRepo) GetById(ctx context.Context, id int) (*domain.Movie, error) {
	return m.GetByIdFunc(ctx, id)
}
