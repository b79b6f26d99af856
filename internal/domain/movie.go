package domain

import (
	"context"
)

type Movie struct {
	ID       int
	Title    string
	Duration int
}

type Cinema struct {
	ID   int
	Name string
}

type MovieRepository interface {
	GetById(ctx context.Context, id int) (*Movie, error)
}
