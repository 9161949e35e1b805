package domain

import (
	"context"
	"errors"
)

type Service interface {
	List(ctx context.Context) (ListResponse, error)
	GetByCode(ctx context.Context, code string) (*Item, error)
}

type ListResponse struct {
	Items []Item `json:"items"`
}

var (
	ErrInvalidCode = errors.New("invalid_code")
	ErrNotFound    = errors.New("item_not_found")
)
