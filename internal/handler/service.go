package handler

import (
	"context"
	"io"

	"github.com/stacklet/stacklet-service/internal/model"
	"github.com/stacklet/stacklet-service/internal/service"
	"github.com/stacklet/stacklet-service/pkg/openlibrary"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type BookService interface {
	RegisterProfile(ctx context.Context, req model.CreateProfileRequest) (model.ProfileView, error)
	CreateBook(ctx context.Context, req model.CreateBookRequest) (model.BookView, error)
	ListBooks(ctx context.Context, email string, f model.BookFilters, sort model.SortOption) (model.ListBooksResponse, error)
	UpdateBook(ctx context.Context, id string, req model.UpdateBookRequest) (model.BookView, error)
	DeleteBook(ctx context.Context, id, email string) error
	ImportBooks(ctx context.Context, email string, r io.Reader) (model.ImportResult, error)
}

type CoverFinder interface {
	FindCover(ctx context.Context, title, author string) (string, error)
}

var _ BookService = (*service.Service)(nil)
var _ CoverFinder = (*openlibrary.Client)(nil)
