package service

import (
	"context"

	"github.com/pkg/errors"

	"github.com/stacklet/stacklet-service/internal/errs"
	"github.com/stacklet/stacklet-service/internal/model"
	"github.com/stacklet/stacklet-service/internal/repository"
	"go.uber.org/zap"
)

type Service struct {
	log  *zap.Logger
	repo repository.Repository
}

func NewService(repo repository.Repository, log *zap.Logger) *Service {
	return &Service{
		log:  log,
		repo: repo,
	}
}

func (s *Service) RegisterProfile(ctx context.Context, req model.CreateProfileRequest) (model.ProfileView, error) {
	profile, err := s.repo.CreateProfile(ctx, req.Email, req.FullName)
	if err != nil {
		return model.ProfileView{}, err
	}
	return profile.ToView(), nil
}

// CreateBook resolves the owner, enforces per-owner title uniqueness and
// persists the mapped record. The pre-check is a fast path only; the unique
// index behind repository.CreateBook is the source of truth, so a concurrent
// create racing past the check still comes back as ErrDuplicate.
func (s *Service) CreateBook(ctx context.Context, req model.CreateBookRequest) (model.BookView, error) {
	if err := validateRating(req.Rating); err != nil {
		return model.BookView{}, err
	}
	profile, err := s.repo.GetProfileByEmail(ctx, req.Email)
	if err != nil {
		return model.BookView{}, err
	}
	exists, err := s.repo.BookExistsByTitle(ctx, profile.ID, req.Title)
	if err != nil {
		return model.BookView{}, errors.Wrap(err, "duplicate check")
	}
	if exists {
		return model.BookView{}, errs.ErrDuplicate
	}
	book, err := s.repo.CreateBook(ctx, req.ToBook(profile.ID))
	if err != nil {
		return model.BookView{}, err
	}
	return book.ToView(), nil
}

func (s *Service) ListBooks(ctx context.Context, email string, f model.BookFilters, sort model.SortOption) (model.ListBooksResponse, error) {
	profile, err := s.repo.GetProfileByEmail(ctx, email)
	if err != nil {
		return model.ListBooksResponse{}, err
	}
	books, err := s.repo.ListBooks(ctx, profile.ID, f, sort)
	if err != nil {
		return model.ListBooksResponse{}, err
	}
	views := make([]model.BookView, 0, len(books))
	for _, b := range books {
		views = append(views, b.ToView())
	}
	return model.ListBooksResponse{
		User:       profile.ToView(),
		Books:      views,
		TotalBooks: len(views),
	}, nil
}

// UpdateBook patches the fields present in req onto the stored record.
// A missing record and a record held by another owner are both reported
// as ErrForbidden so callers cannot probe for existence.
func (s *Service) UpdateBook(ctx context.Context, id string, req model.UpdateBookRequest) (model.BookView, error) {
	if err := validateRating(req.Rating); err != nil {
		return model.BookView{}, err
	}
	book, err := s.fetchOwned(ctx, req.Email, id)
	if err != nil {
		return model.BookView{}, err
	}
	updated, err := s.repo.UpdateBook(ctx, req.Apply(book))
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.BookView{}, errs.ErrForbidden
		}
		return model.BookView{}, err
	}
	return updated.ToView(), nil
}

func (s *Service) DeleteBook(ctx context.Context, id, email string) error {
	if _, err := s.fetchOwned(ctx, email, id); err != nil {
		return err
	}
	if err := s.repo.DeleteBook(ctx, id); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return errs.ErrForbidden
		}
		return err
	}
	return nil
}

func (s *Service) fetchOwned(ctx context.Context, email, id string) (model.Book, error) {
	profile, err := s.repo.GetProfileByEmail(ctx, email)
	if err != nil {
		return model.Book{}, err
	}
	book, err := s.repo.GetBook(ctx, id)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.Book{}, errs.ErrForbidden
		}
		return model.Book{}, err
	}
	if book.UserID != profile.ID {
		return model.Book{}, errs.ErrForbidden
	}
	return book, nil
}

func validateRating(rating *int) error {
	if rating != nil && (*rating < 1 || *rating > 5) {
		return errs.ErrRating
	}
	return nil
}
