package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"

	sq "github.com/Masterminds/squirrel"

	"github.com/jmoiron/sqlx"
	"github.com/stacklet/stacklet-service/internal/errs"
	"github.com/stacklet/stacklet-service/internal/model"
	"go.uber.org/zap"
)

//go:generate go run github.com/golang/mock/mockgen -source=repository.go -destination=mocks/mock.go

type Repository interface {
	GetProfileByEmail(ctx context.Context, email string) (model.Profile, error)
	CreateProfile(ctx context.Context, email string, fullName *string) (model.Profile, error)
	BookExistsByTitle(ctx context.Context, userID, title string) (bool, error)
	CreateBook(ctx context.Context, book model.Book) (model.Book, error)
	GetBook(ctx context.Context, id string) (model.Book, error)
	ListBooks(ctx context.Context, userID string, f model.BookFilters, sort model.SortOption) ([]model.Book, error)
	UpdateBook(ctx context.Context, book model.Book) (model.Book, error)
	DeleteBook(ctx context.Context, id string) error
}

type repository struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewRepository(db *sqlx.DB, log *zap.Logger) (*repository, error) {
	return &repository{
		db:  db,
		log: log.Named("repo"),
	}, nil
}

const (
	profilesTableName = `profiles`
	booksTableName    = `books`
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// GetProfileByEmail resolves an owner by exact email match.
func (r *repository) GetProfileByEmail(ctx context.Context, email string) (model.Profile, error) {
	if email == "" {
		return model.Profile{}, errs.ErrEmptyEmail
	}
	query, args, err := qb.Select("id", "email", "full_name", "created_at", "updated_at").
		From(profilesTableName).
		Where(sq.Eq{"email": email}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Profile{}, err
	}

	var profile model.Profile
	if err := r.db.GetContext(ctx, &profile, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Profile{}, errs.ErrNotFound
		}
		return model.Profile{}, err
	}
	return profile, nil
}

func (r *repository) CreateProfile(ctx context.Context, email string, fullName *string) (model.Profile, error) {
	var name sql.NullString
	if fullName != nil && *fullName != "" {
		name = sql.NullString{String: *fullName, Valid: true}
	}
	now := time.Now().UTC()
	query, args, err := qb.Insert(profilesTableName).
		Columns("id", "email", "full_name", "created_at", "updated_at").
		Values(uuid.New(), email, name, now, now).
		Suffix("returning *").
		ToSql()
	if err != nil {
		return model.Profile{}, err
	}

	var profile model.Profile
	if err := r.db.GetContext(ctx, &profile, query, args...); err != nil {
		if isUniqueViolation(err) {
			return model.Profile{}, errs.ErrEmailTaken
		}
		r.log.Error("CreateProfile", zap.String("q", query), zap.Any("args", args))
		return model.Profile{}, err
	}
	return profile, nil
}

// BookExistsByTitle reports whether the owner already holds a book with
// the given title, compared case-insensitively on the trimmed title.
func (r *repository) BookExistsByTitle(ctx context.Context, userID, title string) (bool, error) {
	query, args, err := qb.Select("1").
		From(booksTableName).
		Where(sq.Eq{"user_id": userID}).
		Where("lower(btrim(title)) = lower(btrim(?))", title).
		Limit(1).
		ToSql()
	if err != nil {
		return false, err
	}

	var one int
	if err := r.db.GetContext(ctx, &one, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *repository) CreateBook(ctx context.Context, book model.Book) (model.Book, error) {
	query, args, err := qb.Insert(booksTableName).
		Columns("id", "user_id", "title", "author", "rating", "cover_url", "summary", "category", "created_at").
		Values(uuid.New(), book.UserID, book.Title, book.Author, book.Rating, book.CoverURL, book.Summary, book.Category, time.Now().UTC()).
		Suffix("returning *").
		ToSql()
	if err != nil {
		return model.Book{}, err
	}

	var created model.Book
	if err := r.db.GetContext(ctx, &created, query, args...); err != nil {
		if isUniqueViolation(err) {
			return model.Book{}, errs.ErrDuplicate
		}
		r.log.Error("CreateBook", zap.String("q", query), zap.Any("args", args))
		return model.Book{}, err
	}
	return created, nil
}

func (r *repository) GetBook(ctx context.Context, id string) (model.Book, error) {
	query, args, err := qb.Select("id", "user_id", "title", "author", "rating", "cover_url", "summary", "category", "created_at", "updated_at").
		From(booksTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}

	var book model.Book
	if err := r.db.GetContext(ctx, &book, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Book{}, errs.ErrNotFound
		}
		return model.Book{}, err
	}
	return book, nil
}

func (r *repository) ListBooks(ctx context.Context, userID string, f model.BookFilters, sort model.SortOption) ([]model.Book, error) {
	q := qb.Select("id", "user_id", "title", "author", "rating", "cover_url", "summary", "category", "created_at", "updated_at").
		From(booksTableName).
		Where(sq.Eq{"user_id": userID})

	if f.Genre != "" {
		q = q.Where(sq.ILike{"category": contains(f.Genre)})
	}
	if f.Title != "" {
		q = q.Where(sq.ILike{"title": contains(f.Title)})
	}
	if f.Author != "" {
		q = q.Where(sq.ILike{"author": contains(f.Author)})
	}

	switch sort {
	case model.SortUpdated:
		q = q.OrderBy("coalesce(updated_at, created_at) desc")
	default:
		q = q.OrderBy("created_at desc")
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	r.log.Debug("ListBooks", zap.String("query", query), zap.Any("args", args))

	var books []model.Book
	if err := r.db.SelectContext(ctx, &books, query, args...); err != nil {
		return nil, err
	}
	return books, nil
}

func (r *repository) UpdateBook(ctx context.Context, book model.Book) (model.Book, error) {
	query, args, err := qb.Update(booksTableName).
		Set("title", book.Title).
		Set("author", book.Author).
		Set("rating", book.Rating).
		Set("cover_url", book.CoverURL).
		Set("summary", book.Summary).
		Set("category", book.Category).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": book.ID}).
		Suffix("returning *").
		ToSql()
	if err != nil {
		return model.Book{}, err
	}

	var updated model.Book
	if err := r.db.GetContext(ctx, &updated, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Book{}, errs.ErrNotFound
		}
		if isUniqueViolation(err) {
			return model.Book{}, errs.ErrDuplicate
		}
		r.log.Error("UpdateBook", zap.String("q", query), zap.Any("args", args))
		return model.Book{}, err
	}
	return updated, nil
}

func (r *repository) DeleteBook(ctx context.Context, id string) error {
	query, args, err := qb.Delete(booksTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func contains(s string) string {
	return "%" + strings.ReplaceAll(strings.ReplaceAll(s, "%", `\%`), "_", `\_`) + "%"
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
