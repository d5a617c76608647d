package model

import (
	"database/sql"
	"time"
)

type Profile struct {
	ID        string         `json:"id" db:"id"`
	Email     string         `json:"email" db:"email"`
	FullName  sql.NullString `json:"-" db:"full_name"`
	CreatedAt time.Time      `json:"-" db:"created_at"`
	UpdatedAt time.Time      `json:"-" db:"updated_at"`
}

// Book is the persisted shape of a library entry.
type Book struct {
	ID        string         `db:"id"`
	UserID    string         `db:"user_id"`
	Title     string         `db:"title"`
	Author    string         `db:"author"`
	Rating    sql.NullInt32  `db:"rating"`
	CoverURL  sql.NullString `db:"cover_url"`
	Summary   sql.NullString `db:"summary"`
	Category  string         `db:"category"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt sql.NullTime   `db:"updated_at"`
}

// BookView is the shape books take on the wire: camelCase field names,
// category exposed as genre, created_at exposed as date_added.
type BookView struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Author    string     `json:"author"`
	Rating    *int       `json:"rating"`
	CoverURL  *string    `json:"coverUrl"`
	Summary   *string    `json:"summary"`
	Genre     string     `json:"genre"`
	DateAdded time.Time  `json:"date_added"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type ProfileView struct {
	ID       string  `json:"id"`
	FullName *string `json:"full_name"`
	Email    string  `json:"email"`
}

type CreateProfileRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	FullName *string `json:"full_name"`
}

type CreateBookRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Title    string  `json:"title" validate:"required"`
	Author   string  `json:"author" validate:"required"`
	Rating   *int    `json:"rating" validate:"omitempty,min=1,max=5"`
	CoverURL *string `json:"coverUrl"`
	Summary  *string `json:"summary"`
	Genre    *string `json:"genre"`
}

// UpdateBookRequest carries an arbitrary subset of mutable fields.
// A nil field means "leave unchanged".
type UpdateBookRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Title    *string `json:"title"`
	Author   *string `json:"author"`
	Rating   *int    `json:"rating" validate:"omitempty,min=1,max=5"`
	CoverURL *string `json:"coverUrl"`
	Summary  *string `json:"summary"`
	Genre    *string `json:"genre"`
}

type DeleteBookRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// BookFilters are conjunctive case-insensitive substring filters.
type BookFilters struct {
	Genre  string
	Title  string
	Author string
}

type SortOption string

const (
	SortCreated SortOption = "created"
	SortUpdated SortOption = "updated"
)

type ListBooksResponse struct {
	User       ProfileView `json:"user"`
	Books      []BookView  `json:"books"`
	TotalBooks int         `json:"total_books"`
}

type ImportResult struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}

const DefaultCategory = "General"
