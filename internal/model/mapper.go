package model

import (
	"database/sql"
	"strings"
	"time"
)

// ToBook maps the wire shape to the persisted shape. Title, author and
// summary are trimmed; a blank genre falls back to DefaultCategory.
func (r CreateBookRequest) ToBook(userID string) Book {
	return Book{
		UserID:   userID,
		Title:    strings.TrimSpace(r.Title),
		Author:   strings.TrimSpace(r.Author),
		Rating:   toNullInt32(r.Rating),
		CoverURL: toNullString(r.CoverURL),
		Summary:  toNullString(trimmed(r.Summary)),
		Category: category(r.Genre),
	}
}

// Apply patches the fields present in the request onto b, leaving nil
// fields unchanged. The record id, owner and created timestamp never move.
func (r UpdateBookRequest) Apply(b Book) Book {
	if r.Title != nil {
		b.Title = strings.TrimSpace(*r.Title)
	}
	if r.Author != nil {
		b.Author = strings.TrimSpace(*r.Author)
	}
	if r.Rating != nil {
		b.Rating = toNullInt32(r.Rating)
	}
	if r.CoverURL != nil {
		b.CoverURL = toNullString(r.CoverURL)
	}
	if r.Summary != nil {
		b.Summary = toNullString(trimmed(r.Summary))
	}
	if r.Genre != nil {
		b.Category = category(r.Genre)
	}
	return b
}

func (b Book) ToView() BookView {
	return BookView{
		ID:        b.ID,
		Title:     b.Title,
		Author:    b.Author,
		Rating:    fromNullInt32(b.Rating),
		CoverURL:  fromNullString(b.CoverURL),
		Summary:   fromNullString(b.Summary),
		Genre:     b.Category,
		DateAdded: b.CreatedAt,
		UpdatedAt: fromNullTime(b.UpdatedAt),
	}
}

func (p Profile) ToView() ProfileView {
	return ProfileView{
		ID:       p.ID,
		FullName: fromNullString(p.FullName),
		Email:    p.Email,
	}
}

func category(genre *string) string {
	if genre == nil || strings.TrimSpace(*genre) == "" {
		return DefaultCategory
	}
	return strings.TrimSpace(*genre)
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

func toNullString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func toNullInt32(i *int) sql.NullInt32 {
	if i == nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(*i), Valid: true}
}

func fromNullInt32(i sql.NullInt32) *int {
	if !i.Valid {
		return nil
	}
	v := int(i.Int32)
	return &v
}

func fromNullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	return &t.Time
}
