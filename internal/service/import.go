package service

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/stacklet/stacklet-service/internal/model"
	"go.uber.org/zap"
)

// ImportBooks reads a CSV stream with a header row and adds each row to the
// owner's library. Rows whose title already exists are skipped rather than
// rejected, as are rows missing title or author; the result reports both
// counts.
func (s *Service) ImportBooks(ctx context.Context, email string, r io.Reader) (model.ImportResult, error) {
	profile, err := s.repo.GetProfileByEmail(ctx, email)
	if err != nil {
		return model.ImportResult{}, err
	}

	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return model.ImportResult{}, errors.Wrap(err, "read csv header")
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}

	var res model.ImportResult
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			res.Skipped++
			break
		}

		req := rowToRequest(cols, row)
		if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Author) == "" {
			res.Skipped++
			continue
		}

		exists, err := s.repo.BookExistsByTitle(ctx, profile.ID, req.Title)
		if err != nil {
			return res, errors.Wrap(err, "duplicate check")
		}
		if exists {
			res.Skipped++
			continue
		}

		if _, err := s.repo.CreateBook(ctx, req.ToBook(profile.ID)); err != nil {
			s.log.Warn("import: add book", zap.String("title", req.Title), zap.Error(err))
			res.Skipped++
			continue
		}
		res.Added++
	}
	return res, nil
}

func rowToRequest(cols map[string]int, row []string) model.CreateBookRequest {
	field := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	req := model.CreateBookRequest{
		Title:  field("title"),
		Author: field("author"),
	}
	if v := field("rating"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 && n <= 5 {
			req.Rating = &n
		}
	}
	if v := field("coverurl"); v != "" {
		req.CoverURL = &v
	}
	if v := field("summary"); v != "" {
		req.Summary = &v
	}
	if v := field("genre"); v != "" {
		req.Genre = &v
	}
	return req
}
