package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stacklet/stacklet-service/internal/errs"
	"github.com/stacklet/stacklet-service/internal/handler"
	"github.com/stacklet/stacklet-service/internal/model"
	"github.com/stacklet/stacklet-service/pkg/validate"

	service_mocks "github.com/stacklet/stacklet-service/internal/handler/mocks"
)

func intPtr(i int) *int { return &i }

func newTestBookView() model.BookView {
	return model.BookView{
		ID:        "0b44b4a0-0000-4000-8000-000000000001",
		Title:     "Dune",
		Author:    "Frank Herbert",
		Rating:    intPtr(5),
		Genre:     "General",
		DateAdded: time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC),
	}
}

const testBookJSON = `{"id":"0b44b4a0-0000-4000-8000-000000000001","title":"Dune","author":"Frank Herbert","rating":5,"coverUrl":null,"summary":null,"genre":"General","date_added":"2024-01-02T15:04:05Z","updated_at":null}`

func TestHandler_ListBooks(t *testing.T) {
	t.Parallel()
	type input struct {
		email  string
		genre  string
		author string
	}
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockBookService, inp input)

	var tests = []struct {
		name         string
		mockBehavior mockBehavior
		input        input
		response     response
	}{
		{
			name: "ok",
			mockBehavior: func(r *service_mocks.MockBookService, inp input) {
				r.EXPECT().
					ListBooks(context.Background(), inp.email, model.BookFilters{Genre: inp.genre, Author: inp.author}, model.SortCreated).
					Return(model.ListBooksResponse{
						User:       model.ProfileView{ID: "u1", Email: inp.email},
						Books:      []model.BookView{newTestBookView()},
						TotalBooks: 1,
					}, nil)
			},
			input: input{email: "a@x.com", genre: "gen", author: "herb"},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"user":{"id":"u1","full_name":null,"email":"a@x.com"},"books":[` + testBookJSON + `],"total_books":1}`,
			},
		},
		{
			name:         "err. email required",
			mockBehavior: func(r *service_mocks.MockBookService, inp input) {},
			input:        input{email: ""},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"error":"Bad Request","message":"email parameter is required"}`,
			},
		},
		{
			name: "err. unknown email",
			mockBehavior: func(r *service_mocks.MockBookService, inp input) {
				r.EXPECT().
					ListBooks(context.Background(), inp.email, model.BookFilters{Genre: inp.genre, Author: inp.author}, model.SortCreated).
					Return(model.ListBooksResponse{}, errs.ErrNotFound)
			},
			input: input{email: "nobody@x.com"},
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"error":"User Not Found","message":"no user found with the provided email address"}`,
			},
		},
		{
			name: "err. internal",
			mockBehavior: func(r *service_mocks.MockBookService, inp input) {
				r.EXPECT().
					ListBooks(context.Background(), inp.email, model.BookFilters{Genre: inp.genre, Author: inp.author}, model.SortCreated).
					Return(model.ListBooksResponse{}, errors.New("db internal"))
			},
			input: input{email: "a@x.com"},
			response: response{
				expectedCode: http.StatusInternalServerError,
				expectedBody: `{"error":"Database Error","message":"db internal"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			svc := service_mocks.NewMockBookService(c)
			covers := service_mocks.NewMockCoverFinder(c)
			log := zap.NewExample().Named("test")
			h := handler.New(svc, covers, log)

			e := echo.New()
			e.Validator = validate.NewCustomValidator()
			e.GET("/api/books", h.ListBooks)

			r := httptest.NewRequest(
				http.MethodGet,
				fmt.Sprintf("/api/books?email=%s&genre=%s&author=%s", tt.input.email, tt.input.genre, tt.input.author),
				http.NoBody)
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()

			tt.mockBehavior(svc, tt.input)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.JSONEq(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_CreateBook(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockBookService)

	var tests = []struct {
		name         string
		body         string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name: "ok",
			body: `{"email":"a@x.com","title":"Dune","author":"Frank Herbert","rating":5}`,
			mockBehavior: func(r *service_mocks.MockBookService) {
				r.EXPECT().
					CreateBook(context.Background(), model.CreateBookRequest{
						Email:  "a@x.com",
						Title:  "Dune",
						Author: "Frank Herbert",
						Rating: intPtr(5),
					}).
					Return(newTestBookView(), nil)
			},
			response: response{
				expectedCode: http.StatusCreated,
				expectedBody: `{"book":` + testBookJSON + `,"message":"Book added successfully"}`,
			},
		},
		{
			name: "err. duplicate",
			body: `{"email":"a@x.com","title":"DUNE","author":"Frank Herbert"}`,
			mockBehavior: func(r *service_mocks.MockBookService) {
				r.EXPECT().
					CreateBook(context.Background(), gomock.Any()).
					Return(model.BookView{}, errs.ErrDuplicate)
			},
			response: response{
				expectedCode: http.StatusConflict,
				expectedBody: `{"error":"Duplicate Book","message":"book already in current user library"}`,
			},
		},
		{
			name: "err. unknown email",
			body: `{"email":"nobody@x.com","title":"Dune","author":"Frank Herbert"}`,
			mockBehavior: func(r *service_mocks.MockBookService) {
				r.EXPECT().
					CreateBook(context.Background(), gomock.Any()).
					Return(model.BookView{}, errs.ErrNotFound)
			},
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"error":"User Not Found","message":"no user found with the provided email address"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			svc := service_mocks.NewMockBookService(c)
			covers := service_mocks.NewMockCoverFinder(c)
			h := handler.New(svc, covers, zap.NewNop())

			e := echo.New()
			e.Validator = validate.NewCustomValidator()
			e.POST("/api/books", h.CreateBook)

			r := httptest.NewRequest(http.MethodPost, "/api/books", strings.NewReader(tt.body))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()

			tt.mockBehavior(svc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.JSONEq(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_CreateBook_MissingFields(t *testing.T) {
	t.Parallel()
	c := gomock.NewController(t)
	defer c.Finish()
	svc := service_mocks.NewMockBookService(c)
	covers := service_mocks.NewMockCoverFinder(c)
	h := handler.New(svc, covers, zap.NewNop())

	e := echo.New()
	e.Validator = validate.NewCustomValidator()
	e.POST("/api/books", h.CreateBook)

	r := httptest.NewRequest(http.MethodPost, "/api/books",
		strings.NewReader(`{"email":"a@x.com","title":"Dune"}`))
	r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, r)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "Author")
}

func TestHandler_UpdateBook(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockBookService)

	var tests = []struct {
		name         string
		id           string
		body         string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name: "ok",
			id:   "0b44b4a0-0000-4000-8000-000000000001",
			body: `{"email":"a@x.com","rating":5}`,
			mockBehavior: func(r *service_mocks.MockBookService) {
				r.EXPECT().
					UpdateBook(context.Background(), "0b44b4a0-0000-4000-8000-000000000001", model.UpdateBookRequest{
						Email:  "a@x.com",
						Rating: intPtr(5),
					}).
					Return(newTestBookView(), nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"book":` + testBookJSON + `,"message":"Book updated successfully"}`,
			},
		},
		{
			name: "err. forbidden for foreign or missing record",
			id:   "b2",
			body: `{"email":"a@x.com","rating":5}`,
			mockBehavior: func(r *service_mocks.MockBookService) {
				r.EXPECT().
					UpdateBook(context.Background(), "b2", gomock.Any()).
					Return(model.BookView{}, errs.ErrForbidden)
			},
			response: response{
				expectedCode: http.StatusForbidden,
				expectedBody: `{"error":"Forbidden","message":"book not found or does not belong to user"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			svc := service_mocks.NewMockBookService(c)
			covers := service_mocks.NewMockCoverFinder(c)
			h := handler.New(svc, covers, zap.NewNop())

			e := echo.New()
			e.Validator = validate.NewCustomValidator()
			e.PATCH("/api/books/:id", h.UpdateBook)

			r := httptest.NewRequest(http.MethodPatch, "/api/books/"+tt.id, strings.NewReader(tt.body))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()

			tt.mockBehavior(svc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.JSONEq(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_DeleteBook(t *testing.T) {
	t.Parallel()
	c := gomock.NewController(t)
	defer c.Finish()
	svc := service_mocks.NewMockBookService(c)
	covers := service_mocks.NewMockCoverFinder(c)
	h := handler.New(svc, covers, zap.NewNop())

	e := echo.New()
	e.Validator = validate.NewCustomValidator()
	e.DELETE("/api/books/:id", h.DeleteBook)

	svc.EXPECT().DeleteBook(context.Background(), "b1", "a@x.com").Return(nil)

	r := httptest.NewRequest(http.MethodDelete, "/api/books/b1",
		strings.NewReader(`{"email":"a@x.com"}`))
	r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"bookId":"b1","message":"Book deleted successfully"}`, strings.Trim(w.Body.String(), "\n"))
}

func TestHandler_LookupCover(t *testing.T) {
	t.Parallel()
	c := gomock.NewController(t)
	defer c.Finish()
	svc := service_mocks.NewMockBookService(c)
	covers := service_mocks.NewMockCoverFinder(c)
	h := handler.New(svc, covers, zap.NewNop())

	e := echo.New()
	e.Validator = validate.NewCustomValidator()
	e.GET("/api/covers", h.LookupCover)

	covers.EXPECT().FindCover(context.Background(), "Dune", "Frank Herbert").
		Return("https://covers.openlibrary.org/b/id/42-L.jpg", nil)

	r := httptest.NewRequest(http.MethodGet, "/api/covers?title=Dune&author=Frank+Herbert", http.NoBody)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"coverUrl":"https://covers.openlibrary.org/b/id/42-L.jpg"}`, strings.Trim(w.Body.String(), "\n"))
}

func TestHandler_Health(t *testing.T) {
	t.Parallel()
	c := gomock.NewController(t)
	defer c.Finish()
	svc := service_mocks.NewMockBookService(c)
	covers := service_mocks.NewMockCoverFinder(c)
	h := handler.New(svc, covers, zap.NewNop())

	e := echo.New()
	e.GET("/api/health", h.Health)

	r := httptest.NewRequest(http.MethodGet, "/api/health", http.NoBody)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"status":"OK"`)
}
