package handler

import (
	"net/http"
	"time"

	md "github.com/stacklet/stacklet-service/pkg/middleware"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/stacklet/stacklet-service/internal/errs"
	"github.com/stacklet/stacklet-service/internal/model"
	"github.com/stacklet/stacklet-service/pkg/validate"
	"go.uber.org/zap"
)

type Handler struct {
	bookSvc BookService
	covers  CoverFinder
	log     *zap.Logger
}

func New(bookSvc BookService, covers CoverFinder, log *zap.Logger) *Handler {
	return &Handler{
		bookSvc: bookSvc,
		covers:  covers,
		log:     log,
	}
}

func (h *Handler) NewRouter(apiKey string) *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/", h.Index)
	base.GET("/api/health", h.Health)

	e.Validator = validate.NewCustomValidator()
	api := e.Group("/api",
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig()),
		middleware.RequestID(),
		md.NewRateLimiter(apiRPS),
		md.APIKeyAuth(apiKey),
	)

	api.GET("/books", h.ListBooks)
	api.POST("/books", h.CreateBook)
	api.POST("/books/import", h.ImportBooks)
	api.PATCH("/books/:id", h.UpdateBook)
	api.DELETE("/books/:id", h.DeleteBook)

	api.POST("/users", h.Register)
	api.GET("/covers", h.LookupCover)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":    "OK",
		"message":   "Stacklet API is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) Index(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Stacklet API Server",
		"version": "1.0.0",
		"endpoints": echo.Map{
			"GET /api/health": "Health check",
			"GET /api/books":  "Fetch user books by email with optional filters",
		},
		"authentication": "API Key required (X-API-Key header or Authorization: Bearer token)",
	})
}

func (h *Handler) Register(c echo.Context) error {
	var req model.CreateProfileRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, err)
	}
	profile, err := h.bookSvc.RegisterProfile(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, errs.ErrEmailTaken) {
			return c.JSON(http.StatusConflict, errs.NewErrorResponse("Conflict", err))
		}
		return internalError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "User registered successfully",
		"user":    profile,
	})
}

func (h *Handler) CreateBook(c echo.Context) error {
	var req model.CreateBookRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, err)
	}

	book, err := h.bookSvc.CreateBook(c.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrNotFound):
			return c.JSON(http.StatusNotFound, errs.NewErrorResponse("User Not Found", err))
		case errors.Is(err, errs.ErrDuplicate):
			return c.JSON(http.StatusConflict, errs.NewErrorResponse("Duplicate Book", err))
		case errors.Is(err, errs.ErrRating):
			return badRequest(c, err)
		}
		return internalError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Book added successfully",
		"book":    book,
	})
}

func (h *Handler) ListBooks(c echo.Context) error {
	email := c.QueryParam("email")
	if email == "" {
		return badRequest(c, errors.New("email parameter is required"))
	}
	filters := model.BookFilters{
		Genre:  c.QueryParam("genre"),
		Title:  c.QueryParam("title"),
		Author: c.QueryParam("author"),
	}
	sort := model.SortCreated
	if c.QueryParam("sort") == string(model.SortUpdated) {
		sort = model.SortUpdated
	}

	resp, err := h.bookSvc.ListBooks(c.Request().Context(), email, filters, sort)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return c.JSON(http.StatusNotFound, errs.NewErrorResponse("User Not Found", err))
		}
		return internalError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) UpdateBook(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return badRequest(c, errors.New("book id is required"))
	}
	var req model.UpdateBookRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, err)
	}

	book, err := h.bookSvc.UpdateBook(c.Request().Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrNotFound):
			return c.JSON(http.StatusNotFound, errs.NewErrorResponse("User Not Found", err))
		case errors.Is(err, errs.ErrForbidden):
			return c.JSON(http.StatusForbidden, errs.NewErrorResponse("Forbidden", err))
		case errors.Is(err, errs.ErrDuplicate):
			return c.JSON(http.StatusConflict, errs.NewErrorResponse("Duplicate Book", err))
		case errors.Is(err, errs.ErrRating):
			return badRequest(c, err)
		}
		return internalError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Book updated successfully",
		"book":    book,
	})
}

func (h *Handler) DeleteBook(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return badRequest(c, errors.New("book id is required"))
	}
	var req model.DeleteBookRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, err)
	}

	if err := h.bookSvc.DeleteBook(c.Request().Context(), id, req.Email); err != nil {
		switch {
		case errors.Is(err, errs.ErrNotFound):
			return c.JSON(http.StatusNotFound, errs.NewErrorResponse("User Not Found", err))
		case errors.Is(err, errs.ErrForbidden):
			return c.JSON(http.StatusForbidden, errs.NewErrorResponse("Forbidden", err))
		}
		return internalError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Book deleted successfully",
		"bookId":  id,
	})
}

func (h *Handler) ImportBooks(c echo.Context) error {
	email := c.QueryParam("email")
	if email == "" {
		return badRequest(c, errors.New("email parameter is required"))
	}

	body := c.Request().Body
	if file, err := c.FormFile("file"); err == nil {
		src, err := file.Open()
		if err != nil {
			return badRequest(c, err)
		}
		defer src.Close() //nolint:errcheck
		body = src
	}

	res, err := h.bookSvc.ImportBooks(c.Request().Context(), email, body)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return c.JSON(http.StatusNotFound, errs.NewErrorResponse("User Not Found", err))
		}
		return internalError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Import finished",
		"added":   res.Added,
		"skipped": res.Skipped,
	})
}

func (h *Handler) LookupCover(c echo.Context) error {
	title := c.QueryParam("title")
	author := c.QueryParam("author")
	if title == "" {
		return badRequest(c, errors.New("title parameter is required"))
	}

	coverURL, err := h.covers.FindCover(c.Request().Context(), title, author)
	if err != nil {
		h.log.Warn("cover lookup", zap.Error(err))
		return internalError(c, err)
	}
	if coverURL == "" {
		return c.JSON(http.StatusOK, echo.Map{"coverUrl": nil})
	}
	return c.JSON(http.StatusOK, echo.Map{"coverUrl": coverURL})
}

func badRequest(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, errs.NewErrorResponse("Bad Request", err))
}

func internalError(c echo.Context, err error) error {
	return c.JSON(http.StatusInternalServerError, errs.NewErrorResponse("Database Error", err))
}
