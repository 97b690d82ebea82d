package handler

import (
	"fmt"
	"net/http"

	md "github.com/Astemirdum/book-ratings/pkg/middleware"
	"github.com/Astemirdum/book-ratings/pkg/validate"
	"github.com/Astemirdum/book-ratings/rating/internal/model"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	msgInvalidInput   = "Invalid input"
	msgInternal       = "Internal server error"
	msgNotFound       = "Not found"
	msgNoBookRatings  = "No ratings found for book"
	msgNoUserRatings  = "No ratings found for user"
	msgRatingAdded    = "Rating added successfully"
	healthCheckAnswer = "ok"
)

type errorResponse struct {
	Error string `json:"error"`
}

type Handler struct {
	ratingSvc RatingService
	log       *zap.Logger
}

func New(ratingSvc RatingService, log *zap.Logger) *Handler {
	return &Handler{
		ratingSvc: ratingSvc,
		log:       log.Named("handler"),
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = h.errorHandler
	e.Validator = validate.NewCustomValidator()

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodPost},
	}))
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(md.RequestLoggerConfig(h.log)))

	e.GET("/healthz", h.Health)

	e.POST("/books/:book_id/rate", h.RateBook)
	e.GET("/books/:book_id/ratings", h.GetBookRatings)
	e.GET("/users/:user_id/ratings", h.GetUserRatings)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, healthCheckAnswer)
}

func (h *Handler) RateBook(c echo.Context) error {
	bookID := c.Param("book_id")
	if bookID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidInput)
	}

	var req model.RateBook
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidInput).SetInternal(err)
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidInput).SetInternal(err)
	}

	if _, err := h.ratingSvc.RateBook(c.Request().Context(), bookID, req.UserID, *req.Rating); err != nil {
		return h.internal(err, "rate book", zap.String("book_id", bookID), zap.String("user_id", req.UserID))
	}
	return c.JSON(http.StatusCreated, model.Message{Message: msgRatingAdded})
}

func (h *Handler) GetBookRatings(c echo.Context) error {
	bookID := c.Param("book_id")
	if bookID == "" {
		return echo.NewHTTPError(http.StatusNotFound, msgNoBookRatings)
	}
	ratings, err := h.ratingSvc.GetBookRatings(c.Request().Context(), bookID)
	if err != nil {
		return h.internal(err, "get book ratings", zap.String("book_id", bookID))
	}
	if len(ratings) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, msgNoBookRatings)
	}
	return c.JSON(http.StatusOK, ratings)
}

func (h *Handler) GetUserRatings(c echo.Context) error {
	userID := c.Param("user_id")
	if userID == "" {
		return echo.NewHTTPError(http.StatusNotFound, msgNoUserRatings)
	}
	ratings, err := h.ratingSvc.GetUserRatings(c.Request().Context(), userID)
	if err != nil {
		return h.internal(err, "get user ratings", zap.String("user_id", userID))
	}
	if len(ratings) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, msgNoUserRatings)
	}
	return c.JSON(http.StatusOK, ratings)
}

// internal logs the cause and hides it from the client.
func (h *Handler) internal(err error, msg string, fields ...zap.Field) error {
	h.log.Error(msg, append(fields, zap.Error(err))...)
	return echo.NewHTTPError(http.StatusInternalServerError, msgInternal).SetInternal(err)
}

// errorHandler renders every error as {"error": message}. Unknown routes and
// methods are plain 404s.
func (h *Handler) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code, msg := http.StatusInternalServerError, msgInternal
	var he *echo.HTTPError
	if errors.As(err, &he) {
		switch {
		case he == echo.ErrNotFound || he == echo.ErrMethodNotAllowed:
			code, msg = http.StatusNotFound, msgNotFound
		case he.Code < http.StatusInternalServerError:
			code, msg = he.Code, fmt.Sprint(he.Message)
		default:
			code = he.Code
		}
	} else {
		h.log.Error("unhandled error", zap.String("uri", c.Request().RequestURI), zap.Error(err))
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, errorResponse{Error: msg})
	}
	if err != nil {
		h.log.Error("write error response", zap.Error(err))
	}
}
