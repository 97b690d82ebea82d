package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Astemirdum/book-ratings/rating/internal/errs"
	"github.com/Astemirdum/book-ratings/rating/internal/handler"
	"github.com/Astemirdum/book-ratings/rating/internal/model"
	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	service_mocks "github.com/Astemirdum/book-ratings/rating/internal/handler/mocks"
)

func TestHandler_RateBook(t *testing.T) {
	t.Parallel()
	type input struct {
		bookID string
		body   string
	}
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockRatingService, req input)

	var tests = []struct {
		name         string
		mockBehavior mockBehavior
		input        input
		response     response
	}{
		{
			name: "ok",
			mockBehavior: func(r *service_mocks.MockRatingService, req input) {
				r.EXPECT().
					RateBook(gomock.Any(), req.bookID, "u1", 4).
					Return(model.RatingRecord{UserID: "u1", BookID: req.bookID, Rating: 4, Timestamp: "2024-03-05T10:20:30.123Z"}, nil)
			},
			input: input{bookID: "b1", body: `{"user_id":"u1","rating":4}`},
			response: response{
				expectedCode: http.StatusCreated,
				expectedBody: `{"message":"Rating added successfully"}`,
			},
		},
		{
			name: "ok. lower bound",
			mockBehavior: func(r *service_mocks.MockRatingService, req input) {
				r.EXPECT().
					RateBook(gomock.Any(), req.bookID, "u1", 1).
					Return(model.RatingRecord{}, nil)
			},
			input: input{bookID: "b1", body: `{"user_id":"u1","rating":1}`},
			response: response{
				expectedCode: http.StatusCreated,
				expectedBody: `{"message":"Rating added successfully"}`,
			},
		},
		{
			name:         "err. rating above range",
			mockBehavior: func(r *service_mocks.MockRatingService, req input) {},
			input:        input{bookID: "b1", body: `{"user_id":"u1","rating":6}`},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"error":"Invalid input"}`,
			},
		},
		{
			name:         "err. rating zero",
			mockBehavior: func(r *service_mocks.MockRatingService, req input) {},
			input:        input{bookID: "b1", body: `{"user_id":"u1","rating":0}`},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"error":"Invalid input"}`,
			},
		},
		{
			name:         "err. rating missing",
			mockBehavior: func(r *service_mocks.MockRatingService, req input) {},
			input:        input{bookID: "b1", body: `{"user_id":"u1"}`},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"error":"Invalid input"}`,
			},
		},
		{
			name:         "err. rating not an integer",
			mockBehavior: func(r *service_mocks.MockRatingService, req input) {},
			input:        input{bookID: "b1", body: `{"user_id":"u1","rating":4.5}`},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"error":"Invalid input"}`,
			},
		},
		{
			name:         "err. user_id missing",
			mockBehavior: func(r *service_mocks.MockRatingService, req input) {},
			input:        input{bookID: "b1", body: `{"rating":3}`},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"error":"Invalid input"}`,
			},
		},
		{
			name:         "err. user_id empty",
			mockBehavior: func(r *service_mocks.MockRatingService, req input) {},
			input:        input{bookID: "b1", body: `{"user_id":"","rating":3}`},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"error":"Invalid input"}`,
			},
		},
		{
			name:         "err. malformed body",
			mockBehavior: func(r *service_mocks.MockRatingService, req input) {},
			input:        input{bookID: "b1", body: `{"user_id":`},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"error":"Invalid input"}`,
			},
		},
		{
			name: "err. store",
			mockBehavior: func(r *service_mocks.MockRatingService, req input) {
				r.EXPECT().
					RateBook(gomock.Any(), req.bookID, "u1", 5).
					Return(model.RatingRecord{}, &errs.StoreError{Op: "put rating", Err: errors.New("dial tcp: i/o timeout")})
			},
			input: input{bookID: "b1", body: `{"user_id":"u1","rating":5}`},
			response: response{
				expectedCode: http.StatusInternalServerError,
				expectedBody: `{"error":"Internal server error"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			svc := service_mocks.NewMockRatingService(c)
			h := handler.New(svc, zap.NewNop())
			e := h.NewRouter()

			r := httptest.NewRequest(http.MethodPost, "/books/"+tt.input.bookID+"/rate", strings.NewReader(tt.input.body))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()

			tt.mockBehavior(svc, tt.input)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_GetRatings(t *testing.T) {
	t.Parallel()
	type mockBehavior func(r *service_mocks.MockRatingService)

	records := []model.RatingRecord{
		{UserID: "u1", BookID: "b1", Rating: 4, Timestamp: "2024-03-05T10:20:30.123Z"},
	}

	var tests = []struct {
		name         string
		target       string
		mockBehavior mockBehavior
		expectedCode int
		expectedBody string
	}{
		{
			name:   "book ok",
			target: "/books/b1/ratings",
			mockBehavior: func(r *service_mocks.MockRatingService) {
				r.EXPECT().GetBookRatings(gomock.Any(), "b1").Return(records, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `[{"user_id":"u1","book_id":"b1","rating":4,"timestamp":"2024-03-05T10:20:30.123Z"}]`,
		},
		{
			name:   "book empty",
			target: "/books/unknown/ratings",
			mockBehavior: func(r *service_mocks.MockRatingService) {
				r.EXPECT().GetBookRatings(gomock.Any(), "unknown").Return([]model.RatingRecord{}, nil)
			},
			expectedCode: http.StatusNotFound,
			expectedBody: `{"error":"No ratings found for book"}`,
		},
		{
			name:   "book store error",
			target: "/books/b1/ratings",
			mockBehavior: func(r *service_mocks.MockRatingService) {
				r.EXPECT().GetBookRatings(gomock.Any(), "b1").Return(nil, &errs.StoreError{Op: "query book ratings", Err: errors.New("AccessDeniedException")})
			},
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"error":"Internal server error"}`,
		},
		{
			name:         "book empty id",
			target:       "/books//ratings",
			mockBehavior: func(r *service_mocks.MockRatingService) {},
			expectedCode: http.StatusNotFound,
			expectedBody: `{"error":"No ratings found for book"}`,
		},
		{
			name:   "user ok",
			target: "/users/u1/ratings",
			mockBehavior: func(r *service_mocks.MockRatingService) {
				r.EXPECT().GetUserRatings(gomock.Any(), "u1").Return(records, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `[{"user_id":"u1","book_id":"b1","rating":4,"timestamp":"2024-03-05T10:20:30.123Z"}]`,
		},
		{
			name:   "user empty",
			target: "/users/nobody/ratings",
			mockBehavior: func(r *service_mocks.MockRatingService) {
				r.EXPECT().GetUserRatings(gomock.Any(), "nobody").Return(nil, nil)
			},
			expectedCode: http.StatusNotFound,
			expectedBody: `{"error":"No ratings found for user"}`,
		},
		{
			name:         "user empty id",
			target:       "/users//ratings",
			mockBehavior: func(r *service_mocks.MockRatingService) {},
			expectedCode: http.StatusNotFound,
			expectedBody: `{"error":"No ratings found for user"}`,
		},
		{
			name:   "user store error",
			target: "/users/u1/ratings",
			mockBehavior: func(r *service_mocks.MockRatingService) {
				r.EXPECT().GetUserRatings(gomock.Any(), "u1").Return(nil, context.DeadlineExceeded)
			},
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"error":"Internal server error"}`,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			svc := service_mocks.NewMockRatingService(c)
			e := handler.New(svc, zap.NewNop()).NewRouter()

			r := httptest.NewRequest(http.MethodGet, tt.target, http.NoBody)
			w := httptest.NewRecorder()

			tt.mockBehavior(svc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.expectedCode, w.Code)
			require.Equal(t, tt.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_Fallbacks(t *testing.T) {
	t.Parallel()
	c := gomock.NewController(t)
	defer c.Finish()
	// no expectations: none of these requests may reach the service
	e := handler.New(service_mocks.NewMockRatingService(c), zap.NewNop()).NewRouter()

	var tests = []struct {
		method, target string
		expectedCode   int
		expectedBody   string
	}{
		{http.MethodGet, "/healthz", http.StatusOK, "ok"},
		{http.MethodGet, "/nope", http.StatusNotFound, `{"error":"Not found"}`},
		{http.MethodGet, "/books/b1", http.StatusNotFound, `{"error":"Not found"}`},
		{http.MethodDelete, "/books/b1/ratings", http.StatusNotFound, `{"error":"Not found"}`},
		{http.MethodGet, "/books/b1/rate", http.StatusNotFound, `{"error":"Not found"}`},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(tt.method, tt.target, http.NoBody)
		w := httptest.NewRecorder()
		e.ServeHTTP(w, r)

		require.Equal(t, tt.expectedCode, w.Code, tt.method+" "+tt.target)
		require.Equal(t, tt.expectedBody, strings.Trim(w.Body.String(), "\n"), tt.method+" "+tt.target)
	}
}
