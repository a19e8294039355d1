package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tradepost/internal/apperr"
	"tradepost/internal/config"
	"tradepost/internal/middleware"
	"tradepost/internal/models"
	"tradepost/internal/service"
)

const (
	goodToken = "good-token"
	listingID = "b31b31b3-0000-4000-8000-000000000009"
)

type testServer struct {
	router   http.Handler
	listings *MockListingService
	users    *MockUserService
	auth     *MockAuthService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	listings := new(MockListingService)
	users := new(MockUserService)
	auth := new(MockAuthService)

	auth.On("ValidateToken", goodToken).
		Return(models.Principal{UserID: "5f6f7d2e-0000-4000-8000-000000000001", Username: "alice"}, nil).Maybe()
	auth.On("ValidateToken", mock.Anything).
		Return(models.Principal{}, apperr.New(apperr.ErrUnauthenticated, "invalid token")).Maybe()

	h := NewHandlers(
		&service.Service{Listing: listings, User: users, Auth: auth},
		&config.Config{MaxUploadSize: 10 << 20},
		zap.NewNop(),
	)
	return &testServer{
		router:   h.Routes(middleware.RequireAuth(auth)),
		listings: listings,
		users:    users,
		auth:     auth,
	}
}

func (s *testServer) do(method, path, token string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestCreateListing(t *testing.T) {
	payload := []byte(`{"title": "Factory New Karambit"}`)

	t.Run("no token", func(t *testing.T) {
		srv := newTestServer(t)

		rec := srv.do(http.MethodPost, "/api/posts", "", payload)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Unauthorized", decodeError(t, rec).Message)
		srv.listings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("bad token", func(t *testing.T) {
		srv := newTestServer(t)

		rec := srv.do(http.MethodPost, "/api/posts", "forged", payload)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		srv := newTestServer(t)

		req := httptest.NewRequest(http.MethodPost, "/api/posts", bytes.NewReader(payload))
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		rec := httptest.NewRecorder()
		srv.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("created with the caller's principal", func(t *testing.T) {
		srv := newTestServer(t)

		created := &models.Listing{ListingID: listingID, Title: "Factory New Karambit"}
		srv.listings.On("Create", mock.Anything,
			models.Principal{UserID: "5f6f7d2e-0000-4000-8000-000000000001", Username: "alice"},
			payload).Return(created, nil)

		rec := srv.do(http.MethodPost, "/api/posts", goodToken, payload)
		assert.Equal(t, http.StatusCreated, rec.Code)

		var listing models.Listing
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&listing))
		assert.Equal(t, listingID, listing.ListingID)
		srv.listings.AssertExpectations(t)
	})

	t.Run("domain error is a 400 with detail", func(t *testing.T) {
		srv := newTestServer(t)

		srv.listings.On("Create", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, apperr.New(apperr.ErrDomainValidation, "title must be at least 8 characters long"))

		rec := srv.do(http.MethodPost, "/api/posts", goodToken, []byte(`{"title": "x"}`))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeError(t, rec)
		assert.Equal(t, "Invalid request body", resp.Message)
		assert.Equal(t, "title must be at least 8 characters long", resp.Detail)
	})
}

func TestGetListing(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		srv := newTestServer(t)

		srv.listings.On("Get", mock.Anything, listingID).
			Return(&models.Listing{ListingID: listingID}, nil)

		rec := srv.do(http.MethodGet, "/api/posts/"+listingID, "", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("not found", func(t *testing.T) {
		srv := newTestServer(t)

		srv.listings.On("Get", mock.Anything, "missing").
			Return(nil, apperr.New(apperr.ErrNotFound, ""))

		rec := srv.do(http.MethodGet, "/api/posts/missing", "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Not Found", decodeError(t, rec).Message)
	})

	t.Run("storage failure hides the cause", func(t *testing.T) {
		srv := newTestServer(t)

		srv.listings.On("Get", mock.Anything, listingID).
			Return(nil, apperr.Wrap(apperr.ErrStorage, errors.New("pq: connection refused")))

		rec := srv.do(http.MethodGet, "/api/posts/"+listingID, "", nil)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		resp := decodeError(t, rec)
		assert.Equal(t, "Something went wrong :(", resp.Message)
		assert.Empty(t, resp.Detail)
		assert.NotContains(t, rec.Body.String(), "connection refused")
	})
}

func TestListListings(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		srv := newTestServer(t)

		srv.listings.On("List", mock.Anything, 0, 20).Return([]models.Listing{}, nil)

		rec := srv.do(http.MethodGet, "/api/posts", "", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
		srv.listings.AssertExpectations(t)
	})

	t.Run("explicit window", func(t *testing.T) {
		srv := newTestServer(t)

		srv.listings.On("List", mock.Anything, 40, 10).Return([]models.Listing{}, nil)

		rec := srv.do(http.MethodGet, "/api/posts?offset=40&limit=10", "", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		srv.listings.AssertExpectations(t)
	})

	t.Run("non-numeric offset", func(t *testing.T) {
		srv := newTestServer(t)

		rec := srv.do(http.MethodGet, "/api/posts?offset=abc", "", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "offset must be a number", decodeError(t, rec).Detail)
		srv.listings.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("non-numeric limit", func(t *testing.T) {
		srv := newTestServer(t)

		rec := srv.do(http.MethodGet, "/api/posts?limit=ten", "", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "limit must be a number", decodeError(t, rec).Detail)
	})

	t.Run("out of bounds limit is the store's verdict", func(t *testing.T) {
		srv := newTestServer(t)

		srv.listings.On("List", mock.Anything, 0, 500).
			Return(nil, apperr.New(apperr.ErrDomainValidation, "limit must be between 0 and 100"))

		rec := srv.do(http.MethodGet, "/api/posts?limit=500", "", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "limit must be between 0 and 100", decodeError(t, rec).Detail)
	})
}

func TestSearchListings(t *testing.T) {
	t.Run("passes the recognized filters through", func(t *testing.T) {
		srv := newTestServer(t)

		srv.listings.On("Search", mock.Anything,
			models.SearchFilter{Country: "Finland", Category: "pets"}).
			Return([]models.Listing{}, nil)

		rec := srv.do(http.MethodPost, "/api/posts/search", "", []byte(`{"country": "Finland", "category": "pets"}`))
		assert.Equal(t, http.StatusOK, rec.Code)
		srv.listings.AssertExpectations(t)
	})

	t.Run("non-string filter value", func(t *testing.T) {
		srv := newTestServer(t)

		rec := srv.do(http.MethodPost, "/api/posts/search", "", []byte(`{"category": 7}`))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		srv.listings.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
	})

	t.Run("empty filters yield an empty result", func(t *testing.T) {
		srv := newTestServer(t)

		srv.listings.On("Search", mock.Anything, models.SearchFilter{}).
			Return([]models.Listing{}, nil)

		rec := srv.do(http.MethodPost, "/api/posts/search", "", []byte(`{}`))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})
}

func TestUpdateListing(t *testing.T) {
	t.Run("forbidden for non-owners", func(t *testing.T) {
		srv := newTestServer(t)

		srv.listings.On("Update", mock.Anything, mock.Anything, listingID, mock.Anything).
			Return(nil, apperr.New(apperr.ErrForbidden, ""))

		rec := srv.do(http.MethodPut, "/api/posts/"+listingID, goodToken, []byte(`{"title": "Battle Worn Karambit"}`))
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "Access Forbidden", decodeError(t, rec).Message)
	})

	t.Run("owner update", func(t *testing.T) {
		srv := newTestServer(t)

		updated := &models.Listing{ListingID: listingID, Title: "Battle Worn Karambit"}
		srv.listings.On("Update", mock.Anything, mock.Anything, listingID, mock.Anything).
			Return(updated, nil)

		rec := srv.do(http.MethodPut, "/api/posts/"+listingID, goodToken, []byte(`{"title": "Battle Worn Karambit"}`))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("no token", func(t *testing.T) {
		srv := newTestServer(t)

		rec := srv.do(http.MethodPut, "/api/posts/"+listingID, "", []byte(`{}`))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestDeleteListing(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		srv := newTestServer(t)

		srv.listings.On("Delete", mock.Anything, mock.Anything, listingID).Return(nil)

		rec := srv.do(http.MethodDelete, "/api/posts/"+listingID, goodToken, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("not found", func(t *testing.T) {
		srv := newTestServer(t)

		srv.listings.On("Delete", mock.Anything, mock.Anything, listingID).
			Return(apperr.New(apperr.ErrNotFound, ""))

		rec := srv.do(http.MethodDelete, "/api/posts/"+listingID, goodToken, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestUploadImages(t *testing.T) {
	multipartBody := func(t *testing.T, names ...string) (*bytes.Buffer, string) {
		t.Helper()
		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)
		for _, name := range names {
			part, err := writer.CreateFormFile("fileName", name)
			require.NoError(t, err)
			_, err = part.Write([]byte("fake image bytes"))
			require.NoError(t, err)
		}
		require.NoError(t, writer.Close())
		return &buf, writer.FormDataContentType()
	}

	upload := func(srv *testServer, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/posts/"+listingID+"/upload", body)
		req.Header.Set("Authorization", "Bearer "+goodToken)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		srv.router.ServeHTTP(rec, req)
		return rec
	}

	t.Run("replaces the set", func(t *testing.T) {
		srv := newTestServer(t)

		urls := []string{"http://blob/images/listings/a.png", "http://blob/images/listings/b.png"}
		srv.listings.On("UploadImages", mock.Anything, mock.Anything, listingID,
			mock.MatchedBy(func(files []service.UploadFile) bool {
				return len(files) == 2 && files[0].Name == "a.png" && files[1].Name == "b.png"
			})).Return(urls, nil)

		body, contentType := multipartBody(t, "a.png", "b.png")
		rec := upload(srv, body, contentType)
		assert.Equal(t, http.StatusOK, rec.Code)

		var got []string
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		assert.Equal(t, urls, got)
	})

	t.Run("too many files", func(t *testing.T) {
		srv := newTestServer(t)

		srv.listings.On("UploadImages", mock.Anything, mock.Anything, listingID, mock.Anything).
			Return(nil, apperr.Newf(apperr.ErrTooManyFiles, "at most %d image files per upload", 4))

		body, contentType := multipartBody(t, "a.png", "b.png", "c.png", "d.png", "e.png")
		rec := upload(srv, body, contentType)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeError(t, rec)
		assert.Equal(t, "Invalid request body", resp.Message)
		assert.Equal(t, "at most 4 image files per upload", resp.Detail)
	})

	t.Run("not multipart", func(t *testing.T) {
		srv := newTestServer(t)

		rec := srv.do(http.MethodPost, "/api/posts/"+listingID+"/upload", goodToken, []byte("just bytes"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "malformed multipart body", decodeError(t, rec).Detail)
		srv.listings.AssertNotCalled(t, "UploadImages", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("no token", func(t *testing.T) {
		srv := newTestServer(t)

		body, contentType := multipartBody(t, "a.png")
		req := httptest.NewRequest(http.MethodPost, "/api/posts/"+listingID+"/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		srv.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRegister(t *testing.T) {
	t.Run("registered", func(t *testing.T) {
		srv := newTestServer(t)

		payload := []byte(`{"username": "alice", "email": "a@b.c", "password": "hunter22"}`)
		srv.users.On("Register", mock.Anything, payload).
			Return(&models.User{Username: "alice", Email: "a@b.c"}, nil)

		rec := srv.do(http.MethodPost, "/api/users", "", payload)
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.NotContains(t, rec.Body.String(), "passwordHash")
	})

	t.Run("duplicate username", func(t *testing.T) {
		srv := newTestServer(t)

		srv.users.On("Register", mock.Anything, mock.Anything).
			Return(nil, apperr.New(apperr.ErrConflict, "username already in use"))

		rec := srv.do(http.MethodPost, "/api/users", "", []byte(`{"username": "alice", "email": "a@b.c", "password": "x"}`))
		assert.Equal(t, http.StatusConflict, rec.Code)
		resp := decodeError(t, rec)
		assert.Equal(t, "Conflict", resp.Message)
		assert.Equal(t, "username already in use", resp.Detail)
	})
}

func TestLogin(t *testing.T) {
	t.Run("logged in", func(t *testing.T) {
		srv := newTestServer(t)

		payload := []byte(`{"username": "alice", "password": "hunter22"}`)
		srv.auth.On("Login", mock.Anything, payload).
			Return(&models.User{Username: "alice"}, "issued-token", nil)

		rec := srv.do(http.MethodPost, "/api/login", "", payload)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "issued-token")
	})

	t.Run("bad credentials", func(t *testing.T) {
		srv := newTestServer(t)

		srv.auth.On("Login", mock.Anything, mock.Anything).
			Return(nil, "", apperr.New(apperr.ErrUnauthenticated, "invalid username or password"))

		rec := srv.do(http.MethodPost, "/api/login", "", []byte(`{"username": "alice", "password": "wrong"}`))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Unauthorized", decodeError(t, rec).Message)
	})
}
