package user

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-user-management/internal/api/auth"
	"github.com/FACorreiaa/go-user-management/internal/types"
)

// MockUserService is a mock implementation of the UserService interface
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) CreateUser(ctx context.Context, username, email, password string, role types.Role) (*types.User, error) {
	args := m.Called(ctx, username, email, password, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockUserService) GetUserByID(ctx context.Context, id int) (*types.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockUserService) UpdateUser(ctx context.Context, id int, params types.UpdateUserParams) (*types.User, error) {
	args := m.Called(ctx, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockUserService) DeleteUser(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// withClaim attaches an identity claim to the request context the way the
// Authenticate middleware does.
func withClaim(req *http.Request, payload *types.UserPayload) *http.Request {
	ctx := context.WithValue(req.Context(), auth.UserKey, payload)
	return req.WithContext(ctx)
}

func decodeMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["message"]
}

func TestCreateUserHandler(t *testing.T) {
	adminClaim := &types.UserPayload{ID: 1, Role: types.RoleAdmin}

	newCreateRequest := func(body map[string]string, claim *types.UserPayload) *http.Request {
		js, _ := json.Marshal(body)
		req := httptest.NewRequest(http.MethodPost, "/users/create", bytes.NewBuffer(js))
		req.Header.Set("Content-Type", "application/json")
		if claim != nil {
			req = withClaim(req, claim)
		}
		return req
	}

	fullBody := map[string]string{
		"username": "testuser",
		"email":    "test@example.com",
		"password": "password123",
		"role":     "student",
	}

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewHandlerImpl(mockService, slog.Default())

		mockService.On("CreateUser", mock.Anything, "testuser", "test@example.com", "password123", types.RoleStudent).
			Return(&types.User{ID: 1, Username: "testuser", Email: "test@example.com", PasswordHash: "secret-hash", Role: types.RoleStudent}, nil).Once()

		w := httptest.NewRecorder()
		handler.CreateUser(w, newCreateRequest(fullBody, adminClaim))

		assert.Equal(t, http.StatusCreated, w.Code)

		var response map[string]map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, float64(1), response["user"]["id"])
		assert.Equal(t, "testuser", response["user"]["username"])
		assert.Equal(t, "test@example.com", response["user"]["email"])
		assert.Equal(t, "student", response["user"]["role"])

		// The credential hash must never appear in the response
		assert.NotContains(t, w.Body.String(), "secret-hash")
		assert.NotContains(t, w.Body.String(), "password")
		mockService.AssertExpectations(t)
	})

	t.Run("IgnoresUnknownBodyKeys", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewHandlerImpl(mockService, slog.Default())

		mockService.On("CreateUser", mock.Anything, "testuser", "test@example.com", "password123", types.RoleStudent).
			Return(&types.User{ID: 1, Username: "testuser", Email: "test@example.com", Role: types.RoleStudent}, nil).Once()

		extra := map[string]string{
			"username": "testuser",
			"email":    "test@example.com",
			"password": "password123",
			"role":     "student",
			"nickname": "johnny",
		}
		w := httptest.NewRecorder()
		handler.CreateUser(w, newCreateRequest(extra, adminClaim))

		assert.Equal(t, http.StatusCreated, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("NonAdminForbidden", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewHandlerImpl(mockService, slog.Default())

		w := httptest.NewRecorder()
		handler.CreateUser(w, newCreateRequest(fullBody, &types.UserPayload{ID: 1, Role: types.RoleStudent}))

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "Only admins can create new users", decodeMessage(t, w))
		mockService.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("NonAdminForbiddenEvenWithMissingFields", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewHandlerImpl(mockService, slog.Default())

		w := httptest.NewRecorder()
		handler.CreateUser(w, newCreateRequest(map[string]string{}, &types.UserPayload{ID: 1, Role: types.RoleTeacher}))

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "Only admins can create new users", decodeMessage(t, w))
	})

	t.Run("MissingFields", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewHandlerImpl(mockService, slog.Default())

		partial := map[string]string{"username": "testuser", "email": "test@example.com"}
		w := httptest.NewRecorder()
		handler.CreateUser(w, newCreateRequest(partial, adminClaim))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "All fields are required", decodeMessage(t, w))
		mockService.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("UnknownRole", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewHandlerImpl(mockService, slog.Default())

		bad := map[string]string{
			"username": "testuser",
			"email":    "test@example.com",
			"password": "password123",
			"role":     "superuser",
		}
		w := httptest.NewRecorder()
		handler.CreateUser(w, newCreateRequest(bad, adminClaim))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid role", decodeMessage(t, w))
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewHandlerImpl(mockService, slog.Default())

		mockService.On("CreateUser", mock.Anything, "testuser", "test@example.com", "password123", types.RoleStudent).
			Return(nil, types.ErrConflict).Once()

		w := httptest.NewRecorder()
		handler.CreateUser(w, newCreateRequest(fullBody, adminClaim))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "User already exists", decodeMessage(t, w))
		mockService.AssertExpectations(t)
	})

	t.Run("ServiceError", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewHandlerImpl(mockService, slog.Default())

		mockService.On("CreateUser", mock.Anything, "testuser", "test@example.com", "password123", types.RoleStudent).
			Return(nil, errors.New("store unavailable")).Once()

		w := httptest.NewRecorder()
		handler.CreateUser(w, newCreateRequest(fullBody, adminClaim))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Server error", decodeMessage(t, w))
		mockService.AssertExpectations(t)
	})

	t.Run("NoClaim", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewHandlerImpl(mockService, slog.Default())

		w := httptest.NewRecorder()
		handler.CreateUser(w, newCreateRequest(fullBody, nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Not authenticated", decodeMessage(t, w))
	})
}

func TestGetCurrentUserHandler(t *testing.T) {
	claim := &types.UserPayload{ID: 1, Role: types.RoleStudent}

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewHandlerImpl(mockService, slog.Default())

		mockService.On("GetUserByID", mock.Anything, 1).
			Return(&types.User{ID: 1, Username: "testuser", Email: "test@example.com", PasswordHash: "secret-hash", Role: types.RoleStudent}, nil).Once()

		req := withClaim(httptest.NewRequest(http.MethodGet, "/users/me", nil), claim)
		w := httptest.NewRecorder()
		handler.GetCurrentUser(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "testuser", response["user"]["username"])
		assert.NotContains(t, w.Body.String(), "secret-hash")
		mockService.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewHandlerImpl(mockService, slog.Default())

		mockService.On("GetUserByID", mock.Anything, 1).Return(nil, types.ErrNotFound).Once()

		req := withClaim(httptest.NewRequest(http.MethodGet, "/users/me", nil), claim)
		w := httptest.NewRecorder()
		handler.GetCurrentUser(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "User not found", decodeMessage(t, w))
		mockService.AssertExpectations(t)
	})

	t.Run("NoClaim", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewHandlerImpl(mockService, slog.Default())

		w := httptest.NewRecorder()
		handler.GetCurrentUser(w, httptest.NewRequest(http.MethodGet, "/users/me", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Not authenticated", decodeMessage(t, w))
	})
}

func TestUpdateUserHandler(t *testing.T) {
	claim := &types.UserPayload{ID: 1, Role: types.RoleStudent}

	newUpdateRequest := func(body map[string]string, payload *types.UserPayload) *http.Request {
		js, _ := json.Marshal(body)
		req := httptest.NewRequest(http.MethodPut, "/users/update", bytes.NewBuffer(js))
		req.Header.Set("Content-Type", "application/json")
		if payload != nil {
			req = withClaim(req, payload)
		}
		return req
	}

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewHandlerImpl(mockService, slog.Default())

		mockService.On("UpdateUser", mock.Anything, 1, mock.AnythingOfType("types.UpdateUserParams")).
			Return(&types.User{ID: 1, Username: "updateduser", Email: "updated@example.com", Role: types.RoleStudent}, nil).Once()

		w := httptest.NewRecorder()
		handler.UpdateUser(w, newUpdateRequest(map[string]string{
			"username": "updateduser",
			"email":    "updated@example.com",
		}, claim))

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "updateduser", response["user"]["username"])
		assert.Equal(t, "updated@example.com", response["user"]["email"])
		mockService.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewHandlerImpl(mockService, slog.Default())

		mockService.On("UpdateUser", mock.Anything, 1, mock.AnythingOfType("types.UpdateUserParams")).
			Return(nil, types.ErrNotFound).Once()

		w := httptest.NewRecorder()
		handler.UpdateUser(w, newUpdateRequest(map[string]string{"username": "updateduser"}, claim))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "User not found", decodeMessage(t, w))
		mockService.AssertExpectations(t)
	})

	t.Run("EmptyBodyIsEmptyUpdate", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewHandlerImpl(mockService, slog.Default())

		mockService.On("UpdateUser", mock.Anything, 1, types.UpdateUserParams{}).
			Return(&types.User{ID: 1, Username: "testuser", Email: "test@example.com", Role: types.RoleStudent}, nil).Once()

		req := withClaim(httptest.NewRequest(http.MethodPut, "/users/update", nil), claim)
		w := httptest.NewRecorder()
		handler.UpdateUser(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("NoClaim", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewHandlerImpl(mockService, slog.Default())

		w := httptest.NewRecorder()
		handler.UpdateUser(w, newUpdateRequest(map[string]string{"username": "updateduser"}, nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "User ID is missing", decodeMessage(t, w))
		mockService.AssertNotCalled(t, "UpdateUser", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ClaimWithoutID", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewHandlerImpl(mockService, slog.Default())

		idless := &types.UserPayload{Role: types.RoleStudent, Email: "s@example.com"}
		w := httptest.NewRecorder()
		handler.UpdateUser(w, newUpdateRequest(map[string]string{"username": "updateduser"}, idless))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "User ID is missing", decodeMessage(t, w))
		mockService.AssertNotCalled(t, "UpdateUser", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestDeleteUserHandler(t *testing.T) {
	claim := &types.UserPayload{ID: 1, Role: types.RoleStudent}

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewHandlerImpl(mockService, slog.Default())

		mockService.On("DeleteUser", mock.Anything, 1).Return(nil).Once()

		req := withClaim(httptest.NewRequest(http.MethodDelete, "/users/delete", nil), claim)
		w := httptest.NewRecorder()
		handler.DeleteUser(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "User deleted successfully", decodeMessage(t, w))
		mockService.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewHandlerImpl(mockService, slog.Default())

		mockService.On("DeleteUser", mock.Anything, 1).Return(types.ErrNotFound).Once()

		req := withClaim(httptest.NewRequest(http.MethodDelete, "/users/delete", nil), claim)
		w := httptest.NewRecorder()
		handler.DeleteUser(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "User not found", decodeMessage(t, w))
		mockService.AssertExpectations(t)
	})

	t.Run("NoClaim", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewHandlerImpl(mockService, slog.Default())

		w := httptest.NewRecorder()
		handler.DeleteUser(w, httptest.NewRequest(http.MethodDelete, "/users/delete", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "User ID is missing", decodeMessage(t, w))
		mockService.AssertNotCalled(t, "DeleteUser", mock.Anything, mock.Anything)
	})

	t.Run("ClaimWithoutID", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewHandlerImpl(mockService, slog.Default())

		idless := &types.UserPayload{Role: types.RoleStudent, Email: "s@example.com"}
		req := withClaim(httptest.NewRequest(http.MethodDelete, "/users/delete", nil), idless)
		w := httptest.NewRecorder()
		handler.DeleteUser(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "User ID is missing", decodeMessage(t, w))
		mockService.AssertNotCalled(t, "DeleteUser", mock.Anything, mock.Anything)
	})
}

func TestNewHandlerImpl(t *testing.T) {
	t.Run("NilService", func(t *testing.T) {
		assert.Panics(t, func() {
			NewHandlerImpl(nil, slog.Default())
		})
	})

	t.Run("NilLogger", func(t *testing.T) {
		assert.Panics(t, func() {
			NewHandlerImpl(new(MockUserService), nil)
		})
	})
}
