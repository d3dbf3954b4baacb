package handlers

import (
	"net/http"
	"strings"

	"github.com/yukikurage/project-task-api/internal/dto"
	apierrors "github.com/yukikurage/project-task-api/internal/errors"
	"github.com/yukikurage/project-task-api/internal/models"
)

func (s *apiSuite) TestRegister() {
	w := s.do(http.MethodPost, "/api/auth/register", map[string]string{
		"email":    "NewUser@Example.com",
		"password": testPassword,
	}, nil)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var user dto.UserDTO
	s.decode(w, &user)
	s.Equal("newuser@example.com", user.Email)
	s.Equal(models.RoleUser, user.Role)
	s.NotEmpty(user.ID)

	w = s.do(http.MethodPost, "/api/auth/register", map[string]string{
		"email":    "newuser@example.com",
		"password": testPassword,
	}, nil)
	s.requireError(w, http.StatusConflict, apierrors.ErrCodeConflict)
}

func (s *apiSuite) TestRegister_ShortPassword() {
	w := s.do(http.MethodPost, "/api/auth/register", map[string]string{
		"email":    "short@example.com",
		"password": "abc",
	}, nil)
	body := s.requireError(w, http.StatusBadRequest, apierrors.ErrCodeInvalidInput)
	s.True(strings.HasPrefix(body.Message, "Password must be at least"))
}

func (s *apiSuite) TestLogin_InvalidCredentials() {
	s.account("alice@example.com", models.RoleUser)

	w := s.do(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong-password",
	}, nil)
	s.requireError(w, http.StatusUnauthorized, apierrors.ErrCodeUnauthorized)

	w = s.do(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "nobody@example.com",
		"password": testPassword,
	}, nil)
	s.requireError(w, http.StatusUnauthorized, apierrors.ErrCodeUnauthorized)
}

func (s *apiSuite) TestSessionLifecycle() {
	alice := s.account("alice@example.com", models.RoleUser)

	w := s.do(http.MethodGet, "/api/auth/me", nil, nil)
	s.requireError(w, http.StatusUnauthorized, apierrors.ErrCodeUnauthorized)

	cookies := s.login("alice@example.com")

	w = s.do(http.MethodGet, "/api/auth/me", nil, cookies)
	s.Require().Equal(http.StatusOK, w.Code)
	var me dto.UserDTO
	s.decode(w, &me)
	s.Equal(alice.ID, me.ID)

	w = s.do(http.MethodPost, "/api/auth/logout", nil, cookies)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/auth/me", nil, w.Result().Cookies())
	s.requireError(w, http.StatusUnauthorized, apierrors.ErrCodeUnauthorized)
}

func (s *apiSuite) TestUsers_GlobalAdminOnly() {
	s.account("root@example.com", models.RoleAdmin)
	alice := s.account("alice@example.com", models.RoleUser)

	w := s.do(http.MethodGet, "/api/users", nil, s.login("alice@example.com"))
	s.requireError(w, http.StatusForbidden, apierrors.ErrCodeForbidden)

	root := s.login("root@example.com")
	w = s.do(http.MethodGet, "/api/users", nil, root)
	s.Require().Equal(http.StatusOK, w.Code)
	var list struct {
		Users []dto.UserWithProjectsDTO `json:"users"`
	}
	s.decode(w, &list)
	s.Len(list.Users, 2)

	w = s.do(http.MethodPut, "/api/users/"+alice.ID+"/role", map[string]string{"role": "admin"}, root)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var updated dto.UserDTO
	s.decode(w, &updated)
	s.Equal(models.RoleAdmin, updated.Role)

	w = s.do(http.MethodPut, "/api/users/"+alice.ID+"/role", map[string]string{"role": "owner"}, root)
	s.requireError(w, http.StatusBadRequest, apierrors.ErrCodeInvalidInput)

	w = s.do(http.MethodPut, "/api/users/missing/role", map[string]string{"role": "USER"}, root)
	s.requireError(w, http.StatusNotFound, apierrors.ErrCodeNotFound)
}
