package handlers

import (
	"fmt"
	"net/http"

	"github.com/yukikurage/project-task-api/internal/dto"
	apierrors "github.com/yukikurage/project-task-api/internal/errors"
	"github.com/yukikurage/project-task-api/internal/models"
)

func (s *apiSuite) createProject(cookies []*http.Cookie, name string) dto.ProjectDTO {
	w := s.do(http.MethodPost, "/api/projects", map[string]string{"name": name}, cookies)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var project dto.ProjectDTO
	s.decode(w, &project)
	return project
}

func (s *apiSuite) TestCreateProject_GlobalAdminOnly() {
	s.account("alice@example.com", models.RoleUser)

	w := s.do(http.MethodPost, "/api/projects", map[string]string{"name": "Apollo"}, s.login("alice@example.com"))
	s.requireError(w, http.StatusForbidden, apierrors.ErrCodeForbidden)
}

func (s *apiSuite) TestProjectMembership() {
	s.account("root@example.com", models.RoleAdmin)
	lead := s.account("lead@example.com", models.RoleUser)
	alice := s.account("alice@example.com", models.RoleUser)
	root := s.login("root@example.com")

	project := s.createProject(root, "Apollo")
	base := fmt.Sprintf("/api/projects/%d", project.ID)

	w := s.do(http.MethodPost, base+"/admins", map[string]string{"user_id": lead.ID}, root)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	leadCookies := s.login("lead@example.com")
	w = s.do(http.MethodPost, base+"/members", map[string]string{"user_id": alice.ID}, leadCookies)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodPost, base+"/members", map[string]string{"user_id": alice.ID}, leadCookies)
	s.requireError(w, http.StatusConflict, apierrors.ErrCodeConflict)

	// Project admins cannot promote other admins.
	w = s.do(http.MethodPost, base+"/admins", map[string]string{"user_id": alice.ID}, leadCookies)
	s.requireError(w, http.StatusForbidden, apierrors.ErrCodeForbidden)

	w = s.do(http.MethodGet, base+"/members", nil, leadCookies)
	s.Require().Equal(http.StatusOK, w.Code)
	var members struct {
		Members []dto.ProjectMemberDTO `json:"members"`
	}
	s.decode(w, &members)
	s.Require().Len(members.Members, 2)
	admins := map[string]bool{}
	for _, m := range members.Members {
		admins[m.User.ID] = m.IsProjectAdmin
	}
	s.True(admins[lead.ID])
	s.False(admins[alice.ID])

	aliceCookies := s.login("alice@example.com")
	w = s.do(http.MethodGet, base+"/members", nil, aliceCookies)
	s.requireError(w, http.StatusForbidden, apierrors.ErrCodeForbidden)

	w = s.do(http.MethodGet, "/api/projects", nil, aliceCookies)
	s.Require().Equal(http.StatusOK, w.Code)
	var list struct {
		Projects []dto.ProjectSummaryDTO `json:"projects"`
	}
	s.decode(w, &list)
	s.Require().Len(list.Projects, 1)
	s.Contains(list.Projects[0].MemberIDs, alice.ID)
	s.Contains(list.Projects[0].AdminIDs, lead.ID)

	w = s.do(http.MethodDelete, base+"/members/"+alice.ID, nil, leadCookies)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodDelete, base+"/members/"+alice.ID, nil, leadCookies)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
}

func (s *apiSuite) TestProjectRoutes_InvalidID() {
	s.account("root@example.com", models.RoleAdmin)
	root := s.login("root@example.com")

	w := s.do(http.MethodGet, "/api/projects/abc/members", nil, root)
	s.requireError(w, http.StatusBadRequest, apierrors.ErrCodeInvalidInput)

	w = s.do(http.MethodGet, "/api/projects/42/members", nil, root)
	s.requireError(w, http.StatusNotFound, apierrors.ErrCodeNotFound)
}
