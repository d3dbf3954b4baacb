package handlers

import (
	"fmt"
	"net/http"

	"github.com/yukikurage/project-task-api/internal/dto"
	apierrors "github.com/yukikurage/project-task-api/internal/errors"
	"github.com/yukikurage/project-task-api/internal/models"
	"github.com/yukikurage/project-task-api/internal/testutil"
)

// taskFixture is one project with an admin, one member, an outsider and a
// task, plus logged-in cookies for each.
type taskFixture struct {
	project  *models.Project
	task     *models.Task
	lead     *models.User
	member   *models.User
	outsider *models.User

	root, leadCookies, memberCookies, outsiderCookies []*http.Cookie
}

func (s *apiSuite) newTaskFixture() taskFixture {
	var f taskFixture
	s.account("root@example.com", models.RoleAdmin)
	f.lead = s.account("lead@example.com", models.RoleUser)
	f.member = s.account("member@example.com", models.RoleUser)
	f.outsider = s.account("outsider@example.com", models.RoleUser)
	f.project = testutil.CreateProject(s.T(), s.db, "Apollo", []*models.User{f.member}, []*models.User{f.lead})
	f.task = testutil.CreateTask(s.T(), s.db, "Launch", f.project)

	f.root = s.login("root@example.com")
	f.leadCookies = s.login("lead@example.com")
	f.memberCookies = s.login("member@example.com")
	f.outsiderCookies = s.login("outsider@example.com")
	return f
}

func taskPath(id uint64, suffix string) string {
	return fmt.Sprintf("/api/tasks/%d%s", id, suffix)
}

func (s *apiSuite) TestTasks_RequireAuth() {
	w := s.do(http.MethodGet, "/api/tasks", nil, nil)
	s.requireError(w, http.StatusUnauthorized, apierrors.ErrCodeUnauthorized)
}

func (s *apiSuite) TestCreateTask_ClassifiesPriority() {
	f := s.newTaskFixture()

	w := s.do(http.MethodPost, "/api/tasks", map[string]interface{}{
		"title":       "Hotfix",
		"description": "urgent bug in checkout",
		"project_id":  f.project.ID,
		"use_ai":      true,
	}, f.leadCookies)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var task dto.TaskDTO
	s.decode(w, &task)
	s.Equal(models.PriorityHigh, task.Priority)
	s.Equal(models.TaskStatusTodo, task.Status)

	w = s.do(http.MethodPost, "/api/tasks", map[string]interface{}{
		"title":      "Plain",
		"project_id": f.project.ID,
	}, f.leadCookies)
	s.Require().Equal(http.StatusCreated, w.Code)
	s.decode(w, &task)
	s.Equal(models.PriorityMedium, task.Priority)

	w = s.do(http.MethodPost, "/api/tasks", map[string]interface{}{
		"title":      "Sneaky",
		"project_id": f.project.ID,
	}, f.memberCookies)
	s.requireError(w, http.StatusForbidden, apierrors.ErrCodeForbidden)

	w = s.do(http.MethodPost, "/api/tasks", map[string]interface{}{
		"title":    "Bad",
		"priority": "whenever",
	}, f.root)
	s.requireError(w, http.StatusBadRequest, apierrors.ErrCodeInvalidInput)
}

func (s *apiSuite) TestAssignAndComplete() {
	f := s.newTaskFixture()
	assign := taskPath(f.task.ID, "/assign")

	w := s.do(http.MethodPost, assign, map[string]string{"user_id": f.outsider.ID}, f.leadCookies)
	s.requireError(w, http.StatusUnprocessableEntity, apierrors.ErrCodeNotEligible)

	w = s.do(http.MethodPost, assign, map[string]string{"user_id": f.member.ID}, f.memberCookies)
	s.requireError(w, http.StatusForbidden, apierrors.ErrCodeForbidden)

	w = s.do(http.MethodPost, assign, map[string]string{"user_id": f.member.ID}, f.leadCookies)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var assignment dto.TaskAssignmentDTO
	s.decode(w, &assignment)
	s.Equal(f.member.ID, assignment.UserID)
	s.Equal(f.task.ID, assignment.TaskID)

	w = s.do(http.MethodPost, assign, map[string]string{"user_id": f.member.ID}, f.leadCookies)
	s.requireError(w, http.StatusConflict, apierrors.ErrCodeConflict)
	s.Equal(int64(1), testutil.CountAssignments(s.T(), s.db, f.member.ID, f.task.ID))

	complete := taskPath(f.task.ID, "/complete")
	w = s.do(http.MethodPut, complete, nil, f.outsiderCookies)
	s.requireError(w, http.StatusForbidden, apierrors.ErrCodeForbidden)

	w = s.do(http.MethodPut, complete, nil, f.memberCookies)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var task dto.TaskDTO
	s.decode(w, &task)
	s.Equal(models.TaskStatusDone, task.Status)
	s.True(task.Completed)

	w = s.do(http.MethodPost, taskPath(f.task.ID, "/unassign"), map[string]string{"user_id": f.member.ID}, f.leadCookies)
	s.Require().Equal(http.StatusOK, w.Code)
	w = s.do(http.MethodPost, taskPath(f.task.ID, "/unassign"), map[string]string{"user_id": f.member.ID}, f.leadCookies)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Zero(testutil.CountAssignments(s.T(), s.db, f.member.ID, f.task.ID))
}

func (s *apiSuite) TestTaskRoutes_BadIDs() {
	f := s.newTaskFixture()

	w := s.do(http.MethodPut, "/api/tasks/0/complete", nil, f.root)
	s.requireError(w, http.StatusBadRequest, apierrors.ErrCodeInvalidInput)

	w = s.do(http.MethodPut, "/api/tasks/nope/complete", nil, f.root)
	s.requireError(w, http.StatusBadRequest, apierrors.ErrCodeInvalidInput)

	w = s.do(http.MethodPut, taskPath(9999, "/complete"), nil, f.root)
	s.requireError(w, http.StatusNotFound, apierrors.ErrCodeNotFound)

	w = s.do(http.MethodPost, taskPath(f.task.ID, "/assign"), map[string]string{}, f.root)
	s.requireError(w, http.StatusBadRequest, apierrors.ErrCodeInvalidInput)
}

func (s *apiSuite) TestUpdateTask() {
	f := s.newTaskFixture()
	path := taskPath(f.task.ID, "")

	w := s.do(http.MethodPatch, path, map[string]string{"title": "Renamed"}, f.leadCookies)
	s.requireError(w, http.StatusForbidden, apierrors.ErrCodeForbidden)

	w = s.do(http.MethodPatch, path, map[string]string{
		"title":    "Renamed",
		"status":   "done",
		"deadline": "2030-01-31",
	}, f.root)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var task dto.TaskDTO
	s.decode(w, &task)
	s.Equal("Renamed", task.Title)
	s.Equal(models.TaskStatusDone, task.Status)
	s.Require().NotNil(task.Deadline)

	w = s.do(http.MethodPatch, path, map[string]string{"status": "TODO"}, f.root)
	s.requireError(w, http.StatusBadRequest, apierrors.ErrCodeInvalidInput)
}

func (s *apiSuite) TestListAndGetTasks() {
	f := s.newTaskFixture()
	for i := 0; i < 3; i++ {
		testutil.CreateTask(s.T(), s.db, fmt.Sprintf("Extra %d", i), f.project)
	}
	loose := testutil.CreateTask(s.T(), s.db, "Loose", nil)
	testutil.Assign(s.T(), s.db, f.member, f.task)

	w := s.do(http.MethodGet, "/api/tasks?page=1&limit=2", nil, f.memberCookies)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var page dto.TaskListResponse
	s.decode(w, &page)
	s.Len(page.Tasks, 2)
	s.Equal(int64(4), page.Pagination.Total)
	s.Equal(2, page.Pagination.TotalPages)

	w = s.do(http.MethodGet, "/api/tasks", nil, f.root)
	s.Require().Equal(http.StatusOK, w.Code)
	s.decode(w, &page)
	s.Equal(int64(5), page.Pagination.Total)

	w = s.do(http.MethodGet, "/api/tasks?status=bogus", nil, f.root)
	s.requireError(w, http.StatusBadRequest, apierrors.ErrCodeInvalidInput)

	w = s.do(http.MethodGet, "/api/tasks/mine", nil, f.memberCookies)
	s.Require().Equal(http.StatusOK, w.Code)
	var mine struct {
		Tasks []dto.TaskDTO `json:"tasks"`
	}
	s.decode(w, &mine)
	s.Require().Len(mine.Tasks, 1)
	s.Equal(f.task.ID, mine.Tasks[0].ID)

	w = s.do(http.MethodGet, taskPath(f.task.ID, ""), nil, f.outsiderCookies)
	s.requireError(w, http.StatusForbidden, apierrors.ErrCodeForbidden)

	w = s.do(http.MethodGet, taskPath(loose.ID, ""), nil, f.root)
	s.Require().Equal(http.StatusOK, w.Code)
}

func (s *apiSuite) TestDeleteTask() {
	f := s.newTaskFixture()
	path := taskPath(f.task.ID, "")

	w := s.do(http.MethodDelete, path, nil, f.memberCookies)
	s.requireError(w, http.StatusForbidden, apierrors.ErrCodeForbidden)

	w = s.do(http.MethodDelete, path, nil, f.leadCookies)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, path, nil, f.root)
	s.requireError(w, http.StatusNotFound, apierrors.ErrCodeNotFound)
}

func (s *apiSuite) TestDetectPriority() {
	s.account("alice@example.com", models.RoleUser)
	cookies := s.login("alice@example.com")

	w := s.do(http.MethodGet, "/api/ai/priority?description=fix+the+critical+bug", nil, cookies)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var result dto.PriorityDTO
	s.decode(w, &result)
	s.Equal(models.PriorityHigh, result.Priority)

	w = s.do(http.MethodPost, "/api/ai/priority", map[string]string{"description": "optional cleanup someday"}, cookies)
	s.Require().Equal(http.StatusOK, w.Code)
	s.decode(w, &result)
	s.Equal(models.PriorityLow, result.Priority)

	w = s.do(http.MethodGet, "/api/ai/priority", nil, cookies)
	s.requireError(w, http.StatusBadRequest, apierrors.ErrCodeInvalidInput)
}
