package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/project-task-api/internal/models"
	"github.com/yukikurage/project-task-api/internal/testutil"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TaskRepositoryTestSuite runs the task repository against SQLite
type TaskRepositoryTestSuite struct {
	suite.Suite
	db   *gorm.DB
	repo TaskRepository
	ctx  context.Context
}

func (suite *TaskRepositoryTestSuite) SetupTest() {
	suite.db = testutil.NewDB(suite.T())
	suite.repo = NewTaskRepository(suite.db)
	suite.ctx = context.Background()
}

func (suite *TaskRepositoryTestSuite) TestCreateAssignment_Success() {
	user := testutil.CreateUser(suite.T(), suite.db, "alice@example.com", models.RoleUser)
	task := testutil.CreateTask(suite.T(), suite.db, "Write docs", nil)

	assignment, err := suite.repo.CreateAssignment(suite.ctx, user.ID, task.ID)
	suite.Require().NoError(err)
	suite.NotZero(assignment.ID)
	suite.Equal(int64(1), testutil.CountAssignments(suite.T(), suite.db, user.ID, task.ID))
}

func (suite *TaskRepositoryTestSuite) TestCreateAssignment_Duplicate() {
	user := testutil.CreateUser(suite.T(), suite.db, "alice@example.com", models.RoleUser)
	task := testutil.CreateTask(suite.T(), suite.db, "Write docs", nil)

	_, err := suite.repo.CreateAssignment(suite.ctx, user.ID, task.ID)
	suite.Require().NoError(err)

	_, err = suite.repo.CreateAssignment(suite.ctx, user.ID, task.ID)
	suite.ErrorIs(err, ErrDuplicateAssignment)
	suite.Equal(int64(1), testutil.CountAssignments(suite.T(), suite.db, user.ID, task.ID))
}

func (suite *TaskRepositoryTestSuite) TestUniqueIndexRejectsDirectDuplicate() {
	user := testutil.CreateUser(suite.T(), suite.db, "alice@example.com", models.RoleUser)
	task := testutil.CreateTask(suite.T(), suite.db, "Write docs", nil)
	testutil.Assign(suite.T(), suite.db, user, task)

	err := suite.db.Create(&models.TaskAssignment{UserID: user.ID, TaskID: task.ID}).Error
	suite.ErrorIs(err, gorm.ErrDuplicatedKey)
}

func (suite *TaskRepositoryTestSuite) TestDeleteAssignment_Idempotent() {
	user := testutil.CreateUser(suite.T(), suite.db, "alice@example.com", models.RoleUser)
	task := testutil.CreateTask(suite.T(), suite.db, "Write docs", nil)
	testutil.Assign(suite.T(), suite.db, user, task)

	removed, err := suite.repo.DeleteAssignment(suite.ctx, user.ID, task.ID)
	suite.Require().NoError(err)
	suite.Equal(int64(1), removed)

	removed, err = suite.repo.DeleteAssignment(suite.ctx, user.ID, task.ID)
	suite.Require().NoError(err)
	suite.Zero(removed)
}

func (suite *TaskRepositoryTestSuite) TestFindWithProjectAndAssignees() {
	admin := testutil.CreateUser(suite.T(), suite.db, "admin@example.com", models.RoleUser)
	member := testutil.CreateUser(suite.T(), suite.db, "member@example.com", models.RoleUser)
	project := testutil.CreateProject(suite.T(), suite.db, "Apollo", []*models.User{member}, []*models.User{admin})
	task := testutil.CreateTask(suite.T(), suite.db, "Launch", project)
	testutil.Assign(suite.T(), suite.db, member, task)

	found, err := suite.repo.FindWithProjectAndAssignees(suite.ctx, task.ID)
	suite.Require().NoError(err)
	suite.Require().NotNil(found.Project)
	suite.True(found.Project.HasMember(member.ID))
	suite.True(found.Project.HasAdmin(admin.ID))
	suite.False(found.Project.HasAdmin(member.ID))
	suite.Require().Len(found.Assignments, 1)
	suite.Equal("member@example.com", found.Assignments[0].User.Email)
}

func (suite *TaskRepositoryTestSuite) TestFindByID_NotFound() {
	_, err := suite.repo.FindByID(suite.ctx, 999)
	suite.ErrorIs(err, gorm.ErrRecordNotFound)
}

func (suite *TaskRepositoryTestSuite) TestMarkDone() {
	user := testutil.CreateUser(suite.T(), suite.db, "alice@example.com", models.RoleUser)
	task := testutil.CreateTask(suite.T(), suite.db, "Write docs", nil)
	testutil.Assign(suite.T(), suite.db, user, task)

	done, err := suite.repo.MarkDone(suite.ctx, task.ID)
	suite.Require().NoError(err)
	suite.Equal(models.TaskStatusDone, done.Status)
	suite.True(done.Completed)
	suite.Len(done.Assignments, 1)

	// A second call leaves the task unchanged.
	again, err := suite.repo.MarkDone(suite.ctx, task.ID)
	suite.Require().NoError(err)
	suite.Equal(models.TaskStatusDone, again.Status)

	_, err = suite.repo.MarkDone(suite.ctx, 999)
	suite.ErrorIs(err, gorm.ErrRecordNotFound)
}

func (suite *TaskRepositoryTestSuite) TestUpdateFields_LeavesOtherColumns() {
	task := testutil.CreateTask(suite.T(), suite.db, "Write docs", nil)

	// A completion lands after the caller loaded the task.
	stale, err := suite.repo.FindByID(suite.ctx, task.ID)
	suite.Require().NoError(err)
	_, err = suite.repo.MarkDone(suite.ctx, task.ID)
	suite.Require().NoError(err)

	suite.Require().NoError(suite.repo.UpdateFields(suite.ctx, stale.ID, map[string]interface{}{
		"title": "Write better docs",
	}))

	found, err := suite.repo.FindByID(suite.ctx, task.ID)
	suite.Require().NoError(err)
	suite.Equal("Write better docs", found.Title)
	suite.Equal(models.TaskStatusDone, found.Status)
	suite.True(found.Completed)
}

func (suite *TaskRepositoryTestSuite) TestDelete_RemovesAssignments() {
	user := testutil.CreateUser(suite.T(), suite.db, "alice@example.com", models.RoleUser)
	task := testutil.CreateTask(suite.T(), suite.db, "Write docs", nil)
	testutil.Assign(suite.T(), suite.db, user, task)

	suite.Require().NoError(suite.repo.Delete(suite.ctx, task.ID))
	suite.Zero(testutil.CountAssignments(suite.T(), suite.db, user.ID, task.ID))

	err := suite.repo.Delete(suite.ctx, task.ID)
	suite.ErrorIs(err, gorm.ErrRecordNotFound)
}

func (suite *TaskRepositoryTestSuite) TestList_Visibility() {
	alice := testutil.CreateUser(suite.T(), suite.db, "alice@example.com", models.RoleUser)
	bob := testutil.CreateUser(suite.T(), suite.db, "bob@example.com", models.RoleUser)

	apollo := testutil.CreateProject(suite.T(), suite.db, "Apollo", []*models.User{alice}, nil)
	gemini := testutil.CreateProject(suite.T(), suite.db, "Gemini", []*models.User{bob}, nil)

	inApollo := testutil.CreateTask(suite.T(), suite.db, "Apollo task", apollo)
	inGemini := testutil.CreateTask(suite.T(), suite.db, "Gemini task", gemini)
	unscoped := testutil.CreateTask(suite.T(), suite.db, "Loose task", nil)
	testutil.CreateTask(suite.T(), suite.db, "Someone else's loose task", nil)
	testutil.Assign(suite.T(), suite.db, alice, unscoped)

	tasks, total, err := suite.repo.List(suite.ctx, TaskFilter{VisibleToUserID: &alice.ID})
	suite.Require().NoError(err)
	suite.Equal(int64(2), total)

	ids := []uint64{}
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	suite.ElementsMatch([]uint64{inApollo.ID, unscoped.ID}, ids)
	suite.NotContains(ids, inGemini.ID)

	all, total, err := suite.repo.List(suite.ctx, TaskFilter{})
	suite.Require().NoError(err)
	suite.Equal(int64(4), total)
	suite.Len(all, 4)
}

func (suite *TaskRepositoryTestSuite) TestList_FiltersAndPagination() {
	alice := testutil.CreateUser(suite.T(), suite.db, "alice@example.com", models.RoleUser)
	project := testutil.CreateProject(suite.T(), suite.db, "Apollo", []*models.User{alice}, nil)

	for i := 0; i < 5; i++ {
		task := testutil.CreateTask(suite.T(), suite.db, "Task", project)
		if i%2 == 0 {
			testutil.Assign(suite.T(), suite.db, alice, task)
		}
	}
	done := testutil.CreateTask(suite.T(), suite.db, "Done task", project)
	suite.Require().NoError(suite.db.Model(done).Updates(map[string]interface{}{"status": models.TaskStatusDone, "completed": true}).Error)

	mine, total, err := suite.repo.List(suite.ctx, TaskFilter{AssignedUserID: &alice.ID})
	suite.Require().NoError(err)
	suite.Equal(int64(3), total)
	suite.Len(mine, 3)

	status := models.TaskStatusDone
	finished, total, err := suite.repo.List(suite.ctx, TaskFilter{ProjectID: &project.ID, Status: &status})
	suite.Require().NoError(err)
	suite.Equal(int64(1), total)
	suite.Equal(done.ID, finished[0].ID)

	page, total, err := suite.repo.List(suite.ctx, TaskFilter{Page: 2, PageSize: 4})
	suite.Require().NoError(err)
	suite.Equal(int64(6), total)
	suite.Len(page, 2)
}

func TestTaskRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(TaskRepositoryTestSuite))
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	return db, mock
}

func TestCreateAssignment_MySQLDuplicateKeyFromConcurrentInsert(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepository(db)

	// The pre-check sees nothing; the insert then loses the race.
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `task_assignments`").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `task_assignments`").
		WillReturnError(&mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry 'user-1-7' for key 'uk_task_assignment'"})
	mock.ExpectRollback()

	_, err := repo.CreateAssignment(context.Background(), "user-1", 7)
	assert.ErrorIs(t, err, ErrDuplicateAssignment)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAssignment_MySQLStorageFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepository(db)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `task_assignments`").
		WillReturnError(errors.New("connection reset by peer"))

	_, err := repo.CreateAssignment(context.Background(), "user-1", 7)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicateAssignment)
	assert.Contains(t, err.Error(), "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}
