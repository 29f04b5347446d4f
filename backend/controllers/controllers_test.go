package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"trainhub/backend/config"
	"trainhub/backend/models"
	"trainhub/backend/routes"
	"trainhub/backend/utils"
)

var (
	app      *fiber.App
	db       *gorm.DB
	cfg      *config.Config
	jwtToken string

	course   models.Course
	students []models.User
)

func TestMain(m *testing.M) {
	setup()
	os.Exit(m.Run())
}

func setup() {
	cfg = &config.Config{
		JWTSecret:  "testsecret",
		ServerPort: "8080",
	}

	var err error
	db, err = gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic(err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.LoginHistory{},
		&models.Enrollment{},
		&models.Course{},
		&models.CourseModule{},
		&models.Lesson{},
		&models.Topic{},
		&models.Batch{},
		&models.BatchCompletionMark{},
		&models.BatchCertificate{},
	); err != nil {
		panic(err)
	}

	app = fiber.New()
	routes.SetupRoutes(app, db, cfg)

	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	admin := models.User{
		Username:     "admin",
		Email:        "admin@example.com",
		PasswordHash: string(hash),
		Role:         "admin",
		FullName:     "Site Admin",
	}
	db.Create(&admin)

	jwtToken, err = utils.GenerateJWTToken(admin.ID, cfg)
	if err != nil {
		panic(err)
	}

	// Curriculum: one module with one lesson carrying two topics, and a
	// second lessonless module.
	course = models.Course{
		Title: "Go Fundamentals",
		Modules: []models.CourseModule{
			{
				Title:         "Basics",
				SequenceOrder: 1,
				Lessons: []models.Lesson{
					{
						Title:         "Syntax",
						SequenceOrder: 1,
						Topics: []models.Topic{
							{Title: "Variables", SequenceOrder: 1},
							{Title: "Control flow", SequenceOrder: 2},
						},
					},
				},
			},
			{Title: "Project week", SequenceOrder: 2},
		},
	}
	db.Create(&course)

	for i := 0; i < 3; i++ {
		u := models.User{
			Username:     fmt.Sprintf("student%d", i+1),
			Email:        fmt.Sprintf("student%d@example.com", i+1),
			PasswordHash: string(hash),
			FullName:     fmt.Sprintf("Student %d", i+1),
		}
		db.Create(&u)
		db.Create(&models.Enrollment{UserID: u.ID, CourseID: course.ID})
		students = append(students, u)
	}
}

func doRequest(t *testing.T, method, path string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(jsonData)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", jwtToken)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	return resp, result
}

func createBatch(t *testing.T, name string, users []interface{}) uint {
	t.Helper()

	resp, result := doRequest(t, "POST", "/api/batches/", map[string]interface{}{
		"batchName": name,
		"course":    course.ID,
		"users":     users,
		"startDate": "2026-01-05",
		"endDate":   "2026-03-27",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	batch := result["data"].(map[string]interface{})["batch"].(map[string]interface{})
	return uint(batch["id"].(float64))
}

func TestBatchesRequireAuth(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/batches/", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestCreateBatchRejectsEmptySelection(t *testing.T) {
	resp, result := doRequest(t, "POST", "/api/batches/", map[string]interface{}{
		"batchName": "Empty cohort",
		"course":    course.ID,
		"users":     []interface{}{},
		"startDate": "2026-01-05",
		"endDate":   "2026-03-27",
	})

	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	details := result["details"].(map[string]interface{})
	assert.Contains(t, details["users"], "at least one user")

	// Nothing was written
	var count int64
	db.Model(&models.Batch{}).Where("name = ?", "Empty cohort").Count(&count)
	assert.Zero(t, count)
}

func TestCreateBatchRejectsDanglingUser(t *testing.T) {
	resp, _ := doRequest(t, "POST", "/api/batches/", map[string]interface{}{
		"batchName": "Dangling cohort",
		"course":    course.ID,
		"users":     []interface{}{students[0].ID, 9999},
		"startDate": "2026-01-05",
		"endDate":   "2026-03-27",
	})

	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func TestCreateBatchNormalizesUserShapes(t *testing.T) {
	// Same user as bare id and as object reference, plus a second user
	batchID := createBatch(t, "Spring cohort", []interface{}{
		students[0].ID,
		map[string]interface{}{"id": students[0].ID},
		map[string]interface{}{"_id": students[1].ID},
	})

	var batch models.Batch
	require.NoError(t, db.Preload("Users").First(&batch, batchID).Error)
	assert.Len(t, batch.Users, 2)
}

func TestUserBreakdownSplitsPool(t *testing.T) {
	batchID := createBatch(t, "Breakdown cohort", []interface{}{students[0].ID})

	resp, result := doRequest(t, "GET",
		fmt.Sprintf("/api/batches/user-breakdown/%d/%d", course.ID, batchID), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	breakdown := result["breakdown"].(map[string]interface{})
	assigned := breakdown["assignedToThisBatch"].(map[string]interface{})["users"].([]interface{})
	available := breakdown["availableUsers"].(map[string]interface{})["users"].([]interface{})

	require.Len(t, assigned, 1)
	assert.Equal(t, float64(students[0].ID), assigned[0].(map[string]interface{})["id"])
	assert.Equal(t, true, assigned[0].(map[string]interface{})["isAssigned"])

	// Remaining enrolled students, assigned one not repeated
	assert.Len(t, available, len(students)-1)
	for _, entry := range available {
		assert.NotEqual(t, float64(students[0].ID), entry.(map[string]interface{})["id"])
	}
}

func TestUpdateBatchFlattensCompletionPayload(t *testing.T) {
	batchID := createBatch(t, "Completion cohort", []interface{}{students[0].ID})

	var full models.Course
	require.NoError(t, db.Preload("Modules.Lessons.Topics").First(&full, course.ID).Error)
	module := full.Modules[0]
	lesson := module.Lessons[0]
	topicA, topicB := lesson.Topics[0], lesson.Topics[1]

	// Module arrives as a populated sub-document nesting its completed
	// lessons and topics; topicA is also duplicated at top level.
	resp, result := doRequest(t, "PUT", fmt.Sprintf("/api/batches/%d", batchID), map[string]interface{}{
		"batchName": "Completion cohort",
		"course":    course.ID,
		"users":     []interface{}{students[0].ID},
		"startDate": "2026-01-05",
		"endDate":   "2026-03-27",
		"completedModules": []interface{}{
			map[string]interface{}{
				"id": module.ID,
				"completedLessons": []interface{}{
					map[string]interface{}{
						"id":              lesson.ID,
						"completedTopics": []interface{}{topicA.ID, topicB.ID},
					},
				},
			},
		},
		"completedTopics": []interface{}{topicA.ID},
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	progressDetail := result["progress"].(map[string]interface{})
	assert.Equal(t, float64(1), progressDetail["completedModulesCount"])
	assert.Equal(t, float64(1), progressDetail["completedLessonsCount"])
	assert.Equal(t, float64(2), progressDetail["completedTopicsCount"])
	// 3 of 3 leaf units (1 lesson + 2 topics) done
	assert.Equal(t, float64(100), progressDetail["percentage"])

	var count int64
	db.Model(&models.BatchCompletionMark{}).
		Where("batch_id = ? AND kind = ? AND node_id = ?", batchID, models.MarkKindTopic, topicA.ID).
		Count(&count)
	assert.Equal(t, int64(1), count, "duplicated topic persists exactly once")

	// Detail endpoint serves the flattened lists back
	resp, result = doRequest(t, "GET", fmt.Sprintf("/api/batches/%d", batchID), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	batchPayload := result["batch"].(map[string]interface{})
	assert.Len(t, batchPayload["completedTopics"], 2)
}

func TestCertificateFlow(t *testing.T) {
	batchID := createBatch(t, "Graduating cohort", []interface{}{students[0].ID, students[1].ID})

	// Not course-completed yet: send is refused before any issuance
	resp, _ := doRequest(t, "POST", "/api/batches/send-certificates/", map[string]interface{}{
		"batchId": batchID,
	})
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	resp, _ = doRequest(t, "PUT", fmt.Sprintf("/api/batches/%d", batchID), map[string]interface{}{
		"batchName":       "Graduating cohort",
		"course":          course.ID,
		"users":           []interface{}{students[0].ID, students[1].ID},
		"startDate":       "2026-01-05",
		"endDate":         "2026-03-27",
		"markAsCompleted": true,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, result := doRequest(t, "GET",
		fmt.Sprintf("/api/batches/batch-certificates/stats/%d", batchID), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), result["totalUsers"])
	assert.Equal(t, float64(0), result["issuedCount"])
	affordance := result["affordance"].(map[string]interface{})
	assert.Equal(t, true, affordance["visible"])
	assert.Equal(t, "send", affordance["mode"])

	resp, result = doRequest(t, "POST", "/api/batches/send-certificates/", map[string]interface{}{
		"batchId": batchID,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), result["issued"])

	// All issued now: affordance flips and a second send conflicts
	resp, result = doRequest(t, "GET",
		fmt.Sprintf("/api/batches/batch-certificates/stats/%d", batchID), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), result["issuedCount"])
	affordance = result["affordance"].(map[string]interface{})
	assert.Equal(t, "allIssued", affordance["mode"])

	resp, _ = doRequest(t, "POST", "/api/batches/send-certificates/", map[string]interface{}{
		"batchId": batchID,
	})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestBatchesListingPaginates(t *testing.T) {
	for i := 0; i < 4; i++ {
		createBatch(t, fmt.Sprintf("Paging cohort %d", i+1), []interface{}{students[2].ID})
	}

	resp, result := doRequest(t, "GET", "/api/batches/?search=paging&pageSize=3&page=99", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Page 99 clamps to the last real page
	assert.Equal(t, float64(2), result["page"])
	assert.Equal(t, float64(2), result["totalPages"])
	assert.Equal(t, float64(4), result["total"])
	assert.Len(t, result["batches"], 1)
}

func TestCourseDetailsServesHierarchy(t *testing.T) {
	resp, result := doRequest(t, "GET", fmt.Sprintf("/api/courses/%d", course.ID), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	coursePayload := result["course"].(map[string]interface{})
	modules := coursePayload["Modules"].([]interface{})
	require.Len(t, modules, 2)

	first := modules[0].(map[string]interface{})
	lessons := first["Lessons"].([]interface{})
	require.Len(t, lessons, 1)
	topics := lessons[0].(map[string]interface{})["Topics"].([]interface{})
	assert.Len(t, topics, 2)
}
