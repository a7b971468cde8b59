package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/lms-go-api/internal/config"
	"github.com/noah-isme/lms-go-api/internal/dto"
	"github.com/noah-isme/lms-go-api/internal/handler"
	"github.com/noah-isme/lms-go-api/internal/models"
	"github.com/noah-isme/lms-go-api/internal/repository"
	"github.com/noah-isme/lms-go-api/internal/router"
	"github.com/noah-isme/lms-go-api/internal/service"
)

type handlerTestUploader struct{}

func (u *handlerTestUploader) Upload(_ context.Context, name string, _ io.Reader) (string, error) {
	return "https://files.test/" + name, nil
}

func setupSubmissionApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.Assignment{},
		&models.Submission{},
		&models.LateApproval{},
		&models.ExtensionRequest{},
	))

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	courseRepo := repository.NewCourseRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	approvalRepo := repository.NewLateApprovalRepository(db)
	extensionRepo := repository.NewExtensionRequestRepository(db)

	assignmentService := service.NewAssignmentService(assignmentRepo, submissionRepo, courseRepo, nil, validate, logger)
	submissionService := service.NewSubmissionService(submissionRepo, assignmentRepo, approvalRepo, extensionRepo, &handlerTestUploader{}, 10, validate, logger)

	app := fiber.New()
	assignmentHandler := handler.NewAssignmentHandler(assignmentService, submissionService, logger)
	submissionHandler := handler.NewSubmissionHandler(submissionService, logger)

	router.Register(app, config.Config{AppName: "Test", JWTSecret: "secret"}, router.Dependencies{
		AssignmentHandler: assignmentHandler,
		SubmissionHandler: submissionHandler,
		JWTMiddleware: func(c *fiber.Ctx) error {
			c.Locals("user_id", uint(1))
			return c.Next()
		},
	})

	return app, db
}

func seedOpenAssignment(t *testing.T, db *gorm.DB) models.Assignment {
	t.Helper()

	course := models.Course{Title: "Databases"}
	require.NoError(t, db.Create(&course).Error)

	assignment := models.Assignment{
		CourseID: course.ID,
		Title:    "Schema design",
		DueDate:  time.Now().Add(48 * time.Hour).UTC(),
		MaxScore: 100,
	}
	require.NoError(t, db.Create(&assignment).Error)

	return assignment
}

func TestSubmissionTextFlowAndDuplicateConflict(t *testing.T) {
	app, db := setupSubmissionApp(t)
	assignment := seedOpenAssignment(t, db)

	raw := []byte(`{"content":"my answer"}`)
	url := fmt.Sprintf("/api/v1/submissions/assignments/%d/text", assignment.ID)

	req := httptest.NewRequest("POST", url, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	req = httptest.NewRequest("POST", url, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestSubmissionEligibilityReportsPastDue(t *testing.T) {
	app, db := setupSubmissionApp(t)

	course := models.Course{Title: "Networks"}
	require.NoError(t, db.Create(&course).Error)
	assignment := models.Assignment{
		CourseID: course.ID,
		Title:    "Packet capture",
		DueDate:  time.Now().Add(-24 * time.Hour).UTC(),
		MaxScore: 100,
	}
	require.NoError(t, db.Create(&assignment).Error)

	url := fmt.Sprintf("/api/v1/submissions/assignments/%d/eligibility", assignment.ID)
	resp, err := app.Test(httptest.NewRequest("GET", url, nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Data dto.EligibilityResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.False(t, body.Data.Allowed)
	require.Equal(t, "past due, no approval", body.Data.Reason)
}

func TestLateApprovalUnblocksSubmission(t *testing.T) {
	app, db := setupSubmissionApp(t)

	course := models.Course{Title: "Security"}
	require.NoError(t, db.Create(&course).Error)
	assignment := models.Assignment{
		CourseID: course.ID,
		Title:    "Threat model",
		DueDate:  time.Now().Add(-24 * time.Hour).UTC(),
		MaxScore: 100,
	}
	require.NoError(t, db.Create(&assignment).Error)

	approval := map[string]interface{}{
		"user_id":        1,
		"approved_until": time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339),
	}
	raw, err := json.Marshal(approval)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", fmt.Sprintf("/api/v1/assignments/%d/approvals", assignment.ID), bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	req = httptest.NewRequest("POST", fmt.Sprintf("/api/v1/submissions/assignments/%d/text", assignment.ID), bytes.NewReader([]byte(`{"content":"late but approved"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
}
