package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kanzaki/taskproof/internal/database"
	"github.com/kanzaki/taskproof/internal/middleware"
	"github.com/kanzaki/taskproof/internal/models"
	"github.com/kanzaki/taskproof/internal/notify"
	"github.com/kanzaki/taskproof/internal/repository"
	"github.com/kanzaki/taskproof/internal/services"
	"github.com/kanzaki/taskproof/internal/storage"
	"github.com/kanzaki/taskproof/internal/utils"
)

const testJWTSecret = "handler-test-secret-handler-test-secret"

// pngBytes is a PNG signature followed by filler, enough for content
// sniffing to classify the upload as image/png.
var pngBytes = append([]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, []byte("filler")...)

type testEnv struct {
	db     *gorm.DB
	router *gin.Engine
	tokens *utils.TokenManager
}

func setupTestEnv(t *testing.T) testEnv {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.User{}, &models.Task{})
	require.NoError(t, err)

	database.SetDB(db)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	sink, err := storage.NewDiskSink(t.TempDir())
	require.NoError(t, err)

	tokens := utils.NewTokenManager(testJWTSecret)
	logger := zap.NewNop()
	notifier := notify.NewLogNotifier(logger)

	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	authService := services.NewAuthService(userRepo, tokens)
	taskService := services.NewTaskService(taskRepo, userRepo, sink, notifier, logger)
	userService := services.NewUserService(userRepo)

	authHandler := NewAuthHandler(authService, sink)
	taskHandler := NewTaskHandler(taskService)
	userHandler := NewUserHandler(userService)

	r := gin.New()
	r.POST("/register", authHandler.Register)
	r.POST("/login", authHandler.Login)
	r.POST("/logout", authHandler.Logout)

	protected := r.Group("")
	protected.Use(middleware.RequireAuth(tokens))
	{
		protected.POST("/tasks", taskHandler.CreateTask)
		protected.GET("/tasks", taskHandler.ListCreated)
		protected.GET("/tasks/validate", taskHandler.ListAssigned)
		protected.PUT("/tasks/:id", taskHandler.UpdateTask)
		protected.DELETE("/tasks/:id", taskHandler.DeleteTask)
		protected.POST("/tasks/:id/proof", taskHandler.SubmitProof)
		protected.GET("/tasks/:id/proof", taskHandler.FetchProof)
		protected.POST("/tasks/:id/validate", taskHandler.Validate)
		protected.GET("/user", userHandler.GetProfile)
		protected.GET("/leaderboard", userHandler.Leaderboard)
	}

	return testEnv{
		db:     db,
		router: r,
		tokens: tokens,
	}
}

func (env testEnv) doJSON(t *testing.T, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func (env testEnv) register(t *testing.T, username, password, email string) {
	t.Helper()

	w := env.doJSON(t, http.MethodPost, "/register", "", map[string]string{
		"username": username,
		"password": password,
		"email":    email,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func (env testEnv) login(t *testing.T, username, password string) string {
	t.Helper()

	w := env.doJSON(t, http.MethodPost, "/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var response struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.NotEmpty(t, response.Token)
	return response.Token
}

func (env testEnv) createTask(t *testing.T, token, title, assignee, dueDate string) uint64 {
	t.Helper()

	payload := map[string]string{
		"title":    title,
		"assignee": assignee,
	}
	if dueDate != "" {
		payload["due_date"] = dueDate
	}

	w := env.doJSON(t, http.MethodPost, "/tasks", token, payload)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var task struct {
		ID uint64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &task))
	require.NotZero(t, task.ID)
	return task.ID
}

func (env testEnv) submitProof(t *testing.T, token string, taskID uint64) string {
	t.Helper()

	var requestBody bytes.Buffer
	writer := multipart.NewWriter(&requestBody)
	fileWriter, err := writer.CreateFormFile("proof", "proof.png")
	require.NoError(t, err)
	_, err = fileWriter.Write(pngBytes)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/tasks/%d/proof", taskID), &requestBody)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var response struct {
		ProofRef string `json:"proof_ref"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.NotEmpty(t, response.ProofRef)
	return response.ProofRef
}

func multipartSignup(t *testing.T, username, password, email string) (*bytes.Buffer, string) {
	t.Helper()

	var requestBody bytes.Buffer
	writer := multipart.NewWriter(&requestBody)
	require.NoError(t, writer.WriteField("username", username))
	require.NoError(t, writer.WriteField("password", password))
	require.NoError(t, writer.WriteField("email", email))

	fileWriter, err := writer.CreateFormFile("avatar", "avatar.png")
	require.NoError(t, err)
	_, err = fileWriter.Write(pngBytes)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return &requestBody, writer.FormDataContentType()
}

func errCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var response struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response.Code
}
