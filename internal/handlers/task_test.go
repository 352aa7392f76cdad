package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	apierrors "github.com/kanzaki/taskproof/internal/errors"
)

func TestCreateTask_AppearsInLists(t *testing.T) {
	env := setupTestEnv(t)
	env.register(t, "alice", "supersecret", "")
	env.register(t, "bob", "supersecret", "")
	aliceToken := env.login(t, "alice", "supersecret")
	bobToken := env.login(t, "bob", "supersecret")

	taskID := env.createTask(t, aliceToken, "write report", "bob", "")

	// Creator sees it under /tasks.
	w := env.doJSON(t, http.MethodGet, "/tasks", aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var listResponse struct {
		Tasks []struct {
			ID     uint64 `json:"id"`
			Status string `json:"status"`
		} `json:"tasks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listResponse))
	require.Len(t, listResponse.Tasks, 1)
	require.Equal(t, taskID, listResponse.Tasks[0].ID)
	require.Equal(t, "Pending", listResponse.Tasks[0].Status)

	// Assignee sees it under /tasks/validate.
	w = env.doJSON(t, http.MethodGet, "/tasks/validate", bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listResponse))
	require.Len(t, listResponse.Tasks, 1)
	require.Equal(t, taskID, listResponse.Tasks[0].ID)
}

func TestValidate_ApproveAdjustsScore(t *testing.T) {
	env := setupTestEnv(t)
	env.register(t, "alice", "supersecret", "")
	env.register(t, "bob", "supersecret", "")
	aliceToken := env.login(t, "alice", "supersecret")
	bobToken := env.login(t, "bob", "supersecret")

	taskID := env.createTask(t, aliceToken, "write report", "bob", "2999-01-01")

	w := env.doJSON(t, http.MethodPost, fmt.Sprintf("/tasks/%d/validate", taskID), bobToken, map[string]string{
		"decision": "Approved",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result struct {
		ScoreDelta int `json:"score_delta"`
		NewScore   int `json:"new_score"`
		Task       struct {
			Status string `json:"status"`
		} `json:"task"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.Equal(t, 10, result.ScoreDelta)
	require.Equal(t, 10, result.NewScore)
	require.Equal(t, "Approved", result.Task.Status)

	// Approved tasks leave the pending lists and cannot be revalidated.
	w = env.doJSON(t, http.MethodGet, "/tasks", aliceToken, nil)
	var listResponse struct {
		Tasks []json.RawMessage `json:"tasks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listResponse))
	require.Empty(t, listResponse.Tasks)

	w = env.doJSON(t, http.MethodPost, fmt.Sprintf("/tasks/%d/validate", taskID), bobToken, map[string]string{
		"decision": "Approved",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, apierrors.ErrCodeInvalidOperation, errCode(t, w))
}

func TestValidate_LateApprovalScenario(t *testing.T) {
	env := setupTestEnv(t)
	env.register(t, "alice", "supersecret", "")
	env.register(t, "bob", "supersecret", "")
	aliceToken := env.login(t, "alice", "supersecret")
	bobToken := env.login(t, "bob", "supersecret")

	// Due long past; proof submitted, then approved well after the due
	// date: the creator earns the late reward of 5.
	taskID := env.createTask(t, aliceToken, "write report", "bob", "2024-01-01")
	env.submitProof(t, aliceToken, taskID)

	w := env.doJSON(t, http.MethodPost, fmt.Sprintf("/tasks/%d/validate", taskID), bobToken, map[string]string{
		"decision": "Approved",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result struct {
		ScoreDelta int `json:"score_delta"`
		NewScore   int `json:"new_score"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.Equal(t, 5, result.ScoreDelta)
	require.Equal(t, 5, result.NewScore)
}

func TestValidate_RejectScoresAndResets(t *testing.T) {
	env := setupTestEnv(t)
	env.register(t, "alice", "supersecret", "")
	env.register(t, "bob", "supersecret", "")
	aliceToken := env.login(t, "alice", "supersecret")
	bobToken := env.login(t, "bob", "supersecret")

	taskID := env.createTask(t, aliceToken, "write report", "bob", "")

	// Two rejections compound: -3 each, no floor.
	for i, wantScore := range []int{-3, -6} {
		w := env.doJSON(t, http.MethodPost, fmt.Sprintf("/tasks/%d/validate", taskID), bobToken, map[string]string{
			"decision": "Rejected",
		})
		require.Equal(t, http.StatusOK, w.Code, "rejection %d: %s", i+1, w.Body.String())

		var result struct {
			NewScore int `json:"new_score"`
			Task     struct {
				Status string `json:"status"`
			} `json:"task"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		require.Equal(t, wantScore, result.NewScore)
		require.Equal(t, "Pending", result.Task.Status)
	}

	// The task is back in the creator's pending list.
	w := env.doJSON(t, http.MethodGet, "/tasks", aliceToken, nil)
	var listResponse struct {
		Tasks []struct {
			ID uint64 `json:"id"`
		} `json:"tasks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listResponse))
	require.Len(t, listResponse.Tasks, 1)
	require.Equal(t, taskID, listResponse.Tasks[0].ID)
}

func TestValidate_BadDecisionAndUnknownTask(t *testing.T) {
	env := setupTestEnv(t)
	env.register(t, "alice", "supersecret", "")
	env.register(t, "bob", "supersecret", "")
	aliceToken := env.login(t, "alice", "supersecret")
	bobToken := env.login(t, "bob", "supersecret")

	taskID := env.createTask(t, aliceToken, "write report", "bob", "")

	w := env.doJSON(t, http.MethodPost, fmt.Sprintf("/tasks/%d/validate", taskID), bobToken, map[string]string{
		"decision": "Maybe",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, apierrors.ErrCodeInvalidOperation, errCode(t, w))

	w = env.doJSON(t, http.MethodPost, "/tasks/99999/validate", bobToken, map[string]string{
		"decision": "Approved",
	})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestProofRoundtrip(t *testing.T) {
	env := setupTestEnv(t)
	env.register(t, "alice", "supersecret", "")
	env.register(t, "bob", "supersecret", "")
	aliceToken := env.login(t, "alice", "supersecret")

	taskID := env.createTask(t, aliceToken, "write report", "bob", "")

	// No proof yet.
	w := env.doJSON(t, http.MethodGet, fmt.Sprintf("/tasks/%d/proof", taskID), aliceToken, nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	env.submitProof(t, aliceToken, taskID)

	// The stored artifact streams back.
	w = env.doJSON(t, http.MethodGet, fmt.Sprintf("/tasks/%d/proof", taskID), aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, pngBytes, w.Body.Bytes())
}

func TestSubmitProof_RejectsNonImage(t *testing.T) {
	env := setupTestEnv(t)
	env.register(t, "alice", "supersecret", "")
	aliceToken := env.login(t, "alice", "supersecret")

	taskID := env.createTask(t, aliceToken, "write report", "bob", "")

	var requestBody bytes.Buffer
	writer := multipart.NewWriter(&requestBody)
	fileWriter, err := writer.CreateFormFile("proof", "notes.txt")
	require.NoError(t, err)
	_, err = fileWriter.Write([]byte("just some text"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/tasks/%d/proof", taskID), &requestBody)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+aliceToken)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitProof_MissingFileField(t *testing.T) {
	env := setupTestEnv(t)
	env.register(t, "alice", "supersecret", "")
	aliceToken := env.login(t, "alice", "supersecret")

	taskID := env.createTask(t, aliceToken, "write report", "bob", "")

	w := env.doJSON(t, http.MethodPost, fmt.Sprintf("/tasks/%d/proof", taskID), aliceToken, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateAndDeleteTask_OwnershipEnforced(t *testing.T) {
	env := setupTestEnv(t)
	env.register(t, "alice", "supersecret", "")
	env.register(t, "mallory", "supersecret", "")
	aliceToken := env.login(t, "alice", "supersecret")
	malloryToken := env.login(t, "mallory", "supersecret")

	taskID := env.createTask(t, aliceToken, "write report", "bob", "")

	w := env.doJSON(t, http.MethodPut, fmt.Sprintf("/tasks/%d", taskID), malloryToken, map[string]string{
		"title": "hijacked",
	})
	require.Equal(t, http.StatusForbidden, w.Code)

	w = env.doJSON(t, http.MethodDelete, fmt.Sprintf("/tasks/%d", taskID), malloryToken, nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = env.doJSON(t, http.MethodPut, fmt.Sprintf("/tasks/%d", taskID), aliceToken, map[string]string{
		"title": "revised report",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated struct {
		Title string `json:"title"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	require.Equal(t, "revised report", updated.Title)

	w = env.doJSON(t, http.MethodDelete, fmt.Sprintf("/tasks/%d", taskID), aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.doJSON(t, http.MethodDelete, fmt.Sprintf("/tasks/%d", taskID), aliceToken, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}
