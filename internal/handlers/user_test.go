package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetProfile_OtherUserAndUnknown(t *testing.T) {
	env := setupTestEnv(t)
	env.register(t, "alice", "supersecret", "alice@example.com")
	env.register(t, "bob", "supersecret", "")
	aliceToken := env.login(t, "alice", "supersecret")

	w := env.doJSON(t, http.MethodGet, "/user?username=bob", aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var profile struct {
		Username string `json:"username"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	require.Equal(t, "bob", profile.Username)

	w = env.doJSON(t, http.MethodGet, "/user?username=nobody", aliceToken, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestLeaderboard_OrderedByScore(t *testing.T) {
	env := setupTestEnv(t)
	env.register(t, "alice", "supersecret", "")
	env.register(t, "bob", "supersecret", "")
	env.register(t, "carol", "supersecret", "")
	aliceToken := env.login(t, "alice", "supersecret")
	bobToken := env.login(t, "bob", "supersecret")
	carolToken := env.login(t, "carol", "supersecret")

	// carol approves alice's task (+10), alice rejects bob's task (-3).
	aliceTask := env.createTask(t, aliceToken, "report", "carol", "2999-01-01")
	bobTask := env.createTask(t, bobToken, "cleanup", "alice", "")

	w := env.doJSON(t, http.MethodPost, fmt.Sprintf("/tasks/%d/validate", aliceTask), carolToken, map[string]string{
		"decision": "Approved",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.doJSON(t, http.MethodPost, fmt.Sprintf("/tasks/%d/validate", bobTask), aliceToken, map[string]string{
		"decision": "Rejected",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.doJSON(t, http.MethodGet, "/leaderboard", aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Leaderboard []struct {
			Username string `json:"username"`
			Score    int    `json:"score"`
		} `json:"leaderboard"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Leaderboard, 3)

	require.Equal(t, "alice", response.Leaderboard[0].Username)
	require.Equal(t, 10, response.Leaderboard[0].Score)
	require.Equal(t, "carol", response.Leaderboard[1].Username)
	require.Equal(t, 0, response.Leaderboard[1].Score)
	require.Equal(t, "bob", response.Leaderboard[2].Username)
	require.Equal(t, -3, response.Leaderboard[2].Score)
}

func TestLeaderboard_EmptyIsOK(t *testing.T) {
	env := setupTestEnv(t)
	env.register(t, "alice", "supersecret", "")
	aliceToken := env.login(t, "alice", "supersecret")

	// Only the caller exists; the board still renders.
	w := env.doJSON(t, http.MethodGet, "/leaderboard", aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Leaderboard []struct {
			Username string `json:"username"`
		} `json:"leaderboard"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Leaderboard, 1)
}
