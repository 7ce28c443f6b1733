package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"broadcast-service/internal/mocks"
	"broadcast-service/internal/models"
	"broadcast-service/internal/repositories"
	"broadcast-service/internal/ws"
)

const testUserID = 42

func setupMessageRouter(messages *mocks.MessageRepositoryMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewMessageHandler(messages, ws.NewHub(), nil)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userID", testUserID)
		c.Next()
	})
	router.GET("/messages", handler.ListMessages)
	router.POST("/messages", handler.AddMessage)
	router.PUT("/messages/:message_id", handler.UpdateMessage)
	router.POST("/messages/:message_id/toggle", handler.ToggleMessage)
	router.DELETE("/messages/:message_id", handler.DeleteMessage)
	return router
}

func jsonRequest(t *testing.T, router *gin.Engine, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAddMessageDefaultsToActive(t *testing.T) {
	messages := new(mocks.MessageRepositoryMock)
	messages.On("Save", mock.Anything, mock.MatchedBy(func(m *models.BroadcastMessage) bool {
		return m.UserID == testUserID && m.Content == "back at 3pm" && m.Active
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.BroadcastMessage).ID = 7
	}).Return(nil)

	router := setupMessageRouter(messages)
	w := jsonRequest(t, router, http.MethodPost, "/messages", gin.H{"content": "back at 3pm"})

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp models.BroadcastMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 7, resp.ID)
	assert.True(t, resp.Active)
	messages.AssertExpectations(t)
}

func TestAddMessageExplicitlyInactive(t *testing.T) {
	messages := new(mocks.MessageRepositoryMock)
	messages.On("Save", mock.Anything, mock.MatchedBy(func(m *models.BroadcastMessage) bool {
		return !m.Active
	})).Return(nil)

	router := setupMessageRouter(messages)
	w := jsonRequest(t, router, http.MethodPost, "/messages", gin.H{"content": "draft", "active": false})

	assert.Equal(t, http.StatusCreated, w.Code)
	messages.AssertExpectations(t)
}

func TestAddMessageMissingContent(t *testing.T) {
	messages := new(mocks.MessageRepositoryMock)
	router := setupMessageRouter(messages)

	w := jsonRequest(t, router, http.MethodPost, "/messages", gin.H{"active": true})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	messages.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestAddMessageSaveFailure(t *testing.T) {
	messages := new(mocks.MessageRepositoryMock)
	messages.On("Save", mock.Anything, mock.Anything).Return(errors.New("db down"))

	router := setupMessageRouter(messages)
	w := jsonRequest(t, router, http.MethodPost, "/messages", gin.H{"content": "hello"})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestListMessages(t *testing.T) {
	messages := new(mocks.MessageRepositoryMock)
	messages.On("ListForUser", mock.Anything, testUserID).Return([]models.BroadcastMessage{
		{ID: 2, UserID: testUserID, Content: "newer", Active: true},
		{ID: 1, UserID: testUserID, Content: "older"},
	}, nil)

	router := setupMessageRouter(messages)
	w := jsonRequest(t, router, http.MethodGet, "/messages", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Messages []models.BroadcastMessage `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, 2, resp.Messages[0].ID)
}

func TestUpdateMessageKeepsActiveFlag(t *testing.T) {
	messages := new(mocks.MessageRepositoryMock)
	messages.On("GetMessage", mock.Anything, 5, testUserID).
		Return(models.BroadcastMessage{ID: 5, UserID: testUserID, Content: "old", Active: true}, nil)
	messages.On("Save", mock.Anything, mock.MatchedBy(func(m *models.BroadcastMessage) bool {
		return m.ID == 5 && m.Content == "new text" && m.Active
	})).Return(nil)

	router := setupMessageRouter(messages)
	w := jsonRequest(t, router, http.MethodPut, "/messages/5", gin.H{"content": "new text"})

	assert.Equal(t, http.StatusOK, w.Code)
	messages.AssertExpectations(t)
}

func TestUpdateMessageNotFound(t *testing.T) {
	messages := new(mocks.MessageRepositoryMock)
	messages.On("GetMessage", mock.Anything, 99, testUserID).
		Return(nil, repositories.ErrMessageNotFound)

	router := setupMessageRouter(messages)
	w := jsonRequest(t, router, http.MethodPut, "/messages/99", gin.H{"content": "whatever"})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestToggleMessageActivates(t *testing.T) {
	messages := new(mocks.MessageRepositoryMock)
	messages.On("GetMessage", mock.Anything, 3, testUserID).
		Return(models.BroadcastMessage{ID: 3, UserID: testUserID, Content: "hi", Active: false}, nil)
	messages.On("Save", mock.Anything, mock.MatchedBy(func(m *models.BroadcastMessage) bool {
		return m.ID == 3 && m.Active
	})).Return(nil)

	router := setupMessageRouter(messages)
	w := jsonRequest(t, router, http.MethodPost, "/messages/3/toggle", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp models.BroadcastMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Active)
	messages.AssertExpectations(t)
}

func TestToggleMessageDeactivates(t *testing.T) {
	messages := new(mocks.MessageRepositoryMock)
	messages.On("GetMessage", mock.Anything, 3, testUserID).
		Return(models.BroadcastMessage{ID: 3, UserID: testUserID, Content: "hi", Active: true}, nil)
	messages.On("Save", mock.Anything, mock.MatchedBy(func(m *models.BroadcastMessage) bool {
		return m.ID == 3 && !m.Active
	})).Return(nil)

	router := setupMessageRouter(messages)
	w := jsonRequest(t, router, http.MethodPost, "/messages/3/toggle", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp models.BroadcastMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Active)
}

func TestToggleMessageNotFound(t *testing.T) {
	messages := new(mocks.MessageRepositoryMock)
	messages.On("GetMessage", mock.Anything, 404, testUserID).
		Return(nil, repositories.ErrMessageNotFound)

	router := setupMessageRouter(messages)
	w := jsonRequest(t, router, http.MethodPost, "/messages/404/toggle", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestToggleMessageInvalidID(t *testing.T) {
	messages := new(mocks.MessageRepositoryMock)
	router := setupMessageRouter(messages)

	w := jsonRequest(t, router, http.MethodPost, "/messages/abc/toggle", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteMessage(t *testing.T) {
	messages := new(mocks.MessageRepositoryMock)
	messages.On("GetMessage", mock.Anything, 8, testUserID).
		Return(models.BroadcastMessage{ID: 8, UserID: testUserID, Active: true}, nil)
	messages.On("Delete", mock.Anything, 8, testUserID).Return(nil)

	router := setupMessageRouter(messages)
	w := jsonRequest(t, router, http.MethodDelete, "/messages/8", nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
	messages.AssertExpectations(t)
}

func TestDeleteMissingMessageIsStillNoContent(t *testing.T) {
	messages := new(mocks.MessageRepositoryMock)
	messages.On("GetMessage", mock.Anything, 8, testUserID).
		Return(nil, repositories.ErrMessageNotFound)
	messages.On("Delete", mock.Anything, 8, testUserID).Return(nil)

	router := setupMessageRouter(messages)
	w := jsonRequest(t, router, http.MethodDelete, "/messages/8", nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestDeleteMessageRepoFailure(t *testing.T) {
	messages := new(mocks.MessageRepositoryMock)
	messages.On("GetMessage", mock.Anything, 8, testUserID).
		Return(nil, repositories.ErrMessageNotFound)
	messages.On("Delete", mock.Anything, 8, testUserID).Return(errors.New("db down"))

	router := setupMessageRouter(messages)
	w := jsonRequest(t, router, http.MethodDelete, "/messages/8", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
