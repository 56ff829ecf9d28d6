package handlers

import (
	"context"
	"net/http"

	"form-service/internal/models"
	"form-service/internal/service"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	Service *service.SessionService
}

func NewSessionHandler(s *service.SessionService) *SessionHandler {
	return &SessionHandler{Service: s}
}

// StartSession opens a respondent session for a published form.
func (h *SessionHandler) StartSession(c *gin.Context) {
	formID := c.Param("id")

	var req struct {
		Email string `json:"email"`
	}
	_ = c.ShouldBindJSON(&req) // body is optional

	token, state, err := h.Service.StartSession(context.Background(), formID, req.Email)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Failed to start session",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"session_token": token,
		"state":         state,
	})
}

// Begin triggers the welcome → questions transition, optionally capturing
// the respondent's email from the welcome screen.
func (h *SessionHandler) Begin(c *gin.Context) {
	token := c.Param("token")

	var req struct {
		Email string `json:"email"`
	}
	_ = c.ShouldBindJSON(&req)

	state, err := h.Service.Begin(context.Background(), token, req.Email)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, state)
}

// SubmitAnswer merges a value into the session's answer map. When field_key
// is omitted the value lands on the field at the current index.
func (h *SessionHandler) SubmitAnswer(c *gin.Context) {
	token := c.Param("token")

	var req struct {
		FieldKey     string      `json:"field_key"`
		Value        interface{} `json:"value"`
		NumericValue *float64    `json:"numeric_value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid answer format",
			"details": err.Error(),
		})
		return
	}

	ans := models.Answer{Value: normalizeValue(req.Value), NumericValue: req.NumericValue}

	var state interface{}
	var err error
	if req.FieldKey != "" {
		state, err = h.Service.AnswerField(token, req.FieldKey, ans)
	} else {
		state, err = h.Service.Answer(token, ans)
	}
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, state)
}

// Next validates the current field and advances or completes the session.
func (h *SessionHandler) Next(c *gin.Context) {
	token := c.Param("token")
	state, err := h.Service.Next(context.Background(), token)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, state)
}

// Previous retreats one field when the form allows backward navigation.
func (h *SessionHandler) Previous(c *gin.Context) {
	token := c.Param("token")
	state, err := h.Service.Previous(token)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, state)
}

// GetState returns the render snapshot for the session.
func (h *SessionHandler) GetState(c *gin.Context) {
	token := c.Param("token")
	state, err := h.Service.GetState(context.Background(), token)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, state)
}

// normalizeValue converts JSON arrays to []string, the shape the condition
// evaluator and scoring engine expect for multi-select answers.
func normalizeValue(v interface{}) interface{} {
	arr, ok := v.([]interface{})
	if !ok {
		return v
	}
	out := make([]string, 0, len(arr))
	for _, e := range arr {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
