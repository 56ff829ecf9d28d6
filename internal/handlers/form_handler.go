package handlers

import (
	"context"
	"net/http"

	"form-service/internal/models"
	"form-service/internal/service"

	"github.com/gin-gonic/gin"
)

type FormHandler struct {
	Service *service.FormService
}

func NewFormHandler(s *service.FormService) *FormHandler {
	return &FormHandler{Service: s}
}

// GetForm returns one form definition, fields and classifications included.
func (h *FormHandler) GetForm(c *gin.Context) {
	id := c.Param("id")
	form, err := h.Service.GetForm(context.Background(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Form not found"})
		return
	}
	c.JSON(http.StatusOK, form)
}

// ListForms returns the authenticated owner's forms.
func (h *FormHandler) ListForms(c *gin.Context) {
	ownerID := c.GetHeader("X-User-ID")
	forms, err := h.Service.ListForms(context.Background(), ownerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, forms)
}

// CreateForm creates a draft form for the authenticated owner.
func (h *FormHandler) CreateForm(c *gin.Context) {
	var form models.Form
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	form.OwnerID = c.GetHeader("X-User-ID")

	if err := h.Service.CreateForm(context.Background(), &form); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, form)
}

// UpdateForm applies a partial update to the form document.
func (h *FormHandler) UpdateForm(c *gin.Context) {
	id := c.Param("id")
	var update map[string]interface{}
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Service.UpdateForm(context.Background(), id, update); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Form updated successfully"})
}

func (h *FormHandler) DeleteForm(c *gin.Context) {
	id := c.Param("id")
	if err := h.Service.DeleteForm(context.Background(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Form deleted successfully"})
}

// PublishForm validates the condition graph and flips the form to published.
func (h *FormHandler) PublishForm(c *gin.Context) {
	id := c.Param("id")
	if err := h.Service.PublishForm(context.Background(), id); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "Failed to publish form",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Form published successfully"})
}

// ValidateConditions runs the authoring-time condition checks and returns
// the collected violations for the editor to display.
func (h *FormHandler) ValidateConditions(c *gin.Context) {
	id := c.Param("id")
	result, err := h.Service.ValidateConditions(context.Background(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Form not found"})
		return
	}
	c.JSON(http.StatusOK, result)
}
