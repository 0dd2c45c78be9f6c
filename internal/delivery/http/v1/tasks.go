package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bharatnilam/my-laravel-api-2/internal/services"
)

// taskRequest is shared by create and update. Each field records
// whether it appeared in the body at all and whether it was an
// explicit null, so partial updates leave absent fields alone
// while nulls still reach the validation rules.
type taskRequest struct {
	Title       services.OptionalString `json:"title"`
	Description services.OptionalString `json:"description"`
	Status      services.OptionalString `json:"status"`
	Priority    services.OptionalString `json:"priority"`
	DueDate     services.OptionalString `json:"due_date"`
}

func (r taskRequest) toInput() services.TaskInput {
	return services.TaskInput{
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		Priority:    r.Priority,
		DueDate:     r.DueDate,
	}
}

func (h *handlerImpl) HandleListTasks(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		h.logger.Error().Msg("no caller found in context")
		abortUnauthenticated(c)
		return
	}

	tasks, err := h.tasks.ListTasks(c, caller)
	if err != nil {
		abortInternal(c)
		return
	}

	response := make([]taskResponse, len(tasks))
	for i, task := range tasks {
		response[i] = newTaskResponse(task)
	}
	c.JSON(http.StatusOK, response)
}

func (h *handlerImpl) HandleCreateTask(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		h.logger.Error().Msg("no caller found in context")
		abortUnauthenticated(c)
		return
	}

	var req taskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind json")
		abortBadRequest(c)
		return
	}

	task, err := h.tasks.CreateTask(c, caller, req.toInput())
	if err != nil {
		var vErr *services.ValidationError
		if errors.As(err, &vErr) {
			abortValidation(c, vErr.Fields)
			return
		}
		abortInternal(c)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Task created successfully!",
		"task":    newTaskResponse(task),
	})
}

func (h *handlerImpl) HandleGetTask(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		h.logger.Error().Msg("no caller found in context")
		abortUnauthenticated(c)
		return
	}

	task, err := h.tasks.GetTask(c, caller, c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrTaskNotFound) {
			abortNotFound(c)
			return
		}
		abortInternal(c)
		return
	}

	c.JSON(http.StatusOK, newTaskResponse(task))
}

func (h *handlerImpl) HandleUpdateTask(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		h.logger.Error().Msg("no caller found in context")
		abortUnauthenticated(c)
		return
	}

	var req taskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind json")
		abortBadRequest(c)
		return
	}

	task, err := h.tasks.UpdateTask(c, caller, c.Param("id"), req.toInput())
	if err != nil {
		var vErr *services.ValidationError
		switch {
		case errors.As(err, &vErr):
			abortValidation(c, vErr.Fields)
		case errors.Is(err, services.ErrTaskNotFound):
			abortNotFound(c)
		default:
			abortInternal(c)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task updated successfully",
		"task":    newTaskResponse(task),
	})
}

func (h *handlerImpl) HandleDeleteTask(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		h.logger.Error().Msg("no caller found in context")
		abortUnauthenticated(c)
		return
	}

	err := h.tasks.DeleteTask(c, caller, c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrTaskNotFound) {
			abortNotFound(c)
			return
		}
		abortInternal(c)
		return
	}

	c.Status(http.StatusNoContent)
}
