package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/thereayou/teamdesk/internal/apperror"
	"github.com/thereayou/teamdesk/internal/handlers/dto"
)

func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, dto.Success(status, message, data))
}

// fail передаёт ошибку в ErrorHandler; ответ формирует он
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
}

func bindJSON(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return apperror.BadRequest(err.Error())
	}
	return nil
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, error) {
	return parseUUID(c.Param(name), name)
}

func parseUUID(value, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, apperror.BadRequest("invalid " + field)
	}
	return id, nil
}

// parseOptionalUUID пропускает отсутствующее поле
func parseOptionalUUID(value *string, field string) (*uuid.UUID, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	id, err := parseUUID(*value, field)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
