// internal/interfaces/http/handlers/errors.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/threadline/storefront-backend/internal/pkg/apperrors"
)

// respondError writes a classified service error as a JSON response
func respondError(c *gin.Context, err error) {
	c.JSON(apperrors.HTTPStatus(err), gin.H{
		"error": err.Error(),
	})
}
