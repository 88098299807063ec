package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/qms-core/pkg/response"
	"github.com/oksasatya/qms-core/pkg/validation"
)

type recordURI struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// recordID binds :id and writes a 400 when it is not a UUID.
func recordID(c *gin.Context) (string, bool) {
	var u recordURI
	if err := c.ShouldBindUri(&u); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid path", validation.ToDetails(err))
		return "", false
	}
	return u.ID, true
}
