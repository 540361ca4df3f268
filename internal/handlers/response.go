package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/MatheusWesley/api-projects-management/internal/dto"
	apierrors "github.com/MatheusWesley/api-projects-management/internal/errors"
	"github.com/MatheusWesley/api-projects-management/internal/services"
	"github.com/gin-gonic/gin"
)

func respond(c *gin.Context, status int, data any, message string) {
	c.JSON(status, dto.OK(data, message))
}

// writeOptions turns an If-Match header into a version precondition. Both
// bare and quoted versions are accepted, as is the weak W/ prefix.
func writeOptions(c *gin.Context) ([]services.WriteOption, bool) {
	header := strings.TrimSpace(c.GetHeader("If-Match"))
	if header == "" || header == "*" {
		return nil, true
	}

	raw := strings.Trim(strings.TrimPrefix(header, "W/"), `"`)
	version, err := strconv.Atoi(raw)
	if err != nil || version < 1 {
		apierrors.RespondWithError(c, http.StatusBadRequest, apierrors.NewAPIErrorWithDetails(
			apierrors.ErrCodeInvalidFormat,
			"If-Match must be a work item version",
			map[string]string{"field": "If-Match"},
		))
		return nil, false
	}
	return []services.WriteOption{services.IfVersion(version)}, true
}

func setETag(c *gin.Context, version int) {
	c.Header("ETag", strconv.Quote(strconv.Itoa(version)))
}
