package handler

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-attendance-scoring/internal/middleware"
	"github.com/noah-isme/sma-attendance-scoring/internal/models"
	appErrors "github.com/noah-isme/sma-attendance-scoring/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// courseFilter reads :courseId and the optional date_from/date_to query parameters.
func courseFilter(c *gin.Context) (models.AttendanceRecordFilter, error) {
	filter := models.AttendanceRecordFilter{CourseID: strings.TrimSpace(c.Param("courseId"))}
	if filter.CourseID == "" {
		return filter, appErrors.Clone(appErrors.ErrValidation, "courseId is required")
	}
	var err error
	if filter.DateFrom, err = parseDateQuery(c, "date_from"); err != nil {
		return filter, err
	}
	if filter.DateTo, err = parseDateQuery(c, "date_to"); err != nil {
		return filter, err
	}
	return filter, nil
}

func parseDateQuery(c *gin.Context, key string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(models.DateLayout, raw)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, key+" must be formatted as YYYY-MM-DD")
	}
	return &parsed, nil
}
