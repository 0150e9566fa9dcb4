package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/classicdental/dental-scheduler/internal/httperr"
)

const (
	msgMissingFields = "Missing fields"
	msgNotFound      = "Not found"
)

// bindJSON decodes the body and writes a 400 on failure.
func bindJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}

	var verr validator.ValidationErrors
	if errors.As(err, &verr) {
		httperr.BadRequest(c, "missing_fields", msgMissingFields)
		return false
	}
	httperr.BadRequest(c, "invalid_request", "Invalid request body")
	return false
}

// pathID parses :id and writes a 400 when it is not a positive integer.
func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		httperr.BadRequest(c, "invalid_id", "Invalid id")
		return 0, false
	}
	return uint(id), true
}

// queryID parses an optional numeric filter. Absent means 0.
func queryID(c *gin.Context, key string) (uint, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_filter", fmt.Sprintf("Invalid %s", key))
		return 0, false
	}
	return uint(id), true
}

// firstOr404 loads the record by primary key into dst.
func firstOr404(c *gin.Context, db *gorm.DB, dst any, id uint) bool {
	err := db.WithContext(c.Request.Context()).First(dst, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httperr.NotFound(c, "not_found", msgNotFound)
		return false
	}
	if err != nil {
		httperr.Internal(c, "load_failed", err)
		return false
	}
	return true
}

func likeName(q *gorm.DB, query string) *gorm.DB {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return q
	}
	return q.Where("LOWER(name) LIKE ?", "%"+query+"%")
}
