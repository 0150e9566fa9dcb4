package httpresp

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Page is a paginated listing.
type Page[T any] struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Items []T   `json:"items"`
}

func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

func Message(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

func Deleted(c *gin.Context) {
	Message(c, "Deleted")
}

func Paged[T any](c *gin.Context, page, limit int, total int64, items []T) {
	c.JSON(http.StatusOK, Page[T]{
		Page:  page,
		Limit: limit,
		Total: total,
		Items: items,
	})
}
