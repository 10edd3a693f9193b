package mockapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// envelope is the body of every backend response.
type envelope struct {
	Success    bool        `json:"success"`
	StatusCode int         `json:"status_code"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data"`
}

func success(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, envelope{Success: true, StatusCode: http.StatusOK, Message: message, Data: data})
}

// rejected answers 200 with success=false, the way the backend refuses a
// punch.
func rejected(c *gin.Context, message string, statusCode int) {
	c.JSON(http.StatusOK, envelope{Success: false, StatusCode: statusCode, Message: message})
}

func failure(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, envelope{Success: false, StatusCode: status, Message: message})
}

// detail answers in the framework's HTTPException shape.
func detail(c *gin.Context, status int, d interface{}) {
	c.AbortWithStatusJSON(status, gin.H{"detail": d})
}

const naiveLayout = "2006-01-02T15:04:05.999999"

// naive renders UTC without a zone designator, as the backend does.
func naive(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(naiveLayout)
	return &s
}
