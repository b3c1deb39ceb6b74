package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"pcparts-backend/internal/domain"
	usersvc "pcparts-backend/internal/service/user"
)

// envelope is the uniform response body. Data is null on errors.
type envelope struct {
	Success    bool        `json:"success"`
	StatusCode int         `json:"statusCode"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data"`
	Error      string      `json:"error,omitempty"`
	Path       string      `json:"path,omitempty"`
	Timestamp  string      `json:"timestamp"`
}

func respond(c *gin.Context, status int, data interface{}) {
	respondMessage(c, status, "", data)
}

func respondMessage(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, envelope{
		Success:    true,
		StatusCode: status,
		Message:    message,
		Data:       data,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	})
}

func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, envelope{
		Success:    false,
		StatusCode: status,
		Message:    message,
		Error:      http.StatusText(status),
		Path:       c.Request.URL.Path,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	})
}

// writeError maps domain errors onto the envelope. Unknown errors become an
// opaque 500.
func writeError(c *gin.Context, err error) {
	var (
		verr     *domain.ValidationError
		stockErr *domain.StockError
	)
	switch {
	case errors.As(err, &verr):
		fail(c, http.StatusBadRequest, verr.Msg)
	case errors.As(err, &stockErr):
		fail(c, http.StatusBadRequest, stockErr.Error())
	case errors.Is(err, domain.ErrNotFound):
		fail(c, http.StatusNotFound, "resource not found")
	case errors.Is(err, domain.ErrAlreadyExists):
		fail(c, http.StatusConflict, "resource already exists")
	case errors.Is(err, domain.ErrInvalidCredentials):
		fail(c, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, usersvc.ErrInvalidToken):
		fail(c, http.StatusUnauthorized, "invalid or expired token")
	default:
		fail(c, http.StatusInternalServerError, "internal server error")
	}
}

// listParams reads the shared pagination query parameters.
func listParams(c *gin.Context) domain.ListParams {
	index, _ := strconv.Atoi(c.Query("index"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return domain.ListParams{
		Keyword: c.Query("keyword"),
		Index:   index,
		Limit:   limit,
		Sort:    c.Query("sort"),
		Order:   c.Query("order"),
	}
}
