package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// errorMapping translates service sentinel errors into HTTP responses.
// Entries are matched in registration order with errors.Is, so wrapped
// errors resolve to the right status.
type errorMapping struct {
	entries []errorMappingEntry
}

type errorMappingEntry struct {
	sentinel error
	status   int
	message  string
}

func newErrorMapping() *errorMapping {
	return &errorMapping{}
}

func (m *errorMapping) on(sentinel error, status int, message string) *errorMapping {
	if sentinel != nil {
		m.entries = append(m.entries, errorMappingEntry{sentinel: sentinel, status: status, message: message})
	}
	return m
}

// respond writes the mapped response for err, or the provided fallback when
// no entry matches.
func (m *errorMapping) respond(c *gin.Context, err error, fallbackStatus int, fallbackMessage string) {
	if err == nil {
		c.Status(http.StatusOK)
		return
	}

	for _, entry := range m.entries {
		if errors.Is(err, entry.sentinel) {
			c.JSON(entry.status, NewErrorResponse(c, entry.message))
			return
		}
	}

	c.JSON(fallbackStatus, NewErrorResponse(c, fallbackMessage))
}
