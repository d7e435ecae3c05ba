package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// FieldError is one entry of the details list in a 400 response.
type FieldError struct {
	Field   string `json:"field,omitempty"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

func badRequest(c *gin.Context, message string, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": message, "details": validationDetails(err)})
}

func notFound(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": message})
}

// internalError logs the cause and answers with a fixed message only.
func internalError(c *gin.Context, message string, err error) {
	log.Printf("[%s] %s: %v", requestID(c), message, err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": message})
}

func validationDetails(err error) []FieldError {
	var (
		validationErrs validator.ValidationErrors
		syntaxErr      *json.SyntaxError
		typeErr        *json.UnmarshalTypeError
	)

	switch {
	case err == nil:
		return []FieldError{}
	case errors.As(err, &validationErrs):
		details := make([]FieldError, 0, len(validationErrs))
		for _, fe := range validationErrs {
			details = append(details, FieldError{
				Field:   fe.Field(),
				Rule:    fe.Tag(),
				Message: describeRule(fe),
			})
		}
		return details
	case errors.As(err, &typeErr):
		return []FieldError{{
			Field:   typeErr.Field,
			Rule:    "type",
			Message: fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value),
		}}
	case errors.As(err, &syntaxErr), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return []FieldError{{Rule: "json", Message: "request body is not valid JSON"}}
	}
	return []FieldError{{Rule: "invalid", Message: err.Error()}}
}

func describeRule(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	case "gte":
		return fe.Field() + " must be at least " + fe.Param()
	case "gt":
		return fe.Field() + " must be greater than " + fe.Param()
	}
	return fe.Field() + " failed " + fe.Tag() + " validation"
}

// parseID reads a positive integer path parameter.
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
