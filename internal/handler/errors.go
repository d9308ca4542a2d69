package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"bakery-storefront/internal/domain"
	"bakery-storefront/internal/middleware"
)

// writeError maps domain errors onto status codes. Anything unrecognised is
// logged and reported as a generic server error.
func writeError(c *gin.Context, log *slog.Logger, err error) {
	var (
		verr     *domain.ValidationError
		stockErr *domain.InsufficientStockError
	)
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"message": "The given data was invalid.", "errors": verr.Fields})
	case errors.As(err, &stockErr):
		c.JSON(http.StatusBadRequest, gin.H{"message": stockErr.Error()})
	case errors.Is(err, domain.ErrNoItemsSelected),
		errors.Is(err, domain.ErrOrderNotCancellable),
		errors.Is(err, domain.ErrProductUnavailable):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrCartEntryNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
	default:
		log.Error("request failed",
			"path", c.FullPath(),
			"request_id", middleware.RequestIDFrom(c),
			"err", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong. Please try again."})
	}
}

// bindError converts gin binding failures into a ValidationError keyed by
// the JSON field name.
func bindError(err error) error {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return domain.NewValidationError("body", "the request body must be valid JSON")
	}
	verr := &domain.ValidationError{}
	for _, fe := range ves {
		verr.Add(fe.Field(), describe(fe))
	}
	return verr
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("the %s field is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("the selected %s is invalid; allowed: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min", "gte":
		return fmt.Sprintf("the %s must be at least %s", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("the %s must be greater than %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("the %s is invalid", fe.Field())
	}
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func currentUser(c *gin.Context) (int64, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthenticated."})
	}
	return id, ok
}

func init() {
	// report binding failures by their JSON names
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	}
}
