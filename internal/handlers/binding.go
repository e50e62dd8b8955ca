package handlers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/gearbook/car-service-api/internal/httperr"
)

// writeBindingError maps gin binding failures to the API's validation
// shape: a generic message plus a field -> reason map when the failure
// came from struct validation.
func writeBindingError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[strings.ToLower(fe.Field())] = fe.Tag()
		}
		httperr.Validation(c, "Invalid request", fields)
		return
	}

	httperr.BadRequest(c, "Invalid request")
}
