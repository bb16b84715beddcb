package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
)

// bindAndValidate разбирает JSON-тело в out и прогоняет его через validator.
// При ошибке пишет 400 и возвращает error, чтобы обработчик мог сразу выйти.
func bindAndValidate(c *gin.Context, out any, v *validatorv10.Validate) error {
	if err := c.ShouldBindJSON(out); err != nil {
		respondErrorMessage(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return err
	}

	if err := v.Struct(out); err != nil {
		respondErrorMessage(c, http.StatusBadRequest, "validation failed: "+validationMessage(err))
		return err
	}
	return nil
}

func validationMessage(err error) string {
	ve, ok := err.(validatorv10.ValidationErrors)
	if !ok {
		return err.Error()
	}

	parts := make([]string, 0, len(ve))
	for _, fe := range ve {
		parts = append(parts, fe.Field()+" ("+fe.Tag()+")")
	}
	return strings.Join(parts, ", ")
}
