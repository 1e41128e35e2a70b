package http

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/traslados-api/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Nombres de campo según el tag json en los mensajes.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// bindJSON decodifica el cuerpo y valida los tags `validate`.
func bindJSON(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fmt.Errorf("%w: %s", errInvalidBody, err.Error())
	}
	if err := validate.Struct(out); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, formatValidationErrors(err))
	}
	return nil
}

// uuidParam lee un parámetro de ruta que debe ser UUID; otro valor nunca existe y se rechaza como entrada inválida.
func uuidParam(c *fiber.Ctx, name string) (string, error) {
	v := c.Params(name)
	if err := validate.Var(v, "required,uuid"); err != nil {
		return "", fmt.Errorf("%w: %s debe ser un UUID (recibido %q)", domain.ErrInvalidInput, name, v)
	}
	return v, nil
}

func formatValidationErrors(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, e := range verrs {
		parts = append(parts, e.Namespace()+": "+validationMessage(e))
	}
	return strings.Join(parts, "; ")
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "es obligatorio"
	case "email":
		return "email inválido"
	case "uuid":
		return "debe ser un UUID"
	case "min":
		if e.Kind() == reflect.String {
			return "mínimo " + e.Param() + " caracteres"
		}
		return "mínimo " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return "máximo " + e.Param() + " caracteres"
		}
		return "máximo " + e.Param()
	case "oneof":
		return "debe ser uno de: " + e.Param()
	case "nefield":
		return "debe ser distinto de " + e.Param()
	default:
		return "valor inválido"
	}
}
