package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jhoicas/parqueo-api/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Los mensajes usan el nombre JSON del campo (userId, spotId...).
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate aplica las etiquetas `validate` del DTO. Devuelve domain.ErrInvalidInput con el detalle en español.
func Validate(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" es requerido")
		case "required_without":
			msgs = append(msgs, fmt.Sprintf("debe enviar %s o %s", fe.Field(), jsonName(fe.Param())))
		case "gt", "gte":
			msgs = append(msgs, fmt.Sprintf("%s debe ser mayor %s %s", fe.Field(), cmpWord(fe.Tag()), fe.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s excede %s caracteres", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fe.Field()+" inválido")
		}
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(msgs, "; "))
}

func cmpWord(tag string) string {
	if tag == "gte" {
		return "o igual a"
	}
	return "que"
}

// jsonName convierte el nombre Go del parámetro de required_without al nombre JSON.
func jsonName(goField string) string {
	if goField == "" {
		return goField
	}
	return strings.ToLower(goField[:1]) + goField[1:]
}
