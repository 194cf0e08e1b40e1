// Package validation valida payloads de entrada con go-playground/validator y traduce
// los errores a domain.ValidationError (mapa campo -> mensaje).
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jhoicas/panaderia-pos/internal/domain"
	"github.com/jhoicas/panaderia-pos/pkg/rut"
)

// Validator envuelve un *validator.Validate con las reglas propias registradas.
type Validator struct {
	v *validator.Validate
}

// New crea el validador. Los campos se reportan con su nombre JSON.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("rut", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return rut.Validate(s) && rut.VerifyCheckDigit(s) == nil
	})
	return &Validator{v: v}
}

// Struct valida s. Devuelve nil o *domain.ValidationError.
func (val *Validator) Struct(s interface{}) error {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &domain.ValidationError{}
	for _, fe := range verrs {
		out.Add(fieldPath(fe), message(fe))
	}
	return out
}

// fieldPath quita el nombre del struct raíz: "SubmitSaleRequest.items[0].product_id" -> "items[0].product_id".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "es obligatorio"
	case "email":
		return "email inválido"
	case "oneof":
		return "debe ser uno de: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min":
		if fe.Kind() == reflect.Slice {
			return "debe tener al menos " + fe.Param() + " elemento(s)"
		}
		return "largo mínimo " + fe.Param()
	case "max":
		return "largo máximo " + fe.Param()
	case "rut":
		return "RUT inválido"
	case "uuid":
		return "id inválido"
	}
	return "valor inválido (" + fe.Tag() + ")"
}
