package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Схема валидации доменных сущностей
// Валидация тотальна и чиста: нарушения всегда возвращаются как данные
// (*ValidationError), исключения наружу не выбрасываются
var schema = newSchema()

// fieldValidators - кастомные валидаторы для enum-типов и диапазонов
var fieldValidators = map[string]validator.Func{
	"policyStatus":  validatePolicyStatusField,
	"gender":        validateGenderField,
	"maritalStatus": validateMaritalStatusField,
	"licenseStatus": validateLicenseStatusField,
	"coverageType":  validateCoverageTypeField,
	"vehicleUsage":  validateVehicleUsageField,
	"ownership":     validateOwnershipField,
	"vehicleYear":   validateVehicleYearField,
}

// enumValues - допустимые значения для сообщений об ошибках enum-полей
var enumValues = map[string]string{
	"policyStatus":  "Active, Inactive, Cancelled, Expired, Pending",
	"gender":        "Male, Female",
	"maritalStatus": "Single, Married, Divorced, Widowed",
	"licenseStatus": "Valid, Expired, Suspended, Revoked",
	"coverageType":  "Liability, Collision, Comprehensive",
	"vehicleUsage":  "Pleasure, Commuting, Business, Farm",
	"ownership":     "Owned, Leased, Financed",
}

// fieldLabels - человекочитаемые названия полей, которые нельзя
// получить автоматически из имени
var fieldLabels = map[string]string{
	"zip": "ZIP code",
	"vin": "VIN",
}

func newSchema() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Пути полей в ошибках строятся из json-тегов
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	for tag, fn := range fieldValidators {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("failed to register validator %q: %v", tag, err))
		}
	}

	return v
}

// Validate проверяет данные формы создания полиса
func (f *PolicyForm) Validate() error {
	return validateStruct(f)
}

// Validate проверяет частичное обновление полиса
// Отсутствующие поля пропускаются, присутствующие проверяются полностью
func (p *PolicyPatch) Validate() error {
	return validateStruct(p)
}

// Validate проверяет полис целиком (например, загруженный с сервера)
func (p *Policy) Validate() error {
	form := PolicyForm{
		PolicyStatus:         p.PolicyStatus,
		PolicyType:           p.PolicyType,
		PolicyEffectiveDate:  p.PolicyEffectiveDate,
		PolicyExpirationDate: p.PolicyExpirationDate,
		PolicyHolder:         p.PolicyHolder,
		Drivers:              p.Drivers,
		Vehicles:             p.Vehicles,
	}
	return form.Validate()
}

// Validate проверяет данные для входа
func (c *Credentials) Validate() error {
	return validateStruct(c)
}

// Validate проверяет данные регистрации
func (r *Registration) Validate() error {
	return validateStruct(r)
}

// validateStruct прогоняет структуру через схему и преобразует
// нарушения в FieldErrors с путями вида "vehicles[0].coverages[1].limit"
func validateStruct(s interface{}) error {
	err := schema.Struct(s)
	if err == nil {
		return nil
	}

	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		// Структурно невалидный вход (не struct) - отдаем как данные
		return NewValidationError("The given data was invalid.", FieldErrors{
			"": {"invalid input"},
		})
	}

	fieldErrs := FieldErrors{}
	for _, fe := range vErrs {
		fieldErrs.Add(fieldPath(fe.Namespace()), messageFor(fe))
	}

	return NewValidationError("The given data was invalid.", fieldErrs)
}

// fieldPath отрезает имя корневой структуры от namespace ошибки:
// "PolicyForm.vehicles[0].vin" -> "vehicles[0].vin"
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

// messageFor строит человекочитаемое сообщение для нарушения
func messageFor(fe validator.FieldError) string {
	label := labelFor(fe.Field())

	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "email":
		return "Invalid email address"
	case "eqfield":
		if fe.Field() == "password_confirmation" {
			return "Passwords don't match"
		}
		return label + " must match " + labelFor(fe.Param())
	case "min":
		if fe.Kind() == reflect.Slice {
			return "At least one " + singular(fe.Field()) + " is required"
		}
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", label, fe.Param())
	case "gte":
		if fe.Field() == "age" {
			return "Driver must be at least 16 years old"
		}
		if fe.Param() == "0" {
			return label + " must be a positive number"
		}
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", label, fe.Param())
	case "vehicleYear":
		return fmt.Sprintf("Year must be between 1900 and %d", maxVehicleYear())
	}

	if values, ok := enumValues[fe.Tag()]; ok {
		return label + " must be one of: " + values
	}

	return label + " is invalid"
}

// labelFor превращает json-имя поля в читаемую подпись:
// "firstName" -> "First name", "zip" -> "ZIP code"
func labelFor(field string) string {
	if label, ok := fieldLabels[field]; ok {
		return label
	}

	var b strings.Builder
	for i, r := range field {
		if i == 0 {
			b.WriteRune(unicode.ToUpper(r))
			continue
		}
		if unicode.IsUpper(r) {
			b.WriteRune(' ')
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// singular убирает множественное число у имени массива:
// "drivers" -> "driver"
func singular(field string) string {
	return strings.TrimSuffix(field, "s")
}

// maxVehicleYear возвращает верхнюю границу года выпуска автомобиля
func maxVehicleYear() int {
	return time.Now().Year() + 1
}

func validatePolicyStatusField(field validator.FieldLevel) bool {
	if value, ok := field.Field().Interface().(PolicyStatus); ok {
		_, valid := ValidPolicyStatuses[value]
		return valid
	}
	return false
}

func validateGenderField(field validator.FieldLevel) bool {
	if value, ok := field.Field().Interface().(Gender); ok {
		_, valid := ValidGenders[value]
		return valid
	}
	return false
}

func validateMaritalStatusField(field validator.FieldLevel) bool {
	if value, ok := field.Field().Interface().(MaritalStatus); ok {
		_, valid := ValidMaritalStatuses[value]
		return valid
	}
	return false
}

func validateLicenseStatusField(field validator.FieldLevel) bool {
	if value, ok := field.Field().Interface().(LicenseStatus); ok {
		_, valid := ValidLicenseStatuses[value]
		return valid
	}
	return false
}

func validateCoverageTypeField(field validator.FieldLevel) bool {
	if value, ok := field.Field().Interface().(CoverageType); ok {
		_, valid := ValidCoverageTypes[value]
		return valid
	}
	return false
}

func validateVehicleUsageField(field validator.FieldLevel) bool {
	if value, ok := field.Field().Interface().(VehicleUsage); ok {
		_, valid := ValidVehicleUsages[value]
		return valid
	}
	return false
}

func validateOwnershipField(field validator.FieldLevel) bool {
	if value, ok := field.Field().Interface().(Ownership); ok {
		_, valid := ValidOwnerships[value]
		return valid
	}
	return false
}

func validateVehicleYearField(field validator.FieldLevel) bool {
	year := int(field.Field().Int())
	return year >= 1900 && year <= maxVehicleYear()
}
