package validation

import (
	"errors"
	"reflect"
	"strings"

	"verification_portal/internal/apperrors"
	"verification_portal/internal/model"

	"github.com/go-playground/validator/v10"
)

// draftRequirements - поля, без которых черновик нельзя отправить.
// Вложенные разделы (organizationDetails, buildingPictures, transportationCost) сюда не входят.
type draftRequirements struct {
	Country        string `json:"country" validate:"required"`
	State          string `json:"state" validate:"required"`
	Lga            string `json:"lga" validate:"required"`
	City           string `json:"city" validate:"required"`
	CityRegion     string `json:"cityRegion" validate:"required"`
	OrganizationID string `json:"organizationId" validate:"required"`
	TargetUserID   string `json:"targetUserId" validate:"required"`
}

type categoryRequirements struct {
	CategoryName string `json:"categoryName" validate:"required"`
	Industry     string `json:"industry" validate:"required"`
	Description  string `json:"description" validate:"required,min=10"`
}

var messages = map[string]map[string]string{
	"country":        {"required": "Country is required"},
	"state":          {"required": "State is required"},
	"lga":            {"required": "LGA is required"},
	"city":           {"required": "City is required"},
	"cityRegion":     {"required": "City Region is required"},
	"organizationId": {"required": "Organization is required"},
	"targetUserId":   {"required": "Target user is required"},
	"categoryName":   {"required": "Category name is required"},
	"industry":       {"required": "Industry is required"},
	"description": {
		"required": "Description is required",
		"min":      "Description must be at least 10 characters",
	},
}

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// ValidateDraft возвращает сообщение для каждого пустого обязательного поля.
// Пустая карта означает, что черновик можно отправлять.
func (v *Validator) ValidateDraft(d model.Draft) map[string]string {
	return v.collect(draftRequirements{
		Country:        d.Country,
		State:          d.State,
		Lga:            d.Lga,
		City:           d.City,
		CityRegion:     d.CityRegion,
		OrganizationID: d.OrganizationID,
		TargetUserID:   d.TargetUserID,
	})
}

// ValidateCategory проверяет форму категории. Организация обязательна только при создании.
func (v *Validator) ValidateCategory(d model.CategoryDraft, creating bool) map[string]string {
	d = d.Normalize()
	errs := v.collect(categoryRequirements{
		CategoryName: d.CategoryName,
		Industry:     d.Industry,
		Description:  d.Description,
	})
	if creating && d.OrganizationID == "" {
		errs["organizationId"] = messages["organizationId"]["required"]
	}
	return errs
}

func (v *Validator) collect(s any) map[string]string {
	errs := make(map[string]string)

	err := v.validate.Struct(s)
	if err == nil {
		return errs
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		errs["_"] = err.Error()
		return errs
	}
	for _, fe := range fieldErrs {
		if _, exists := errs[fe.Field()]; exists {
			continue
		}
		errs[fe.Field()] = message(fe.Field(), fe.Tag())
	}
	return errs
}

func message(field, tag string) string {
	if m, ok := messages[field][tag]; ok {
		return m
	}
	return field + " is invalid"
}

// AsError превращает карту ошибок в ValidationError, nil если ошибок нет
func AsError(op string, errs map[string]string) error {
	if len(errs) == 0 {
		return nil
	}
	return apperrors.Validation(op, errs)
}
