package service

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jafarshop/marketorders/internal/domain"
)

// canonicalUUIDLength is the length of the hyphenated 8-4-4-4-12 form.
const canonicalUUIDLength = 36

// newValidator registers the closed enums of the domain as validation tags so that
// input schemas reject unknown values with the same switch the domain uses.
// The built-in uuid tag only matches lowercase hex, so it is replaced with one
// that accepts any letter case.
func newValidator() *validator.Validate {
	v := validator.New()
	mustRegisterValidation(v, "uuid", func(fl validator.FieldLevel) bool {
		return isCanonicalUUID(fl.Field().String())
	})
	mustRegisterValidation(v, "issue_type", func(fl validator.FieldLevel) bool {
		_, ok := domain.ParseIssueType(fl.Field().String())
		return ok
	})
	mustRegisterValidation(v, "status_filter", func(fl validator.FieldLevel) bool {
		_, ok := domain.ParseStatusFilter(fl.Field().String())
		return ok
	})
	return v
}

func mustRegisterValidation(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %q validation: %v", tag, err))
	}
}

func isCanonicalUUID(raw string) bool {
	if len(raw) != canonicalUUIDLength {
		return false
	}
	_, err := uuid.Parse(raw)
	return err == nil
}

type sellerOrdersParams struct {
	Status   string `validate:"status_filter"`
	Page     int    `validate:"gt=0"`
	PageSize int    `validate:"gt=0"`
}

// firstInvalidField returns the struct field name of the first validation failure.
func firstInvalidField(err error) string {
	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		return errs[0].StructField()
	}
	return ""
}

func (s *orderReadService) parseOrderID(raw string) (uuid.UUID, bool) {
	if err := s.validate.Var(raw, "required,uuid"); err != nil {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	return id, err == nil
}
