package lifecycle

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mamadbah2/pigfarm/internal/apperror"
	"github.com/mamadbah2/pigfarm/internal/domain/models"
)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// CheckFields is the form-level check run on every payload before any store
// access. It returns an apperror validation error with one message per field.
func CheckFields(payload any) error {
	fields := make(map[string]string)

	if err := validate.Struct(payload); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			fields[fe.Field()] = describe(fe)
		}
	}

	for name, problem := range crossFieldProblems(payload) {
		if _, seen := fields[name]; !seen {
			fields[name] = problem
		}
	}

	if len(fields) > 0 {
		return apperror.Validation(fields)
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	default:
		return "failed " + fe.Tag()
	}
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

func crossFieldProblems(payload any) map[string]string {
	problems := make(map[string]string)

	switch p := payload.(type) {
	case *models.Sow:
		return crossFieldProblems(*p)
	case models.Sow:
		if blank(p.TagNumber) {
			problems["tagNumber"] = "is required"
		}
		if blank(p.Breed) {
			problems["breed"] = "is required"
		}
	case *models.Boar:
		return crossFieldProblems(*p)
	case models.Boar:
		if blank(p.TagNumber) {
			problems["tagNumber"] = "is required"
		}
		if blank(p.Breed) {
			problems["breed"] = "is required"
		}
	case *models.Farrowing:
		return crossFieldProblems(*p)
	case models.Farrowing:
		if p.TotalBorn != nil && p.BornAlive != nil && *p.TotalBorn < *p.BornAlive {
			problems["bornAlive"] = "must not exceed totalBorn"
		}
	case *models.Piglet:
		return crossFieldProblems(*p)
	case models.Piglet:
		if blank(p.TagNumber) {
			problems["tagNumber"] = "is required"
		}
		if p.Status == models.PigletDead && p.DeathDate == nil {
			problems["deathDate"] = "is required when status is DEAD"
		}
	case *models.Pen:
		return crossFieldProblems(*p)
	case models.Pen:
		if blank(p.PenNumber) {
			problems["penNumber"] = "is required"
		}
	case *models.HealthRecord:
		return crossFieldProblems(*p)
	case models.HealthRecord:
		if n := animalRefCount(p); n != 1 {
			problems["animal"] = "exactly one of sowId, boarId, pigletId must be set"
		}
	case *models.FeedRecord:
		return crossFieldProblems(*p)
	case models.FeedRecord:
		if blank(p.FeedType) {
			problems["feedType"] = "is required"
		}
	case *models.User:
		return crossFieldProblems(*p)
	case models.User:
		if blank(p.Username) {
			problems["username"] = "is required"
		}
	}

	return problems
}

func animalRefCount(h models.HealthRecord) int {
	n := 0
	for _, ref := range []*string{h.SowID, h.BoarID, h.PigletID} {
		if ref != nil && *ref != "" {
			n++
		}
	}
	return n
}
