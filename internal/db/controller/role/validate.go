package role

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/deskhub/deskhub/internal/apperr"
	"github.com/deskhub/deskhub/internal/db/models"
)

// roleState is the merged state of a role that is validated before every write.
type roleState struct {
	Name        string             `validate:"required,max=100"`
	Description string             `validate:"max=255"`
	Permissions models.Permissions `validate:"required,min=1,dive"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// registration only fails for empty tags or nil funcs
	_ = v.RegisterValidation("resource", func(fl validator.FieldLevel) bool {
		return models.Resource(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("action", func(fl validator.FieldLevel) bool {
		return models.Action(fl.Field().String()).Valid()
	})

	return v
}

// check normalises the state in place and validates it.
func (s *Store) check(st *roleState) error {
	st.Name = strings.TrimSpace(st.Name)
	st.Description = strings.TrimSpace(st.Description)

	if st.Name == "" {
		return apperr.Validation("role name must not be empty")
	}

	if r, dup := st.Permissions.DuplicateResource(); dup {
		return apperr.Validation("resource %q is listed more than once", r)
	}

	// entries with no actions are dropped by Normalize, their values still have to be known
	for _, p := range st.Permissions {
		if !p.Resource.Valid() {
			return apperr.Validation("unknown resource %q", p.Resource)
		}

		for _, a := range p.Actions {
			if !a.Valid() {
				return apperr.Validation("unknown action %q", a)
			}
		}
	}

	st.Permissions = st.Permissions.Normalize()

	if len(st.Permissions) == 0 {
		return apperr.Validation("a role needs at least one permission")
	}

	if err := s.validate.Struct(st); err != nil {
		return translate(err)
	}

	return nil
}

func translate(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.Validation("%v", err)
	}

	fe := verrs[0]

	switch fe.Tag() {
	case "resource":
		return apperr.Validation("unknown resource %q", fmt.Sprint(fe.Value()))
	case "action":
		return apperr.Validation("unknown action %q", fmt.Sprint(fe.Value()))
	case "max":
		return apperr.Validation("%s must be at most %s characters", strings.ToLower(fe.Field()), fe.Param())
	default:
		return apperr.Validation("%s failed on %s", fe.Namespace(), fe.Tag())
	}
}
