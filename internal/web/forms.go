package web

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/desertthunder/topten/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/leebenson/conform"
)

// Messages shown next to invalid fields.
const (
	msgRequired = "This field is required."
	msgFloat    = "Not a valid float value."
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// FieldErrors maps a form field name to its error message.
type FieldErrors map[string]string

// Get returns the message for field, or "".
func (e FieldErrors) Get(field string) string {
	return e[field]
}

// Any reports whether there is at least one error.
func (e FieldErrors) Any() bool {
	return len(e) > 0
}

// AddForm is the movie title search form.
type AddForm struct {
	Title string `form:"title" conform:"trim" validate:"required"`
}

// EditForm is the rating and review form.
//
// Rating is kept as submitted so an invalid value can be shown back to the user.
type EditForm struct {
	Rating string `form:"rating" conform:"trim" validate:"required"`
	Review string `form:"review" conform:"trim" validate:"required"`

	rating float64
}

// Value returns the parsed rating. Only meaningful after a successful [ParseEditForm].
func (f *EditForm) Value() float64 {
	return f.rating
}

// ParseAddForm reads and validates the add form from a POST body.
func ParseAddForm(r *http.Request) (*AddForm, FieldErrors) {
	form := &AddForm{Title: r.PostFormValue("title")}
	return form, check(form)
}

// ParseEditForm reads and validates the edit form from a POST body.
// A rating of 0 is valid.
func ParseEditForm(r *http.Request) (*EditForm, FieldErrors) {
	form := &EditForm{
		Rating: r.PostFormValue("rating"),
		Review: r.PostFormValue("review"),
	}

	errs := check(form)
	if _, bad := errs["rating"]; !bad {
		rating, err := models.ParseRating(form.Rating)
		if err != nil {
			errs["rating"] = msgFloat
		}
		form.rating = rating
	}
	return form, errs
}

// check trims the form's string fields and runs the struct validator.
func check(form any) FieldErrors {
	errs := FieldErrors{}
	if err := conform.Strings(form); err != nil {
		errs["form"] = err.Error()
		return errs
	}

	err := validate.Struct(form)
	if err == nil {
		return errs
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs["form"] = err.Error()
		return errs
	}

	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			errs[fe.Field()] = msgRequired
		default:
			errs[fe.Field()] = fe.Error()
		}
	}
	return errs
}
