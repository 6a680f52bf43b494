// Package userform implements the add/edit dialog: the working draft, field
// validation, the touched-field bookkeeping and the submit/cancel lifecycle.
package userform

import (
	"errors"
	"reflect"
	"strings"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/patric-chuzhbe/useradmin/internal/models"
)

var (
	ErrFormClosed   = errors.New("form is closed")
	ErrUnknownField = errors.New("unknown form field")
)

// Field is the dotted name a presentation layer uses for an input.
type Field string

const (
	FieldName        Field = "name"
	FieldEmail       Field = "email"
	FieldCompanyName Field = "company.name"
)

// Fields lists the editable fields in form order.
func Fields() []Field {
	return []Field{FieldName, FieldEmail, FieldCompanyName}
}

// Label is the human caption of the field.
func (f Field) Label() string {
	switch f {
	case FieldName:
		return "Name"
	case FieldEmail:
		return "Email"
	case FieldCompanyName:
		return "Company Name"
	default:
		return string(f)
	}
}

// Errors maps an invalid field to its single message.
type Errors map[Field]string

type Mode int

const (
	ModeClosed Mode = iota
	ModeAdd
	ModeEdit
)

func (m Mode) String() string {
	switch m {
	case ModeAdd:
		return "add"
	case ModeEdit:
		return "edit"
	default:
		return "closed"
	}
}

func message(field Field, tag string) string {
	switch {
	case field == FieldName:
		return "Name is required"
	case field == FieldEmail && tag == "email":
		return "Invalid email format"
	case field == FieldEmail:
		return "Email is required"
	case field == FieldCompanyName:
		return "Company name is required"
	default:
		return "Invalid value"
	}
}

// Validator checks a user record against the struct tags of models.User.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	validate := validator.New()
	// NotBlank never fails registration; the error is for unknown tags.
	_ = validate.RegisterValidation("notblank", validators.NotBlank)
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: validate}
}

// Validate returns one message per invalid field; an empty map means valid.
func (v *Validator) Validate(usr models.User) Errors {
	result := Errors{}

	err := v.validate.Struct(usr)
	if err == nil {
		return result
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		for _, field := range Fields() {
			result[field] = "Invalid value"
		}
		return result
	}

	for _, fieldErr := range validationErrors {
		_, path, _ := strings.Cut(fieldErr.Namespace(), ".")
		field := Field(path)
		if _, exists := result[field]; !exists {
			result[field] = message(field, fieldErr.Tag())
		}
	}

	return result
}

type writer interface {
	Add(usr models.User)
	Update(usr models.User)
}

// Form is the dialog state machine: Closed, Open(Add) or Open(Edit).
// It is not safe for concurrent use; one presentation session owns it.
type Form struct {
	validator *Validator
	now       func() time.Time

	mode      Mode
	draft     models.User
	touched   map[Field]bool
	submitted bool
}

type InitOption func(*initOptions)

type initOptions struct {
	now       func() time.Time
	validator *Validator
}

// WithClock sets the time source for ids of added records.
func WithClock(now func() time.Time) InitOption {
	return func(options *initOptions) {
		options.now = now
	}
}

func WithValidator(validator *Validator) InitOption {
	return func(options *initOptions) {
		options.validator = validator
	}
}

func New(optionsProto ...InitOption) *Form {
	options := &initOptions{
		now:       time.Now,
		validator: nil,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}
	if options.validator == nil {
		options.validator = NewValidator()
	}

	return &Form{
		validator: options.validator,
		now:       options.now,
		mode:      ModeClosed,
		touched:   map[Field]bool{},
	}
}

func (f *Form) reset(mode Mode, draft models.User) {
	f.mode = mode
	f.draft = draft
	f.touched = map[Field]bool{}
	f.submitted = false
}

// OpenAdd starts a blank draft with a fresh clock-based id.
func (f *Form) OpenAdd() {
	f.reset(ModeAdd, models.User{ID: models.NewClientID(f.now())})
}

// OpenEdit starts a draft that is a full copy of usr.
func (f *Form) OpenEdit(usr models.User) {
	f.reset(ModeEdit, usr)
}

// Cancel closes the dialog and drops the draft.
func (f *Form) Cancel() {
	f.reset(ModeClosed, models.User{})
}

func (f *Form) Mode() Mode {
	return f.mode
}

func (f *Form) IsOpen() bool {
	return f.mode != ModeClosed
}

func (f *Form) Draft() models.User {
	return f.draft
}

// Value reads the draft's current value of field.
func (f *Form) Value(field Field) string {
	switch field {
	case FieldName:
		return f.draft.Name
	case FieldEmail:
		return f.draft.Email
	case FieldCompanyName:
		return f.draft.Company.Name
	default:
		return ""
	}
}

// Set changes one draft field. The id is not editable.
func (f *Form) Set(field Field, value string) error {
	if !f.IsOpen() {
		return ErrFormClosed
	}

	switch field {
	case FieldName:
		f.draft.Name = value
	case FieldEmail:
		f.draft.Email = value
	case FieldCompanyName:
		f.draft.Company.Name = value
	default:
		return ErrUnknownField
	}

	return nil
}

// Blur marks field as touched so its error becomes visible.
func (f *Form) Blur(field Field) error {
	if !f.IsOpen() {
		return ErrFormClosed
	}

	switch field {
	case FieldName, FieldEmail, FieldCompanyName:
		f.touched[field] = true
		return nil
	default:
		return ErrUnknownField
	}
}

// Touched returns the touched fields in form order.
func (f *Form) Touched() []Field {
	result := []Field{}
	for _, field := range Fields() {
		if f.touched[field] || f.submitted {
			result = append(result, field)
		}
	}

	return result
}

// Errors validates the whole draft regardless of what was touched.
func (f *Form) Errors() Errors {
	if !f.IsOpen() {
		return Errors{}
	}

	return f.validator.Validate(f.draft)
}

// VisibleErrors is Errors restricted to touched fields, or all of them once
// a submit was attempted.
func (f *Form) VisibleErrors() Errors {
	result := Errors{}
	for field, msg := range f.Errors() {
		if f.submitted || f.touched[field] {
			result[field] = msg
		}
	}

	return result
}

// Submit marks every field touched and validates. An invalid draft leaves
// the store alone and the dialog open; the errors are returned with ok=false.
// A valid draft is added or updated according to the mode and the dialog
// closes.
func (f *Form) Submit(store writer) (Errors, bool) {
	if !f.IsOpen() {
		return Errors{}, false
	}

	f.submitted = true
	if errs := f.Errors(); len(errs) > 0 {
		return errs, false
	}

	switch f.mode {
	case ModeAdd:
		store.Add(f.draft)
	case ModeEdit:
		store.Update(f.draft)
	}
	f.Cancel()

	return Errors{}, true
}
