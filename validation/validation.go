// Package validation checks request bodies against the fixed field rules of
// each API schema and reports the first violated rule as a readable message.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"food-storefront/models"
)

// Schema names a request shape.
type Schema string

const (
	Registration     Schema = "registration"
	Login            Schema = "login"
	RestaurantCreate Schema = "restaurant-create"
	MenuItemCreate   Schema = "menu-item-create"
	OrderCreate      Schema = "order-create"
	StatusUpdate     Schema = "status-update"
	Rating           Schema = "rating"
	ProfileUpdate    Schema = "profile-update"
)

var schemaTypes = map[Schema]reflect.Type{
	Registration:     reflect.TypeOf(models.RegisterRequest{}),
	Login:            reflect.TypeOf(models.LoginRequest{}),
	RestaurantCreate: reflect.TypeOf(models.Restaurant{}),
	MenuItemCreate:   reflect.TypeOf(models.MenuItem{}),
	OrderCreate:      reflect.TypeOf(models.CreateOrderRequest{}),
	StatusUpdate:     reflect.TypeOf(models.UpdateStatusRequest{}),
	Rating:           reflect.TypeOf(models.RateOrderRequest{}),
	ProfileUpdate:    reflect.TypeOf(models.UpdateProfileRequest{}),
}

var phonePattern = regexp.MustCompile(`^\+?[\d\s\-()]+$`)

// Error describes the first rule a value violated.
type Error struct {
	Schema  Schema
	Field   string
	Message string
}

func (e *Error) Error() string { return e.Message }

// defaulter is implemented by values that fill optional fields before checking.
type defaulter interface {
	ApplyDefaults()
}

// Validator is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
	trans    ut.Translator
}

func New() *Validator {
	locale := en.New()
	uni := ut.New(locale, locale)
	trans, _ := uni.GetTranslator("en")

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := en_translations.RegisterDefaultTranslations(v, trans); err != nil {
		panic(fmt.Sprintf("validation: register translations: %v", err))
	}

	val := &Validator{validate: v, trans: trans}
	val.registerEnum("cuisine", models.Cuisines)
	val.registerEnum("feature", models.RestaurantFeatures)
	val.registerEnum("menucategory", models.MenuCategories)
	val.registerEnum("allergen", models.Allergens)
	val.registerEnum("dietary", models.DietaryTags)
	val.registerEnum("spicelevel", models.SpiceLevels)
	val.registerEnum("selfrole", []string{
		string(models.RoleCustomer), string(models.RoleRestaurantOwner), string(models.RoleDeliveryDriver),
	})
	val.registerEnum("paymentmethod", []string{
		string(models.PaymentCard), string(models.PaymentCash), string(models.PaymentDigitalWallet),
	})
	statuses := make([]string, len(models.OrderStatuses))
	for i, s := range models.OrderStatuses {
		statuses[i] = string(s)
	}
	val.registerEnum("orderstatus", statuses)
	val.register("phonenum", "{0} must be a valid phone number", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	return val
}

// Validate applies the value's defaults and checks it against the schema.
// value must be a pointer to the schema's request type.
func (v *Validator) Validate(schema Schema, value any) error {
	want, ok := schemaTypes[schema]
	if !ok {
		return fmt.Errorf("validation: unknown schema %q", schema)
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Pointer || rv.Elem().Type() != want {
		return fmt.Errorf("validation: schema %q expects *%s, got %T", schema, want.Name(), value)
	}
	if d, ok := value.(defaulter); ok {
		d.ApplyDefaults()
	}

	err := v.validate.Struct(value)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	path := fieldPath(fe.Namespace())
	return &Error{Schema: schema, Field: path, Message: v.message(fe, path)}
}

func (v *Validator) message(fe validator.FieldError, path string) string {
	msg := fe.Translate(v.trans)
	quoted := strconv.Quote(path)
	if field := fe.Field(); field != "" && strings.HasPrefix(msg, field) {
		return quoted + msg[len(field):]
	}
	return quoted + " " + msg
}

// fieldPath drops the struct type name validator puts in front of the namespace.
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func (v *Validator) registerEnum(tag string, allowed []string) {
	set := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		set[a] = true
	}
	v.register(tag, "{0} must be one of ["+strings.Join(allowed, ", ")+"]", func(fl validator.FieldLevel) bool {
		return set[fl.Field().String()]
	})
}

func (v *Validator) register(tag, text string, fn validator.Func) {
	if err := v.validate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %s: %v", tag, err))
	}
	err := v.validate.RegisterTranslation(tag, v.trans,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T(tag, fe.Field())
			return msg
		},
	)
	if err != nil {
		panic(fmt.Sprintf("validation: translate %s: %v", tag, err))
	}
}
