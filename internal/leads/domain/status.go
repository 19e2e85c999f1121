// Package domain holds the lead status vocabulary.
package domain

import "github.com/go-playground/validator/v10"

type Status string

const (
	StatusNew       Status = "new"
	StatusContacted Status = "contacted"
	StatusQuoted    Status = "quoted"
	StatusBooked    Status = "booked"
	StatusLost      Status = "lost"
)

// ValidationTag is the struct tag registered by RegisterValidation.
const ValidationTag = "leadstatus"

var statuses = map[Status]struct{}{
	StatusNew:       {},
	StatusContacted: {},
	StatusQuoted:    {},
	StatusBooked:    {},
	StatusLost:      {},
}

// AllStatuses lists the statuses in pipeline order.
func AllStatuses() []Status {
	return []Status{StatusNew, StatusContacted, StatusQuoted, StatusBooked, StatusLost}
}

func IsValidStatus(s string) bool {
	_, ok := statuses[Status(s)]
	return ok
}

// Registrar is satisfied by platform/validator.Validator.
type Registrar interface {
	RegisterValidation(tag string, fn validator.Func) error
}

// RegisterValidation installs the "leadstatus" rule.
func RegisterValidation(v Registrar) error {
	return v.RegisterValidation(ValidationTag, func(fl validator.FieldLevel) bool {
		return IsValidStatus(fl.Field().String())
	})
}
