package validator

import (
	"fmt"
	"regexp"
)

type Validator interface {
	Evaluate(value interface{}) (bool, error)
}

//

type stringValidator struct {
	Expression *regexp.Regexp
}

func NewStringValidator() *stringValidator {
	return &stringValidator{
		Expression: regexp.MustCompile(`^\S*$`),
	}
}

func NewFilePathStringValidator() *stringValidator {
	return &stringValidator{
		Expression: regexp.MustCompile(`^[A-Za-z0-9_./~-]+$`),
	}
}

func (s stringValidator) Evaluate(value interface{}) (bool, error) {
	v, ok := value.(string)

	if !ok {
		return false, fmt.Errorf("value is not a string")
	}

	if s.Expression.MatchString(v) {
		return true, nil
	}

	return false, fmt.Errorf("value does not match this regular expression: %s", s.Expression)
}

///

type OptionValidator struct {
	AllowedOptions []string
}

func NewOptionValidator(validOptions []string) *OptionValidator {
	return &OptionValidator{
		AllowedOptions: validOptions,
	}
}

func (i OptionValidator) Evaluate(value interface{}) (bool, error) {

	v, ok := value.(string)

	if !ok {
		return false, fmt.Errorf("value is not a string")
	}

	if v == "" {
		return false, fmt.Errorf("value must not be empty")
	}

	valueFound := false
	for _, option := range i.AllowedOptions {
		if option == v {
			valueFound = true
		}
	}

	if !valueFound {
		return false, fmt.Errorf("value %s not allowed. It should be one of this options: %v", v, i.AllowedOptions)
	}
	return true, nil
}
