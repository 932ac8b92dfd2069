package config

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

// Validator 配置验证器，基于 validate tag
type Validator struct {
	validate *validator.Validate
}

// NewValidator 创建验证器
func NewValidator() *Validator {
	return &Validator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// RegisterRule 注册自定义规则
func (v *Validator) RegisterRule(tag string, fn validator.Func) error {
	if err := v.validate.RegisterValidation(tag, fn); err != nil {
		return errors.Wrapf(err, "register validation %s", tag)
	}
	return nil
}

// Validate 验证配置结构体
func (v *Validator) Validate(cfg any) error {
	if cfg == nil {
		return ErrNilConfig
	}
	if err := v.validate.Struct(cfg); err != nil {
		return errors.Wrap(ErrValidationFailed, describe(err))
	}
	return nil
}

// defaultValidator 包级共享验证器，validator.Validate 本身并发安全
var defaultValidator = NewValidator()

// Validate 使用包级验证器验证配置
func Validate(cfg any) error {
	return defaultValidator.Validate(cfg)
}

// describe 把 validator 的错误列表转换成可读描述
func describe(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}

	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		name := fe.Namespace()
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", name))
		case "min", "gte":
			parts = append(parts, fmt.Sprintf("%s must be >= %s", name, fe.Param()))
		case "max", "lte":
			parts = append(parts, fmt.Sprintf("%s must be <= %s", name, fe.Param()))
		case "oneof":
			parts = append(parts, fmt.Sprintf("%s must be one of [%s]", name, fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s failed '%s'", name, fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}
