package util

import (
	"reflect"
	"strings"

	"coffeeshop-backend/internal/model"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// RegisterValidators 注册枚举类字段的自定义校验规则
func RegisterValidators(v *validator.Validate) {
	// 错误字段使用 JSON 名称
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// 金额按数值参与 gt、required 等规则
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	v.RegisterValidation("product_category", enumValidator(func(s string) bool {
		return model.ProductCategory(s).Valid()
	}))
	v.RegisterValidation("order_status", enumValidator(func(s string) bool {
		return model.OrderStatus(s).Valid()
	}))
	v.RegisterValidation("payment_method", enumValidator(func(s string) bool {
		return model.PaymentMethod(s).Valid()
	}))
	v.RegisterValidation("coffee_size", enumValidator(func(s string) bool {
		return s == "" || model.CoffeeSize(s).Valid()
	}))
}

func enumValidator(valid func(string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return valid(fl.Field().String())
	}
}
