package api

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// bindJSON 绑定并校验请求体
// 校验失败时按字段逐条返回错误，返回 false 表示响应已写入
func bindJSON(c *gin.Context, obj interface{}) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		BadRequest(c, "请求体格式错误")
		return false
	}
	ValidationFailed(c, translateValidationErrors(obj, verrs))
	return false
}

// translateValidationErrors 把结构体校验错误映射为 JSON 字段名加中文提示
func translateValidationErrors(obj interface{}, verrs validator.ValidationErrors) []FieldError {
	t := reflect.TypeOf(obj)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		name := fe.Field()
		if sf, ok := t.FieldByName(fe.StructField()); ok {
			if tag := strings.Split(sf.Tag.Get("json"), ",")[0]; tag != "" && tag != "-" {
				name = tag
			}
		}
		out = append(out, FieldError{Field: name, Message: validationMessage(fe)})
	}
	return out
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "不能为空"
	case "min":
		return "长度不能小于" + fe.Param()
	case "max":
		return "长度不能超过" + fe.Param()
	case "len":
		return "长度必须为" + fe.Param() + "个字符"
	case "gt":
		return "必须大于" + fe.Param()
	default:
		return "格式不正确"
	}
}
