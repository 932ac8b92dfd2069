package web

import (
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var tagNameOnce sync.Once

// useJSONTagNames 让校验错误显示 json tag 而非结构体字段名
func useJSONTagNames() {
	tagNameOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

// BindAndValidate 绑定请求体并校验，失败时已写出 400 响应
func BindAndValidate(c *gin.Context, obj any) bool {
	useJSONTagNames()
	if err := c.ShouldBind(obj); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			Error(c, http.StatusBadRequest, CodeInvalidParams, verrs.Error())
			return false
		}
		Error(c, http.StatusBadRequest, CodeInvalidParams, "invalid request parameters: "+err.Error())
		return false
	}
	return true
}
