package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hitoshi/workplanner/internal/model"
)

// maxRequestBodySize はリクエストボディの上限バイト数。
const maxRequestBodySize = 1 << 20

// validate はリクエストボディの検証に使う共有バリデーター。
// エラーのフィールド名にはJSONタグの名前を使う。
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeAndValidate はJSONボディをdstにデコードし、構造体タグで検証する。
// 解析失敗はINVALID_REQUEST、検証失敗はVALIDATION_FAILEDのAPIErrorを返す。
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) *model.APIError {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return model.NewInvalidRequestError()
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return model.NewValidationError(describeValidationErrors(verrs))
		}
		return model.NewInvalidRequestError()
	}
	return nil
}

// describeValidationErrors は検証エラーを「フィールド: 理由」の一覧にまとめる。
func describeValidationErrors(verrs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field(), describeFieldError(fe)))
	}
	return strings.Join(msgs, ", ")
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "必須です"
	case "max":
		return fmt.Sprintf("%s文字以内で指定してください", fe.Param())
	case "email":
		return "メールアドレスの形式が正しくありません"
	case "oneof":
		return fmt.Sprintf("%s のいずれかを指定してください", fe.Param())
	default:
		return "値が正しくありません"
	}
}
