// Утилиты обработки ошибок API: возврат ошибок с корректными HTTP статусами
// и логирование с контекстом запроса.
//
// Основные возможности:
//   - Единый формат ответа об ошибке.
//   - Логирование ошибок API с методом, URL и пользователем.
//   - Преобразование доменных ошибок редактора и загрузок в ответы API.
package aidoc

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"runtime"

	"github.com/labstack/echo/v4"

	"github.com/aisa-it/aidoc/internal/aidoc/apierrors"
	"github.com/aisa-it/aidoc/internal/aidoc/dao"
	"github.com/aisa-it/aidoc/internal/aidoc/editor/schema"
	"github.com/aisa-it/aidoc/internal/aidoc/uploads"
)

// Возврат ошибки 400 с универсальным сообщением
func EError(c echo.Context, err error) error {
	if customErr, ok := err.(apierrors.DefinedError); ok {
		return EErrorDefined(c, customErr)
	}

	var schemaErr *schema.SchemaError
	if errors.As(err, &schemaErr) {
		return EErrorDefined(c, apierrors.ErrDocBadContent.WithFormattedMessage(schemaErr.Error()))
	}

	var uploadErr *uploads.UploadError
	if errors.As(err, &uploadErr) {
		switch uploadErr.Reason {
		case uploads.ReasonBucketMissing:
			return EErrorDefined(c, apierrors.ErrBucketNotExist)
		case uploads.ReasonNetwork:
			return EErrorDefined(c, apierrors.ErrUploadNetwork)
		default:
			return EErrorDefined(c, apierrors.ErrUploadFailed)
		}
	}

	var user *dao.User
	if ctx, ok := c.(AuthContext); ok {
		user = ctx.User
	}
	if err == nil {
		slog.Error("Unknown API error",
			"method", c.Request().Method,
			"url", c.Request().URL,
			"user", user,
			getCallerFile(),
		)
	} else {
		slog.Error("API error",
			"err", err,
			"method", c.Request().Method,
			"url", c.Request().URL,
			"user", user,
			getCallerFile(),
		)
	}
	return EErrorDefined(c, apierrors.ErrGeneric)
}

// Возврат ошибки <status> с сообщением ошибки
func EErrorMsgStatus(c echo.Context, err error, status int) error {
	var user *dao.User
	if ctx, ok := c.(AuthContext); ok {
		user = ctx.User
	}
	if status == http.StatusRequestEntityTooLarge {
		return EErrorDefined(c, apierrors.ErrFileTooLarge.WithFormattedMessage(maxUploadSizeMB))
	}

	if err == nil {
		if status != http.StatusForbidden {
			slog.Error("Unknown API error",
				"method", c.Request().Method,
				slog.Int("status", status),
				"url", c.Request().URL,
				"user", user,
				getCallerFile(),
			)
		}
		er := apierrors.ErrGeneric
		er.StatusCode = status
		return EErrorDefined(c, er)
	}

	// Ignore log 404 error
	if status != http.StatusNotFound {
		slog.Error("API error",
			"err", err,
			"method", c.Request().Method,
			slog.Int("status", status),
			"url", c.Request().URL,
			"user", user,
			getCallerFile(),
		)
	}
	er := apierrors.ErrGeneric
	er.StatusCode = status
	er.Err = err.Error()
	return EErrorDefined(c, er)
}

// EErrorDefined возвращает JSON-ответ с кодом статуса и сообщением об ошибке.
// Если код статуса не определен, используется 400 Bad Request.
func EErrorDefined(c echo.Context, err apierrors.DefinedError) error {
	if http.StatusText(err.StatusCode) == "" {
		err.StatusCode = http.StatusBadRequest
	}
	return c.JSON(err.StatusCode, err)
}

func getCallerFile() slog.Attr {
	_, path, no, ok := runtime.Caller(2)
	if !ok {
		return slog.Attr{}
	}
	_, file := filepath.Split(path)
	return slog.String("caller", fmt.Sprintf("%s:%d", file, no))
}
