// Пакет содержит определения ошибок, используемых в приложении aidoc для обработки различных ситуаций, возникающих при работе с базой данных, внешними сервисами и пользовательским интерфейсом.  Каждая ошибка имеет код, статус HTTP и описание, что позволяет удобно обрабатывать исключения и предоставлять информативные сообщения пользователю.  Также включает в себя helper-функцию для форматирования сообщений об ошибках.
//
// Основные возможности:
//   - Определение различных типов ошибок, связанных с авторизацией, сессиями, рабочими пространствами, документами, загрузками файлов и встраиваемым контентом.
//   - Предоставление кодов ошибок, соответствующих кодам HTTP статусов.
//   - Включение сообщений об ошибках для удобной обработки и отображения пользователю.
//   - Функция для форматирования сообщений об ошибках с использованием аргументов.
package apierrors

import (
	"fmt"
	"net/http"
	"strings"
)

type DefinedError struct {
	Code       int    `json:"code"`
	StatusCode int    `json:"-"`
	Err        string `json:"error"`
	RuErr      string `json:"ru_error,omitempty"`
}

func (e DefinedError) Error() string {
	return e.Err
}

var (
	// 1*** - auth errors
	ErrFailedLogin              = DefinedError{Code: 1001, StatusCode: http.StatusUnauthorized, Err: "invalid credentials", RuErr: "Неправильный email или пароль"}
	ErrLoginCredentialsRequired = DefinedError{Code: 1002, StatusCode: http.StatusUnauthorized, Err: "both email and password are required", RuErr: "Поля email и пароль не могут быть пустыми"}
	ErrSignupDisabled           = DefinedError{Code: 1003, StatusCode: http.StatusForbidden, Err: "sign up disabled", RuErr: "Регистрация отключена администратором"}
	ErrUserAlreadyExist         = DefinedError{Code: 1004, StatusCode: http.StatusConflict, Err: "user already exist", RuErr: "Пользователь с указанным email уже зарегистрирован в системе"}
	ErrNewUserMailFailed        = DefinedError{Code: 1005, Err: "failed to deliver email with password to new user", RuErr: "Не удалось отправить пароль на указанную почту. Проверьте корректность указанного адреса"}
	ErrUserNotFound             = DefinedError{Code: 1006, StatusCode: http.StatusNotFound, Err: "user not found", RuErr: "Пользователь не найден"}

	// 11** - session errors
	ErrAccessTokenRequired = DefinedError{Code: 1101, StatusCode: http.StatusUnauthorized, Err: "access token is required", RuErr: "Требуется токен доступа"}
	ErrTokenExpired        = DefinedError{Code: 1102, StatusCode: http.StatusUnauthorized, Err: "token expired", RuErr: "Срок действия токена истек"}
	ErrTokenInvalid        = DefinedError{Code: 1103, StatusCode: http.StatusUnauthorized, Err: "invalid token", RuErr: "Неверный токен"}

	// 2*** - workspace errors
	ErrWorkspaceNotFound             = DefinedError{Code: 2001, StatusCode: http.StatusNotFound, Err: "workspace not found", RuErr: "Рабочее пространство не найдено"}
	ErrWorkspaceSlugConflict         = DefinedError{Code: 2002, StatusCode: http.StatusConflict, Err: "workspace with that slug already exists", RuErr: "Пространство с таким идентификатором уже существует"}
	ErrForbiddenSlug                 = DefinedError{Code: 2003, StatusCode: http.StatusBadRequest, Err: "forbidden slug", RuErr: "Идентификатор содержит недопустимые символы"}
	ErrWorkspaceNameRequired         = DefinedError{Code: 2004, StatusCode: http.StatusBadRequest, Err: "workspace must have a name", RuErr: "Поле Имя пространства не может быть пустым"}
	ErrWorkspaceForbidden            = DefinedError{Code: 2005, StatusCode: http.StatusForbidden, Err: "not have permissions to perform this action", RuErr: "Недостаточно прав для совершения действия"}
	ErrWorkspaceAdminRoleRequired    = DefinedError{Code: 2006, StatusCode: http.StatusForbidden, Err: "workspace admin role is required", RuErr: "У вас недостаточно прав. Для действия необходима роль администратора пространства"}
	ErrWorkspaceMemberNotFound       = DefinedError{Code: 2007, StatusCode: http.StatusBadRequest, Err: "workspace member not found", RuErr: "Пользователь не является участником данного пространства"}
	ErrWorkspaceRoleRequired         = DefinedError{Code: 2008, StatusCode: http.StatusBadRequest, Err: "workspace role must be specified", RuErr: "Указана некорректная роль участника"}
	ErrInviteMemberExist             = DefinedError{Code: 2009, StatusCode: http.StatusBadRequest, Err: "workspace member already exists", RuErr: "Пользователь уже является участником данного пространства"}
	ErrCannotRemoveSelfFromWorkspace = DefinedError{Code: 2010, StatusCode: http.StatusBadRequest, Err: "you cannot remove yourself from the workspace", RuErr: "У вас недостаточно прав на удаление себя из пространства"}
	ErrCannotRemoveWorkspaceOwner    = DefinedError{Code: 2011, StatusCode: http.StatusForbidden, Err: "you cannot remove workspace owner", RuErr: "У вас недостаточно прав на удаление владельца пространства"}
	ErrUpdateHigherRoleUserForbidden = DefinedError{Code: 2012, StatusCode: http.StatusForbidden, Err: "cannot update user with a higher role than your own", RuErr: "У вас недостаточно прав для изменения пользователя с более высокой ролью, чем ваша"}

	// 4*** - doc errors
	ErrDocNotFound      = DefinedError{Code: 4001, StatusCode: http.StatusNotFound, Err: "document not found", RuErr: "Документ не найден"}
	ErrDocForbidden     = DefinedError{Code: 4002, StatusCode: http.StatusForbidden, Err: "not have permissions to perform this action", RuErr: "Недостаточно прав для совершения действия"}
	ErrDocTitleRequired = DefinedError{Code: 4003, StatusCode: http.StatusBadRequest, Err: "document must have a title", RuErr: "Поле Название документа не может быть пустым"}
	ErrDocBadContent    = DefinedError{Code: 4004, StatusCode: http.StatusBadRequest, Err: "invalid document content: %s", RuErr: "Некорректное содержимое документа: %s"}
	ErrDocSessionClosed = DefinedError{Code: 4006, StatusCode: http.StatusGone, Err: "editor session is closed", RuErr: "Сессия редактирования завершена"}

	// 5*** - upload and embed errors
	ErrBucketNotExist       = DefinedError{Code: 5001, StatusCode: http.StatusServiceUnavailable, Err: "storage bucket does not exist", RuErr: "Хранилище файлов недоступно"}
	ErrUploadNetwork        = DefinedError{Code: 5002, StatusCode: http.StatusServiceUnavailable, Err: "upload failed: network error", RuErr: "Не удалось загрузить файл: ошибка сети"}
	ErrUploadFailed         = DefinedError{Code: 5003, StatusCode: http.StatusInternalServerError, Err: "upload failed", RuErr: "Не удалось загрузить файл"}
	ErrAssetNotFound        = DefinedError{Code: 5004, StatusCode: http.StatusNotFound, Err: "asset not found", RuErr: "Файл не найден"}
	ErrFileTooLarge         = DefinedError{Code: 5005, StatusCode: http.StatusRequestEntityTooLarge, Err: "file size exceeds %d MB", RuErr: "Размер файла превышает %d МБ"}
	ErrEmbedUnsupportedLink = DefinedError{Code: 5006, StatusCode: http.StatusBadRequest, Err: "unsupported embed link", RuErr: "Ссылка не поддерживается для встраивания"}
	ErrEmbedResolveFailed   = DefinedError{Code: 5007, StatusCode: http.StatusBadGateway, Err: "failed to resolve embed link", RuErr: "Не удалось получить данные по ссылке"}

	// 9*** - generic errors
	ErrGeneric = DefinedError{Code: 9000, StatusCode: http.StatusInternalServerError, Err: "internal server error", RuErr: "Внутренняя ошибка сервера"}
)

// WithFormattedMessage делает копию ошибки с форматированным сообщением.
func (e DefinedError) WithFormattedMessage(args ...interface{}) DefinedError {
	if len(args) > 0 {
		e.Err = fmt.Sprintf(e.Err, args...)
		e.RuErr = fmt.Sprintf(e.RuErr, args...)
	} else {
		e.Err = strings.Replace(e.Err, "%s", "", -1)
		e.RuErr = strings.Replace(e.RuErr, "%s", "", -1)
	}
	return e
}
