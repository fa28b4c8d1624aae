// Работа с документами: CRUD, сохранение через сессии редактора, вложения и
// встраивание ссылок.
package aidoc

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/aisa-it/aidoc/internal/aidoc/apierrors"
	"github.com/aisa-it/aidoc/internal/aidoc/dao"
	"github.com/aisa-it/aidoc/internal/aidoc/dto"
	"github.com/aisa-it/aidoc/internal/aidoc/editor/schema"
	"github.com/aisa-it/aidoc/internal/aidoc/editor/session"
	"github.com/aisa-it/aidoc/internal/aidoc/embeds"
	filestorage "github.com/aisa-it/aidoc/internal/aidoc/file-storage"
	"github.com/aisa-it/aidoc/internal/aidoc/uploads"
)

type DocContext struct {
	WorkspaceContext
	Doc dao.Doc
}

func (s *Services) DocMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		workspace := c.(WorkspaceContext).Workspace

		docId, err := uuid.FromString(c.Param("docId"))
		if err != nil {
			return EErrorDefined(c, apierrors.ErrDocNotFound)
		}

		doc, err := dao.GetDoc(s.db, workspace.ID, docId)
		if err != nil {
			if dao.IsNotFound(err) {
				return EErrorDefined(c, apierrors.ErrDocNotFound)
			}

			var schemaErr *schema.SchemaError
			if errors.As(err, &schemaErr) {
				// Строки со сломанным содержимым читаются только с явным
				// запросом пустого документа
				if c.QueryParam("fallback") != "empty" {
					return EErrorDefined(c, apierrors.ErrDocBadContent.WithFormattedMessage(schemaErr.Error()))
				}
				doc, err = s.loadDocWithoutContent(workspace.ID, docId)
				if err != nil {
					return EError(c, err)
				}
			} else {
				return EError(c, err)
			}
		}

		return next(DocContext{c.(WorkspaceContext), *doc})
	}
}

func (s *Services) loadDocWithoutContent(workspaceID uuid.UUID, docID uuid.UUID) (*dao.Doc, error) {
	var doc dao.Doc
	err := s.db.
		Omit("content").
		Where("workspace_id = ? AND id = ?", workspaceID, docID).
		Preload("Author").
		First(&doc).Error
	if err != nil {
		return nil, err
	}
	doc.Content = schema.Document{}
	return &doc, nil
}

// AddDocServices - добавление сервисов документов
func (s *Services) AddDocServices(g *echo.Group) {
	workspaceGroup := g.Group("workspaces/:workspaceSlug", s.WorkspaceMiddleware)

	workspaceGroup.GET("/docs/", s.getDocList)
	workspaceGroup.POST("/docs/", s.createDoc)
	workspaceGroup.POST("/embed/", s.resolveEmbed)

	docGroup := workspaceGroup.Group("/docs/:docId", s.DocMiddleware)

	docGroup.GET("/", s.getDoc)
	docGroup.PATCH("/", s.updateDoc)
	docGroup.DELETE("/", s.deleteDoc)
	docGroup.POST("/close/", s.closeDocSession)

	docGroup.GET("/attachments/", s.getDocAttachmentList)
	docGroup.POST("/attachments/", s.createDocAttachment)
	docGroup.DELETE("/attachments/:attachmentId/", s.deleteDocAttachment)
}

// getDocList godoc
// @id getDocList
// @Summary Документы: список документов пространства
// @Description Возвращает документы пространства без содержимого
// @Tags Doc
// @Produce json
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Success 200 {array} dto.Doc "Список документов"
// @Router /api/auth/workspaces/{workspaceSlug}/docs/ [get]
func (s *Services) getDocList(c echo.Context) error {
	workspace := c.(WorkspaceContext).Workspace

	docs, err := dao.GetWorkspaceDocs(s.db, workspace.ID)
	if err != nil {
		return EError(c, err)
	}

	res := make([]dto.Doc, len(docs))
	for i := range docs {
		res[i] = *docs[i].ToDTO()
	}
	return c.JSON(http.StatusOK, res)
}

type DocRequest struct {
	Title          string          `json:"title" validate:"docTitle"`
	Content        json.RawMessage `json:"content,omitempty"`
	ContentHTML    string          `json:"content_html,omitempty"`
	SourceLanguage string          `json:"source_language,omitempty"`
}

// parseContent выбирает содержимое запроса: JSON дерево проверяется строго,
// легаси HTML импортируется нестрого. nil - содержимое не передано.
func (req *DocRequest) parseContent() (*schema.Document, error) {
	if len(req.Content) > 0 {
		return schema.ParseJSON(bytes.NewReader(req.Content))
	}
	if req.ContentHTML != "" {
		return schema.ParseHTML(strings.NewReader(req.ContentHTML))
	}
	return nil, nil
}

// createDoc godoc
// @id createDoc
// @Summary Документы: создание документа
// @Description Создает документ. Содержимое проверяется на соответствие схеме.
// @Description Поле content_html импортирует легаси HTML контент
// @Tags Doc
// @Produce json
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Param request body DocRequest true "Данные документа"
// @Success 201 {object} dto.Doc "Созданный документ"
// @Failure 400 {object} apierrors.DefinedError "Некорректное содержимое"
// @Failure 403 {object} apierrors.DefinedError "Недостаточно прав"
// @Router /api/auth/workspaces/{workspaceSlug}/docs/ [post]
func (s *Services) createDoc(c echo.Context) error {
	user := c.(WorkspaceContext).User
	workspace := c.(WorkspaceContext).Workspace
	member := c.(WorkspaceContext).WorkspaceMember

	if member.Role < dao.MemberRole {
		return EErrorDefined(c, apierrors.ErrDocForbidden)
	}

	var req DocRequest
	if err := c.Bind(&req); err != nil {
		return EError(c, err)
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return EErrorDefined(c, apierrors.ErrDocTitleRequired)
	}
	if err := c.Validate(req); err != nil {
		return EError(c, err)
	}

	content := schema.Document{}
	parsed, err := req.parseContent()
	if err != nil {
		return EError(c, err)
	}
	if parsed != nil {
		content = *parsed
	}

	if req.SourceLanguage == "" {
		req.SourceLanguage = "en"
	}

	doc := dao.Doc{
		ID:             dao.GenUUID(),
		Title:          req.Title,
		Content:        content,
		SourceLanguage: req.SourceLanguage,
		WorkspaceId:    workspace.ID,
		CreatedById:    user.ID,
		Author:         user,
	}

	if err := s.db.Create(&doc).Error; err != nil {
		return EError(c, err)
	}

	return c.JSON(http.StatusCreated, doc.ToDTO())
}

type docResponse struct {
	dto.Doc
	Content *schema.Document `json:"content"`
}

// getDoc godoc
// @id getDoc
// @Summary Документы: получение документа
// @Description Возвращает документ с содержимым. Параметр fallback=empty
// @Description заменяет нечитаемое содержимое пустым документом
// @Tags Doc
// @Produce json
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Param docId path string true "ID документа"
// @Param fallback query string false "empty - вернуть пустое содержимое вместо ошибки"
// @Success 200 {object} docResponse "Документ"
// @Failure 400 {object} apierrors.DefinedError "Некорректное содержимое"
// @Failure 404 {object} apierrors.DefinedError "Документ не найден"
// @Router /api/auth/workspaces/{workspaceSlug}/docs/{docId}/ [get]
func (s *Services) getDoc(c echo.Context) error {
	doc := c.(DocContext).Doc

	// Несохраненные правки живой сессии видны при чтении
	if sess, ok := s.sessions.Get(doc.ID.String()); ok {
		title, body, err := sess.Snapshot()
		if err == nil {
			doc.Title = title
			if parsed, err := schema.ParseJSON(bytes.NewReader(body)); err == nil {
				doc.Content = *parsed
			}
		}
	}

	return c.JSON(http.StatusOK, docResponse{
		Doc:     *doc.ToDTO(),
		Content: &doc.Content,
	})
}

// updateDoc godoc
// @id updateDoc
// @Summary Документы: сохранение документа
// @Description Применяет правки через сессию редактора и сохраняет документ
// @Tags Doc
// @Produce json
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Param docId path string true "ID документа"
// @Param request body DocRequest true "Новое содержимое"
// @Success 200 {object} dto.Doc "Сохраненный документ"
// @Failure 400 {object} apierrors.DefinedError "Некорректное содержимое"
// @Failure 403 {object} apierrors.DefinedError "Недостаточно прав"
// @Failure 410 {object} apierrors.DefinedError "Сессия редактирования завершена"
// @Router /api/auth/workspaces/{workspaceSlug}/docs/{docId}/ [patch]
func (s *Services) updateDoc(c echo.Context) error {
	doc := c.(DocContext).Doc
	member := c.(DocContext).WorkspaceMember

	if member.Role < dao.MemberRole {
		return EErrorDefined(c, apierrors.ErrDocForbidden)
	}

	var req DocRequest
	if err := c.Bind(&req); err != nil {
		return EError(c, err)
	}

	content, err := req.parseContent()
	if err != nil {
		return EError(c, err)
	}

	sess, err := s.sessions.Acquire(c.Request().Context(), doc.ID.String())
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return EErrorDefined(c, apierrors.ErrDocNotFound)
		}
		return EError(c, err)
	}

	if req.Title != "" {
		sess.SetTitle(strings.TrimSpace(req.Title))
	}
	if content != nil {
		sess.ApplyEdit(func(body *schema.Document) {
			*body = *content
		})
	}

	if err := sess.Save(c.Request().Context()); err != nil {
		if errors.Is(err, session.ErrClosed) {
			return EErrorDefined(c, apierrors.ErrDocSessionClosed)
		}
		return EError(c, err)
	}

	updated, err := dao.GetDoc(s.db, doc.WorkspaceId, doc.ID)
	if err != nil {
		return EError(c, err)
	}

	return c.JSON(http.StatusOK, updated.ToDTO())
}

// closeDocSession godoc
// @id closeDocSession
// @Summary Документы: закрытие сессии редактирования
// @Description Закрывает сессию редактирования документа, дожидаясь
// @Description завершения текущего сохранения
// @Tags Doc
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Param docId path string true "ID документа"
// @Success 204 "Сессия закрыта"
// @Router /api/auth/workspaces/{workspaceSlug}/docs/{docId}/close/ [post]
func (s *Services) closeDocSession(c echo.Context) error {
	doc := c.(DocContext).Doc

	if sess, ok := s.sessions.Get(doc.ID.String()); ok {
		// Последний снимок уходит в базу до закрытия
		if err := sess.Save(c.Request().Context()); err != nil && !errors.Is(err, session.ErrClosed) {
			return EError(c, err)
		}
		s.sessions.Release(doc.ID.String())
	}

	return c.NoContent(http.StatusNoContent)
}

// deleteDoc godoc
// @id deleteDoc
// @Summary Документы: удаление документа
// @Description Удаляет документ вместе с вложениями. Доступно автору и
// @Description администраторам пространства
// @Tags Doc
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Param docId path string true "ID документа"
// @Success 204 "Документ удален"
// @Failure 403 {object} apierrors.DefinedError "Недостаточно прав"
// @Router /api/auth/workspaces/{workspaceSlug}/docs/{docId}/ [delete]
func (s *Services) deleteDoc(c echo.Context) error {
	user := c.(DocContext).User
	doc := c.(DocContext).Doc
	member := c.(DocContext).WorkspaceMember

	if member.Role < dao.AdminRole && doc.CreatedById != user.ID {
		return EErrorDefined(c, apierrors.ErrDocForbidden)
	}

	s.sessions.Release(doc.ID.String())

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		var assets []dao.FileAsset
		if err := tx.Where("doc_id = ?", doc.ID).Find(&assets).Error; err != nil {
			return err
		}
		for i := range assets {
			if err := tx.Delete(&assets[i]).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&doc).Error
	}); err != nil {
		return EError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// getDocAttachmentList godoc
// @id getDocAttachmentList
// @Summary Документы: список вложений
// @Description Возвращает вложения документа
// @Tags Doc
// @Produce json
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Param docId path string true "ID документа"
// @Success 200 {array} dto.FileAsset "Список вложений"
// @Router /api/auth/workspaces/{workspaceSlug}/docs/{docId}/attachments/ [get]
func (s *Services) getDocAttachmentList(c echo.Context) error {
	doc := c.(DocContext).Doc

	var assets []dao.FileAsset
	if err := s.db.
		Where("doc_id = ?", doc.ID).
		Order("created_at").
		Find(&assets).Error; err != nil {
		return EError(c, err)
	}

	res := make([]dto.FileAsset, len(assets))
	for i := range assets {
		res[i] = *assets[i].ToDTO()
	}
	return c.JSON(http.StatusOK, res)
}

// createDocAttachment godoc
// @id createDocAttachment
// @Summary Документы: загрузка вложения
// @Description Загружает файл в объектное хранилище и регистрирует вложение
// @Tags Doc
// @Produce json
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Param docId path string true "ID документа"
// @Param asset formData file true "Файл"
// @Success 201 {object} uploads.Result "Результат загрузки"
// @Failure 403 {object} apierrors.DefinedError "Недостаточно прав"
// @Failure 503 {object} apierrors.DefinedError "Хранилище недоступно"
// @Router /api/auth/workspaces/{workspaceSlug}/docs/{docId}/attachments/ [post]
func (s *Services) createDocAttachment(c echo.Context) error {
	user := *c.(DocContext).User
	doc := c.(DocContext).Doc
	workspace := c.(DocContext).Workspace
	member := c.(DocContext).WorkspaceMember

	if member.Role < dao.MemberRole {
		return EErrorDefined(c, apierrors.ErrDocForbidden)
	}

	asset, err := c.FormFile("asset")
	if err != nil {
		return EError(c, err)
	}

	if asset.Size > maxUploadSizeMB*1024*1024 {
		return EErrorDefined(c, apierrors.ErrFileTooLarge.WithFormattedMessage(maxUploadSizeMB))
	}

	assetSrc, err := asset.Open()
	if err != nil {
		return EError(c, err)
	}
	defer assetSrc.Close()

	fileName := asset.Filename
	if decodedFilename, err := url.QueryUnescape(asset.Filename); err == nil {
		fileName = decodedFilename
	}

	uploadId := s.uploadTracker.Begin()
	result, err := s.uploads.Upload(
		c.Request().Context(),
		assetSrc,
		asset.Size,
		fileName,
		asset.Header.Get("Content-Type"),
		&filestorage.Metadata{
			WorkspaceId: workspace.ID.String(),
			DocId:       doc.ID.String(),
			UserId:      user.ID.String(),
		},
	)
	if err != nil {
		var uploadErr *uploads.UploadError
		if !errors.As(err, &uploadErr) {
			uploadErr = &uploads.UploadError{Reason: uploads.ReasonUnknown, Cause: err}
		}
		s.uploadTracker.Fail(uploadId, uploadErr)
		return EError(c, err)
	}
	s.uploadTracker.Resolve(uploadId, result)

	userId := user.ID.String()
	workspaceId := workspace.ID.String()
	fa := dao.FileAsset{
		Id:          dao.GenUUID(),
		CreatedAt:   time.Now(),
		CreatedById: &userId,
		WorkspaceId: &workspaceId,
		DocId:       uuid.NullUUID{UUID: doc.ID, Valid: true},
		Key:         result.Key,
		Name:        fileName,
		ContentType: asset.Header.Get("Content-Type"),
		FileSize:    int(asset.Size),
	}

	if err := s.db.Create(&fa).Error; err != nil {
		return EError(c, err)
	}

	return c.JSON(http.StatusCreated, result)
}

// deleteDocAttachment godoc
// @id deleteDocAttachment
// @Summary Документы: удаление вложения
// @Description Удаляет вложение документа вместе с объектом в хранилище
// @Tags Doc
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Param docId path string true "ID документа"
// @Param attachmentId path string true "ID вложения"
// @Success 204 "Вложение удалено"
// @Failure 404 {object} apierrors.DefinedError "Вложение не найдено"
// @Router /api/auth/workspaces/{workspaceSlug}/docs/{docId}/attachments/{attachmentId}/ [delete]
func (s *Services) deleteDocAttachment(c echo.Context) error {
	doc := c.(DocContext).Doc
	member := c.(DocContext).WorkspaceMember

	if member.Role < dao.MemberRole {
		return EErrorDefined(c, apierrors.ErrDocForbidden)
	}

	attachmentId, err := uuid.FromString(c.Param("attachmentId"))
	if err != nil {
		return EErrorDefined(c, apierrors.ErrAssetNotFound)
	}

	var fa dao.FileAsset
	if err := s.db.
		Where("id = ? AND doc_id = ?", attachmentId, doc.ID).
		First(&fa).Error; err != nil {
		if dao.IsNotFound(err) {
			return EErrorDefined(c, apierrors.ErrAssetNotFound)
		}
		return EError(c, err)
	}

	if err := s.db.Delete(&fa).Error; err != nil {
		return EError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

type EmbedRequest struct {
	URL string `json:"url"`
}

// resolveEmbed godoc
// @id resolveEmbed
// @Summary Документы: встраивание видео по ссылке
// @Description Нормализует ссылку на видео и возвращает данные для встраивания
// @Tags Doc
// @Produce json
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Param request body EmbedRequest true "Ссылка"
// @Success 200 {object} embeds.Embed "Данные для встраивания"
// @Failure 400 {object} apierrors.DefinedError "Ссылка не поддерживается"
// @Failure 502 {object} apierrors.DefinedError "Не удалось получить данные"
// @Router /api/auth/workspaces/{workspaceSlug}/embed/ [post]
func (s *Services) resolveEmbed(c echo.Context) error {
	var req EmbedRequest
	if err := c.Bind(&req); err != nil {
		return EError(c, err)
	}

	embed, err := s.embedResolver.Resolve(c.Request().Context(), req.URL)
	if err != nil {
		if errors.Is(err, embeds.ErrUnsupportedLink) {
			return EErrorDefined(c, apierrors.ErrEmbedUnsupportedLink)
		}
		return EErrorDefined(c, apierrors.ErrEmbedResolveFailed)
	}

	return c.JSON(http.StatusOK, embed)
}
