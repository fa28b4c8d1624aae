// Управление рабочими пространствами и их участниками.
package aidoc

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aisa-it/aidoc/internal/aidoc/apierrors"
	"github.com/aisa-it/aidoc/internal/aidoc/dao"
	"github.com/aisa-it/aidoc/internal/aidoc/dto"
)

type WorkspaceContext struct {
	AuthContext
	Workspace       dao.Workspace
	WorkspaceMember dao.WorkspaceMember
}

func (s *Services) WorkspaceMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user := c.(AuthContext).User
		slug := c.Param("workspaceSlug")

		workspace, err := dao.GetWorkspaceBySlug(s.db, slug, user.ID)
		if err != nil {
			if dao.IsNotFound(err) {
				return EErrorDefined(c, apierrors.ErrWorkspaceNotFound)
			}
			return EError(c, err)
		}

		if workspace.CurrentUserMembership == nil {
			return EErrorDefined(c, apierrors.ErrWorkspaceNotFound)
		}
		workspaceMember := *workspace.CurrentUserMembership
		workspaceMember.Workspace = workspace

		return next(WorkspaceContext{c.(AuthContext), *workspace, workspaceMember})
	}
}

func (s *Services) LastVisitedWorkspaceMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		workspaceContext, ok := c.(WorkspaceContext)
		if !ok {
			return next(c)
		}

		workspace := workspaceContext.Workspace
		user := workspaceContext.User

		id := workspace.ID.String()
		if user.LastWorkspaceId == nil || *user.LastWorkspaceId != id {
			if err := s.db.Model(user).Update("last_workspace_id", id).Error; err != nil {
				return EError(c, err)
			}
		}

		return next(c)
	}
}

// AddWorkspaceServices - добавление сервисов рабочих пространств
func (s *Services) AddWorkspaceServices(g *echo.Group) {
	g.GET("users/me/workspaces/", s.getUserWorkspaceList)
	g.POST("workspaces/", s.createWorkspace)

	workspaceGroup := g.Group("workspaces/:workspaceSlug", s.WorkspaceMiddleware)
	workspaceGroup.Use(s.LastVisitedWorkspaceMiddleware)

	workspaceGroup.GET("/", s.getWorkspace)
	workspaceGroup.PATCH("/", s.updateWorkspace)
	workspaceGroup.DELETE("/", s.deleteWorkspace)

	workspaceGroup.POST("/invite/", s.addToWorkspace)

	workspaceGroup.GET("/members/", s.getWorkspaceMemberList)
	workspaceGroup.PATCH("/members/:memberId/", s.updateWorkspaceMember)
	workspaceGroup.DELETE("/members/:memberId/", s.deleteWorkspaceMember)

	workspaceGroup.GET("/workspace-members/me/", s.getWorkspaceMemberMe)
}

func CheckWorkspaceSlug(slug string) bool {
	return !slices.Contains([]string{
		"api",
		"create-workspace",
		"error",
		"signin",
		"signup",
		"reset-password",
		"404",
		"undefined",
		"no-workspace",
		"profile",
		"not-found",
		"metrics",
	}, slug) && dao.ValidSlug(slug)
}

// getUserWorkspaceList godoc
// @id getUserWorkspaceList
// @Summary Пространство: список пространств пользователя
// @Description Возвращает пространства, в которых состоит текущий пользователь
// @Tags Workspace
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} dto.Workspace "Список пространств"
// @Router /api/auth/users/me/workspaces/ [get]
func (s *Services) getUserWorkspaceList(c echo.Context) error {
	user := c.(AuthContext).User

	workspaces, err := dao.GetUserWorkspaces(s.db, user.ID)
	if err != nil {
		return EError(c, err)
	}

	res := make([]dto.Workspace, len(workspaces))
	for i := range workspaces {
		res[i] = *workspaces[i].ToDTO()
	}
	return c.JSON(http.StatusOK, res)
}

type CreateWorkspaceRequest struct {
	Name string `json:"name" validate:"workspaceName"`
	Slug string `json:"slug" validate:"slug"`
}

// createWorkspace godoc
// @id createWorkspace
// @Summary Пространство: создание нового пространства
// @Description Создает новое рабочее пространство с заданными параметрами
// @Tags Workspace
// @Produce json
// @Security ApiKeyAuth
// @Param request body CreateWorkspaceRequest true "Информация о новом рабочем пространстве"
// @Success 201 {object} dto.Workspace "Созданное рабочее пространство"
// @Failure 400 {object} apierrors.DefinedError "Ошибка: неверные параметры запроса"
// @Failure 409 {object} apierrors.DefinedError "Ошибка: конфликт с существующим пространством"
// @Router /api/auth/workspaces/ [post]
func (s *Services) createWorkspace(c echo.Context) error {
	user := *c.(AuthContext).User

	var req CreateWorkspaceRequest
	if err := c.Bind(&req); err != nil {
		return EError(c, err)
	}
	req.Name = strings.TrimSpace(req.Name)

	if req.Name == "" {
		return EErrorDefined(c, apierrors.ErrWorkspaceNameRequired)
	}
	if !CheckWorkspaceSlug(req.Slug) {
		return EErrorDefined(c, apierrors.ErrForbiddenSlug)
	}

	if err := c.Validate(req); err != nil {
		return EError(c, err)
	}

	workspace := dao.Workspace{
		ID:          dao.GenUUID(),
		Name:        req.Name,
		Slug:        req.Slug,
		OwnerId:     user.ID,
		CreatedById: user.ID,
	}

	if err := s.db.Create(&workspace).Error; err != nil {
		if err == gorm.ErrDuplicatedKey {
			return EErrorDefined(c, apierrors.ErrWorkspaceSlugConflict)
		}
		return EError(c, err)
	}

	workspaceMember := dao.WorkspaceMember{
		ID:          dao.GenUUID(),
		WorkspaceId: workspace.ID,
		MemberId:    user.ID,
		Role:        dao.AdminRole,
	}
	if err := s.db.Create(&workspaceMember).Error; err != nil {
		return EError(c, err)
	}

	workspace.CurrentUserMembership = &workspaceMember
	return c.JSON(http.StatusCreated, workspace.ToDTO())
}

// getWorkspace godoc
// @id getWorkspace
// @Summary Пространство: получение пространства
// @Description Возвращает данные рабочего пространства
// @Tags Workspace
// @Produce json
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Success 200 {object} dto.Workspace "Рабочее пространство"
// @Failure 404 {object} apierrors.DefinedError "Пространство не найдено"
// @Router /api/auth/workspaces/{workspaceSlug}/ [get]
func (s *Services) getWorkspace(c echo.Context) error {
	workspace := c.(WorkspaceContext).Workspace
	return c.JSON(http.StatusOK, workspace.ToDTO())
}

type UpdateWorkspaceRequest struct {
	Name *string `json:"name,omitempty"`
}

// updateWorkspace godoc
// @id updateWorkspace
// @Summary Пространство: обновление пространства
// @Description Обновляет имя рабочего пространства. Требуется роль администратора
// @Tags Workspace
// @Produce json
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Param request body UpdateWorkspaceRequest true "Обновляемые поля"
// @Success 200 {object} dto.Workspace "Обновленное пространство"
// @Failure 403 {object} apierrors.DefinedError "Недостаточно прав"
// @Router /api/auth/workspaces/{workspaceSlug}/ [patch]
func (s *Services) updateWorkspace(c echo.Context) error {
	workspace := c.(WorkspaceContext).Workspace
	member := c.(WorkspaceContext).WorkspaceMember

	if member.Role < dao.AdminRole {
		return EErrorDefined(c, apierrors.ErrWorkspaceAdminRoleRequired)
	}

	var req UpdateWorkspaceRequest
	if err := c.Bind(&req); err != nil {
		return EError(c, err)
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return EErrorDefined(c, apierrors.ErrWorkspaceNameRequired)
		}
		workspace.Name = name
	}

	if err := s.db.Model(&workspace).Select("Name").Updates(&workspace).Error; err != nil {
		return EError(c, err)
	}

	return c.JSON(http.StatusOK, workspace.ToDTO())
}

// deleteWorkspace godoc
// @id deleteWorkspace
// @Summary Пространство: удаление пространства
// @Description Удаляет рабочее пространство. Доступно только владельцу
// @Tags Workspace
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Success 204 "Пространство удалено"
// @Failure 403 {object} apierrors.DefinedError "Недостаточно прав"
// @Router /api/auth/workspaces/{workspaceSlug}/ [delete]
func (s *Services) deleteWorkspace(c echo.Context) error {
	user := c.(WorkspaceContext).User
	workspace := c.(WorkspaceContext).Workspace

	if workspace.OwnerId != user.ID {
		return EErrorDefined(c, apierrors.ErrWorkspaceForbidden)
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("workspace_id = ?", workspace.ID).Delete(&dao.WorkspaceMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("workspace_id = ?", workspace.ID).Delete(&dao.Doc{}).Error; err != nil {
			return err
		}
		return tx.Delete(&workspace).Error
	}); err != nil {
		return EError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

type requestMemberInvite struct {
	Email string `json:"email"`
	Role  int    `json:"role"`
}

type requestMembersInvite struct {
	Emails []requestMemberInvite `json:"emails"`
}

// addToWorkspace godoc
// @id addToWorkspace
// @Summary Пространство: приглашение участников
// @Description Приглашает пользователей в пространство. Для несуществующих
// @Description пользователей создает учетную запись и отправляет пароль почтой
// @Tags Workspace
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Param request body requestMembersInvite true "Приглашаемые участники"
// @Success 204 "Участники приглашены"
// @Failure 400 {object} apierrors.DefinedError "Участник уже в пространстве"
// @Failure 403 {object} apierrors.DefinedError "Недостаточно прав"
// @Router /api/auth/workspaces/{workspaceSlug}/invite/ [post]
func (s *Services) addToWorkspace(c echo.Context) error {
	issuer := *c.(WorkspaceContext).User
	workspace := c.(WorkspaceContext).Workspace
	issuerMember := c.(WorkspaceContext).WorkspaceMember

	if issuerMember.Role < dao.AdminRole {
		return EErrorDefined(c, apierrors.ErrWorkspaceAdminRoleRequired)
	}

	var req requestMembersInvite
	if err := c.Bind(&req); err != nil {
		return EError(c, err)
	}

	for _, invite := range req.Emails {
		invite.Email = strings.ToLower(strings.TrimSpace(invite.Email))
		if !ValidateEmail(invite.Email) {
			return EErrorDefined(c, apierrors.ErrUserNotFound)
		}

		if !dao.IsValidRole(invite.Role) {
			return EErrorDefined(c, apierrors.ErrWorkspaceRoleRequired)
		}

		var user dao.User
		var workspaceMember dao.WorkspaceMember
		if err := s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("email = ?", invite.Email).First(&user).Error; err != nil {
				if !dao.IsNotFound(err) {
					return err
				}

				// Create new user
				pass := dao.GenPassword()
				lastWorkspace := workspace.ID.String()
				user = dao.User{
					ID:              dao.GenUUID(),
					Email:           invite.Email,
					Password:        dao.GenPasswordHash(pass),
					IsActive:        true,
					LastWorkspaceId: &lastWorkspace,
				}

				if err := tx.Create(&user).Error; err != nil {
					return err
				}

				if err := s.emailService.NewUserPasswordNotify(user, pass); err != nil {
					return apierrors.ErrNewUserMailFailed
				}
			}

			var existingMember dao.WorkspaceMember
			if err := tx.Where("member_id = ? AND workspace_id = ?", user.ID, workspace.ID).First(&existingMember).Error; err == nil {
				return apierrors.ErrInviteMemberExist
			}

			workspaceMember = dao.WorkspaceMember{
				ID:          dao.GenUUID(),
				WorkspaceId: workspace.ID,
				MemberId:    user.ID,
				Role:        invite.Role,
				Member:      &user,
				Workspace:   &workspace,
			}
			if err := tx.Omit(clause.Associations).Create(&workspaceMember).Error; err != nil {
				if err == gorm.ErrDuplicatedKey {
					return nil
				}
				return err
			}

			go s.emailService.WorkspaceInvitation(workspaceMember, &issuer)

			return nil
		}); err != nil {
			return EError(c, err)
		}
	}

	return c.NoContent(http.StatusNoContent)
}

// getWorkspaceMemberList godoc
// @id getWorkspaceMemberList
// @Summary Пространство: список участников
// @Description Возвращает участников рабочего пространства
// @Tags Workspace
// @Produce json
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Success 200 {array} dto.WorkspaceMember "Список участников"
// @Router /api/auth/workspaces/{workspaceSlug}/members/ [get]
func (s *Services) getWorkspaceMemberList(c echo.Context) error {
	workspace := c.(WorkspaceContext).Workspace

	members, err := dao.GetWorkspaceMembers(s.db, workspace.ID)
	if err != nil {
		return EError(c, err)
	}

	res := make([]dto.WorkspaceMember, len(members))
	for i := range members {
		res[i] = *members[i].ToDTO()
	}
	return c.JSON(http.StatusOK, res)
}

type UpdateMemberRequest struct {
	Role int `json:"role"`
}

// updateWorkspaceMember godoc
// @id updateWorkspaceMember
// @Summary Пространство: изменение роли участника
// @Description Меняет роль участника пространства. Требуется роль администратора
// @Tags Workspace
// @Produce json
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Param memberId path string true "ID участника"
// @Param request body UpdateMemberRequest true "Новая роль"
// @Success 200 {object} dto.WorkspaceMember "Обновленный участник"
// @Failure 403 {object} apierrors.DefinedError "Недостаточно прав"
// @Router /api/auth/workspaces/{workspaceSlug}/members/{memberId}/ [patch]
func (s *Services) updateWorkspaceMember(c echo.Context) error {
	workspace := c.(WorkspaceContext).Workspace
	issuerMember := c.(WorkspaceContext).WorkspaceMember

	if issuerMember.Role < dao.AdminRole {
		return EErrorDefined(c, apierrors.ErrWorkspaceAdminRoleRequired)
	}

	memberId, err := uuid.FromString(c.Param("memberId"))
	if err != nil {
		return EErrorDefined(c, apierrors.ErrWorkspaceMemberNotFound)
	}

	var req UpdateMemberRequest
	if err := c.Bind(&req); err != nil {
		return EError(c, err)
	}
	if !dao.IsValidRole(req.Role) {
		return EErrorDefined(c, apierrors.ErrWorkspaceRoleRequired)
	}

	var target dao.WorkspaceMember
	if err := s.db.
		Where("workspace_id = ? AND member_id = ?", workspace.ID, memberId).
		Preload("Member").
		First(&target).Error; err != nil {
		if dao.IsNotFound(err) {
			return EErrorDefined(c, apierrors.ErrWorkspaceMemberNotFound)
		}
		return EError(c, err)
	}

	if target.Role > issuerMember.Role {
		return EErrorDefined(c, apierrors.ErrUpdateHigherRoleUserForbidden)
	}

	if target.MemberId == workspace.OwnerId && req.Role < dao.AdminRole {
		return EErrorDefined(c, apierrors.ErrCannotRemoveWorkspaceOwner)
	}

	target.Role = req.Role
	target.UpdatedAt = time.Now()
	if err := s.db.Model(&target).Select("Role", "UpdatedAt").Updates(&target).Error; err != nil {
		return EError(c, err)
	}

	return c.JSON(http.StatusOK, target.ToDTO())
}

// deleteWorkspaceMember godoc
// @id deleteWorkspaceMember
// @Summary Пространство: удаление участника
// @Description Удаляет участника из пространства. Требуется роль администратора
// @Tags Workspace
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Param memberId path string true "ID участника"
// @Success 204 "Участник удален"
// @Failure 403 {object} apierrors.DefinedError "Недостаточно прав"
// @Router /api/auth/workspaces/{workspaceSlug}/members/{memberId}/ [delete]
func (s *Services) deleteWorkspaceMember(c echo.Context) error {
	user := c.(WorkspaceContext).User
	workspace := c.(WorkspaceContext).Workspace
	issuerMember := c.(WorkspaceContext).WorkspaceMember

	if issuerMember.Role < dao.AdminRole {
		return EErrorDefined(c, apierrors.ErrWorkspaceAdminRoleRequired)
	}

	memberId, err := uuid.FromString(c.Param("memberId"))
	if err != nil {
		return EErrorDefined(c, apierrors.ErrWorkspaceMemberNotFound)
	}

	if memberId == user.ID {
		return EErrorDefined(c, apierrors.ErrCannotRemoveSelfFromWorkspace)
	}

	if memberId == workspace.OwnerId {
		return EErrorDefined(c, apierrors.ErrCannotRemoveWorkspaceOwner)
	}

	var target dao.WorkspaceMember
	if err := s.db.
		Where("workspace_id = ? AND member_id = ?", workspace.ID, memberId).
		First(&target).Error; err != nil {
		if dao.IsNotFound(err) {
			return EErrorDefined(c, apierrors.ErrWorkspaceMemberNotFound)
		}
		return EError(c, err)
	}

	if target.Role > issuerMember.Role {
		return EErrorDefined(c, apierrors.ErrUpdateHigherRoleUserForbidden)
	}

	if err := s.db.Delete(&target).Error; err != nil {
		return EError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// getWorkspaceMemberMe godoc
// @id getWorkspaceMemberMe
// @Summary Пространство: текущий участник
// @Description Возвращает данные участника для текущего пользователя
// @Tags Workspace
// @Produce json
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Success 200 {object} dto.WorkspaceMember "Данные участника"
// @Router /api/auth/workspaces/{workspaceSlug}/workspace-members/me/ [get]
func (s *Services) getWorkspaceMemberMe(c echo.Context) error {
	wm := c.(WorkspaceContext).WorkspaceMember
	wm.Member = c.(WorkspaceContext).User
	return c.JSON(http.StatusOK, wm.ToDTO())
}
