package notifications

import (
	"fmt"
	"log/slog"
	"net/url"

	"github.com/aisa-it/aidoc/internal/aidoc/dao"
)

// WorkspaceInvitation отправляет приглашение в рабочее пространство
// существующему пользователю. Ошибки логируются, отправка не блокирует
// вызывающий код.
func (es *EmailService) WorkspaceInvitation(member dao.WorkspaceMember, inviter *dao.User) {
	if member.Member == nil || member.Workspace == nil {
		return
	}

	link := es.cfg.WebURL.ResolveReference(&url.URL{Path: "/" + member.Workspace.Slug + "/"}).String()

	subject := fmt.Sprintf("Пользователь %s пригласил Вас в рабочее пространство %s системы АИДок", inviter.Email, member.Workspace.Name)

	context := struct {
		Inviter       *dao.User
		WorkspaceName string
		InvitationUrl string
	}{
		Inviter:       inviter,
		WorkspaceName: member.Workspace.Name,
		InvitationUrl: link,
	}

	content, err := es.render("workspace_invitation", "Приглашение в пространство", context)
	if err != nil {
		slog.Error("Render workspace invitation email", "err", err)
		return
	}

	textContent := htmlStripPolicy.Sanitize(content)

	if err := es.Send(mail{
		To:          member.Member.Email,
		Subject:     subject,
		Content:     content,
		TextContent: textContent,
	}); err != nil {
		slog.Error("Send workspace invitation email", "err", err)
	}
}

// NewUserPasswordNotify отправляет новому пользователю сгенерированный пароль
// для первого входа.
func (es *EmailService) NewUserPasswordNotify(user dao.User, password string) error {
	subject := "Пароль для входа в АИДок"

	context := struct {
		WebUrl   *url.URL
		Password string
	}{
		WebUrl:   es.cfg.WebURL.ResolveReference(&url.URL{Path: "/signin/"}),
		Password: password,
	}

	content, err := es.render("new_user_password", "Добро пожаловать в АИДок", context)
	if err != nil {
		return err
	}

	textContent := htmlStripPolicy.Sanitize(content)

	return es.Send(mail{
		To:          user.Email,
		Subject:     subject,
		Content:     content,
		TextContent: textContent,
	})
}
