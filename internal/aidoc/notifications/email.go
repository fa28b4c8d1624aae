// Пакет предоставляет функциональность для отправки email уведомлений
// пользователям: приглашения в рабочие пространства и выдача паролей новым
// учетным записям. Письма формируются из встроенных HTML шаблонов и
// отправляются как в виде HTML, так и в виде простого текста.
//
// Основные возможности:
//   - Отправка уведомлений по email с использованием шаблонов.
//   - Пул воркеров отправки с настраиваемым размером.
//   - Логирование ошибок отправки.
package notifications

import (
	"bytes"
	"embed"
	"fmt"
	htmlTemplate "html/template"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/sync/errgroup"
	"gopkg.in/gomail.v2"

	"github.com/aisa-it/aidoc/internal/aidoc/config"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/html"
)

var htmlStripPolicy *bluemonday.Policy = bluemonday.StrictPolicy()
var minifier *minify.M = minify.New()

//go:embed templates/*
var defaultTemplates embed.FS

type EmailService struct {
	d   *gomail.Dialer
	cfg *config.Config

	templates map[string]*htmlTemplate.Template

	disabled bool

	emailChan chan mail
	eg        errgroup.Group
}

type mail struct {
	To          string
	Subject     string
	Content     string
	TextContent string
}

func NewEmailService(cfg *config.Config) *EmailService {
	minifier.AddFunc("text/html", html.Minify)

	es := &EmailService{
		d:         gomail.NewDialer(cfg.EmailHost, cfg.EmailPort, cfg.EmailUser, cfg.EmailPassword),
		cfg:       cfg,
		templates: make(map[string]*htmlTemplate.Template),
		disabled:  cfg.EmailDisabled,
		emailChan: make(chan mail),
	}
	if cfg.EmailDisabled {
		slog.Warn("Email notifications disabled")
	}

	es.loadTemplates()

	for i := 0; i < cfg.EmailWorkers; i++ {
		es.eg.Go(func() error {
			return es.worker(es.emailChan)
		})
	}

	return es
}

func (es *EmailService) loadTemplates() {
	dir, err := defaultTemplates.ReadDir("templates")
	if err != nil {
		slog.Error("Read embed templates dir", "err", err)
		return
	}

	for _, file := range dir {
		name := strings.TrimSuffix(file.Name(), filepath.Ext(file.Name()))

		data, err := defaultTemplates.ReadFile(filepath.Join("templates", file.Name()))
		if err != nil {
			slog.Warn("Read embed template", slog.String("name", file.Name()), "err", err)
			continue
		}

		data, err = minifier.Bytes("text/html", data)
		if err != nil {
			slog.Warn("Minify embed template", slog.String("name", file.Name()), "err", err)
		}

		tmpl, err := htmlTemplate.New(name).Parse(string(data))
		if err != nil {
			slog.Warn("Parse embed template", slog.String("name", file.Name()), "err", err)
			continue
		}
		es.templates[name] = tmpl
	}
}

func (es *EmailService) Stop() {
	slog.Info("Closing email workers")
	es.disabled = true
	close(es.emailChan)

	if err := es.eg.Wait(); err != nil {
		slog.Error("Email worker stop", "err", err)
	}

	slog.Info("Email workers successfully stopped")
}

func (es *EmailService) sendEmail(e mail) error {
	m := gomail.NewMessage()
	m.SetHeader("From", es.cfg.EmailFrom)
	m.SetHeader("To", e.To)
	m.SetHeader("Subject", e.Subject)
	m.SetBody("text/plain", e.TextContent)
	m.AddAlternative("text/html", e.Content)

	return es.d.DialAndSend(m)
}

func (es *EmailService) Send(e mail) error {
	if es.disabled {
		return fmt.Errorf("email service stop")
	}
	es.emailChan <- e
	return nil
}

func (es *EmailService) worker(emailChan <-chan mail) error {
	for e := range emailChan {
		if err := es.sendEmail(e); err != nil {
			slog.Error("email send err", "to", e.To, "err", err)
		}
	}
	return nil
}

// render исполняет именованный шаблон и оборачивает результат в основной
// шаблон письма.
func (es *EmailService) render(name string, title string, context any) (string, error) {
	tmpl, ok := es.templates[name]
	if !ok {
		return "", fmt.Errorf("email template %s not found", name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, context); err != nil {
		return "", err
	}

	body, ok := es.templates["body"]
	if !ok {
		return buf.String(), nil
	}

	var out bytes.Buffer
	if err := body.Execute(&out, struct {
		Title string
		Body  htmlTemplate.HTML
	}{
		Title: title,
		Body:  htmlTemplate.HTML(buf.String()),
	}); err != nil {
		return "", err
	}
	return out.String(), nil
}
