package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"text/template"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"gorm.io/gorm"

	"medsync/internal/auth"
	"medsync/internal/logger"
)

// Worker drains the jobs table and dispatches low-stock alert emails.
// A nil Sendgrid client disables sending; alerts are logged instead.
type Worker struct {
	ID       string
	Repo     *Repo
	DB       *gorm.DB
	Sendgrid *sendgrid.Client
	From     string
	Log      *logger.Logger
}

func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(800 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			job, err := w.Repo.Claim(w.ID)
			if err != nil {
				w.Log.Error("worker claim", "err", err)
				continue
			}
			if job == nil {
				continue
			}
			w.handle(ctx, job)
		}
	}
}

func (w *Worker) handle(ctx context.Context, job *Job) {
	switch job.Type {
	case "LOW_STOCK_ALERT":
		w.handleLowStock(ctx, job)
	default:
		_ = w.Repo.MarkFailed(job.ID, "unknown job type")
	}
}

const alertPlain = `Your medication is running low:

* {{.Name}}{{if .Dosage}} ({{.Dosage}}){{end}}: {{.CurrentQuantity}} of {{.InitialQuantity}} doses left.

Refill it from the medications page to keep your schedule uninterrupted.
`

var alertPlainTemplate = template.Must(template.New("alert").Parse(alertPlain))

func (w *Worker) handleLowStock(ctx context.Context, job *Job) {
	var p LowStockPayload
	if err := json.Unmarshal(job.Payload, &p); err != nil {
		_ = w.Repo.MarkFailed(job.ID, "bad payload")
		return
	}

	var user auth.User
	if err := w.DB.Where("email = ?", job.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// account gone, nothing to notify
			_ = w.Repo.MarkDone(job.ID)
			return
		}
		w.retry(job, "db read error")
		return
	}

	recipients := []string(user.NotificationEmails)
	if len(recipients) == 0 {
		recipients = []string{user.Email}
	}

	if w.Sendgrid == nil {
		w.Log.Info("low-stock alert (email disabled)",
			"email", job.Email, "medication", p.Name, "remaining", p.CurrentQuantity)
		_ = w.Repo.MarkDone(job.ID)
		return
	}

	for _, to := range recipients {
		if err := w.sendEmail(ctx, to, p); err != nil {
			w.retry(job, err.Error())
			return
		}
	}
	_ = w.Repo.MarkDone(job.ID)
}

func (w *Worker) sendEmail(ctx context.Context, to string, p LowStockPayload) error {
	message := mail.NewV3Mail()
	message.From = mail.NewEmail("MedSync", w.From)
	message.Subject = "MedSync low-stock alert"

	personalization := mail.NewPersonalization()
	personalization.To = append(personalization.To, mail.NewEmail("", to))
	message.Personalizations = append(message.Personalizations, personalization)

	content := &bytes.Buffer{}
	if err := alertPlainTemplate.Execute(content, p); err != nil {
		return fmt.Errorf("templating alert email: %w", err)
	}
	message.Content = append(message.Content, mail.NewContent("text/plain", content.String()))

	resp, err := w.Sendgrid.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sending mail through SendGrid: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("non-2XX response from SendGrid: %d", resp.StatusCode)
	}
	return nil
}

func (w *Worker) retry(job *Job, errMsg string) {
	attempts := job.Attempts + 1
	if attempts >= job.MaxAttempts {
		_ = w.Repo.MarkFailed(job.ID, errMsg)
		return
	}

	sec := math.Min(math.Pow(2, float64(attempts)), 600)
	next := time.Now().Add(time.Duration(sec) * time.Second)

	_ = w.Repo.RetryLater(job.ID, attempts, next, errMsg)
}
