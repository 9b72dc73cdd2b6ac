package mailer

import (
	"fmt"
	"kost/src/lib"
	"os"
	"time"
)

// NewApprovalMessage mails the freshly approved tenant their one-time
// login token. The link is valid for one day.
func NewApprovalMessage(email, token string, expiresAt time.Time) error {
	appHost := os.Getenv("APP_HOST")
	loginURL := fmt.Sprintf("%s/login?token=%s", appHost, token)
	body := fmt.Sprintf(
		"Selamat! Pengajuan sewa kamar Anda telah disetujui.<br><br>"+
			"Silakan masuk menggunakan tautan berikut (berlaku sampai %s):<br>"+
			"<a href=\"%s\">%s</a>",
		expiresAt.Format("2 Jan 2006 15:04"), loginURL, loginURL,
	)
	input := &lib.SendMailInput{
		From:     os.Getenv("SMTP_FROM"),
		FromName: "Kost Management",
		To:       []string{email},
		Subject:  "Pengajuan sewa disetujui",
		Body:     body,
		Html:     true,
	}
	if err := lib.SendMail(input); err != nil {
		return fmt.Errorf("error sending approval mail: %s", err.Error())
	}
	return nil
}
