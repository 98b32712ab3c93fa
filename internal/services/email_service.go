package services

import (
	"bytes"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"html/template"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"builddesk-estimates/internal/config"
	"builddesk-estimates/internal/models"
)

type EmailService struct {
	config *config.EmailConfig
}

func NewEmailService(emailConfig *config.EmailConfig) *EmailService {
	return &EmailService{
		config: emailConfig,
	}
}

// EstimateEmailData represents data for estimate email templates
type EstimateEmailData struct {
	Estimate    *models.Estimate
	Company     *models.CompanyInfo
	EstimateURL string
}

// SendEstimateEmail sends an estimate to the client with the rendered
// PDF attached.
func (s *EmailService) SendEstimateEmail(emailData *EstimateEmailData, pdfAttachment []byte) error {
	if emailData.Estimate.ClientEmail == nil || *emailData.Estimate.ClientEmail == "" {
		return fmt.Errorf("client email not available")
	}

	subject, err := s.generateEmailSubject(emailData)
	if err != nil {
		return fmt.Errorf("failed to generate email subject: %v", err)
	}

	htmlBody, err := s.generateEmailHTML(emailData)
	if err != nil {
		return fmt.Errorf("failed to generate email HTML: %v", err)
	}

	textBody := s.generateEmailText(emailData)

	return s.sendEmail(
		[]string{*emailData.Estimate.ClientEmail},
		subject,
		textBody,
		htmlBody,
		pdfAttachment,
		EstimateFilename(emailData.Estimate),
	)
}

// SendTestEmail sends a configuration test email
func (s *EmailService) SendTestEmail(toEmail string) error {
	subject := "Test Email from BuildDesk Estimates"

	body := `This is a test email from your BuildDesk estimate system.

Email Configuration Status:
- SMTP Host: ` + s.config.SMTPHost + `
- SMTP Port: ` + strconv.Itoa(s.config.SMTPPort) + `
- From Email: ` + s.config.FromEmail + `
- Sent At: ` + time.Now().Format("2006-01-02 15:04:05") + `

If you received this email, your email configuration is working correctly.`

	return s.sendEmail([]string{toEmail}, subject, body, "", nil, "")
}

// generateEmailSubject creates the email subject line
func (s *EmailService) generateEmailSubject(data *EstimateEmailData) (string, error) {
	subjectTemplate := "Estimate {{.Estimate.EstimateNumber}} from {{.Company.Name}}"

	tmpl, err := template.New("subject").Parse(subjectTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return strings.TrimSpace(buf.String()), nil
}

// generateEmailHTML creates the HTML email body
func (s *EmailService) generateEmailHTML(data *EstimateEmailData) (string, error) {
	htmlTemplate := `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Estimate {{.Estimate.EstimateNumber}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #2563eb; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; }
        .estimate-details { background-color: #f8f9fa; padding: 15px; border-left: 4px solid #2563eb; }
        .amount { font-size: 24px; color: #2563eb; font-weight: bold; }
        .footer { background-color: #f8f9fa; padding: 15px; text-align: center; font-size: 12px; color: #666; }
        .button { display: inline-block; background-color: #2563eb; color: white; padding: 12px 24px;
                 text-decoration: none; border-radius: 4px; margin: 10px 0; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>{{.Company.Name}}</h1>
            <p>Estimate {{.Estimate.EstimateNumber}}</p>
        </div>

        <div class="content">
            {{if .Estimate.ClientName}}<p>Dear {{.Estimate.ClientName}},</p>{{else}}<p>Hello,</p>{{end}}

            <p>Please find attached your estimate. Below are the details:</p>

            <div class="estimate-details">
                <h3>{{.Estimate.Title}}</h3>
                <table style="width: 100%; border-collapse: collapse;">
                    <tr>
                        <td><strong>Estimate Number:</strong></td>
                        <td>{{.Estimate.EstimateNumber}}</td>
                    </tr>
                    <tr>
                        <td><strong>Date:</strong></td>
                        <td>{{.Estimate.EstimateDate.Format "January 2, 2006"}}</td>
                    </tr>
                    {{if .Estimate.ValidUntil}}
                    <tr>
                        <td><strong>Valid Until:</strong></td>
                        <td>{{.Estimate.ValidUntil.Format "January 2, 2006"}}</td>
                    </tr>
                    {{end}}
                    {{if .Estimate.ProjectName}}
                    <tr>
                        <td><strong>Project:</strong></td>
                        <td>{{.Estimate.ProjectName}}</td>
                    </tr>
                    {{end}}
                </table>
                <p class="amount">Total: {{formatCurrency .Estimate.TotalAmount}}</p>
            </div>

            {{if .EstimateURL}}
            <p style="text-align: center;">
                <a href="{{.EstimateURL}}" class="button">View Estimate Online</a>
            </p>
            {{end}}

            <p>If you have any questions about this estimate, please reply to this email.</p>
        </div>

        <div class="footer">
            {{.Company.Name}}
            {{if .Company.Phone}} | {{.Company.Phone}}{{end}}
            {{if .Company.Website}} | {{.Company.Website}}{{end}}
        </div>
    </div>
</body>
</html>`

	tmpl, err := template.New("estimate_email").Funcs(template.FuncMap{
		"formatCurrency": FormatCurrency,
	}).Parse(htmlTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// generateEmailText creates the plain-text email body
func (s *EmailService) generateEmailText(data *EstimateEmailData) string {
	var b strings.Builder

	if data.Estimate.ClientName != nil && *data.Estimate.ClientName != "" {
		fmt.Fprintf(&b, "Dear %s,\n\n", *data.Estimate.ClientName)
	} else {
		b.WriteString("Hello,\n\n")
	}

	fmt.Fprintf(&b, "Please find attached estimate %s: %s\n\n", data.Estimate.EstimateNumber, data.Estimate.Title)
	fmt.Fprintf(&b, "Date: %s\n", FormatDate(data.Estimate.EstimateDate))
	if data.Estimate.ValidUntil != nil {
		fmt.Fprintf(&b, "Valid Until: %s\n", FormatDate(*data.Estimate.ValidUntil))
	}
	fmt.Fprintf(&b, "Total: %s\n\n", FormatCurrency(data.Estimate.TotalAmount))

	if data.EstimateURL != "" {
		fmt.Fprintf(&b, "View online: %s\n\n", data.EstimateURL)
	}

	fmt.Fprintf(&b, "---\n%s\n", data.Company.Name)
	return b.String()
}

func (s *EmailService) sendEmail(to []string, subject, textBody, htmlBody string, attachment []byte, attachmentName string) error {
	// Check if SMTP is configured
	if s.config.SMTPHost == "localhost" && s.config.SMTPUsername == "" {
		return fmt.Errorf("SMTP not configured - please set email configuration: smtp_host, smtp_port, smtp_username, smtp_password")
	}

	addr := fmt.Sprintf("%s:%d", s.config.SMTPHost, s.config.SMTPPort)

	var auth smtp.Auth
	if s.config.SMTPUsername != "" && s.config.SMTPPassword != "" {
		auth = smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)
	}

	tlsConfig := &tls.Config{
		ServerName: s.config.SMTPHost,
	}

	conn, err := tls.Dial("tcp", addr, tlsConfig)
	if err != nil {
		// Try without TLS
		return s.sendEmailPlain(to, subject, textBody, htmlBody, attachment, attachmentName)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.config.SMTPHost)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %v", err)
	}
	defer client.Quit()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %v", err)
		}
	}

	if err := client.Mail(s.config.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %v", err)
	}

	for _, recipient := range to {
		if err := client.Rcpt(recipient); err != nil {
			return fmt.Errorf("failed to set recipient %s: %v", recipient, err)
		}
	}

	message := s.createMIMEMessage(to, subject, textBody, htmlBody, attachment, attachmentName)

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open data writer: %v", err)
	}
	defer w.Close()

	if _, err := w.Write([]byte(message)); err != nil {
		return fmt.Errorf("failed to write message: %v", err)
	}

	return nil
}

// sendEmailPlain sends email without TLS (fallback)
func (s *EmailService) sendEmailPlain(to []string, subject, textBody, htmlBody string, attachment []byte, attachmentName string) error {
	message := s.createMIMEMessage(to, subject, textBody, htmlBody, attachment, attachmentName)

	var auth smtp.Auth
	if s.config.SMTPUsername != "" && s.config.SMTPPassword != "" {
		auth = smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)
	}

	addr := fmt.Sprintf("%s:%d", s.config.SMTPHost, s.config.SMTPPort)
	return smtp.SendMail(addr, auth, s.config.FromEmail, to, []byte(message))
}

// createMIMEMessage creates a MIME message with optional PDF attachment
func (s *EmailService) createMIMEMessage(to []string, subject, textBody, htmlBody string, attachment []byte, attachmentName string) string {
	boundary := "boundary-" + strconv.FormatInt(time.Now().UnixNano(), 16)

	var message strings.Builder

	message.WriteString(fmt.Sprintf("From: %s <%s>\r\n", s.config.FromName, s.config.FromEmail))
	message.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(to, ", ")))
	message.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	message.WriteString("MIME-Version: 1.0\r\n")

	if attachment != nil {
		message.WriteString(fmt.Sprintf("Content-Type: multipart/mixed; boundary=%s\r\n", boundary))
	} else {
		message.WriteString("Content-Type: multipart/alternative; boundary=" + boundary + "\r\n")
	}
	message.WriteString("\r\n")

	// Text part
	message.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	message.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	message.WriteString("Content-Transfer-Encoding: 7bit\r\n\r\n")
	message.WriteString(textBody)
	message.WriteString("\r\n\r\n")

	// HTML part
	if htmlBody != "" {
		message.WriteString(fmt.Sprintf("--%s\r\n", boundary))
		message.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
		message.WriteString("Content-Transfer-Encoding: 7bit\r\n\r\n")
		message.WriteString(htmlBody)
		message.WriteString("\r\n\r\n")
	}

	// Attachment
	if attachment != nil && attachmentName != "" {
		message.WriteString(fmt.Sprintf("--%s\r\n", boundary))
		message.WriteString(fmt.Sprintf("Content-Type: application/pdf; name=\"%s\"\r\n", attachmentName))
		message.WriteString("Content-Transfer-Encoding: base64\r\n")
		message.WriteString(fmt.Sprintf("Content-Disposition: attachment; filename=\"%s\"\r\n\r\n", attachmentName))
		message.WriteString(encodeAttachment(attachment))
		message.WriteString("\r\n")
	}

	message.WriteString(fmt.Sprintf("--%s--\r\n", boundary))

	return message.String()
}

// encodeAttachment base64-encodes data with line breaks every 76 chars
func encodeAttachment(data []byte) string {
	encoded := base64.StdEncoding.EncodeToString(data)

	var b strings.Builder
	for len(encoded) > 76 {
		b.WriteString(encoded[:76])
		b.WriteString("\r\n")
		encoded = encoded[76:]
	}
	b.WriteString(encoded)
	return b.String()
}
