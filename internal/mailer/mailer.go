package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"os"
	"strings"
	"time"

	"stock-signal-bot/internal/logger"
	"stock-signal-bot/internal/store"
	"stock-signal-bot/internal/types"
)

var digestTemplate = template.Must(template.New("digest").Funcs(template.FuncMap{
	"lower": strings.ToLower,
}).Parse(`<!DOCTYPE html>
<html>
<head>
<style>
  body { font-family: Arial, sans-serif; background: #f5f5f5; margin: 0; padding: 20px; }
  .container { max-width: 700px; margin: 0 auto; background: #fff; border-radius: 8px;
               box-shadow: 0 2px 8px rgba(0,0,0,0.1); overflow: hidden; }
  .header { background: #1a1a2e; color: #fff; padding: 24px; text-align: center; }
  .header h1 { margin: 0; font-size: 22px; }
  .header p { margin: 8px 0 0; color: #aaa; font-size: 14px; }
  .section { padding: 16px 24px; }
  .section h2 { color: #1a1a2e; border-bottom: 2px solid #eee; padding-bottom: 8px;
                 font-size: 18px; margin-top: 0; }
  table { width: 100%; border-collapse: collapse; margin-bottom: 16px; }
  th { text-align: left; padding: 8px; background: #f8f8f8; color: #555;
       font-size: 12px; text-transform: uppercase; }
  td { padding: 10px 8px; border-bottom: 1px solid #eee; font-size: 14px; }
  .buy { color: #00c853; font-weight: bold; }
  .sell { color: #ff1744; font-weight: bold; }
  .hold { color: #ff9800; font-weight: bold; }
  .headline { color: #666; font-size: 12px; max-width: 200px;
              overflow: hidden; text-overflow: ellipsis; white-space: nowrap; }
  .footer { background: #f8f8f8; padding: 16px 24px; text-align: center;
            color: #999; font-size: 11px; }
</style>
</head>
<body>
<div class="container">
  <div class="header">
    <h1>Daily Trading Signal Digest</h1>
    <p>{{.Date}}</p>
  </div>

  {{range .Sections}}
  <div class="section">
    <h2>{{.Name}}</h2>
    <table>
      <tr>
        <th>Asset</th>
        <th>Signal</th>
        <th>Confidence</th>
        <th>Articles</th>
        <th>Top Headline</th>
      </tr>
      {{range .Tickers}}{{with index $.Signals .}}
      <tr>
        <td><strong>{{.DisplayName}}</strong></td>
        <td class="{{lower .Signal}}">{{.Signal}}</td>
        <td>{{.Confidence}}%</td>
        <td>{{.ArticleCount}}</td>
        <td class="headline" title="{{.TopHeadline}}">{{.TopHeadline}}</td>
      </tr>
      {{end}}{{end}}
    </table>
  </div>
  {{end}}

  <div class="footer">
    <p><strong>Disclaimer:</strong> This is not financial advice. Signals are generated
    by automated sentiment analysis and should not be the sole basis for investment decisions.
    Always do your own research.</p>
  </div>
</div>
</body>
</html>
`))

type digestData struct {
	Date     string
	Sections []store.Section
	Signals  map[string]types.AssetSignal
}

// Mailer sends the daily signal digest over SMTP. Credentials come from the
// environment, never the config file.
type Mailer struct {
	cfg       *store.Config
	address   string
	password  string
	recipient string
}

// NewMailer creates a mailer from config and environment credentials.
func NewMailer(cfg *store.Config) *Mailer {
	address := os.Getenv("GMAIL_ADDRESS")
	recipient := os.Getenv("RECIPIENT_EMAIL")
	if recipient == "" {
		recipient = address
	}
	return &Mailer{
		cfg:       cfg,
		address:   address,
		password:  os.Getenv("GMAIL_APP_PASSWORD"),
		recipient: recipient,
	}
}

// SendDigest renders and sends the digest email. Returns an error when
// credentials are missing or delivery fails; the pipeline logs and moves on.
func (m *Mailer) SendDigest(ctx context.Context, signals map[string]types.AssetSignal) error {
	if m.address == "" || m.password == "" {
		return fmt.Errorf("email credentials not configured in environment")
	}

	now := time.Now().UTC()
	var body bytes.Buffer
	err := digestTemplate.Execute(&body, digestData{
		Date:     now.Format("January 02, 2006"),
		Sections: m.cfg.Sections(),
		Signals:  signals,
	})
	if err != nil {
		return fmt.Errorf("render digest: %w", err)
	}

	subject := "Trading Signals - " + now.Format(types.DateFormat)
	msg := buildMessage(m.address, m.recipient, subject, body.String())

	addr := fmt.Sprintf("%s:%d", m.cfg.Email.SMTPHost, m.cfg.Email.SMTPPort)
	auth := smtp.PlainAuth("", m.address, m.password, m.cfg.Email.SMTPHost)
	if err := smtp.SendMail(addr, auth, m.address, []string{m.recipient}, msg); err != nil {
		return fmt.Errorf("send digest: %w", err)
	}

	logger.Info(ctx, "Digest email sent", "recipient", m.recipient)
	return nil
}

func buildMessage(from, to, subject, htmlBody string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String())
}
