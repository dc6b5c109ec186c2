package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"stock-signal-bot/internal/logger"
	"stock-signal-bot/internal/store"
	"stock-signal-bot/internal/types"
)

// PageTemplate renders the static dashboard; the web dashboard serves the
// same page.
var PageTemplate = template.Must(template.New("dashboard").Funcs(template.FuncMap{
	"lower": strings.ToLower,
	"fmt2":  func(v float64) string { return fmt.Sprintf("%.2f", v) },
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Trading Signal Dashboard</title>
<meta name="viewport" content="width=device-width, initial-scale=1">
<style>
  * { box-sizing: border-box; }
  body { font-family: Arial, sans-serif; background: #f5f5f5; margin: 0; padding: 20px; }
  .container { max-width: 700px; margin: 0 auto; background: #fff; border-radius: 8px;
               box-shadow: 0 2px 8px rgba(0,0,0,0.1); overflow: hidden; }
  .header { background: #1a1a2e; color: #fff; padding: 24px; text-align: center; }
  .header h1 { margin: 0; font-size: 22px; }
  .header p { margin: 8px 0 0; color: #aaa; font-size: 14px; }
  .updated-bar { padding: 12px 24px; background: #f0f0f0; text-align: center;
                 color: #666; font-size: 13px; }
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
  @media (max-width: 600px) {
    body { padding: 8px; }
    .section { padding: 12px 12px; }
    td, th { padding: 6px 4px; font-size: 12px; }
    .headline { max-width: 100px; }
  }
</style>
</head>
<body>
<div class="container">
  <div class="header">
    <h1>Trading Signal Dashboard</h1>
    <p>Automated signals powered by sentiment analysis</p>
  </div>

  <div class="updated-bar">
    Last updated: {{.LastUpdated}}
  </div>

  {{range .Sections}}
  <div class="section">
    <h2>{{.Name}}</h2>
    <table>
      <tr>
        <th>Asset</th>
        <th>Signal</th>
        <th>Score</th>
        <th>Confidence</th>
        <th>Articles</th>
        <th>Top Headline</th>
      </tr>
      {{range .Tickers}}{{with index $.Signals .}}
      <tr>
        <td><strong>{{.DisplayName}}</strong></td>
        <td class="{{lower .Signal}}">{{.Signal}}</td>
        <td>{{fmt2 .Score}}</td>
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
    <p>Last updated: {{.LastUpdated}}</p>
  </div>
</div>
</body>
</html>
`))

// PageData feeds PageTemplate.
type PageData struct {
	LastUpdated string
	Sections    []store.Section
	Signals     map[string]types.AssetSignal
}

// Publisher writes the static dashboard site and a signals.json snapshot.
// Pushing the output directory is the deploy workflow's job, not ours.
type Publisher struct {
	cfg *store.Config
}

// NewPublisher creates a publisher writing into the configured output dir.
func NewPublisher(cfg *store.Config) *Publisher {
	return &Publisher{cfg: cfg}
}

// Publish renders index.html and signals.json for the latest run.
func (p *Publisher) Publish(ctx context.Context, signals map[string]types.AssetSignal) error {
	now := time.Now().UTC()

	if err := os.MkdirAll(p.cfg.Publish.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	htmlPath := filepath.Join(p.cfg.Publish.OutputDir, "index.html")
	f, err := os.Create(htmlPath)
	if err != nil {
		return err
	}
	err = PageTemplate.Execute(f, PageData{
		LastUpdated: now.Format("January 02, 2006 at 15:04 UTC"),
		Sections:    p.cfg.Sections(),
		Signals:     signals,
	})
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write dashboard html: %w", err)
	}

	snapshot := map[string]any{
		"last_updated": now.Format(time.RFC3339),
		"signals":      signals,
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}
	jsonPath := filepath.Join(p.cfg.Publish.OutputDir, "signals.json")
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return fmt.Errorf("write signals snapshot: %w", err)
	}

	logger.Info(ctx, "Static dashboard written", "html", htmlPath, "snapshot", jsonPath)
	return nil
}
