package health

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"
)

// RenderDashboardHTML returns the status page served at GET /. The page
// refreshes itself from /health/json.
func RenderDashboardHTML(h CollectResult) string {
	b, _ := json.Marshal(h)
	// embedded in a JS template literal
	jsonStr := strings.NewReplacer("\\", "\\\\", "`", "\\`", "$", "\\$").Replace(string(b))

	headline := "All Systems Operational"
	if h.Status != "ok" {
		headline = "System Issues Detected"
	}

	var deps strings.Builder
	for _, name := range []string{"database", "redis", "frontend"} {
		d, ok := h.Dependencies[name]
		if !ok {
			continue
		}
		class := "err"
		if d.Status == "connected" || d.Status == "reachable" {
			class = "ok"
		}
		ping := "?"
		if d.PingMs != nil {
			ping = fmt.Sprint(*d.PingMs)
		}
		fmt.Fprintf(&deps, `<div class="row"><span>%s</span><span id="pill-%s" class="pill %s">%s ms</span></div>`,
			html.EscapeString(name), name, class, ping)
	}

	lastReq := "-"
	if m := h.Traffic.LastRequest; m != nil {
		lastReq = fmt.Sprintf("%v %v", m["method"], m["path"])
	}

	return `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>EasyShiftHQ · API Status</title>
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <style>
    :root { --brand: #2563eb; --dark: #1e293b; --muted: #64748b; --bg: #f8fafc; }
    body { background: var(--bg); color: var(--dark); font-family: system-ui, sans-serif; margin: 0; display: flex; justify-content: center; padding: 40px 20px; }
    .container { width: 100%; max-width: 960px; }
    h1 { font-size: 40px; font-weight: 900; letter-spacing: -1.5px; margin: 0 0 24px; }
    h1.issue { color: #dc2626; }
    .card { background: white; border-radius: 20px; box-shadow: 0 20px 60px -20px rgba(37, 99, 235, 0.2); display: grid; grid-template-columns: repeat(3, 1fr); }
    .col { padding: 32px; border-right: 1px solid #f1f5f9; }
    .col:last-child { border-right: none; }
    .label { text-transform: uppercase; font-size: 11px; font-weight: 800; letter-spacing: 2px; color: #94a3b8; margin-bottom: 16px; }
    .big { font-size: 36px; font-weight: 900; margin-bottom: 8px; }
    .row { display: flex; justify-content: space-between; padding: 6px 0; font-size: 14px; font-weight: 600; }
    .pill { padding: 3px 10px; border-radius: 8px; font-size: 11px; font-weight: 800; }
    .ok { background: rgba(37, 99, 235, 0.08); color: var(--brand); }
    .err { background: rgba(220, 38, 38, 0.08); color: #dc2626; }
    .footer { margin-top: 16px; font-family: monospace; color: var(--muted); }
    @media (max-width: 800px) { .card { grid-template-columns: 1fr; } .col { border-right: none; } }
  </style>
</head>
<body>
  <div class="container">
    <h1 id="headline" class="` + h.Status + `">` + headline + `</h1>
    <div class="card">
      <div class="col">
        <div class="label">Traffic</div>
        <div class="big" id="total-req">` + fmt.Sprint(h.Traffic.TotalRequests) + `</div>
        <div class="row"><span>Failed</span><span id="failed-count">` + fmt.Sprint(h.Traffic.FailedCount) + `</span></div>
        <div class="row"><span>Success Rate</span><span id="success-rate">` + h.Traffic.SuccessRate + `%</span></div>
        <div class="row"><span>Avg Latency</span><span id="avg-time">` + h.Traffic.AvgResponseTime + `ms</span></div>
      </div>
      <div class="col">
        <div class="label">Runtime</div>
        <div class="big" id="uptime">` + fmt.Sprint(h.Runtime.UptimeSeconds) + `s</div>
        <div class="row"><span>Heap Used</span><span id="mem-heap">` + fmt.Sprint(h.Runtime.Memory.HeapUsed) + ` MB</span></div>
        <div class="row"><span>Goroutines</span><span id="goroutines">` + fmt.Sprint(h.Runtime.Goroutines) + `</span></div>
        <div class="row"><span>Notification backlog</span><span id="backlog">` + fmt.Sprint(h.Outbox.Backlog) + `</span></div>
      </div>
      <div class="col">
        <div class="label">Connectivity</div>
        ` + deps.String() + `
      </div>
    </div>
    <div class="footer">Last request: <span id="last-req">` + html.EscapeString(lastReq) + `</span></div>
  </div>
  <script>
    const render = (d) => {
      document.getElementById('total-req').innerText = d.traffic.totalRequests;
      document.getElementById('failed-count').innerText = d.traffic.failedCount;
      document.getElementById('success-rate').innerText = d.traffic.successRate + '%';
      document.getElementById('avg-time').innerText = d.traffic.avgResponseTime + 'ms';
      document.getElementById('uptime').innerText = d.runtime.uptimeSeconds + 's';
      document.getElementById('mem-heap').innerText = d.runtime.memory.heapUsed + ' MB';
      document.getElementById('goroutines').innerText = d.runtime.goroutines;
      document.getElementById('backlog').innerText = d.outbox.backlog;
      const hl = document.getElementById('headline');
      hl.innerText = d.status === 'ok' ? 'All Systems Operational' : 'System Issues Detected';
      hl.className = d.status;
    };
    render(JSON.parse(` + "`" + jsonStr + "`" + `));
    setInterval(async () => { try { const r = await fetch('/health/json'); render(await r.json()); } catch (e) {} }, 10000);
  </script>
</body>
</html>`
}
