package export

// pageTmpl is the single self-contained document: dark palette, collapsible
// secondary groups, clamped long bodies with expanders, raw JSON details
// per secondary step, and expand/collapse-all controls per conversation.
const pageTmpl = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>{{.Title}}</title>
  <style>
    :root {
      --bg: #0d1117;
      --panel: #161b22;
      --card: #1c2128;
      --text: #e6edf3;
      --muted: #8b949e;
      --border: #30363d;
      --user: #58a6ff;
      --assistant: #3fb950;
      --system: #d2a8ff;
      --subagent: #f2cc60;
      --skill: #ff7b72;
      --mcp: #56d4dd;
      --tool: #ffa657;
      --other: #a5a5a5;
    }
    body { margin: 0; background: radial-gradient(1200px 600px at 10% -10%, #1f2733, #0d1117); color: var(--text); font: 15px/1.5 -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; }
    .wrap { max-width: 1120px; margin: 0 auto; padding: 24px; }
    h1 { margin: 0 0 8px; font-size: 28px; }
    .hint { color: var(--muted); margin: 0 0 20px; }
    .conversation { background: var(--panel); border: 1px solid var(--border); border-radius: 14px; padding: 16px; margin-bottom: 16px; box-shadow: 0 8px 26px rgba(0,0,0,0.35); }
    h2 { margin: 0 0 10px; font-size: 16px; color: #c9d1d9; }
    .conversation-actions { display: flex; gap: 8px; margin-bottom: 10px; }
    .toggle { border: 1px solid var(--border); background: #21262d; color: #c9d1d9; border-radius: 8px; padding: 5px 10px; cursor: pointer; }
    .msg { border: 1px solid var(--border); border-radius: 10px; background: var(--card); padding: 10px; margin: 10px 0; }
    .meta { display: flex; gap: 10px; align-items: center; margin-bottom: 6px; }
    .role { font-weight: 600; }
    .role.user { color: var(--user); }
    .role.assistant { color: var(--assistant); }
    .role.system { color: var(--system); }
    .role.subagent { color: var(--subagent); }
    .role.skill { color: var(--skill); }
    .role.mcp { color: var(--mcp); }
    .role.tool { color: var(--tool); }
    .role.other { color: var(--other); }
    .ts { color: var(--muted); font-size: 12px; }
    pre { white-space: pre-wrap; margin: 0; overflow-wrap: anywhere; font: 13px/1.45 ui-monospace, SFMono-Regular, Menlo, Monaco, "Courier New", monospace; color: #dce3ea; }
    details.secondary-group > summary { cursor: pointer; color: #c9d1d9; font-weight: 600; display: flex; align-items: center; gap: 8px; }
    .badge { display: inline-block; border: 1px solid var(--border); border-radius: 999px; padding: 1px 8px; font-size: 11px; line-height: 1.4; }
    .badge.tool { color: var(--tool); }
    .badge.mcp { color: var(--mcp); }
    .badge.skill { color: var(--skill); }
    .badge.subagent { color: var(--subagent); }
    .badge.system { color: var(--system); }
    .badge.other { color: var(--other); }
    .step { margin-top: 10px; padding: 10px; border: 1px dashed var(--border); border-radius: 8px; background: #131820; }
    .step-head { display: flex; gap: 8px; align-items: center; margin-bottom: 6px; }
    .step-role { color: #c9d1d9; font-weight: 600; font-size: 12px; }
    .call-name { color: #8b949e; font-size: 12px; }
    .clamped { max-height: 280px; overflow: hidden; position: relative; }
    .clamped::after { content: ''; position: absolute; left: 0; right: 0; bottom: 0; height: 48px; background: linear-gradient(to bottom, rgba(22,27,34,0), rgba(22,27,34,1)); }
    details.expand-text > summary { cursor: pointer; color: var(--muted); margin-top: 6px; }
    details.raw { margin-top: 10px; }
    details.raw > summary { cursor: pointer; color: var(--muted); font-weight: 500; }
  </style>
</head>
<body>
  <div class="wrap">
    <h1>{{.Title}}</h1>
    <p class="hint">Source: {{.Source}}</p>
{{range .Sections}}    <section class="conversation">
      <h2>{{.Path}}</h2>
      <div class="conversation-actions">
        <button type="button" class="toggle" data-action="expand">Expand steps</button>
        <button type="button" class="toggle" data-action="collapse">Collapse steps</button>
      </div>
{{range .Blocks}}{{if .Primary}}{{template "primary" .Primary}}{{else if eq .Category "subagent"}}{{template "subagentGroup" .}}{{else}}{{template "secondaryGroup" .}}{{end}}{{end}}
    </section>
{{end}}  </div>
  <script>
    function setSecondary(section, open) {
      section.querySelectorAll('details.secondary-group').forEach((d) => { d.open = open; });
    }
    document.querySelectorAll('.conversation').forEach((section) => {
      section.querySelectorAll('.toggle').forEach((btn) => {
        btn.addEventListener('click', () => {
          setSecondary(section, btn.dataset.action === 'expand');
        });
      });
    });
  </script>
</body>
</html>

{{define "body"}}{{if .Long}}<div class="clamped"><pre>{{.Text}}</pre></div><details class="expand-text"><summary>Show full text</summary><pre>{{.Text}}</pre></details>{{else}}<pre>{{.Text}}</pre>{{end}}{{end}}

{{define "primary"}}<article class="msg primary"><div class="meta"><span class="role {{.RoleClass}}">{{.Role}}</span>{{if .Timestamp}}<span class="ts">{{.Timestamp}}</span>{{end}}</div>{{template "body" .}}</article>
{{end}}

{{define "step"}}<div class="step"><div class="step-head"><span class="badge {{.Badge}}">{{.Badge}}</span>{{if .CallName}} <span class="call-name">{{.CallName}}</span>{{end}} <span class="step-role">{{.Role}}</span>{{if .Timestamp}}<span class="ts">{{.Timestamp}}</span>{{end}}</div>{{template "body" .}}<details class="raw"><summary>Raw JSON</summary><pre>{{.RawJSON}}</pre></details></div>
{{end}}

{{define "secondaryGroup"}}<details class="msg secondary-group"><summary>{{.Category}} · {{.Count}} events <span class="badge {{.Category}}">{{.Category}}</span>{{if .NameHint}} <span class="call-name">{{.NameHint}}</span>{{end}}</summary>
{{range .Steps}}{{template "step" .}}{{end}}</details>
{{end}}

{{define "subagentGroup"}}<details class="msg secondary-group"><summary>subagent · {{.Count}} events <span class="badge subagent">subagent</span>{{if .FlowHint}} <span class="call-name">{{.FlowHint}}</span>{{end}}</summary>
{{range .SubGroups}}{{if .Message}}{{range .Steps}}{{template "step" .}}{{end}}{{else}}<details class="subagent-inner"><summary>{{.Kind}} · {{.Count}} events <span class="badge {{.Kind}}">{{.Kind}}</span>{{if .NameHint}} <span class="call-name">{{.NameHint}}</span>{{end}}</summary>
{{range .Steps}}{{template "step" .}}{{end}}</details>{{end}}{{end}}</details>
{{end}}`
