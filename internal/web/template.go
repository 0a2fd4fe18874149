package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/button-sensor/internal/logic"
	"github.com/sweeney/button-sensor/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"stateOrUnknown": func(s logic.State) string {
		if s == "" {
			return "UNKNOWN"
		}
		return string(s)
	},
	"ms": func(d time.Duration) int64 {
		return d.Milliseconds()
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Button Sensor: {{.Config.Name}}</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.pressed { color: green; font-weight: bold; }
.released { color: #888; }
.connected { color: green; }
.disconnected { color: red; }
.live-dot { display: inline-block; width: 8px; height: 8px; border-radius: 50%; margin-left: 6px; vertical-align: middle; }
.live-dot.ok { background: green; }
.live-dot.err { background: red; }
.live-dot.pending { background: orange; }
#log { max-height: 12em; overflow-y: auto; }
button { font-family: monospace; margin-right: 0.5em; }
</style>
</head>
<body>
<h1>Button Sensor: {{.Config.Name}}{{if .Live}}<span id="live-dot" class="live-dot pending" title="connecting"></span>{{end}}</h1>

<h2>State</h2>
<table>
<tr><th>State</th><td id="state">{{stateOrUnknown .Button.State}}</td></tr>
<tr><th>Level</th><td id="level" class="{{if .Button.Pressed}}pressed{{else}}released{{end}}">{{if .Button.Pressed}}PRESSED{{else}}RELEASED{{end}}</td></tr>
<tr><th>Clicks</th><td>{{.Button.Clicks}}</td></tr>
<tr><th>Long press</th><td>{{if .Button.LongPressed}}yes ({{ms .Button.PressedFor}}ms){{else}}no{{end}}</td></tr>
<tr><th>Last event</th><td id="last-event">{{with .LastEvent}}{{.Type}}{{if .Clicks}} x{{.Clicks}}{{end}}{{else}}none{{end}}</td></tr>
</table>
{{if .Inject}}
<p>
<button onclick="inject('press')">press</button>
<button onclick="inject('release')">release</button>
<button onclick="inject('toggle')">toggle</button>
</p>
{{end}}

<h2>Event Counts</h2>
<table>
{{range .Counts}}<tr><th>{{.Type}}</th><td>{{.Count}}</td></tr>
{{end}}</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{if .Config.Broker}}{{.Config.Broker}}{{else}}disabled{{end}}</td></tr>
{{if .Config.Prefix}}<tr><th>Prefix</th><td>{{.Config.Prefix}}</td></tr>{{end}}
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Source</th><td>{{.Config.Source}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Debounce</th><td>{{.Config.DebounceMs}}ms</td></tr>
<tr><th>Click</th><td>{{.Config.ClickMs}}ms</td></tr>
<tr><th>Long press</th><td>{{.Config.LongPressMs}}ms</td></tr>
<tr><th>Idle</th><td>{{.Config.IdleMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

{{if .Live}}<h2>Live</h2>
<div id="log"></div>{{end}}

<p><a href="/index.json">JSON</a></p>
<script>
function inject(level) {
  fetch("/inject/" + level, { method: "POST" });
}
{{if .Live}}
(function() {
  var dot = document.getElementById("live-dot");
  var log = document.getElementById("log");
  var last = document.getElementById("last-event");

  function setDot(cls, title) {
    dot.className = "live-dot " + cls;
    dot.title = title;
  }

  function connect() {
    var proto = location.protocol === "https:" ? "wss://" : "ws://";
    var ws = new WebSocket(proto + location.host + "/events");
    ws.onopen = function() { setDot("ok", "live"); };
    ws.onclose = function() {
      setDot("err", "offline");
      setTimeout(connect, 5000);
    };
    ws.onmessage = function(m) {
      try {
        var b = JSON.parse(m.data).button;
        var text = b.event + (b.clicks ? " x" + b.clicks : "") + (b.pressed_ms ? " " + b.pressed_ms + "ms" : "");
        last.textContent = text;
        var line = document.createElement("div");
        line.textContent = b.timestamp + " " + text;
        log.insertBefore(line, log.firstChild);
      } catch (e) {}
    };
  }
  connect();
})();
{{end}}
</script>
</body>
</html>
`

type countRow struct {
	Type  logic.EventType
	Count int
}

func renderHTML(w io.Writer, snap status.Snapshot, live, inject bool) error {
	rows := make([]countRow, 0, len(logic.EventTypes))
	for _, t := range logic.EventTypes {
		rows = append(rows, countRow{Type: t, Count: snap.Counts[t]})
	}

	// Snapshot has Uptime() and Counts as a map; the template wants a
	// Duration field and rows in a stable order.
	data := struct {
		status.Snapshot
		Uptime time.Duration
		Counts []countRow
		Live   bool
		Inject bool
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
		Counts:   rows,
		Live:     live,
		Inject:   inject,
	}
	return indexTmpl.Execute(w, data)
}
