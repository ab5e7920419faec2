package report

import (
	"html/template"
	"io"
	"time"

	"github.com/25smoking/pathrisk/internal/bench"
	"github.com/25smoking/pathrisk/internal/paths"
)

const reportTemplate = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>pathrisk benchmark {{ .Report.ID }}</title>
    <style>
        :root {
            --bg-color: #f8f9fa;
            --card-bg: #ffffff;
            --text-color: #333;
            --critical: #dc3545;
            --ok: #28a745;
            --border-color: #dee2e6;
        }
        body { font-family: 'Segoe UI', sans-serif; background: var(--bg-color); color: var(--text-color); margin: 0; padding: 20px; }
        .container { max-width: 1200px; margin: 0 auto; }
        .header { text-align: center; margin-bottom: 30px; }
        .stats { display: flex; gap: 20px; margin-bottom: 20px; }
        .stat-card { flex: 1; background: var(--card-bg); padding: 20px; border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); text-align: center; }
        .stat-num { font-size: 2em; font-weight: bold; }
        .ok { color: var(--ok); }
        .critical { color: var(--critical); }
        table { width: 100%; border-collapse: collapse; background: var(--card-bg); margin-bottom: 20px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        th, td { padding: 8px 12px; border-bottom: 1px solid var(--border-color); text-align: left; }
        th { background: rgba(0,0,0,0.04); }
        code { background: #eee; padding: 2px 5px; border-radius: 3px; word-break: break-all; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Attack path benchmark</h1>
            <p>Run {{ .Report.ID }}, generated {{ .GeneratedAt }}</p>
            <p>{{ .Report.Graph.Nodes }} nodes, {{ .Report.Graph.Edges }} edges, source {{ .Report.Query.Source }}, target {{ .Report.Query.Target }}{{ if .Report.Host.Hostname }}, host {{ .Report.Host.Hostname }}{{ end }}</p>
        </div>

        <div class="stats">
            <div class="stat-card">
                <div class="stat-num">{{ len .Report.Runs }}</div>
                <div>Strategies</div>
            </div>
            <div class="stat-card">
                <div class="stat-num {{ if .Failed }}critical{{ else }}ok{{ end }}">{{ .Failed }}</div>
                <div>Failed</div>
            </div>
            <div class="stat-card">
                <div class="stat-num">{{ .Fastest }}</div>
                <div>Fastest</div>
            </div>
            <div class="stat-card">
                <div class="stat-num {{ if .Report.Agree }}ok{{ else }}critical{{ end }}">{{ if .Report.Agree }}yes{{ else }}no{{ end }}</div>
                <div>Strategies agree</div>
            </div>
        </div>

        <table>
            <tr><th>Strategy</th><th>Elapsed</th><th>Paths</th><th>Peak RSS growth</th><th>Status</th></tr>
            {{ range .Report.Runs }}
            <tr>
                <td>{{ .Strategy }}</td>
                <td>{{ .Elapsed }}</td>
                <td>{{ .Count }}</td>
                <td>{{ bytes .PeakRSSGrowth }}</td>
                <td>{{ if .Error }}<span class="critical">{{ .Error }}</span>{{ else }}<span class="ok">ok</span>{{ end }}</td>
            </tr>
            {{ end }}
        </table>

        {{ if .Sample }}
        <h2>Paths from {{ .SampleFrom }}</h2>
        <table>
            <tr><th>#</th><th>Path</th><th>Hops</th><th>Risk</th></tr>
            {{ range $i, $r := .Sample }}
            <tr>
                <td>{{ inc $i }}</td>
                <td><code>{{ $r.Path }}</code></td>
                <td>{{ hops $r.Path }}</td>
                <td>{{ if $r.Scored }}{{ printf "%.4f" $r.Risk }}{{ else }}-{{ end }}</td>
            </tr>
            {{ end }}
        </table>
        {{ if .Truncated }}<p>{{ .Truncated }} more paths not shown.</p>{{ end }}
        {{ end }}
    </div>
</body>
</html>
`

// MaxHTMLPaths caps the path listing of the HTML report.
const MaxHTMLPaths = 200

type reportData struct {
	GeneratedAt string
	Report      *bench.Report
	Failed      int
	Fastest     string
	SampleFrom  string
	Sample      []paths.Result
	Truncated   int
}

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"bytes": FormatBytes,
	"inc":   func(i int) int { return i + 1 },
	"hops":  func(p paths.Path) int { return len(p) - 1 },
}).Parse(reportTemplate))

// GenerateHTML renders rep as a standalone page. The path listing comes
// from the first completed run, preferring one that scored its paths.
func GenerateHTML(w io.Writer, rep *bench.Report) error {
	data := reportData{
		GeneratedAt: time.Now().Format("2006-01-02 15:04:05"),
		Report:      rep,
		Fastest:     "-",
	}
	for _, run := range rep.Runs {
		if run.Failed() {
			data.Failed++
		}
	}
	if fastest, ok := rep.Fastest(); ok {
		data.Fastest = fastest.Strategy
	}

	if sample, ok := sampleRun(rep); ok {
		data.SampleFrom = sample.Strategy
		data.Sample = sample.Results
		if len(data.Sample) > MaxHTMLPaths {
			data.Truncated = len(data.Sample) - MaxHTMLPaths
			data.Sample = data.Sample[:MaxHTMLPaths]
		}
	}

	return htmlTemplate.Execute(w, data)
}

func sampleRun(rep *bench.Report) (bench.Run, bool) {
	var first *bench.Run
	for i := range rep.Runs {
		run := &rep.Runs[i]
		if run.Failed() || run.Strategy == "" {
			continue
		}
		if run.Count > 0 && len(run.Results) > 0 && run.Results[0].Scored {
			return *run, true
		}
		if first == nil {
			first = run
		}
	}
	if first == nil {
		return bench.Run{}, false
	}
	return *first, true
}
