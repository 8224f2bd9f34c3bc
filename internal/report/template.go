package report

import "html/template"

var reportTemplate = template.Must(template.New("report").Parse(reportHTML))

const reportHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Fleet Devices Report</title>
    <style>
        body {
            font-family: Arial, sans-serif;
            color: #333;
        }
        h1 {
            color: #004080;
        }
        p {
            margin: 0 0 10px;
        }
        table {
            width: 100%;
            border-collapse: collapse;
        }
        th, td {
            border: 1px solid #ddd;
            padding: 8px;
        }
        th {
            padding-top: 12px;
            padding-bottom: 12px;
            text-align: left;
            background-color: #004080;
            color: white;
        }
        .section {
            margin-bottom: 20px;
        }
        .section-title {
            font-weight: bold;
            text-decoration: underline;
        }
        .good {
            color: green;
            font-weight: bold;
        }
        .bad {
            color: red;
            font-weight: bold;
        }
        .footer {
            color: #888;
            font-size: 0.85em;
        }
    </style>
</head>
<body>
    <h1>Fleet Devices Report</h1>
    <div class="section">
        <p class="section-title">Summary:</p>
        <p>Total Number of devices: {{.Stats.TotalDevices}}</p>
        <p>Total Number of CAS activated devices: {{.Stats.CASActivated}}</p>
        <p>Total Number of devices in South Africa: <span class="good">{{.Stats.DevicesInSA}}</span></p>
        <p>Devices not in South Africa: <span class="bad">{{.Stats.DevicesNotInSA}}</span></p>
        <p>Number of devices currently online: {{.Stats.DevicesOnline}}</p>
        <p>Number of devices connected in the last 24 hours: {{.Stats.ConnectedLast24h}}</p>
        <p>New devices connected in the last 24 hours: {{.Stats.NewConnectedLast24h}}</p>
        <p>New devices connected in the last 7 days: {{.Stats.NewConnectedLast7Days}}</p>
        <p>New devices connected since the first of the month: {{.Stats.NewConnectedSinceFirstOfMonth}}</p>
    </div>
    <div class="section">
        <p class="section-title">Devices per retailer:</p>
        <table>
            <thead>
                <tr>
                    <th>Retailer</th>
                    <th>CAS Activated</th>
                    <th>Total Devices</th>
                    <th>In South Africa</th>
                </tr>
            </thead>
            <tbody>
{{- range .Retailers}}
                <tr>
                    <td>{{.Name}}</td>
                    <td>{{.Activated}}</td>
                    <td>{{.Total}}</td>
                    <td>{{.InSA}}</td>
                </tr>
{{- end}}
            </tbody>
        </table>
    </div>
    <p class="footer">Generated at {{.GeneratedAt.Format "2006-01-02 15:04:05"}}</p>
</body>
</html>
`
