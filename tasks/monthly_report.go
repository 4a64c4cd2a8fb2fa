package tasks

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/jung-kurt/gofpdf"
	log "github.com/sirupsen/logrus"

	"github.com/meinhoongagan/household-services/models"
	"github.com/meinhoongagan/household-services/utils"
)

const monthlyReportSubject = "Your Monthly Activity Report"

var monthlyReportTmpl = template.Must(template.New("monthly").Parse(`<html>
<body>
  <h2>Monthly Activity Report - {{.Period}}</h2>
  <p>Dear {{.Username}},</p>
  <p>Here is your service activity summary till past month:</p>
  <ul>
    <li><strong>Total Services Requested:</strong> {{.Requested}}</li>
    <li><strong>Total Services Accepted:</strong> {{.Accepted}}</li>
    <li><strong>Total Services Completed:</strong> {{.Completed}}</li>
  </ul>
  <h3>Service Details</h3>
  <table border="1" cellpadding="5" cellspacing="0">
    <tr><th>Service Name</th><th>Status</th><th>Request Date</th></tr>
    {{- range .Rows}}
    <tr><td>{{.Service}}</td><td>{{.Status}}</td><td>{{.Date}}</td></tr>
    {{- else}}
    <tr><td colspan="3">No services requested</td></tr>
    {{- end}}
  </table>
  <p>Thank you for using our platform!</p>
  <p>Best regards,<br>Household Services Team</p>
</body>
</html>
`))

type reportRow struct {
	Service string
	Status  string
	Date    string
}

// ActivityReport is one customer's request summary.
type ActivityReport struct {
	Period    string
	Username  string
	Requested int
	Accepted  int
	Completed int
	Rows      []reportRow
}

// BuildActivityReport summarises the customer's requests. Accepted counts
// requests that reached Accepted, including those since completed.
func BuildActivityReport(username string, requests []models.ServiceRequest, now time.Time) ActivityReport {
	r := ActivityReport{
		Period:    now.Format("January 2006"),
		Username:  username,
		Requested: len(requests),
	}
	for _, req := range requests {
		switch req.Status {
		case models.StatusAccepted:
			r.Accepted++
		case models.StatusCompleted:
			r.Accepted++
			r.Completed++
		}
		name := req.Service.Name
		if name == "" {
			name = "Unknown Service"
		}
		r.Rows = append(r.Rows, reportRow{
			Service: name,
			Status:  string(req.Status),
			Date:    req.CreatedAt.Format("2006-01-02"),
		})
	}
	return r
}

func (r ActivityReport) HTML() (string, error) {
	var buf bytes.Buffer
	if err := monthlyReportTmpl.Execute(&buf, r); err != nil {
		return "", fmt.Errorf("render monthly report: %w", err)
	}
	return buf.String(), nil
}

// PDF renders the same summary as a one-page attachment.
func (r ActivityReport) PDF() ([]byte, error) {
	return r.renderPDF(true)
}

func (r ActivityReport) renderPDF(compress bool) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(compress)
	// core fonts are cp1252
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr("Monthly Activity Report - "+r.Period), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(0, 8, tr("Customer: "+r.Username), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("Total Services Requested: %d", r.Requested), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("Total Services Accepted: %d", r.Accepted), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("Total Services Completed: %d", r.Completed), "", 1, "L", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(80, 10, "Service Name", "1", 0, "C", false, 0, "")
	pdf.CellFormat(50, 10, "Status", "1", 0, "C", false, 0, "")
	pdf.CellFormat(50, 10, "Request Date", "1", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 12)
	if len(r.Rows) == 0 {
		pdf.CellFormat(180, 10, "No services requested", "1", 1, "C", false, 0, "")
	}
	for _, row := range r.Rows {
		pdf.CellFormat(80, 10, tr(row.Service), "1", 0, "L", false, 0, "")
		pdf.CellFormat(50, 10, row.Status, "1", 0, "C", false, 0, "")
		pdf.CellFormat(50, 10, row.Date, "1", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render monthly report pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// SendMonthlyReport mails every customer their activity report with a PDF copy.
func (j *Jobs) SendMonthlyReport(ctx context.Context) (string, error) {
	var customers []models.User
	err := j.DB.WithContext(ctx).
		Where("role_id = (?)", j.DB.Model(&models.Role{}).Select("id").Where("name = ?", models.RoleCustomer)).
		Order("id").
		Find(&customers).Error
	if err != nil {
		return "", fmt.Errorf("load customers: %w", err)
	}

	now := j.now()
	sent := 0
	for _, c := range customers {
		logger := log.WithField("to", c.Email)

		var requests []models.ServiceRequest
		err := j.DB.WithContext(ctx).
			Preload("Service").
			Where("customer_id = ?", c.ID).
			Order("created_at").
			Find(&requests).Error
		if err != nil {
			logger.WithError(err).Warn("could not load requests for report")
			continue
		}

		report := BuildActivityReport(c.Username, requests, now)
		html, err := report.HTML()
		if err != nil {
			logger.WithError(err).Warn("report not rendered")
			continue
		}
		attachment, err := report.PDF()
		if err != nil {
			logger.WithError(err).Warn("report pdf not rendered")
			continue
		}

		err = j.Mailer.Send(utils.Email{
			To:      c.Email,
			Subject: monthlyReportSubject,
			HTML:    html,
			Kind:    "monthly_report",
			Attachments: []utils.Attachment{{
				Name: fmt.Sprintf("activity_report_%s.pdf", now.Format("2006_01")),
				Data: attachment,
			}},
		})
		if err != nil {
			logger.WithError(err).Warn("monthly report not sent")
			continue
		}
		sent++
	}
	return formatCount(int64(sent), "report sent", "reports sent"), nil
}
