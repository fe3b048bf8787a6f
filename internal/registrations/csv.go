package registrations

import (
	"fmt"
	"strings"
	"time"

	"github.com/scanlead/backend/internal/models"
)

// csvHeader is the fixed export header; the dashboard import tooling depends
// on these exact column names.
const csvHeader = "Name,Email,Phone,Registration Date,QR Code"

// BuildCSV renders a client's registrations as CSV. Every data field is
// individually quoted (quotes doubled), one row per registration. The
// filename is {clientName}-registrations-{ISO-date}.csv.
func BuildCSV(clientName string, regs []models.Registration, now time.Time) (filename string, body []byte) {
	var b strings.Builder
	b.WriteString(csvHeader)
	b.WriteByte('\n')
	for _, r := range regs {
		row := []string{
			r.Name,
			r.Email,
			r.Phone,
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			r.QRCode,
		}
		for i, f := range row {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(quoteField(f))
		}
		b.WriteByte('\n')
	}
	filename = fmt.Sprintf("%s-registrations-%s.csv", clientName, now.Format("2006-01-02"))
	return filename, []byte(b.String())
}

func quoteField(f string) string {
	return `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
}
