// Package terminal is a line-oriented presentation layer for the order desk.
// View renders controller state as tables on a writer; Shell reads commands
// and turns them into controller inputs.
package terminal

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/lab67/orderdesk/internal/core/domain"
	"github.com/lab67/orderdesk/internal/core/ports"
	"github.com/lab67/orderdesk/internal/infrastructure/health"
)

const (
	timeLayout     = "2006-01-02 15:04"
	editTimeLayout = "2006-01-02T15:04" // read back as local time on edit
	metricsPrefix  = "orderdesk_"
	maxDescription = 48
)

// View implements ports.Presenter on top of an io.Writer.
type View struct {
	out io.Writer
	log zerolog.Logger
}

var _ ports.Presenter = (*View)(nil)

func NewView(out io.Writer, log zerolog.Logger) *View {
	return &View{out: out, log: log}
}

func (v *View) RenderSession(user *domain.User) {
	if user == nil {
		v.printf("\n[anonymous] login <username> <credential> [customer|courier|manager]\n")
		return
	}
	v.printf("\n[%s | %s]%s\n", user.Username, user.Role, profileSummary(user))
}

func (v *View) RenderOrders(orders []domain.Order, page ports.PageInfo) {
	if len(orders) == 0 {
		v.printf("no orders\n")
		return
	}

	rows := make([][]string, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, []string{
			o.ID,
			o.CreatedAt.UTC().Format(timeLayout),
			o.Author,
			o.Phone,
			string(o.ServiceType),
			strconv.Itoa(o.Guests),
			string(o.Status),
			truncate(o.Description, maxDescription),
		})
	}
	v.table([]string{"ID", "CREATED", "AUTHOR", "PHONE", "SERVICE", "GUESTS", "STATUS", "DESCRIPTION"}, rows)

	v.printf("showing %d of %d", page.Shown, page.Total)
	if page.HasMore {
		v.printf(" | more: load %d more", page.NextBatch)
	}
	v.printf("\n")
}

func (v *View) RenderStats(stats domain.Stats) {
	v.printf("\n== statistics ==\nmonthly revenue: %.2f\ntotal orders:    %d\n", stats.Revenue, stats.TotalOrders)

	rows := make([][]string, 0, len(stats.PopularDishes))
	for _, d := range stats.PopularDishes {
		rows = append(rows, []string{d.Name, strconv.Itoa(d.Count)})
	}
	v.table([]string{"DISH", "ORDERS"}, rows)
}

func (v *View) ShowEditForm(o domain.Order) {
	v.printf("\n== edit order %s ==\n", o.ID)
	v.table([]string{"FIELD", "VALUE"}, [][]string{
		{"description", o.Description},
		{"created_at", o.CreatedAt.Local().Format(editTimeLayout)},
		{"author", o.Author},
		{"phone", o.Phone},
		{"service", string(o.ServiceType)},
		{"guests", strconv.Itoa(o.Guests)},
		{"status", string(o.Status)},
	})
	v.printf("submit with: edit %s field=value ...\n", o.ID)
}

// RenderError prints the user-facing message for err.
func (v *View) RenderError(err error) {
	v.printf("error: %s\n", Message(err, v.log))
}

// RenderInfo prints a one-line notice.
func (v *View) RenderInfo(format string, args ...any) {
	v.printf(format+"\n", args...)
}

// RenderMetrics prints the order desk's own metric series from g.
func (v *View) RenderMetrics(g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	var rows [][]string
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), metricsPrefix) {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			sort.Strings(labels)

			var value float64
			switch {
			case m.GetCounter() != nil:
				value = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				value = m.GetGauge().GetValue()
			default:
				continue
			}
			rows = append(rows, []string{
				strings.TrimPrefix(mf.GetName(), metricsPrefix),
				strings.Join(labels, ","),
				strconv.FormatFloat(value, 'f', -1, 64),
			})
		}
	}
	if len(rows) == 0 {
		v.printf("no metrics recorded yet\n")
		return nil
	}
	v.table([]string{"METRIC", "LABELS", "VALUE"}, rows)
	return nil
}

// RenderHealth prints a readiness report.
func (v *View) RenderHealth(report health.Report) {
	rows := make([][]string, 0, len(report.Dependencies))
	for _, d := range report.Dependencies {
		rows = append(rows, []string{d.Name, d.Status, d.Took.String(), d.Error})
	}
	v.table([]string{"DEPENDENCY", "STATUS", "TOOK", "ERROR"}, rows)
	v.printf("status: %s\n", report.Status)
}

func (v *View) table(header []string, rows [][]string) {
	t := tablewriter.NewWriter(v.out)
	cells := make([]any, len(header))
	for i, h := range header {
		cells[i] = h
	}
	t.Header(cells...)
	for _, r := range rows {
		if err := t.Append(r); err != nil {
			v.log.Error().Err(err).Msg("table append failed")
			return
		}
	}
	if err := t.Render(); err != nil {
		v.log.Error().Err(err).Msg("table render failed")
	}
}

func (v *View) printf(format string, args ...any) {
	if _, err := fmt.Fprintf(v.out, format, args...); err != nil {
		v.log.Error().Err(err).Msg("terminal write failed")
	}
}

func profileSummary(u *domain.User) string {
	switch {
	case u.Customer != nil:
		return fmt.Sprintf(" loyalty points: %d", u.Customer.LoyaltyPoints)
	case u.Courier != nil:
		availability := "available"
		if !u.Courier.IsAvailable {
			availability = "busy"
		}
		return fmt.Sprintf(" %s, %s, assigned: %d", u.Courier.VehicleType, availability, len(u.Courier.AssignedOrders))
	case u.Manager != nil:
		return fmt.Sprintf(" branch: %s", u.Manager.Branch)
	default:
		return ""
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
