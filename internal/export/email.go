package export

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	emailRuleWidth         = 50
	emailSummaryLabelWidth = 15
	emailFooterLayout      = "1/2/2006"
)

// Deliverer sends a composed report email to a recipient without a mail client.
type Deliverer interface {
	Deliver(ctx context.Context, to string, email Email) error
}

// EmailSink composes a monospace plain-text body and hands it to the mail client.
type EmailSink struct {
	Now func() time.Time
}

func (EmailSink) Format() Format { return FormatEmail }

func (e EmailSink) Render(ctx context.Context, target Target, t Table) error {
	return target.ComposeEmail(ctx, e.Compose(t))
}

// Compose builds the message for t. The subject is the report title.
func (e EmailSink) Compose(t Table) Email {
	body := e.Body(t)
	return Email{Subject: t.Title, Body: body, URI: MailtoURI(t.Title, body)}
}

// Body lays out the report as aligned text columns.
func (e EmailSink) Body(t Table) string {
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}

	var b strings.Builder
	titleRule := strings.Repeat("=", max(utf8.RuneCountInString(t.Title)+4, emailRuleWidth))
	b.WriteString(titleRule + "\n")
	b.WriteString("| " + t.Title + "   |\n")
	b.WriteString(titleRule + "\n\n")

	if !t.Period.Empty() {
		period := "Period: " + t.Period.Label()
		b.WriteString(period + "\n")
		b.WriteString(strings.Repeat("-", utf8.RuneCountInString(period)) + "\n\n")
	}

	if len(t.Options.Prepend) > 0 {
		b.WriteString("Customer Details:\n")
		for _, line := range t.Options.Prepend {
			b.WriteString("  " + line + "\n")
		}
		b.WriteString(strings.Repeat("-", 20) + "\n\n")
	}

	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = utf8.RuneCountInString(h)
		for _, row := range t.Rows {
			if i < len(row) {
				widths[i] = max(widths[i], utf8.RuneCountInString(row[i]))
			}
		}
		widths[i] += 2
	}

	header := make([]string, len(t.Headers))
	rules := make([]string, len(t.Headers))
	for i, h := range t.Headers {
		header[i] = padEnd(h, widths[i])
		rules[i] = strings.Repeat("-", widths[i])
	}
	b.WriteString(strings.Join(header, " | ") + "\n")
	b.WriteString(strings.Join(rules, "-+-") + "\n")
	for _, row := range t.Rows {
		cells := make([]string, len(widths))
		for i := range widths {
			value := ""
			if i < len(row) {
				value = row[i]
			}
			cells[i] = padEnd(value, widths[i])
		}
		b.WriteString(strings.Join(cells, " | ") + "\n")
	}

	if len(t.Summary) > 0 {
		rule := strings.Repeat("=", 30)
		b.WriteString("\n" + rule + "\nSummary\n" + rule + "\n")
		for _, item := range t.Summary {
			b.WriteString(padEnd(item.Label, emailSummaryLabelWidth) + " | " + item.Value + "\n")
		}
	}

	b.WriteString("\n" + strings.Repeat("-", emailRuleWidth) + "\n")
	b.WriteString("Generated on: " + now().Format(emailFooterLayout) + "\n")
	return b.String()
}

func padEnd(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
