package email

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

// Raw HTML in the markdown source is escaped.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

func renderMarkdown(md string) (string, error) {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

type CertificateIssued struct {
	RecipientName     string
	RecipientEmail    string
	ProgramTitle      string
	CertificateNumber string
	FinalGrade        string
	VerifyURL         string
}

func (m CertificateIssued) Request() (SendRequest, error) {
	name := strings.TrimSpace(m.RecipientName)
	if name == "" {
		name = "there"
	}
	body := fmt.Sprintf(`Hi %s,

Congratulations on completing **%s**.

Your certificate number is **%s** with a final grade of **%s**.

Anyone can verify it at [%s](%s).
`, name, m.ProgramTitle, m.CertificateNumber, m.FinalGrade, m.VerifyURL, m.VerifyURL)

	html, err := renderMarkdown(body)
	if err != nil {
		return SendRequest{}, fmt.Errorf("render certificate email: %w", err)
	}
	return SendRequest{
		To:      []string{m.RecipientEmail},
		Subject: "Your certificate for " + m.ProgramTitle,
		HTML:    html,
	}, nil
}
