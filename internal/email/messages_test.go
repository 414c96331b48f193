package email

import (
	"strings"
	"testing"
)

func TestCertificateIssuedRequestRendersMarkdown(t *testing.T) {
	req, err := CertificateIssued{
		RecipientName:     "Ari",
		RecipientEmail:    "ari@example.com",
		ProgramTitle:      "Batting Fundamentals",
		CertificateNumber: "CERT-2026-123456",
		FinalGrade:        "A",
		VerifyURL:         "https://academy.example/public/certificates/verify/CERT-2026-123456",
	}.Request()
	if err != nil {
		t.Fatalf("Request: %v", err)
	}

	if len(req.To) != 1 || req.To[0] != "ari@example.com" {
		t.Fatalf("unexpected recipients %v", req.To)
	}
	if !strings.Contains(req.HTML, "<strong>CERT-2026-123456</strong>") {
		t.Fatalf("expected bold certificate number, got %s", req.HTML)
	}
	if !strings.Contains(req.HTML, `href="https://academy.example/public/certificates/verify/CERT-2026-123456"`) {
		t.Fatalf("expected verify link, got %s", req.HTML)
	}
}

func TestCertificateIssuedEscapesRawHTML(t *testing.T) {
	req, err := CertificateIssued{
		RecipientName:  "<script>alert(1)</script>",
		RecipientEmail: "x@example.com",
		ProgramTitle:   "Spin",
	}.Request()
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if strings.Contains(req.HTML, "<script>") {
		t.Fatalf("raw html leaked into email body: %s", req.HTML)
	}
}
