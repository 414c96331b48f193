package render

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/gofiber/template/html/v2"
)

//go:embed templates/*.html
var templateFS embed.FS

type CertificateDocument struct {
	CertificateNumber    string
	RecipientName        string
	ProgramTitle         string
	CoachName            string
	AttendedSessions     int
	TotalSessions        int
	AttendancePercentage float64
	FinalGrade           string
	IssueDate            string
	VerifyURL            string
}

// PDFConverter turns a standalone HTML document into PDF bytes.
type PDFConverter interface {
	HTMLToPDF(ctx context.Context, html string) ([]byte, error)
}

// CertificateRenderer fills the certificate template and hands the result
// to a PDF converter.
type CertificateRenderer struct {
	engine    *html.Engine
	converter PDFConverter
}

func NewCertificateRenderer(converter PDFConverter) (*CertificateRenderer, error) {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, err
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	if err := engine.Load(); err != nil {
		return nil, fmt.Errorf("load certificate templates: %w", err)
	}
	return &CertificateRenderer{engine: engine, converter: converter}, nil
}

func (r *CertificateRenderer) RenderHTML(doc CertificateDocument) (string, error) {
	var buf bytes.Buffer
	if err := r.engine.Render(&buf, "certificate", doc); err != nil {
		return "", fmt.Errorf("render certificate html: %w", err)
	}
	return buf.String(), nil
}

func (r *CertificateRenderer) RenderCertificate(ctx context.Context, doc CertificateDocument) ([]byte, error) {
	if r.converter == nil {
		return nil, ErrRendererUnavailable
	}
	page, err := r.RenderHTML(doc)
	if err != nil {
		return nil, err
	}
	return r.converter.HTMLToPDF(ctx, page)
}
