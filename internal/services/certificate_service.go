package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/CoachAcademyBack/internal/apperr"
	"github.com/saeid-a/CoachAcademyBack/internal/config"
	"github.com/saeid-a/CoachAcademyBack/internal/email"
	"github.com/saeid-a/CoachAcademyBack/internal/metrics"
	"github.com/saeid-a/CoachAcademyBack/internal/models"
	"github.com/saeid-a/CoachAcademyBack/internal/render"
	"github.com/saeid-a/CoachAcademyBack/internal/repository"
	"github.com/saeid-a/CoachAcademyBack/internal/scheduling"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/singleflight"
)

const (
	maxCertificateNumberAttempts = 5
	certificateFolder            = "certificates"
	signedLinkTTL                = 15 * time.Minute
	emailTimeout                 = 30 * time.Second
)

var (
	ErrStorageUnavailable   = errors.New("storage service is not configured")
	ErrNumberSpaceExhausted = errors.New("could not allocate a unique certificate number")
)

type certificateRenderer interface {
	RenderCertificate(ctx context.Context, doc render.CertificateDocument) ([]byte, error)
}

type CertificateDeps struct {
	Store    certificateStore
	Users    userReader
	Renderer certificateRenderer
	Storage  StorageService
	Mailer   email.Sender
	Events   EventPublisher
	Metrics  *metrics.Metrics
	Log      *zap.Logger
	Policy   config.Policy
	Secret   string
	BaseURL  string
}

type CertificateService struct {
	store    certificateStore
	users    userReader
	renderer certificateRenderer
	storage  StorageService
	mailer   email.Sender
	events   EventPublisher
	metrics  *metrics.Metrics
	log      *zap.Logger
	policy   config.Policy
	hashKey  [32]byte
	baseURL  string

	group  singleflight.Group
	now    func() time.Time
	async  func(func())
	serial func() (int64, error)
}

func NewCertificateService(deps CertificateDeps) *CertificateService {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	events := deps.Events
	if events == nil {
		events = noopPublisher{}
	}
	return &CertificateService{
		store:    deps.Store,
		users:    deps.Users,
		renderer: deps.Renderer,
		storage:  deps.Storage,
		mailer:   deps.Mailer,
		events:   events,
		metrics:  deps.Metrics,
		log:      log,
		policy:   deps.Policy,
		hashKey:  blake2b.Sum256([]byte(deps.Secret)),
		baseURL:  strings.TrimRight(deps.BaseURL, "/"),
		now:      time.Now,
		async:    func(fn func()) { go fn() },
		serial:   randomSerial,
	}
}

func randomSerial() (int64, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return 0, err
	}
	return n.Int64(), nil
}

// VerificationHash is a keyed BLAKE2b-256 digest over the identifying fields.
// The same inputs always give the same hash.
func (s *CertificateService) VerificationHash(number string, learnerID, programID int64, issueDate time.Time) string {
	h, err := blake2b.New256(s.hashKey[:])
	if err != nil {
		panic(err)
	}
	fmt.Fprintf(h, "%s|%d|%d|%s", number, learnerID, programID, issueDate.Format(apperr.DateLayout))
	return hex.EncodeToString(h.Sum(nil))
}

func certificateNumber(year int, serial int64) string {
	return fmt.Sprintf("CERT-%d-%06d", year, serial)
}

type eligibilityFacts struct {
	enrollment *models.Enrollment
	program    *models.Program
	attended   int
	percentage float64
}

func (s *CertificateService) loadFacts(ctx context.Context, actorID int64, role string, enrollmentID int64) (*eligibilityFacts, error) {
	enrollment, err := s.store.GetEnrollment(ctx, enrollmentID)
	if err != nil {
		return nil, notFound(err, "enrollment", enrollmentID)
	}
	program, err := s.store.GetProgram(ctx, enrollment.ProgramID)
	if err != nil {
		return nil, notFound(err, "program", enrollment.ProgramID)
	}
	switch {
	case role == models.RoleAdmin:
	case role == models.RoleLearner && enrollment.LearnerID == actorID:
	case role == models.RoleCoach && program.CoachID == actorID:
	default:
		return nil, apperr.NewAuthorization("access this enrollment's certificate")
	}

	attended, err := s.store.CountAttended(ctx, enrollment.LearnerID, enrollment.ProgramID)
	if err != nil {
		return nil, err
	}
	return &eligibilityFacts{
		enrollment: enrollment,
		program:    program,
		attended:   attended,
		percentage: scheduling.AttendancePercentage(attended, program.TotalSessions),
	}, nil
}

func (s *CertificateService) existing(ctx context.Context, learnerID, programID int64) (*models.Certificate, error) {
	certificate, err := s.store.GetByLearnerProgram(ctx, learnerID, programID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return certificate, err
}

func (s *CertificateService) CheckEligibility(
	ctx context.Context,
	actorID int64,
	role string,
	enrollmentID int64,
) (*models.CertificateEligibility, error) {
	facts, err := s.loadFacts(ctx, actorID, role, enrollmentID)
	if err != nil {
		return nil, err
	}
	certificate, err := s.existing(ctx, facts.enrollment.LearnerID, facts.enrollment.ProgramID)
	if err != nil {
		return nil, err
	}
	return &models.CertificateEligibility{
		EnrollmentID:         facts.enrollment.ID,
		AttendedSessions:     facts.attended,
		TotalSessions:        facts.program.TotalSessions,
		AttendancePercentage: facts.percentage,
		RequiredPercentage:   s.policy.EligibilityThreshold,
		IsEligible:           scheduling.IsEligible(facts.percentage, s.policy.EligibilityThreshold),
		ExistingCertificate:  certificate,
	}, nil
}

type generateResult struct {
	certificate *models.Certificate
	created     bool
}

// GenerateCertificate returns the learner's certificate for the enrollment's
// program, issuing it first when none exists. created reports whether this
// call issued it.
func (s *CertificateService) GenerateCertificate(
	ctx context.Context,
	actorID int64,
	role string,
	enrollmentID int64,
) (*models.Certificate, bool, error) {
	if role != models.RoleLearner && role != models.RoleAdmin {
		return nil, false, apperr.NewAuthorization("generate certificates")
	}
	facts, err := s.loadFacts(ctx, actorID, role, enrollmentID)
	if err != nil {
		return nil, false, err
	}

	key := strconv.FormatInt(facts.enrollment.LearnerID, 10) + ":" + strconv.FormatInt(facts.enrollment.ProgramID, 10)
	// Only the caller whose function ran can have issued the certificate;
	// callers coalesced onto its flight see the result as existing.
	origin := false
	value, err, _ := s.group.Do(key, func() (any, error) {
		origin = true
		return s.generate(context.WithoutCancel(ctx), facts)
	})
	if err != nil {
		return nil, false, err
	}
	result := value.(generateResult)
	return result.certificate, result.created && origin, nil
}

func (s *CertificateService) generate(ctx context.Context, facts *eligibilityFacts) (generateResult, error) {
	enrollment := facts.enrollment
	if certificate, err := s.existing(ctx, enrollment.LearnerID, enrollment.ProgramID); err != nil {
		return generateResult{}, err
	} else if certificate != nil {
		s.metrics.CertificateReused()
		return generateResult{certificate: certificate}, nil
	}

	switch enrollment.Status {
	case models.EnrollmentActive, models.EnrollmentCompleted:
	case models.EnrollmentPending:
		return generateResult{}, apperr.NewGuard(apperr.ReasonEnrollmentInactive, "enrollment is awaiting payment")
	default:
		return generateResult{}, apperr.NewGuard(apperr.ReasonTerminalState, "enrollment was cancelled")
	}

	// Recount inside the flight so a mark that landed after loadFacts counts.
	attended, err := s.store.CountAttended(ctx, enrollment.LearnerID, enrollment.ProgramID)
	if err != nil {
		return generateResult{}, err
	}
	percentage := scheduling.AttendancePercentage(attended, facts.program.TotalSessions)
	if !scheduling.IsEligible(percentage, s.policy.EligibilityThreshold) {
		return generateResult{}, &apperr.EligibilityError{Current: percentage, Required: s.policy.EligibilityThreshold}
	}

	issueDate := scheduling.Today(s.now(), s.policy.Location())
	// An early certificate leaves the enrollment open for the remaining weeks.
	_, programEnd, hasWeeks := scheduling.ProgramSpan(enrollment.EnrollmentDate, facts.program.DurationWeeks)
	complete := hasWeeks && issueDate.After(programEnd)
	details := models.CompletionDetails{
		TotalSessions:        facts.program.TotalSessions,
		AttendedSessions:     attended,
		AttendancePercentage: percentage,
		FinalGrade:           scheduling.Grade(percentage),
	}

	for attempt := 0; attempt < maxCertificateNumberAttempts; attempt++ {
		serial, err := s.serial()
		if err != nil {
			return generateResult{}, err
		}
		number := certificateNumber(issueDate.Year(), serial)

		certificate, err := s.store.Issue(ctx, repository.CreateCertificateInput{
			CertificateNumber: number,
			LearnerID:         enrollment.LearnerID,
			EnrollmentID:      enrollment.ID,
			ProgramID:         enrollment.ProgramID,
			CoachID:           facts.program.CoachID,
			Details:           details,
			IssueDate:         issueDate,
			VerificationHash:  s.VerificationHash(number, enrollment.LearnerID, enrollment.ProgramID, issueDate),

			CompleteEnrollment: complete,
		})
		if err == nil {
			s.metrics.CertificateIssued()
			s.afterIssue(certificate, facts.program)
			return generateResult{certificate: certificate, created: true}, nil
		}

		name, ok := repository.ConstraintViolation(err)
		if !ok {
			return generateResult{}, err
		}
		switch name {
		case repository.ConstraintCertificateNumber, repository.ConstraintCertificateHash:
			s.log.Info("certificate number collision, retrying", zap.String("number", number), zap.Int("attempt", attempt+1))
			continue
		case repository.ConstraintCertificateLearnerProg:
			certificate, err := s.store.GetByLearnerProgram(ctx, enrollment.LearnerID, enrollment.ProgramID)
			if err != nil {
				return generateResult{}, err
			}
			s.metrics.CertificateReused()
			return generateResult{certificate: certificate}, nil
		default:
			return generateResult{}, apperr.NewConflict(apperr.ResourceCertificate, "certificate could not be issued")
		}
	}
	return generateResult{}, ErrNumberSpaceExhausted
}

func (s *CertificateService) afterIssue(certificate *models.Certificate, program *models.Program) {
	s.events.Publish(models.ScheduleEvent{
		Type:       models.EventCertificateIssued,
		Recipients: []int64{certificate.LearnerID},
		Payload:    certificate,
		Timestamp:  s.now().UTC(),
	})

	if s.mailer == nil || s.users == nil {
		return
	}
	s.async(func() {
		ctx, cancel := context.WithTimeout(context.Background(), emailTimeout)
		defer cancel()

		learner, err := s.users.GetByID(ctx, certificate.LearnerID)
		if err != nil {
			s.log.Warn("certificate email skipped", zap.Int64("certificate_id", certificate.ID), zap.Error(err))
			return
		}
		req, err := email.CertificateIssued{
			RecipientName:     learner.FullName,
			RecipientEmail:    learner.Email,
			ProgramTitle:      program.Title,
			CertificateNumber: certificate.CertificateNumber,
			FinalGrade:        certificate.CompletionDetails.FinalGrade,
			VerifyURL:         s.verifyURL(certificate.CertificateNumber),
		}.Request()
		if err != nil {
			s.log.Warn("certificate email render failed", zap.Int64("certificate_id", certificate.ID), zap.Error(err))
			return
		}
		if _, err := s.mailer.Send(ctx, req); err != nil {
			s.log.Warn("certificate email failed", zap.Int64("certificate_id", certificate.ID), zap.Error(err))
		}
	})
}

func (s *CertificateService) verifyURL(number string) string {
	return s.baseURL + "/public/certificates/verify/" + number
}

func (s *CertificateService) getAuthorized(ctx context.Context, actorID int64, role string, certificateID int64) (*models.Certificate, error) {
	certificate, err := s.store.GetByID(ctx, certificateID)
	if err != nil {
		return nil, notFound(err, "certificate", certificateID)
	}
	switch {
	case role == models.RoleAdmin:
	case role == models.RoleLearner && certificate.LearnerID == actorID:
	case role == models.RoleCoach && certificate.CoachID == actorID:
	default:
		return nil, apperr.NewAuthorization("access this certificate")
	}
	return certificate, nil
}

func (s *CertificateService) GetCertificate(ctx context.Context, actorID int64, role string, certificateID int64) (*models.Certificate, error) {
	return s.getAuthorized(ctx, actorID, role, certificateID)
}

func (s *CertificateService) document(ctx context.Context, certificate *models.Certificate) (render.CertificateDocument, error) {
	program, err := s.store.GetProgram(ctx, certificate.ProgramID)
	if err != nil {
		return render.CertificateDocument{}, notFound(err, "program", certificate.ProgramID)
	}
	learner, err := s.users.GetByID(ctx, certificate.LearnerID)
	if err != nil {
		return render.CertificateDocument{}, notFound(err, "user", certificate.LearnerID)
	}
	coach, err := s.users.GetByID(ctx, certificate.CoachID)
	if err != nil {
		return render.CertificateDocument{}, notFound(err, "user", certificate.CoachID)
	}
	return render.CertificateDocument{
		CertificateNumber:    certificate.CertificateNumber,
		RecipientName:        learner.FullName,
		ProgramTitle:         program.Title,
		CoachName:            coach.FullName,
		AttendedSessions:     certificate.CompletionDetails.AttendedSessions,
		TotalSessions:        certificate.CompletionDetails.TotalSessions,
		AttendancePercentage: certificate.CompletionDetails.AttendancePercentage,
		FinalGrade:           certificate.CompletionDetails.FinalGrade,
		IssueDate:            certificate.IssueDate.Format("2 January 2006"),
		VerifyURL:            s.verifyURL(certificate.CertificateNumber),
	}, nil
}

func (s *CertificateService) renderPDF(ctx context.Context, certificate *models.Certificate) ([]byte, error) {
	if s.renderer == nil {
		return nil, render.ErrRendererUnavailable
	}
	doc, err := s.document(ctx, certificate)
	if err != nil {
		return nil, err
	}
	return s.renderer.RenderCertificate(ctx, doc)
}

// DownloadCertificate renders the certificate PDF and counts the download.
// Counting and archiving never fail the download.
func (s *CertificateService) DownloadCertificate(
	ctx context.Context,
	actorID int64,
	role string,
	certificateID int64,
) ([]byte, *models.Certificate, error) {
	certificate, err := s.getAuthorized(ctx, actorID, role, certificateID)
	if err != nil {
		return nil, nil, err
	}

	if err := s.store.IncrementDownloadCount(ctx, certificate.ID); err != nil {
		s.log.Warn("certificate download count not updated", zap.Int64("certificate_id", certificate.ID), zap.Error(err))
	} else {
		certificate.DownloadCount++
	}

	pdf, err := s.renderPDF(ctx, certificate)
	if err != nil {
		return nil, nil, err
	}

	if s.storage != nil && certificate.DocumentURL == nil {
		if _, err := s.archive(ctx, certificate, pdf); err != nil {
			s.log.Warn("certificate archive failed", zap.Int64("certificate_id", certificate.ID), zap.Error(err))
		}
	}
	return pdf, certificate, nil
}

func (s *CertificateService) archive(ctx context.Context, certificate *models.Certificate, pdf []byte) (string, error) {
	url, err := s.storage.Upload(ctx, pdf, certificate.CertificateNumber+".pdf", certificateFolder, "application/pdf")
	if err != nil {
		return "", err
	}
	if err := s.store.SetDocumentURL(ctx, certificate.ID, url); err != nil {
		return "", err
	}
	certificate.DocumentURL = &url
	return url, nil
}

// CertificateLink returns a short-lived signed URL to the archived PDF,
// archiving it first when needed.
func (s *CertificateService) CertificateLink(ctx context.Context, actorID int64, role string, certificateID int64) (string, error) {
	if s.storage == nil {
		return "", ErrStorageUnavailable
	}
	certificate, err := s.getAuthorized(ctx, actorID, role, certificateID)
	if err != nil {
		return "", err
	}

	documentURL := ""
	if certificate.DocumentURL != nil {
		documentURL = *certificate.DocumentURL
	} else {
		pdf, err := s.renderPDF(ctx, certificate)
		if err != nil {
			return "", err
		}
		if documentURL, err = s.archive(ctx, certificate, pdf); err != nil {
			return "", err
		}
	}
	return s.storage.SignedURL(ctx, documentURL, signedLinkTTL)
}

// VerifyByNumber is the public check. A non-empty hash must also match.
// Unknown certificates are reported as invalid rather than as errors.
func (s *CertificateService) VerifyByNumber(ctx context.Context, number, hash string) (*models.CertificateVerification, error) {
	number = strings.ToUpper(strings.TrimSpace(number))
	if number == "" {
		return nil, apperr.NewValidation("certificate_number", "is required")
	}
	certificate, err := s.store.GetByNumber(ctx, number)
	if errors.Is(err, pgx.ErrNoRows) {
		return &models.CertificateVerification{Valid: false}, nil
	}
	if err != nil {
		return nil, err
	}

	hash = strings.ToLower(strings.TrimSpace(hash))
	if hash != "" && subtle.ConstantTimeCompare([]byte(hash), []byte(certificate.VerificationHash)) != 1 {
		return &models.CertificateVerification{Valid: false, CertificateNumber: number}, nil
	}
	return s.verification(ctx, certificate)
}

func (s *CertificateService) VerifyByHash(ctx context.Context, hash string) (*models.CertificateVerification, error) {
	hash = strings.ToLower(strings.TrimSpace(hash))
	if hash == "" {
		return nil, apperr.NewValidation("hash", "is required")
	}
	certificate, err := s.store.GetByHash(ctx, hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return &models.CertificateVerification{Valid: false}, nil
	}
	if err != nil {
		return nil, err
	}
	return s.verification(ctx, certificate)
}

func (s *CertificateService) verification(ctx context.Context, certificate *models.Certificate) (*models.CertificateVerification, error) {
	doc, err := s.document(ctx, certificate)
	if err != nil {
		return nil, err
	}
	issueDate := certificate.IssueDate
	return &models.CertificateVerification{
		Valid:             true,
		CertificateNumber: certificate.CertificateNumber,
		Recipient:         doc.RecipientName,
		Program:           doc.ProgramTitle,
		Coach:             doc.CoachName,
		FinalGrade:        certificate.CompletionDetails.FinalGrade,
		IssueDate:         &issueDate,
	}, nil
}
