package models

import "time"

type Certificate struct {
	ID                int64             `json:"id"`
	CertificateNumber string            `json:"certificate_number"`
	LearnerID         int64             `json:"learner_id"`
	EnrollmentID      int64             `json:"enrollment_id"`
	ProgramID         int64             `json:"program_id"`
	CoachID           int64             `json:"coach_id"`
	CompletionDetails CompletionDetails `json:"completion_details"`
	IssueDate         time.Time         `json:"issue_date"`
	DownloadCount     int               `json:"download_count"`
	VerificationHash  string            `json:"verification_hash"`
	DocumentURL       *string           `json:"document_url,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
}

type CompletionDetails struct {
	TotalSessions        int     `json:"total_sessions"`
	AttendedSessions     int     `json:"attended_sessions"`
	AttendancePercentage float64 `json:"attendance_percentage"`
	FinalGrade           string  `json:"final_grade"`
}

type CertificateEligibility struct {
	EnrollmentID         int64        `json:"enrollment_id"`
	AttendedSessions     int          `json:"attended_sessions"`
	TotalSessions        int          `json:"total_sessions"`
	AttendancePercentage float64      `json:"attendance_percentage"`
	RequiredPercentage   float64      `json:"required_percentage"`
	IsEligible           bool         `json:"is_eligible"`
	ExistingCertificate  *Certificate `json:"existing_certificate,omitempty"`
}

type CertificateVerification struct {
	Valid             bool       `json:"valid"`
	CertificateNumber string     `json:"certificate_number,omitempty"`
	Recipient         string     `json:"recipient,omitempty"`
	Program           string     `json:"program,omitempty"`
	Coach             string     `json:"coach,omitempty"`
	FinalGrade        string     `json:"final_grade,omitempty"`
	IssueDate         *time.Time `json:"issue_date,omitempty"`
}
