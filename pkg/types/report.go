package types

import "time"

type ReportStatus string

const (
	ReportStatusPending  ReportStatus = "pending"
	ReportStatusVerified ReportStatus = "verified"
	ReportStatusRejected ReportStatus = "rejected"
)

func (s ReportStatus) Valid() bool {
	switch s {
	case ReportStatusPending, ReportStatusVerified, ReportStatusRejected:
		return true
	}
	return false
}

// Report is the persisted shape of a billboard violation report. Columns are
// flat; the nested API representation lives in ReportView.
type Report struct {
	ID                string       `db:"id"`
	ReporterID        string       `db:"reporter_id"`
	Address           string       `db:"address"`
	Lat               *float64     `db:"lat"`
	Lng               *float64     `db:"lng"`
	BillboardSize     string       `db:"billboard_size"`
	BillboardType     string       `db:"billboard_type"`
	BillboardContent  *string      `db:"billboard_content"`
	ImageURL          *string      `db:"image_url"`
	ImageDeleteHandle *string      `db:"image_delete_handle"`
	DateObserved      time.Time    `db:"date_observed"`
	DateReported      time.Time    `db:"date_reported"`
	Status            ReportStatus `db:"status"`
	VerificationNotes *string      `db:"verification_notes"`
	VerifiedBy        *string      `db:"verified_by"`
}

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Location struct {
	Address     string       `json:"address"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

type BillboardDetails struct {
	Size    string `json:"size"`
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
}

// ReporterView is the expanded reporter reference on a report.
type ReporterView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// VerifierView is the expanded verifiedBy reference. Email is deliberately
// omitted for reviewers.
type VerifierView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ReportView is the API representation of a report. The image delete handle
// is internal bookkeeping and never appears here.
type ReportView struct {
	ID                string           `json:"id"`
	Reporter          ReporterView     `json:"reporter"`
	Location          Location         `json:"location"`
	BillboardDetails  BillboardDetails `json:"billboardDetails"`
	ImageURL          string           `json:"imageUrl,omitempty"`
	DateObserved      time.Time        `json:"dateObserved"`
	DateReported      time.Time        `json:"dateReported"`
	Status            ReportStatus     `json:"status"`
	VerificationNotes string           `json:"verificationNotes,omitempty"`
	VerifiedBy        *VerifierView    `json:"verifiedBy,omitempty"`
}
