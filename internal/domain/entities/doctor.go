package entities

// VerificationStatus represents a doctor's registry verification state
type VerificationStatus string

const (
	VerificationStatusPending  VerificationStatus = "pending"
	VerificationStatusVerified VerificationStatus = "verified"
	VerificationStatusRejected VerificationStatus = "rejected"
)

// Doctor is a platform-registered doctor as seen by the dispatch engine.
// Eligibility for matching requires verified status, an active flag, a known
// location, and no unresolved emergency assignment.
type Doctor struct {
	ID                 string             `json:"id"`
	FullName           string             `json:"full_name"`
	Specialty          string             `json:"specialty"`
	Phone              string             `json:"phone"`
	Email              string             `json:"email"`
	Location           *Location          `json:"location,omitempty"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	IsActive           bool               `json:"is_active"`
}

// GovernmentDoctor is a registry-backed fallback doctor. The pool has no
// location semantics; the first active entry is used deterministically.
type GovernmentDoctor struct {
	ID        string `json:"id"`
	FullName  string `json:"full_name"`
	Specialty string `json:"specialty"`
	Phone     string `json:"phone"`
	IsActive  bool   `json:"is_active"`
}

// DoctorSummary is the projection embedded in emergency record reads
type DoctorSummary struct {
	ID        string `json:"id"`
	FullName  string `json:"full_name"`
	Specialty string `json:"specialty"`
	Phone     string `json:"phone"`
}
