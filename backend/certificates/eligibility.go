// Package certificates derives when the "send certificates" action is
// offered for a batch and guards against double-sends with a per-batch
// in-flight registry.
package certificates

// Recipient is one (id, name, email) entry in the issued/not-issued lists.
type Recipient struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Stats is the per-batch certificate breakdown.
type Stats struct {
	BatchID        uint        `json:"batchId"`
	TotalUsers     int         `json:"totalUsers"`
	IssuedCount    int         `json:"issuedCount"`
	NotIssuedCount int         `json:"notIssuedCount"`
	Issued         []Recipient `json:"issued"`
	NotIssued      []Recipient `json:"notIssued"`
}

// Mode is the state of the send-certificate affordance.
type Mode string

const (
	ModeNone      Mode = "none"
	ModeSend      Mode = "send"
	ModeSending   Mode = "sending"
	ModeAllIssued Mode = "allIssued"
)

// BatchInfo is the slice of batch state eligibility depends on.
type BatchInfo struct {
	ID              uint
	CourseCompleted bool
	UserCount       int
}

// Affordance is the derived UI state for one batch's send action.
type Affordance struct {
	Visible bool `json:"visible"`
	Mode    Mode `json:"mode"`
}

// DeriveAffordance computes the affordance from current state. It is total
// and side-effect-free: nil stats simply means not fetched yet. The sending
// flag is per batch (from SendRegistry), so one batch's send in progress
// never affects another's affordance.
func DeriveAffordance(batch BatchInfo, stats *Stats, sending bool) Affordance {
	if !batch.CourseCompleted || batch.UserCount == 0 || stats == nil {
		return Affordance{Visible: false, Mode: ModeNone}
	}

	switch {
	case stats.IssuedCount == stats.TotalUsers && stats.TotalUsers > 0:
		return Affordance{Visible: true, Mode: ModeAllIssued}
	case sending:
		return Affordance{Visible: true, Mode: ModeSending}
	default:
		return Affordance{Visible: true, Mode: ModeSend}
	}
}
