package models

// SyncState tracks how far a locally mutated record has propagated to the
// upstream API. Local state is authoritative for the session, so a failed
// push never rolls the record back; the state just stays visible.
type SyncState string

const (
	SyncPending SyncState = "pending"
	SyncSynced  SyncState = "synced"
	SyncFailed  SyncState = "failed"
)

// Client represents a client company record
type Client struct {
	ID          int64  `json:"id"`
	CompanyName string `json:"company_name"`
	Owner       string `json:"owner"`
	Phone       string `json:"phone"`
	Category    string `json:"category"`
	Package     string `json:"package"`
	Deadline    string `json:"deadline"`
	Deposit     string `json:"dp"`
	Paid        string `json:"paid"`
}

// ClientInput is the form payload for creating or updating a client
type ClientInput struct {
	CompanyName string `json:"company_name"`
	Owner       string `json:"owner"`
	Phone       string `json:"phone"`
	Category    string `json:"category"`
	Package     string `json:"package"`
	Deadline    string `json:"deadline"`
	Deposit     string `json:"dp"`
	Paid        string `json:"paid"`
}

// ClientPatch is the partial form payload for PATCH: nil fields are left
// unchanged on the record.
type ClientPatch struct {
	CompanyName *string `json:"company_name"`
	Owner       *string `json:"owner"`
	Phone       *string `json:"phone"`
	Category    *string `json:"category"`
	Package     *string `json:"package"`
	Deadline    *string `json:"deadline"`
	Deposit     *string `json:"dp"`
	Paid        *string `json:"paid"`
}

// Apply copies only the provided fields onto a client record
func (p ClientPatch) Apply(c *Client) {
	if p.CompanyName != nil {
		c.CompanyName = *p.CompanyName
	}
	if p.Owner != nil {
		c.Owner = *p.Owner
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.Category != nil {
		c.Category = *p.Category
	}
	if p.Package != nil {
		c.Package = *p.Package
	}
	if p.Deadline != nil {
		c.Deadline = *p.Deadline
	}
	if p.Deposit != nil {
		c.Deposit = *p.Deposit
	}
	if p.Paid != nil {
		c.Paid = *p.Paid
	}
}

// Apply copies the form payload onto a client record
func (in ClientInput) Apply(c *Client) {
	c.CompanyName = in.CompanyName
	c.Owner = in.Owner
	c.Phone = in.Phone
	c.Category = in.Category
	c.Package = in.Package
	c.Deadline = in.Deadline
	c.Deposit = in.Deposit
	c.Paid = in.Paid
}
