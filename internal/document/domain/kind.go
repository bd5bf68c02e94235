package domain

// Status is a document lifecycle state. The allowed set depends on the Kind.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSent      Status = "sent"
	StatusPaid      Status = "paid"
	StatusOverdue   Status = "overdue"
	StatusCancelled Status = "cancelled"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusExpired   Status = "expired"
)

// Kind describes where a document type lives and whether issuing it moves stock.
type Kind struct {
	Name         string
	Table        string
	ItemTable    string
	ParentColumn string
	// TermColumn is due_date for invoices and expiry_date for quotations.
	TermColumn string
	Statuses   []Status
	MovesStock bool
}

var (
	KindInvoice = Kind{
		Name:         "invoice",
		Table:        "invoices",
		ItemTable:    "invoice_items",
		ParentColumn: "invoice_id",
		TermColumn:   "due_date",
		Statuses:     []Status{StatusDraft, StatusSent, StatusPaid, StatusOverdue, StatusCancelled},
		MovesStock:   true,
	}
	KindQuotation = Kind{
		Name:         "quotation",
		Table:        "quotations",
		ItemTable:    "quotation_items",
		ParentColumn: "quotation_id",
		TermColumn:   "expiry_date",
		Statuses:     []Status{StatusDraft, StatusSent, StatusAccepted, StatusRejected, StatusExpired},
	}
)

func (k Kind) Allows(s Status) bool {
	for _, allowed := range k.Statuses {
		if allowed == s {
			return true
		}
	}
	return false
}
