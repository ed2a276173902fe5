package vocabulary

import "sort"

// Curated doctype associations observed in standard ERPNext deployments.
// The schema resolver appends these to whatever the live field scan
// finds, so core business relationships survive schema fetch failures
// and stripped-down customizations.
var knownAssociations = map[string][]string{
	"Customer":       {"Sales Order", "Sales Invoice", "Quotation", "Opportunity"},
	"Supplier":       {"Purchase Order", "Purchase Invoice", "Request for Quotation"},
	"Item":           {"Sales Order Item", "Purchase Order Item", "Stock Entry"},
	"Project":        {"Task", "Timesheet", "Project Update"},
	"Employee":       {"Task", "Timesheet", "Leave Application", "Expense Claim"},
	"Sales Order":    {"Sales Invoice", "Delivery Note", "Sales Order Item"},
	"Purchase Order": {"Purchase Invoice", "Purchase Receipt", "Purchase Order Item"},
}

// AssociationsFor returns the curated association targets for a doctype,
// in their curated order. The returned slice is a copy; callers may
// modify it. Doctypes without curated associations return nil.
func AssociationsFor(doctype string) []string {
	targets, ok := knownAssociations[doctype]
	if !ok {
		return nil
	}
	out := make([]string, len(targets))
	copy(out, targets)
	return out
}

// AssociatedDoctypes returns the doctypes that have curated associations,
// sorted for deterministic iteration.
func AssociatedDoctypes() []string {
	doctypes := make([]string, 0, len(knownAssociations))
	for doctype := range knownAssociations {
		doctypes = append(doctypes, doctype)
	}
	sort.Strings(doctypes)
	return doctypes
}
