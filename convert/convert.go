// Package convert defines the conversion contract between wallet-specific
// front-ends and back-ends and the canonical interchange model. Concrete
// wallet adapters live outside this module; what lives here is the
// discipline they must follow: required data becomes typed fields,
// wallet-specific data becomes attachments on the most specific entity,
// the original source file is preserved once at the root, and any
// condition that would drop key or seed material is surfaced as a
// distinguished asset-risk issue that cannot be silently swallowed.
//
// The pipeline per wallet is one-directional: decrypted source, classified
// fields, typed entities plus attachments, interchange root. Helpers here
// collect issues and keep going; only asset risk is treated as fatal by
// callers that honor the contract. Front-ends must hand over already
// decrypted data, and no step may consult the network.
package convert

import (
	"fmt"
	"strings"

	"zewif.dev/zewif/envelope"
	"zewif.dev/zewif/zewif"
)

// Severity ranks a reported issue.
type Severity int

const (
	// SeverityAdvisory flags contract deviations that lose nothing, such
	// as an attachment without a conformsTo locator.
	SeverityAdvisory Severity = iota
	// SeverityDataLoss flags ordinary data that could not be carried over.
	// Non-fatal: the run continues and the full list is reported at the end.
	SeverityDataLoss
	// SeverityAssetRisk flags key or seed material that would be dropped.
	// Distinguished from ordinary data loss because it can cause
	// irrecoverable loss of funds.
	SeverityAssetRisk
)

func (s Severity) String() string {
	switch s {
	case SeverityAdvisory:
		return "advisory"
	case SeverityDataLoss:
		return "data-loss"
	case SeverityAssetRisk:
		return "ASSET-RISK"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// Issue is one reported condition from a conversion run.
type Issue struct {
	Severity Severity
	Code     string
	// Entity names what the issue is about, e.g. an address or txid.
	Entity  string
	Message string
}

func (i Issue) String() string {
	if i.Entity == "" {
		return fmt.Sprintf("[%s] %s: %s", i.Severity, i.Code, i.Message)
	}
	return fmt.Sprintf("[%s] %s: %s: %s", i.Severity, i.Code, i.Entity, i.Message)
}

// Issues collects every condition reported during a run. Order is report
// order.
type Issues []Issue

// HasAssetRisk reports whether any issue carries the asset-risk severity.
func (is Issues) HasAssetRisk() bool {
	for _, i := range is {
		if i.Severity == SeverityAssetRisk {
			return true
		}
	}
	return false
}

// AssetRisks returns only the asset-risk issues, for emphasized reporting.
func (is Issues) AssetRisks() Issues {
	var out Issues
	for _, i := range is {
		if i.Severity == SeverityAssetRisk {
			out = append(out, i)
		}
	}
	return out
}

func (is Issues) String() string {
	lines := make([]string, len(is))
	for n, i := range is {
		lines[n] = i.String()
	}
	return strings.Join(lines, "\n")
}

// Importer is the front-end interface: one implementation per source
// wallet kind, living outside this module. The source bytes must already
// be decrypted; the returned root must satisfy the classification policy.
// Issues are returned even on success.
type Importer interface {
	ImportWallet(source []byte) (*zewif.Zewif, Issues, error)
}

// Exporter is the back-end interface: one implementation per target
// wallet kind. Exporters read the root through its accessors only and
// report what the target format cannot represent.
type Exporter interface {
	ExportWallet(root *zewif.Zewif) ([]byte, Issues, error)
}

// AttachVendorData stores wallet-specific data as an attachment on the
// most specific applicable entity. An empty conformsTo is permitted but
// reported as an advisory, since it leaves future readers without a
// format description.
func AttachVendorData(entity zewif.Attachable, payload *envelope.Envelope, vendor, conformsTo string, issues Issues) (Issues, error) {
	if _, err := entity.Attachments().Add(payload, vendor, conformsTo); err != nil {
		return issues, err
	}
	if conformsTo == "" {
		issues = append(issues, Issue{
			Severity: SeverityAdvisory,
			Code:     "attachment-without-conforms-to",
			Message:  "attachment from vendor " + vendor + " has no format locator",
		})
	}
	return issues, nil
}

// PreserveSourceFile stores the entire original source file as a single
// attachment on the interchange root. vendor should be a reverse-domain
// identifier of the producing wallet; conformsTo should locate the best
// available format description, or failing that the producer's homepage.
// A root may hold exactly one preserved source file.
func PreserveSourceFile(root *zewif.Zewif, sourceBytes []byte, vendor, conformsTo string, issues Issues) (Issues, error) {
	for _, att := range root.Attachments().List() {
		payload, err := att.Payload()
		if err != nil {
			continue
		}
		if payload.HasType(sourceFileType) {
			return issues, &DuplicateSourceFileError{Vendor: vendor}
		}
	}
	payload := envelope.NewBytes(sourceBytes).WithType(sourceFileType)
	return AttachVendorData(root, payload, vendor, conformsTo, issues)
}

const sourceFileType = "SourceFile"

// SourceFile retrieves the preserved original source file from a root, if
// one was stored.
func SourceFile(root *zewif.Zewif) ([]byte, bool, error) {
	for _, att := range root.Attachments().List() {
		payload, err := att.Payload()
		if err != nil {
			return nil, false, err
		}
		if !payload.HasType(sourceFileType) {
			continue
		}
		b, err := envelope.ExtractBytes(payload.Subject())
		if err != nil {
			return nil, false, err
		}
		return b, true, nil
	}
	return nil, false, nil
}

// DuplicateSourceFileError reports a second PreserveSourceFile call on the
// same root.
type DuplicateSourceFileError struct {
	Vendor string
}

func (e *DuplicateSourceFileError) Error() string {
	return "convert: root already holds a preserved source file (vendor " + e.Vendor + ")"
}

// ReportOrphanKeyMaterial records that key or seed material from the
// source could not be placed anywhere in the interchange root. The issue
// carries the asset-risk severity; callers that honor the contract must
// surface it to the end user with emphasis and never merely log it.
func ReportOrphanKeyMaterial(issues Issues, entity, detail string) Issues {
	return append(issues, Issue{
		Severity: SeverityAssetRisk,
		Code:     "orphan-key-material",
		Entity:   entity,
		Message:  detail,
	})
}

// ReportDataLoss records ordinary non-asset data the conversion could not
// carry. Non-fatal: processing continues.
func ReportDataLoss(issues Issues, entity, detail string) Issues {
	return append(issues, Issue{
		Severity: SeverityDataLoss,
		Code:     "data-loss",
		Entity:   entity,
		Message:  detail,
	})
}

// GuardKeyMaterial verifies after an import that every wallet claiming
// seed material and every address claiming spending keys still carries
// them, appending asset-risk issues for anything missing. It is a final
// backstop for front-ends assembling roots by hand.
func GuardKeyMaterial(root *zewif.Zewif, issues Issues) Issues {
	for _, w := range root.Wallets() {
		for _, acct := range w.Accounts() {
			for _, addr := range acct.Addresses() {
				issues = guardAddress(addr, issues)
			}
		}
	}
	return issues
}

func guardAddress(addr *zewif.Address, issues Issues) Issues {
	if t, ok := addr.AsTransparent(); ok {
		if auth, ok := t.SpendAuthority(); ok && !auth.IsDerived() {
			if _, ok := auth.Key(); !ok {
				issues = ReportOrphanKeyMaterial(issues, t.Value(), "spend authority claims a key but carries none")
			}
		}
	}
	return issues
}
