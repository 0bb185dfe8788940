// Package redact implements parsing and application of redaction policies:
// small text files naming the predicates to elide and the attachment
// vendors to strip before an interchange tree is shared. Application uses
// elision only, so every digest in the tree survives redaction and the
// redacted copy still verifies against the original's digest.
package redact

import (
	"bufio"
	"bytes"
	"errors"
	"strings"

	"zewif.dev/zewif/envelope"
)

// Policy is a parsed redaction policy.
type Policy struct {
	Meta    map[string]string
	Elide   []string // predicate names
	Vendors []string // attachment vendors to strip
}

const (
	preamble  = "-----BEGIN ZEWIF REDACTION POLICY-----"
	postamble = "-----END ZEWIF REDACTION POLICY-----"
)

// Parse parses a redaction policy from bytes. The format is deliberately
// rigid: policies gate what leaves a wallet, so anything ambiguous is
// rejected rather than guessed at.
func Parse(data []byte) (*Policy, error) {
	if bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) {
		return nil, errors.New("BOM not allowed")
	}
	if bytes.Contains(data, []byte("\r")) {
		return nil, errors.New("CR line endings not allowed")
	}
	for _, line := range bytes.Split(data, []byte("\n")) {
		if len(line) > 0 && (line[len(line)-1] == ' ' || line[len(line)-1] == '\t') {
			return nil, errors.New("trailing whitespace forbidden")
		}
	}

	if !bytes.HasPrefix(data, []byte(preamble)) {
		return nil, errors.New("missing redaction policy preamble")
	}
	if !bytes.HasSuffix(bytes.TrimSpace(data), []byte(postamble)) {
		return nil, errors.New("missing redaction policy postamble")
	}

	sections := map[string]bool{"META": true, "PREDICATES": true, "VENDORS": true}
	reader := bufio.NewReader(bytes.NewReader(data))
	var currSection string
	meta := make(map[string]string)
	var elide []string
	var vendors []string
	for {
		line, err := reader.ReadString('\n')
		if err != nil && err.Error() != "EOF" {
			return nil, err
		}
		line = strings.TrimSpace(line)
		if sections[line] {
			currSection = line
			continue
		}
		switch currSection {
		case "META":
			if strings.Contains(line, ": ") {
				kv := strings.SplitN(line, ": ", 2)
				meta[kv[0]] = kv[1]
			}
		case "PREDICATES":
			if strings.HasPrefix(line, "Elide: ") {
				name := strings.TrimPrefix(line, "Elide: ")
				if name == "" || strings.ContainsAny(name, " \t") {
					return nil, errors.New("invalid predicate name: " + name)
				}
				elide = append(elide, name)
			}
		case "VENDORS":
			if strings.HasPrefix(line, "Strip: ") {
				vendor := strings.TrimPrefix(line, "Strip: ")
				if vendor == "" || strings.ContainsAny(vendor, " \t") {
					return nil, errors.New("invalid vendor: " + vendor)
				}
				vendors = append(vendors, vendor)
			}
		}
		if err != nil {
			break
		}
	}
	if len(elide) == 0 && len(vendors) == 0 {
		return nil, errors.New("policy redacts nothing")
	}
	return &Policy{Meta: meta, Elide: elide, Vendors: vendors}, nil
}

// Apply returns a redacted copy of the tree. The result carries the same
// digest as the input.
func (p *Policy) Apply(e *envelope.Envelope) (*envelope.Envelope, error) {
	out := e
	if len(p.Elide) > 0 {
		preds := make([]*envelope.Envelope, len(p.Elide))
		for i, name := range p.Elide {
			preds[i] = envelope.NewText(name)
		}
		out = out.ElideRemovingPredicates(preds...)
	}
	if len(p.Vendors) > 0 {
		strip := make(map[string]bool, len(p.Vendors))
		for _, v := range p.Vendors {
			strip[v] = true
		}
		var targets []envelope.Digest
		if err := collectVendorAttachments(out, strip, &targets); err != nil {
			return nil, err
		}
		if len(targets) > 0 {
			out = out.ElideRemoving(targets...)
		}
	}
	return out, nil
}

// collectVendorAttachments walks the tree and records the digests of every
// attachment assertion whose vendor is in strip.
func collectVendorAttachments(e *envelope.Envelope, strip map[string]bool, targets *[]envelope.Digest) error {
	switch {
	case e.IsWrapped():
		inner, err := e.Unwrap()
		if err != nil {
			return err
		}
		return collectVendorAttachments(inner, strip, targets)
	case e.HasAssertions():
		atts, err := e.Attachments()
		if err != nil {
			return err
		}
		for _, att := range atts {
			vendor, err := att.Vendor()
			if err != nil {
				return err
			}
			if strip[vendor] {
				*targets = append(*targets, att.Digest())
			}
		}
		if err := collectVendorAttachments(e.Subject(), strip, targets); err != nil {
			return err
		}
		for _, a := range e.Assertions() {
			if a.IsElided() {
				continue
			}
			if err := collectVendorAttachments(a.Object(), strip, targets); err != nil {
				return err
			}
		}
	}
	return nil
}
