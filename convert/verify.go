package convert

import (
	"fmt"

	"zewif.dev/zewif/zewif"
)

// Mode selects how aggressively verification rejects ambiguity.
//
// Strict mode prefers explicit failure over silent acceptance: any finding
// fails the run. Permissive mode reports findings as issues and lets the
// caller decide, except for structural defects that would not survive an
// encode/decode cycle, which fail in both modes.
type Mode int

const (
	Permissive Mode = iota
	Strict
)

// VerifyRoot checks the cross-entity consistency of an assembled root
// before it is handed to a back-end: indexes must be unique within their
// parent, every transaction an account references must be present, and an
// address relying on seed derivation needs seed material to derive from.
func VerifyRoot(root *zewif.Zewif, mode Mode, issues Issues) (Issues, error) {
	start := len(issues)

	seenWallets := map[uint32]bool{}
	for _, w := range root.Wallets() {
		if seenWallets[w.Index()] {
			return issues, fmt.Errorf("convert: root %s: duplicate wallet index %d", root.ID(), w.Index())
		}
		seenWallets[w.Index()] = true

		_, hasSeed := w.SeedMaterial()

		seenAccounts := map[uint32]bool{}
		for _, acct := range w.Accounts() {
			if seenAccounts[acct.Index()] {
				return issues, fmt.Errorf("convert: wallet %s: duplicate account index %d", w.ID(), acct.Index())
			}
			seenAccounts[acct.Index()] = true

			seenAddrs := map[uint32]bool{}
			for _, addr := range acct.Addresses() {
				if seenAddrs[addr.Index()] {
					return issues, fmt.Errorf("convert: account %q: duplicate address index %d", acct.Name(), addr.Index())
				}
				seenAddrs[addr.Index()] = true

				if t, ok := addr.AsTransparent(); ok {
					if auth, ok := t.SpendAuthority(); ok && auth.IsDerived() && !hasSeed {
						issues = ReportOrphanKeyMaterial(issues, t.Value(),
							"spend authority is seed-derived but the wallet carries no seed material")
					}
				}
			}

			for _, txid := range acct.RelevantTxIds() {
				if _, ok := root.Transaction(txid); !ok {
					issues = ReportDataLoss(issues, txid.String(),
						fmt.Sprintf("account %q references a transaction the root does not carry", acct.Name()))
				}
			}
		}
	}

	if mode == Strict && len(issues) > start {
		return issues, fmt.Errorf("convert: strict verification failed:\n%s", Issues(issues[start:]))
	}
	return issues, nil
}
