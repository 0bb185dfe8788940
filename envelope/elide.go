package envelope

// ElideRemoving returns an envelope in which every subtree whose digest is
// in targets has been replaced by a digest-only placeholder. Because an
// elided placeholder carries the digest of what it replaces, eliding never
// changes the digest of any ancestor: Digest(ElideRemoving(e, ...)) equals
// Digest(e) for any target set.
func (e *Envelope) ElideRemoving(targets ...Digest) *Envelope {
	set := make(map[Digest]bool, len(targets))
	for _, t := range targets {
		set[t] = true
	}
	return e.elide(set)
}

// ElideRemovingPredicates returns an envelope in which every assertion
// whose predicate equals one of preds has been replaced by a digest-only
// placeholder. Ancestor digests are unchanged.
func (e *Envelope) ElideRemovingPredicates(preds ...*Envelope) *Envelope {
	set := make(map[Digest]bool, len(preds))
	for _, p := range preds {
		set[p.digest] = true
	}
	return e.elideAssertions(set)
}

func (e *Envelope) elide(targets map[Digest]bool) *Envelope {
	if targets[e.digest] {
		return newElided(e.digest)
	}
	switch e.kind {
	case caseLeaf, caseElided, caseCompressed:
		return e
	case caseWrapped:
		inner := e.inner.elide(targets)
		if inner == e.inner {
			return e
		}
		return inner.Wrap()
	case caseNode:
		subject := e.subject.elide(targets)
		changed := subject != e.subject
		assertions := make([]Assertion, len(e.assertions))
		for i, a := range e.assertions {
			if a.IsElided() {
				assertions[i] = a
				continue
			}
			if targets[a.digest] {
				assertions[i] = Assertion{digest: a.digest}
				changed = true
				continue
			}
			pred := a.pred.elide(targets)
			obj := a.obj.elide(targets)
			if pred != a.pred || obj != a.obj {
				// Digests of elided parts are preserved, so the assertion
				// digest recomputes to the same value.
				assertions[i] = Assertion{pred: pred, obj: obj, digest: a.digest}
				changed = true
				continue
			}
			assertions[i] = a
		}
		if !changed {
			return e
		}
		n := &Envelope{kind: caseNode, subject: subject, assertions: assertions}
		n.digest = e.digest
		return n
	default:
		return e
	}
}

func (e *Envelope) elideAssertions(predDigests map[Digest]bool) *Envelope {
	switch e.kind {
	case caseWrapped:
		inner := e.inner.elideAssertions(predDigests)
		if inner == e.inner {
			return e
		}
		return inner.Wrap()
	case caseNode:
		subject := e.subject.elideAssertions(predDigests)
		changed := subject != e.subject
		assertions := make([]Assertion, len(e.assertions))
		for i, a := range e.assertions {
			if a.IsElided() {
				assertions[i] = a
				continue
			}
			if predDigests[a.pred.digest] {
				assertions[i] = Assertion{digest: a.digest}
				changed = true
				continue
			}
			obj := a.obj.elideAssertions(predDigests)
			if obj != a.obj {
				assertions[i] = Assertion{pred: a.pred, obj: obj, digest: a.digest}
				changed = true
				continue
			}
			assertions[i] = a
		}
		if !changed {
			return e
		}
		n := &Envelope{kind: caseNode, subject: subject, assertions: assertions}
		n.digest = e.digest
		return n
	default:
		return e
	}
}
