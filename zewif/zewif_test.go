package zewif

import (
	"bytes"
	"testing"

	"zewif.dev/zewif/envelope"
)

func rb(n int, fill byte) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = fill
	}
	return b
}

func mustTxId(t *testing.T, fill byte) TxId {
	t.Helper()
	txid, err := TxIdFromBytes(rb(32, fill))
	if err != nil {
		t.Fatalf("TxIdFromBytes: %v", err)
	}
	return txid
}

func mustAmount(t *testing.T, zat int64) Amount {
	t.Helper()
	a, err := NewAmount(zat)
	if err != nil {
		t.Fatalf("NewAmount(%d): %v", zat, err)
	}
	return a
}

func sampleWitness(t *testing.T) IncrementalWitness {
	t.Helper()
	w, err := NewIncrementalWitness(rb(32, 0x07), 42, [][]byte{rb(32, 0x08), rb(32, 0x09)}, rb(32, 0x0a))
	if err != nil {
		t.Fatalf("NewIncrementalWitness: %v", err)
	}
	w.SetAnchorFrontier(100, [][]byte{rb(32, 0x0b)})
	return w
}

func sampleTransaction(t *testing.T, txid TxId) *Transaction {
	t.Helper()
	tx := NewTransaction(txid)
	tx.SetRaw([]byte{0x04, 0x00, 0x00, 0x80, 0x85, 0x20, 0x2f, 0x89})
	tx.SetMinedHeight(2_400_000)
	tx.SetTimestamp(1_700_000_000)
	tx.SetStatus(StatusConfirmed)
	hash, err := BlockHashFromBytes(rb(32, 0x01))
	if err != nil {
		t.Fatalf("BlockHashFromBytes: %v", err)
	}
	tx.SetBlockHash(hash)

	tx.AddInput(NewTxIn(0, NewTxOutPoint(mustTxId(t, 0xbb), 1), []byte{0x47, 0x30}, 0xffffffff))
	tx.AddOutput(NewTxOut(0, mustAmount(t, 50_000_000), []byte{0x76, 0xa9}))

	spend, err := NewSaplingSpendDescription(0, rb(32, 0x04), rb(192, 0x05))
	if err != nil {
		t.Fatalf("NewSaplingSpendDescription: %v", err)
	}
	spend.SetValue(mustAmount(t, -25_000_000))
	spend.SetAnchorHeight(2_399_900)
	tx.AddSaplingSpend(spend)

	out, err := NewSaplingOutputDescription(0, rb(32, 0x05), rb(32, 0x06), rb(580, 0x0c))
	if err != nil {
		t.Fatalf("NewSaplingOutputDescription: %v", err)
	}
	out.SetMemo([]byte("thanks"))
	out.SetTreePosition(77)
	out.SetWitness(sampleWitness(t))
	tx.AddSaplingOutput(out)

	action, err := NewOrchardActionDescription(0, rb(32, 0x0d), rb(32, 0x0e), rb(32, 0x0f), rb(32, 0x10), rb(580, 0x11))
	if err != nil {
		t.Fatalf("NewOrchardActionDescription: %v", err)
	}
	action.SetZKProof(rb(192, 0x12))
	action.SetTreePosition(9)
	tx.AddOrchardAction(action)

	js, err := NewJoinSplitDescription(0, rb(32, 0x13),
		[2][]byte{rb(32, 0x14), rb(32, 0x15)},
		[2][]byte{rb(32, 0x16), rb(32, 0x17)},
		rb(296, 0x18))
	if err != nil {
		t.Fatalf("NewJoinSplitDescription: %v", err)
	}
	tx.AddSproutJoinSplit(js)
	return tx
}

func sampleZewif(t *testing.T) *Zewif {
	t.Helper()
	z := NewZewif(2_500_000)

	w := NewWallet(0, NetworkMain)
	seed, err := NewSeedSeedMaterial(rb(32, 0x20))
	if err != nil {
		t.Fatalf("NewSeedSeedMaterial: %v", err)
	}
	w.SetSeedMaterial(seed)

	acct := NewAccount(0, "default")
	acct.SetBirthdayHeight(1_687_104)
	blk, err := BlockHashFromBytes(rb(32, 0x21))
	if err != nil {
		t.Fatalf("BlockHashFromBytes: %v", err)
	}
	acct.SetBirthdayBlock(blk)
	acct.SetZip32AccountId(0)

	ta := NewTransparentAddress("t1VJL2dPUyXK74pFFYYfBiY5dYHpzzVFXUW")
	key, err := NewSaplingSpendingKey(rb(169, 0x22))
	if err != nil {
		t.Fatalf("NewSaplingSpendingKey: %v", err)
	}
	ta.SetSpendAuthority(SpendAuthorityFromKey(key))
	info, err := NewDerivationInfo(1, 5)
	if err != nil {
		t.Fatalf("NewDerivationInfo: %v", err)
	}
	ta.SetDerivationInfo(info)
	addr0, err := NewAddress(0, ta)
	if err != nil {
		t.Fatalf("NewAddress: %v", err)
	}
	addr0.SetName("change")
	addr0.SetPurpose("internal change")
	acct.AddAddress(addr0)

	sa := NewShieldedAddress("zs1z7rejlpsa98s2rrrfkwmaxu53e4ue0ulcrw0h4x5g8jl04tak0d3mm47vdtahatqrlkngh9sly")
	sa.SetIncomingViewingKey(rb(64, 0x23))
	sa.SetSpendingKey(key)
	sa.SetDiversifier(rb(11, 0x24))
	sa.SetHDDerivationPath("m/32'/133'/0'")
	addr1, err := NewAddress(1, sa)
	if err != nil {
		t.Fatalf("NewAddress: %v", err)
	}
	acct.AddAddress(addr1)

	ua := NewUnifiedAddress("u1l8xunezsvhq8fgzfl796uhjgpzsqmhk3wpnv2fgcxahhu6e2qnxy")
	if err := ua.SetDiversifierIndex(rb(11, 0x25)); err != nil {
		t.Fatalf("SetDiversifierIndex: %v", err)
	}
	ua.AddReceiverType(ReceiverSapling)
	ua.AddReceiverType(ReceiverP2PKH)
	ua.AddComponentAddress(ReceiverP2PKH, "t1VJL2dPUyXK74pFFYYfBiY5dYHpzzVFXUW")
	ua.SetTransparentComponent(NewTransparentAddress("t1VJL2dPUyXK74pFFYYfBiY5dYHpzzVFXUW"))
	ua.SetSaplingComponent(NewShieldedAddress("zs1z7rejlpsa98s2rrrfkwmaxu53e4ue0ulcrw0h4x5g8jl04tak0d3mm47vdtahatqrlkngh9sly"))
	ua.SetOrchardComponentData(rb(43, 0x26))
	ua.SetHDDerivationPath("m/44'/133'/0'/0/3")
	addr2, err := NewAddress(2, ua)
	if err != nil {
		t.Fatalf("NewAddress: %v", err)
	}
	acct.AddAddress(addr2)

	txidA := mustTxId(t, 0xaa)
	txidB := mustTxId(t, 0x99)
	acct.AddRelevantTxId(txidA)
	acct.AddRelevantTxId(txidB)

	sent, err := NewSaplingSentOutput(
		"zs1z7rejlpsa98s2rrrfkwmaxu53e4ue0ulcrw0h4x5g8jl04tak0d3mm47vdtahatqrlkngh9sly",
		rb(11, 0x27), rb(32, 0x28), mustAmount(t, 10_000), rb(32, 0x29))
	if err != nil {
		t.Fatalf("NewSaplingSentOutput: %v", err)
	}
	sent.SetMemo([]byte("coffee"))
	acct.AddSaplingSentOutput(sent)

	osent, err := NewOrchardSentOutput(
		"u1l8xunezsvhq8fgzfl796uhjgpzsqmhk3wpnv2fgcxahhu6e2qnxy",
		rb(11, 0x2a), rb(32, 0x2b), mustAmount(t, 20_000), rb(32, 0x2c), rb(32, 0x2d), rb(32, 0x2e))
	if err != nil {
		t.Fatalf("NewOrchardSentOutput: %v", err)
	}
	acct.AddOrchardSentOutput(osent)

	if _, err := acct.Attachments().Add(envelope.NewBytes([]byte("vendor state")), "com.example.wallet", "com.example.wallet.v3"); err != nil {
		t.Fatalf("Attachments.Add: %v", err)
	}

	w.AddAccount(acct)
	z.AddWallet(w)
	if err := z.AddTransaction(sampleTransaction(t, txidA)); err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}
	if err := z.AddTransaction(sampleTransaction(t, txidB)); err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}
	return z
}

func TestRoundTripFullTree(t *testing.T) {
	z := sampleZewif(t)
	dec, err := Decode(z.Encode())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	// Digest equality over the re-encoded tree covers every field at once.
	if dec.Envelope().Digest() != z.Envelope().Digest() {
		t.Fatalf("round trip changed the tree digest")
	}
	if dec.ID() != z.ID() {
		t.Fatalf("id: got %s want %s", dec.ID(), z.ID())
	}
	if dec.ExportHeight() != 2_500_000 {
		t.Fatalf("export height: %d", dec.ExportHeight())
	}
}

func TestRoundTripWalletAndAccount(t *testing.T) {
	z := sampleZewif(t)
	dec, err := Decode(z.Encode())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	wallets := dec.Wallets()
	if len(wallets) != 1 {
		t.Fatalf("got %d wallets", len(wallets))
	}
	w := wallets[0]
	if w.Network() != NetworkMain {
		t.Fatalf("network: %s", w.Network())
	}
	seed, ok := w.SeedMaterial()
	if !ok {
		t.Fatalf("seed material lost")
	}
	raw, ok := seed.Seed()
	if !ok || !bytes.Equal(raw, rb(32, 0x20)) {
		t.Fatalf("seed bytes corrupted")
	}
	fp, ok := seed.Fingerprint()
	if !ok || fp != FingerprintSeed(rb(32, 0x20)) {
		t.Fatalf("seed fingerprint mismatch")
	}

	accounts := w.Accounts()
	if len(accounts) != 1 {
		t.Fatalf("got %d accounts", len(accounts))
	}
	acct := accounts[0]
	if acct.Name() != "default" {
		t.Fatalf("account name: %q", acct.Name())
	}
	if h, ok := acct.BirthdayHeight(); !ok || h != 1_687_104 {
		t.Fatalf("birthday height: %d, %v", h, ok)
	}
	if id, ok := acct.Zip32AccountId(); !ok || id != 0 {
		t.Fatalf("zip32 account id: %d, %v", id, ok)
	}

	// Relevant txids come back sorted by txid bytes.
	txids := acct.RelevantTxIds()
	if len(txids) != 2 {
		t.Fatalf("got %d relevant txids", len(txids))
	}
	if !bytes.Equal(txids[0].Bytes(), rb(32, 0x99)) || !bytes.Equal(txids[1].Bytes(), rb(32, 0xaa)) {
		t.Fatalf("relevant txids out of order")
	}

	sents := acct.SaplingSentOutputs()
	if len(sents) != 1 {
		t.Fatalf("got %d sapling sent outputs", len(sents))
	}
	if sents[0].Value() != 10_000 {
		t.Fatalf("sent value: %d", sents[0].Value())
	}
	if memo, ok := sents[0].Memo(); !ok || string(memo) != "coffee" {
		t.Fatalf("sent memo: %q, %v", memo, ok)
	}
	osents := acct.OrchardSentOutputs()
	if len(osents) != 1 {
		t.Fatalf("got %d orchard sent outputs", len(osents))
	}
	if !bytes.Equal(osents[0].Rho(), rb(32, 0x2c)) || !bytes.Equal(osents[0].Psi(), rb(32, 0x2d)) {
		t.Fatalf("orchard sent rho/psi corrupted")
	}

	atts := acct.Attachments().List()
	if len(atts) != 1 {
		t.Fatalf("got %d attachments", len(atts))
	}
	vendor, err := atts[0].Vendor()
	if err != nil || vendor != "com.example.wallet" {
		t.Fatalf("attachment vendor: %q, %v", vendor, err)
	}
}

func TestRoundTripAddresses(t *testing.T) {
	z := sampleZewif(t)
	dec, err := Decode(z.Encode())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	addrs := dec.Wallets()[0].Accounts()[0].Addresses()
	if len(addrs) != 3 {
		t.Fatalf("got %d addresses", len(addrs))
	}

	ta, ok := addrs[0].AsTransparent()
	if !ok {
		t.Fatalf("address 0 is not transparent")
	}
	if addrs[0].Name() != "change" {
		t.Fatalf("address name: %q", addrs[0].Name())
	}
	if purpose, ok := addrs[0].Purpose(); !ok || purpose != "internal change" {
		t.Fatalf("address purpose: %q, %v", purpose, ok)
	}
	auth, ok := ta.SpendAuthority()
	if !ok || auth.IsDerived() {
		t.Fatalf("spend authority lost or wrong mode")
	}
	key, ok := auth.Key()
	if !ok {
		t.Fatalf("spend authority key lost")
	}
	sk, ok := key.Sapling()
	if !ok || !bytes.Equal(sk, rb(169, 0x22)) {
		t.Fatalf("spending key corrupted")
	}
	info, ok := ta.DerivationInfo()
	if !ok || info.Change() != 1 || info.AddressIndex() != 5 {
		t.Fatalf("derivation info: %+v, %v", info, ok)
	}

	sa, ok := addrs[1].AsShielded()
	if !ok {
		t.Fatalf("address 1 is not shielded")
	}
	if ivk, ok := sa.IncomingViewingKey(); !ok || !bytes.Equal(ivk, rb(64, 0x23)) {
		t.Fatalf("incoming viewing key corrupted")
	}
	if d, ok := sa.Diversifier(); !ok || !bytes.Equal(d, rb(11, 0x24)) {
		t.Fatalf("diversifier corrupted")
	}
	if path, ok := sa.HDDerivationPath(); !ok || path != "m/32'/133'/0'" {
		t.Fatalf("hd path: %q, %v", path, ok)
	}

	ua, ok := addrs[2].AsUnified()
	if !ok {
		t.Fatalf("address 2 is not unified")
	}
	if idx, ok := ua.DiversifierIndex(); !ok || !bytes.Equal(idx, rb(11, 0x25)) {
		t.Fatalf("diversifier index corrupted")
	}
	types := ua.ReceiverTypes()
	if len(types) != 2 {
		t.Fatalf("got %d receiver types", len(types))
	}
	if comp, ok := ua.ComponentAddress(ReceiverP2PKH); !ok || comp == "" {
		t.Fatalf("component address lost")
	}
	if tc, ok := ua.TransparentComponent(); !ok || tc.Value() == "" {
		t.Fatalf("transparent component lost")
	}
	if sc, ok := ua.SaplingComponent(); !ok || sc.Value() == "" {
		t.Fatalf("sapling component lost")
	}
	if od, ok := ua.OrchardComponentData(); !ok || !bytes.Equal(od, rb(43, 0x26)) {
		t.Fatalf("orchard component data corrupted")
	}
}

func TestRoundTripTransaction(t *testing.T) {
	z := sampleZewif(t)
	dec, err := Decode(z.Encode())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	txs := dec.Transactions()
	if len(txs) != 2 {
		t.Fatalf("got %d transactions", len(txs))
	}
	// Transactions() is sorted by txid bytes.
	if !bytes.Equal(txs[0].TxId().Bytes(), rb(32, 0x99)) {
		t.Fatalf("transactions out of order")
	}

	tx, ok := dec.Transaction(mustTxId(t, 0xaa))
	if !ok {
		t.Fatalf("transaction lookup failed")
	}
	if h, ok := tx.MinedHeight(); !ok || h != 2_400_000 {
		t.Fatalf("mined height: %d, %v", h, ok)
	}
	if s, ok := tx.Status(); !ok || s != StatusConfirmed {
		t.Fatalf("status: %s, %v", s, ok)
	}
	if ts, ok := tx.Timestamp(); !ok || ts != 1_700_000_000 {
		t.Fatalf("timestamp: %d, %v", ts, ok)
	}

	ins := tx.Inputs()
	if len(ins) != 1 {
		t.Fatalf("got %d inputs", len(ins))
	}
	if ins[0].Sequence() != 0xffffffff {
		t.Fatalf("sequence: %#x", ins[0].Sequence())
	}
	if ins[0].PreviousOutput().Index() != 1 {
		t.Fatalf("previous output index: %d", ins[0].PreviousOutput().Index())
	}
	outs := tx.Outputs()
	if len(outs) != 1 || outs[0].Value() != 50_000_000 {
		t.Fatalf("outputs corrupted: %+v", outs)
	}

	spends := tx.SaplingSpends()
	if len(spends) != 1 {
		t.Fatalf("got %d sapling spends", len(spends))
	}
	if v, ok := spends[0].Value(); !ok || v != -25_000_000 {
		t.Fatalf("spend value: %d, %v", v, ok)
	}
	if h, ok := spends[0].AnchorHeight(); !ok || h != 2_399_900 {
		t.Fatalf("anchor height: %d, %v", h, ok)
	}

	souts := tx.SaplingOutputs()
	if len(souts) != 1 {
		t.Fatalf("got %d sapling outputs", len(souts))
	}
	if pos, ok := souts[0].TreePosition(); !ok || pos != 77 {
		t.Fatalf("tree position: %d, %v", pos, ok)
	}
	wit, ok := souts[0].Witness()
	if !ok {
		t.Fatalf("witness lost")
	}
	if wit.Position() != 42 {
		t.Fatalf("witness position: %d", wit.Position())
	}
	path := wit.MerklePath()
	if len(path) != 2 || !bytes.Equal(path[0], rb(32, 0x08)) || !bytes.Equal(path[1], rb(32, 0x09)) {
		t.Fatalf("merkle path corrupted")
	}
	if wit.AnchorTreeSize() != 100 {
		t.Fatalf("anchor tree size: %d", wit.AnchorTreeSize())
	}
	frontier := wit.AnchorFrontier()
	if len(frontier) != 1 || !bytes.Equal(frontier[0], rb(32, 0x0b)) {
		t.Fatalf("anchor frontier corrupted")
	}

	actions := tx.OrchardActions()
	if len(actions) != 1 {
		t.Fatalf("got %d orchard actions", len(actions))
	}
	if zk, ok := actions[0].ZKProof(); !ok || !bytes.Equal(zk, rb(192, 0x12)) {
		t.Fatalf("orchard zkproof corrupted")
	}

	splits := tx.SproutJoinSplits()
	if len(splits) != 1 {
		t.Fatalf("got %d joinsplits", len(splits))
	}
	nfs := splits[0].Nullifiers()
	if !bytes.Equal(nfs[0], rb(32, 0x14)) || !bytes.Equal(nfs[1], rb(32, 0x15)) {
		t.Fatalf("joinsplit nullifiers corrupted")
	}
	cms := splits[0].Commitments()
	if !bytes.Equal(cms[0], rb(32, 0x16)) || !bytes.Equal(cms[1], rb(32, 0x17)) {
		t.Fatalf("joinsplit commitments corrupted")
	}
}

func TestAddTransactionRejectsDuplicate(t *testing.T) {
	z := NewZewif(1)
	txid := mustTxId(t, 0x01)
	if err := z.AddTransaction(NewTransaction(txid)); err != nil {
		t.Fatalf("first AddTransaction: %v", err)
	}
	if err := z.AddTransaction(NewTransaction(txid)); err == nil {
		t.Fatalf("duplicate txid accepted")
	} else if !IsKind(err, KindInvalidValue) {
		t.Fatalf("wrong error kind: %v", err)
	}
}

func TestDecodeRejectsWrongType(t *testing.T) {
	e := envelope.NewBytes(rb(32, 0)).WithType("Wallet")
	if _, err := ZewifFromEnvelope(e); err == nil {
		t.Fatalf("wrong type accepted")
	} else if !IsKind(err, KindTypeMismatch) {
		t.Fatalf("wrong error kind: %v", err)
	}
}

func TestDecodeRejectsMissingExportHeight(t *testing.T) {
	e := envelope.NewBytes(rb(32, 0)).WithType("Zewif")
	if _, err := ZewifFromEnvelope(e); err == nil {
		t.Fatalf("missing export_height accepted")
	} else if !IsKind(err, KindMissingField) {
		t.Fatalf("wrong error kind: %v", err)
	}
}

func TestDecodeRejectsOversizedWalletIndex(t *testing.T) {
	wallet := envelope.NewUint(1 << 32).
		WithType("Wallet").
		WithAssertion(envelope.NewText("id"), envelope.NewBytes(rb(32, 0x0a))).
		WithAssertion(envelope.NewText("network"), envelope.NewText("main"))
	root := envelope.NewBytes(rb(32, 0)).
		WithType("Zewif").
		WithAssertion(envelope.NewText("export_height"), envelope.NewUint(100)).
		WithAssertion(envelope.NewText("wallet"), wallet)
	if _, err := ZewifFromEnvelope(root); err == nil {
		t.Fatalf("oversized wallet index accepted")
	} else if !IsKind(err, KindInvalidValue) {
		t.Fatalf("wrong error kind: %v", err)
	}
}

func TestDecodeRejectsOversizedExportHeight(t *testing.T) {
	root := envelope.NewBytes(rb(32, 0)).
		WithType("Zewif").
		WithAssertion(envelope.NewText("export_height"), envelope.NewUint(1<<32))
	if _, err := ZewifFromEnvelope(root); err == nil {
		t.Fatalf("oversized export height accepted")
	} else if !IsKind(err, KindInvalidValue) {
		t.Fatalf("wrong error kind: %v", err)
	}
}

func TestSpendingKeyElisionKeepsDigest(t *testing.T) {
	z := sampleZewif(t)
	e := z.Envelope()
	elided := e.ElideRemovingPredicates(envelope.NewText("spending_key"))
	if elided.Digest() != e.Digest() {
		t.Fatalf("eliding spending keys changed the tree digest")
	}
	if bytes.Contains(elided.Encode(), rb(169, 0x22)) {
		t.Fatalf("spending key bytes survived elision")
	}
	if !bytes.Contains(e.Encode(), rb(169, 0x22)) {
		t.Fatalf("sample tree does not carry the spending key")
	}
}
