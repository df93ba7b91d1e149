package stellar

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stellar/go/keypair"

	"github.com/panarchynow/initiation/internal/forms"
	"github.com/panarchynow/initiation/internal/metrics"
)

// Form kinds, used for metrics labels and submission records.
const (
	FormCorporate   = "corporate"
	FormParticipant = "participant"
	FormPersonal    = "personal"
)

// BuildResult is the outcome of turning a form into an unsigned envelope.
type BuildResult struct {
	AccountID      string
	XDR            string
	OperationCount int
}

// Generator turns validated form submissions into unsigned transaction
// envelopes: snapshot fetch, reconciliation, assembly.
type Generator struct {
	Snapshots *SnapshotReader
	Assembler *Assembler
	Tags      *TagRegistry
}

// Corporate builds the envelope for an organization form.
func (g *Generator) Corporate(ctx context.Context, form forms.CorporateForm) (*BuildResult, error) {
	if err := forms.Validate(form); err != nil {
		return nil, err
	}
	accountID, err := ensureAccountID(form.AccountID)
	if err != nil {
		return nil, err
	}

	snap := g.Snapshots.FetchSnapshot(ctx, accountID)

	desired := DesiredState{
		AccountID: accountID,
		Fields: []FieldChange{
			{Key: KeyName, Original: form.Loaded.Name, Desired: form.Name},
			{Key: KeyAbout, Original: form.Loaded.About, Desired: form.About},
			{Key: KeyWebsite, Original: form.Loaded.Website, Desired: form.Website},
			{Key: KeyTelegramPartChatID, Original: form.Loaded.TelegramPartChatID, Desired: form.TelegramPartChatID},
			{Key: KeyContractIPFS, Original: form.Loaded.ContractIPFSHash, Desired: form.ContractIPFSHash},
		},
		Collections: []CollectionState{
			collectionState(MyPartPrefix, form.Loaded.MyParts, form.MyParts),
		},
		Tags: form.Tags,
	}

	return g.build(FormCorporate, accountID, snap, desired)
}

// Participant builds the envelope for an individual participant form.
func (g *Generator) Participant(ctx context.Context, form forms.ParticipantForm) (*BuildResult, error) {
	if err := forms.Validate(form); err != nil {
		return nil, err
	}
	accountID, err := ensureAccountID(form.AccountID)
	if err != nil {
		return nil, err
	}

	snap := g.Snapshots.FetchSnapshot(ctx, accountID)

	desired := DesiredState{
		AccountID: accountID,
		Fields: []FieldChange{
			{Key: KeyName, Original: form.Loaded.Name, Desired: form.Name},
			{Key: KeyAbout, Original: form.Loaded.About, Desired: form.About},
			{Key: KeyWebsite, Original: form.Loaded.Website, Desired: form.Website},
			{Key: KeyTelegramUserID, Original: form.Loaded.TelegramUserID, Desired: form.TelegramUserID},
			{Key: KeyTimeTokenCode, Original: form.Loaded.TimeTokenCode, Desired: form.TimeTokenCode},
			{Key: KeyTimeTokenIssuer, Original: form.Loaded.TimeTokenIssuer, Desired: form.TimeTokenIssuer},
			{Key: KeyTimeTokenDesc, Original: form.Loaded.TimeTokenDesc, Desired: form.TimeTokenDesc},
			{Key: KeyTimeTokenOfferIPFS, Original: form.Loaded.TimeTokenOfferIPFS, Desired: form.TimeTokenOfferIPFS},
		},
		Collections: []CollectionState{
			collectionState(PartOfPrefix, form.Loaded.PartOf, form.PartOf),
		},
		Tags: form.Tags,
	}

	return g.build(FormParticipant, accountID, snap, desired)
}

// Personal builds the envelope for a personal form.
func (g *Generator) Personal(ctx context.Context, form forms.PersonalForm) (*BuildResult, error) {
	if err := forms.Validate(form); err != nil {
		return nil, err
	}
	accountID, err := ensureAccountID(form.AccountID)
	if err != nil {
		return nil, err
	}

	snap := g.Snapshots.FetchSnapshot(ctx, accountID)

	desired := DesiredState{
		AccountID: accountID,
		Fields: []FieldChange{
			{Key: KeyName, Original: form.Loaded.Name, Desired: form.Name},
			{Key: KeyAbout, Original: form.Loaded.About, Desired: form.About},
			{Key: KeyWebsite, Original: form.Loaded.Website, Desired: form.Website},
		},
	}

	return g.build(FormPersonal, accountID, snap, desired)
}

func (g *Generator) build(kind, accountID string, snap Snapshot, desired DesiredState) (*BuildResult, error) {
	ops := Reconcile(snap, desired, g.Tags)

	tx, err := g.Assembler.Assemble(accountID, ops)
	if err != nil {
		metrics.ErrorsTotal.WithLabelValues("generator").Inc()
		return nil, err
	}

	xdr, err := tx.Base64()
	if err != nil {
		metrics.ErrorsTotal.WithLabelValues("generator").Inc()
		return nil, fmt.Errorf("failed to encode envelope: %w", err)
	}

	metrics.TransactionsBuilt.WithLabelValues(kind).Inc()
	metrics.OperationsPerTransaction.Observe(float64(len(ops)))
	slog.Info("Transaction built",
		"form", kind,
		"account", accountID,
		"operations", len(ops),
	)

	return &BuildResult{
		AccountID:      accountID,
		XDR:            xdr,
		OperationCount: len(ops),
	}, nil
}

// ensureAccountID generates a fresh random account when the form omitted
// one. The account will not exist on the ledger yet; assembly then fails
// with a not-found category telling the user to fund it first.
func ensureAccountID(accountID string) (string, error) {
	if accountID != "" {
		return accountID, nil
	}
	kp, err := keypair.Random()
	if err != nil {
		return "", fmt.Errorf("failed to generate keypair: %w", err)
	}
	return kp.Address(), nil
}

// collectionState pairs loaded rows with submitted ones for one collection.
func collectionState(name string, loaded []forms.LoadedRow, rows []forms.CollectionRow) CollectionState {
	state := CollectionState{Name: name}
	for _, l := range loaded {
		state.Loaded = append(state.Loaded, LoadedEntry{
			FormID:     l.ID,
			AccountRef: l.AccountID,
			Key:        l.Key,
		})
	}
	for _, r := range rows {
		state.Desired = append(state.Desired, CollectionEntry{
			FormID:     r.ID,
			AccountRef: r.AccountID,
		})
	}
	return state
}
