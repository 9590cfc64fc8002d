// Package session drives a bulk reconciliation from raw uploads to an
// atomically committed batch of expenses.
//
// A session is a small state machine:
//
//	Idle → Uploading → Processing → Review → Committed
//
// Processing returns to Idle on unrecoverable failure; a failed commit
// keeps the session in Review so the batch can be fixed and resubmitted.
// Invalid transitions are errors, never silent no-ops.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aronveress/tripledger/internal/common"
	"github.com/aronveress/tripledger/internal/match"
	"github.com/aronveress/tripledger/internal/model"
	"github.com/aronveress/tripledger/internal/service"
)

// State is a reconciliation session phase.
type State int

// Session states.
const (
	StateIdle State = iota
	StateUploading
	StateProcessing
	StateReview
	StateCommitted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateUploading:
		return "uploading"
	case StateProcessing:
		return "processing"
	case StateReview:
		return "review"
	case StateCommitted:
		return "committed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ReceiptInput is one uploaded receipt image awaiting extraction.
type ReceiptInput struct {
	Name     string
	MIMEType string
	Image    []byte
}

// Session holds the working state of one reconciliation run. Methods are
// safe for concurrent use; Processing itself fans out internally.
type Session struct {
	storage    service.Storage
	receipts   service.ReceiptExtractor
	statements service.StatementExtractor
	progress   service.ProgressFunc

	mu            sync.Mutex
	state         State
	trip          *model.Trip
	receiptInputs []ReceiptInput
	statementText string
	statementRaw  []model.RawCandidate
	items         []*model.MergedItem
	warnings      []string
}

// Option configures a session.
type Option func(*Session)

// WithProgress installs a callback invoked as extraction tasks complete.
func WithProgress(fn service.ProgressFunc) Option {
	return func(s *Session) {
		s.progress = fn
	}
}

// New creates an idle session backed by the given storage and extractors.
func New(storage service.Storage, receipts service.ReceiptExtractor, statements service.StatementExtractor, opts ...Option) *Session {
	s := &Session{
		storage:    storage,
		receipts:   receipts,
		statements: statements,
		state:      StateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the session's current phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Trip returns the selected trip, or nil before SelectTrip.
func (s *Session) Trip() *model.Trip {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trip
}

// SelectTrip binds the session to a trip and opens it for uploads.
func (s *Session) SelectTrip(ctx context.Context, tripID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle {
		return fmt.Errorf("cannot select trip from %s state", s.state)
	}

	trip, err := s.storage.GetTrip(ctx, tripID)
	if err != nil {
		return err
	}

	s.trip = trip
	s.state = StateUploading
	return nil
}

// AddReceipt queues one receipt image for extraction.
func (s *Session) AddReceipt(name string, image []byte, mimeType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateUploading {
		return fmt.Errorf("cannot add receipt from %s state", s.state)
	}
	if len(image) == 0 {
		return fmt.Errorf("receipt %s is empty", name)
	}

	s.receiptInputs = append(s.receiptInputs, ReceiptInput{
		Name:     name,
		MIMEType: mimeType,
		Image:    image,
	})
	return nil
}

// SetStatement queues one statement document's text for extraction.
func (s *Session) SetStatement(content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateUploading {
		return fmt.Errorf("cannot set statement from %s state", s.state)
	}

	s.statementText = content
	return nil
}

// AddStatementCandidates queues already-structured statement candidates,
// bypassing extraction. This is how OFX files enter a session.
func (s *Session) AddStatementCandidates(candidates []model.RawCandidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateUploading {
		return fmt.Errorf("cannot add statement candidates from %s state", s.state)
	}

	s.statementRaw = append(s.statementRaw, candidates...)
	return nil
}

// Process extracts every queued input concurrently, matches the candidate
// batches, resolves category hints against the catalog, and moves the
// session to Review. A cancelled context or a catalog load failure aborts
// back to Idle; individual receipt failures only drop that receipt with a
// warning, and a statement extraction failure yields zero statement
// candidates.
func (s *Session) Process(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateUploading {
		s.mu.Unlock()
		return fmt.Errorf("cannot process from %s state", s.state)
	}
	if len(s.receiptInputs) == 0 && s.statementText == "" && len(s.statementRaw) == 0 {
		s.mu.Unlock()
		return fmt.Errorf("nothing to process: no receipts or statement queued")
	}
	s.state = StateProcessing
	inputs := s.receiptInputs
	statementText := s.statementText
	statementRaw := s.statementRaw
	s.mu.Unlock()

	catalog, err := s.storage.GetCatalog(ctx)
	if err != nil {
		s.abort()
		return fmt.Errorf("failed to load category catalog: %w", err)
	}
	if len(catalog) == 0 {
		s.abort()
		return common.ErrEmptyCatalog
	}

	receipts, stmts, warnings := s.extractAll(ctx, inputs, statementText, catalog)
	if err := ctx.Err(); err != nil {
		s.abort()
		return fmt.Errorf("processing cancelled: %w", err)
	}

	stmts = append(stmts, statementRaw...)

	items := match.Match(receipts, stmts)
	for _, item := range items {
		pinHints(item, catalog)
	}

	s.mu.Lock()
	s.items = items
	s.warnings = warnings
	s.state = StateReview
	s.mu.Unlock()

	slog.Info("processing complete",
		"receipts", len(receipts),
		"statement_rows", len(stmts),
		"items", len(items),
		"warnings", len(warnings))
	return nil
}

// extractAll fans out one goroutine per receipt plus one for the statement
// text and joins them. Receipt results keep their input order.
func (s *Session) extractAll(ctx context.Context, inputs []ReceiptInput, statementText string, catalog model.Catalog) (receipts, stmts []model.RawCandidate, warnings []string) {
	total := len(inputs)
	if statementText != "" {
		total++
	}

	var (
		wg             sync.WaitGroup
		progressMu     sync.Mutex
		completed      int
		receiptResults = make([]*model.RawCandidate, len(inputs))
		receiptErrs    = make([]error, len(inputs))
		stmtResult     []model.RawCandidate
		stmtErr        error
	)

	tick := func() {
		if s.progress == nil {
			return
		}
		progressMu.Lock()
		completed++
		done := completed
		progressMu.Unlock()
		s.progress(done, total)
	}

	for i := range inputs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer tick()
			input := inputs[i]
			candidate, err := s.receipts.ExtractReceipt(ctx, input.Image, input.MIMEType, catalog)
			if err != nil {
				receiptErrs[i] = fmt.Errorf("receipt %s: %w", input.Name, err)
				return
			}
			receiptResults[i] = candidate
		}(i)
	}

	if statementText != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer tick()
			stmtResult, stmtErr = s.statements.ExtractStatement(ctx, statementText, catalog)
		}()
	}

	wg.Wait()

	for i, candidate := range receiptResults {
		if err := receiptErrs[i]; err != nil {
			warnings = append(warnings, err.Error())
			slog.Warn("receipt extraction failed", "receipt", inputs[i].Name, "error", err)
			continue
		}
		if candidate != nil {
			receipts = append(receipts, *candidate)
		}
	}

	if stmtErr != nil {
		warnings = append(warnings, fmt.Sprintf("statement: %v", stmtErr))
		slog.Warn("statement extraction failed", "error", stmtErr)
	} else {
		stmts = stmtResult
	}

	return receipts, stmts, warnings
}

func (s *Session) abort() {
	s.mu.Lock()
	s.state = StateIdle
	s.items = nil
	s.mu.Unlock()
}

// pinHints attaches catalog identifiers to items whose free-text hints
// genuinely match a catalog entry. Hints without a match keep their raw
// name; the full fallback chain runs at commit against the live catalog,
// so a category created during review can still claim its items.
func pinHints(item *model.MergedItem, catalog model.Catalog) {
	cat := catalog.ByName(item.CategoryName)
	if cat == nil {
		return
	}
	item.CategoryID = cat.ID
	item.CategoryName = cat.Name

	if sub := cat.SubcategoryByName(item.SubcatName); sub != nil {
		item.SubcategoryID = sub.ID
		item.SubcatName = sub.Name
	}
}

// Items returns the merged working set in its current review order.
func (s *Session) Items() []*model.MergedItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.MergedItem, len(s.items))
	copy(out, s.items)
	return out
}

// Warnings returns the soft failures collected during processing.
func (s *Session) Warnings() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.warnings))
	copy(out, s.warnings)
	return out
}

// UpdateItem mutates the item with the given identifier under the session
// lock. Edits are not re-validated until commit.
func (s *Session) UpdateItem(id string, mutate func(*model.MergedItem)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateReview {
		return fmt.Errorf("cannot edit items from %s state", s.state)
	}

	for _, item := range s.items {
		if item.ID == id {
			mutate(item)
			return nil
		}
	}
	return fmt.Errorf("no item with id %s", id)
}

// RemoveItem drops the item with the given identifier from the batch.
func (s *Session) RemoveItem(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateReview {
		return fmt.Errorf("cannot remove items from %s state", s.state)
	}

	for i, item := range s.items {
		if item.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("no item with id %s", id)
}
