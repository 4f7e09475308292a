package importing

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kdiomande/stockroom/internal/domain/models"
	"github.com/kdiomande/stockroom/internal/repository/gateway"
)

var (
	// ErrNoCandidates signals that parsing and projection produced zero
	// usable products; the wizard stays at the upload step.
	ErrNoCandidates = errors.New("no valid products found in file")

	// ErrSessionNotFound signals an unknown or expired import session.
	ErrSessionNotFound = errors.New("import session not found")

	// ErrPolicyRequired signals that duplicates were detected and a policy
	// must be chosen before committing.
	ErrPolicyRequired = errors.New("duplicate handling policy required")

	// ErrInvalidTransition signals a wizard action illegal in the session's
	// current state.
	ErrInvalidTransition = errors.New("action not allowed in current import state")
)

// previewSize caps how many candidates the preview step returns.
const previewSize = 5

// SnapshotProvider supplies the read-only master-data view taken once at
// import start and never refreshed mid-import.
type SnapshotProvider interface {
	MasterSnapshot(ctx context.Context) (models.MasterSnapshot, error)
}

// AuditSink records the outcome of finished import runs. Optional.
type AuditSink interface {
	SaveImportAudit(ctx context.Context, audit models.ImportAudit) error
}

// Session is the transient state of one import wizard run.
type Session struct {
	ID              string              `json:"id"`
	FileName        string              `json:"fileName"`
	State           models.ImportState  `json:"state"`
	Preview         []models.Product    `json:"preview"`
	TotalCandidates int                 `json:"totalCandidates"`
	DuplicatesFound bool                `json:"duplicatesFound"`
	HeaderConflicts []HeaderConflict    `json:"headerConflicts,omitempty"`
	Stats           *models.ImportStats `json:"stats,omitempty"`

	candidates    []models.Product
	existingCodes map[string]bool
	skippedNoName int
	startedAt     time.Time
	touchedAt     time.Time
}

// Options bounds the orchestrator's behavior.
type Options struct {
	MaxFileBytes      int64
	CommitConcurrency int
	SessionTTL        time.Duration
}

// Orchestrator sequences upload, preview, configure and result for import
// sessions, and owns the only code path that persists imported records.
type Orchestrator struct {
	gateway   gateway.Client
	snapshots SnapshotProvider
	audit     AuditSink
	opts      Options
	logger    *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewOrchestrator wires an import orchestrator.
func NewOrchestrator(gw gateway.Client, snapshots SnapshotProvider, audit AuditSink, opts Options, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.CommitConcurrency <= 0 {
		opts.CommitConcurrency = 4
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 30 * time.Minute
	}
	return &Orchestrator{
		gateway:   gw,
		snapshots: snapshots,
		audit:     audit,
		opts:      opts,
		logger:    logger,
		sessions:  make(map[string]*Session),
	}
}

// Begin runs the parse, header-mapping and projection pipeline over one
// uploaded file and opens a session at the preview step. Fatal parse and
// mapping errors surface immediately; nothing is persisted here.
func (o *Orchestrator) Begin(ctx context.Context, fileName string, data []byte) (*Session, error) {
	headers, rows, err := ParseFile(fileName, data, ParseOptions{MaxBytes: o.opts.MaxFileBytes})
	if err != nil {
		return nil, err
	}

	mapping, err := MapHeaders(headers)
	if err != nil {
		return nil, err
	}
	for _, conflict := range mapping.Conflicts {
		o.logger.Warn("raw header satisfies multiple fields",
			zap.String("header", conflict.RawHeader),
			zap.String("bound_to", string(conflict.BoundTo)),
			zap.String("contested_by", string(conflict.Contested)))
	}

	snapshot, err := o.snapshots.MasterSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	projection := NewProjector(snapshot).Project(rows, mapping)
	if len(projection.Candidates) == 0 {
		return nil, ErrNoCandidates
	}

	existing, err := o.gateway.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	existingCodes := make(map[string]bool, len(existing))
	for _, p := range existing {
		existingCodes[p.Code] = true
	}

	now := time.Now()
	session := &Session{
		ID:              uuid.NewString(),
		FileName:        fileName,
		State:           models.StatePreview,
		Preview:         previewOf(projection.Candidates),
		TotalCandidates: len(projection.Candidates),
		DuplicatesFound: PrescanDuplicates(existingCodes, projection.Candidates),
		HeaderConflicts: mapping.Conflicts,
		candidates:      projection.Candidates,
		existingCodes:   existingCodes,
		skippedNoName:   projection.SkippedNoName,
		startedAt:       now,
		touchedAt:       now,
	}

	o.mu.Lock()
	o.purgeExpiredLocked(now)
	o.sessions[session.ID] = session
	o.mu.Unlock()

	o.logger.Info("import session opened",
		zap.String("session", session.ID),
		zap.String("file", fileName),
		zap.Int("candidates", session.TotalCandidates),
		zap.Int("skipped_missing_name", projection.SkippedNoName),
		zap.Bool("duplicates", session.DuplicatesFound))
	return session, nil
}

// Get returns a live session by id.
func (o *Orchestrator) Get(id string) (*Session, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	session, ok := o.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	session.touchedAt = time.Now()
	return session, nil
}

// Proceed advances the wizard from preview. With duplicates present and no
// policy chosen yet it stops at the configure step; otherwise it commits.
func (o *Orchestrator) Proceed(ctx context.Context, id string, policy models.DuplicatePolicy) (*Session, error) {
	session, err := o.Get(id)
	if err != nil {
		return nil, err
	}

	switch session.State {
	case models.StatePreview:
		if session.DuplicatesFound && policy == "" {
			session.State = models.StateConfigure
			return session, nil
		}
		if policy == "" {
			// No duplicates: the policy is irrelevant.
			policy = models.PolicySkip
		}
	case models.StateConfigure:
		if policy == "" {
			return nil, ErrPolicyRequired
		}
	default:
		return nil, ErrInvalidTransition
	}

	if !models.ValidDuplicatePolicy(policy) {
		return nil, ErrPolicyRequired
	}
	return o.commit(ctx, session, policy)
}

// Back returns the session to the upload step, discarding everything
// projected so far. Allowed from any state before commit.
func (o *Orchestrator) Back(id string) (*Session, error) {
	session, err := o.Get(id)
	if err != nil {
		return nil, err
	}
	if session.State == models.StateResult {
		return nil, ErrInvalidTransition
	}

	session.State = models.StateUpload
	session.Preview = nil
	session.TotalCandidates = 0
	session.DuplicatesFound = false
	session.HeaderConflicts = nil
	session.candidates = nil
	session.existingCodes = nil
	session.skippedNoName = 0
	return session, nil
}

// Abandon discards a session entirely. No-op if it does not exist.
func (o *Orchestrator) Abandon(id string) {
	o.mu.Lock()
	delete(o.sessions, id)
	o.mu.Unlock()
}

// commit resolves duplicates and persists the cleared candidates through a
// bounded set of workers. Statistics come from the actual per-call
// outcomes. There is no rollback; a failure after the first create leaves
// the earlier creates in place.
func (o *Orchestrator) commit(ctx context.Context, session *Session, policy models.DuplicatePolicy) (*Session, error) {
	resolution, err := Resolve(session.existingCodes, session.candidates, policy)
	if err != nil {
		return nil, err
	}

	failures := make([]error, len(resolution.Commits))
	sem := make(chan struct{}, o.opts.CommitConcurrency)
	var wg sync.WaitGroup

	for i, commit := range resolution.Commits {
		wg.Add(1)
		go func(slot int, commit Commit) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if commit.ReplaceExisting {
				if err := o.gateway.DeleteProductByCode(ctx, commit.Product.Code); err != nil && !errors.Is(err, gateway.ErrNotFound) {
					failures[slot] = err
					return
				}
			}
			failures[slot] = o.gateway.CreateProduct(ctx, commit.Product)
		}(i, commit)
	}
	wg.Wait()

	stats := models.ImportStats{
		Total:         session.TotalCandidates,
		Duplicates:    resolution.Duplicates,
		SkippedNoName: session.skippedNoName,
	}
	for slot, err := range failures {
		if err != nil {
			stats.Errors++
			o.logger.Error("failed persisting imported product",
				zap.String("session", session.ID),
				zap.String("code", resolution.Commits[slot].Product.Code),
				zap.Error(err))
			continue
		}
		stats.Added++
	}

	session.State = models.StateResult
	session.Stats = &stats

	o.logger.Info("import committed",
		zap.String("session", session.ID),
		zap.String("policy", string(policy)),
		zap.Int("added", stats.Added),
		zap.Int("duplicates", stats.Duplicates),
		zap.Int("errors", stats.Errors))

	if o.audit != nil {
		audit := models.ImportAudit{
			SessionID:  session.ID,
			FileName:   session.FileName,
			Policy:     policy,
			Stats:      stats,
			StartedAt:  session.startedAt,
			FinishedAt: time.Now(),
		}
		if err := o.audit.SaveImportAudit(ctx, audit); err != nil {
			o.logger.Warn("failed writing import audit", zap.Error(err))
		}
	}
	return session, nil
}

func (o *Orchestrator) purgeExpiredLocked(now time.Time) {
	for id, session := range o.sessions {
		if now.Sub(session.touchedAt) > o.opts.SessionTTL {
			delete(o.sessions, id)
		}
	}
}

func previewOf(candidates []models.Product) []models.Product {
	n := len(candidates)
	if n > previewSize {
		n = previewSize
	}
	preview := make([]models.Product, n)
	copy(preview, candidates[:n])
	return preview
}
