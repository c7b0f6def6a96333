package labels

import (
	"context"
	"strings"
	"time"

	"linksoc/internal/core/apperror"
	appctx "linksoc/internal/core/context"
	"linksoc/internal/core/labelcode"
	"linksoc/internal/core/tx"
	"linksoc/internal/domain/audit"
	"linksoc/pkg/logger"
)

// ServiceConfig holds label service configuration.
type ServiceConfig struct {
	Format          labelcode.Format
	MaxCode         int
	MaxBatch        int
	DefaultPageSize int
	HistoryPageSize int
}

// DefaultServiceConfig returns default configuration.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		Format:          labelcode.DefaultFormat(),
		MaxCode:         labelcode.MaxCode,
		MaxBatch:        100,
		DefaultPageSize: 15,
		HistoryPageSize: 50,
	}
}

// Observer is notified after each successful Generate.
type Observer interface {
	ObserveGenerate(mode Mode, requested, generated int)
}

type nopObserver struct{}

func (nopObserver) ObserveGenerate(Mode, int, int) {}

// Service provides label operations.
type Service struct {
	repo      Repository
	txManager tx.Manager
	audit     audit.Recorder
	observer  Observer
	allocator *Allocator
	config    ServiceConfig
	now       func() time.Time
}

// NewService creates a new label service.
func NewService(repo Repository, txManager tx.Manager, recorder audit.Recorder, config ServiceConfig) *Service {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	if config.MaxBatch <= 0 {
		config.MaxBatch = 100
	}
	if config.DefaultPageSize <= 0 {
		config.DefaultPageSize = 15
	}
	if config.HistoryPageSize <= 0 {
		config.HistoryPageSize = 50
	}
	if config.Format.Prefix == "" {
		config.Format = labelcode.DefaultFormat()
	}

	return &Service{
		repo:      repo,
		txManager: txManager,
		audit:     recorder,
		observer:  nopObserver{},
		allocator: NewAllocator(config.MaxCode),
		config:    config,
		now:       time.Now,
	}
}

// WithRandomSource replaces the allocator's random source.
func (s *Service) WithRandomSource(r RandomSource) *Service {
	s.allocator.Rand = r
	return s
}

// WithObserver registers o to be notified of generated batches.
func (s *Service) WithObserver(o Observer) *Service {
	if o != nil {
		s.observer = o
	}
	return s
}

// Config returns the effective configuration.
func (s *Service) Config() ServiceConfig {
	return s.config
}

// Generate allocates quantity new codes and appends them to the store in one batch.
func (s *Service) Generate(ctx context.Context, quantity int, mode Mode) (*GenerateResult, error) {
	if quantity < 1 || quantity > s.config.MaxBatch {
		return nil, apperror.NewValidation("quantity out of range").
			WithDetail("min", 1).
			WithDetail("max", s.config.MaxBatch).
			WithDetail("quantity", quantity)
	}
	if mode != ModeSequential && mode != ModeRandom {
		return nil, apperror.NewValidation("unknown generate mode").WithDetail("mode", string(mode))
	}

	result := &GenerateResult{Mode: mode, Requested: quantity}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.LockForAllocation(ctx); err != nil {
			return storeError("lock", err)
		}

		all, err := s.repo.All(ctx)
		if err != nil {
			return storeError("snapshot", err)
		}
		used, maxSerie := s.snapshot(all)

		allocs := s.allocator.Allocate(quantity, mode, used, maxSerie)
		if len(allocs) == 0 {
			return nil
		}

		now := s.now().UTC()
		batch := make([]Label, len(allocs))
		codes := make([]string, len(allocs))
		for i, a := range allocs {
			batch[i] = Label{
				QRCode:    s.config.Format.Code(a.Code),
				Serie:     s.config.Format.Serie(a.Serie),
				CreatedAt: now,
			}
			codes[i] = batch[i].QRCode
		}

		taken, err := s.repo.ExistingCodes(ctx, codes)
		if err != nil {
			return storeError("recheck", err)
		}
		if len(taken) > 0 {
			return apperror.NewConcurrentModification("label", taken)
		}

		if err := s.repo.AppendBatch(ctx, batch); err != nil {
			return storeError("append", err)
		}

		if err := s.record(ctx, audit.ActionGenerate, "", map[string]any{
			"mode":      string(mode),
			"requested": quantity,
			"codes":     codes,
		}); err != nil {
			return err
		}

		result.Labels = batch
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Shortfall = quantity - len(result.Labels)
	if result.Shortfall > 0 {
		logger.Warn(ctx, "label generation shortfall",
			"mode", mode,
			"requested", quantity,
			"generated", len(result.Labels),
		)
	}
	logger.Info(ctx, "labels generated", "mode", mode, "count", len(result.Labels))
	s.observer.ObserveGenerate(mode, quantity, len(result.Labels))

	return result, nil
}

// snapshot parses stored rows into the used-code set and the highest serie.
// Rows whose code or serie does not parse are ignored for the respective value.
func (s *Service) snapshot(all []Label) (*labelcode.CodeSet, int) {
	used := labelcode.NewCodeSet()
	maxSerie := 0
	for i := range all {
		if code, ok := s.config.Format.ParseCode(all[i].QRCode); ok {
			used.Add(code)
		}
		if serie, ok := labelcode.ParseSerie(all[i].Serie); ok && serie > maxSerie {
			maxSerie = serie
		}
	}
	return used, maxSerie
}

// Validate classifies code for linking.
func (s *Service) Validate(ctx context.Context, code string) (Validation, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return Validation{}, apperror.NewValidation("qrcode is required").WithDetail("field", "qrcode")
	}

	matches, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return Validation{}, storeError("find", err)
	}
	return ValidateForLink(code, matches), nil
}

// Link attaches cage identifiers to a code after validating it.
func (s *Service) Link(ctx context.Context, req LinkRequest) (*Label, error) {
	if isBlank(req.IDUm) && isBlank(req.IDDois) {
		return nil, apperror.NewValidation("id_um or id_dois is required")
	}

	var linked *Label
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		v, err := s.Validate(ctx, req.QRCode)
		if err != nil {
			return err
		}
		if err := v.Err(); err != nil {
			return err
		}

		linked, err = s.repo.SetIDs(ctx, v.Code, MatchExact, req.IDUm, req.IDDois)
		if err != nil {
			return storeError("link", err)
		}

		return s.record(ctx, audit.ActionLink, linked.QRCode, map[string]any{
			"id_um":   linked.IDUm,
			"id_dois": linked.IDDois,
		})
	})
	if err != nil {
		return nil, err
	}
	return linked, nil
}

// Clear detaches both cage identifiers from code.
func (s *Service) Clear(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return apperror.NewValidation("qrcode is required").WithDetail("field", "qrcode")
	}

	empty := ""
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		label, err := s.repo.SetIDs(ctx, code, MatchExact, &empty, &empty)
		if err != nil {
			return storeError("clear", err)
		}
		return s.record(ctx, audit.ActionClear, label.QRCode, nil)
	})
}

// Update overwrites both cage identifiers of code (case-insensitive match).
func (s *Service) Update(ctx context.Context, code, idUm, idDois string) (*Label, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperror.NewValidation("qrcode is required").WithDetail("field", "qrcode")
	}

	var updated *Label
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		updated, err = s.repo.SetIDs(ctx, code, MatchFold, &idUm, &idDois)
		if err != nil {
			return storeError("update", err)
		}
		return s.record(ctx, audit.ActionUpdate, updated.QRCode, map[string]any{
			"id_um":   idUm,
			"id_dois": idDois,
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Lookup finds the first label whose code matches scanID (case-insensitive)
// or whose ID_UM / ID_DOIS equals scanID.
func (s *Service) Lookup(ctx context.Context, scanID string) (*Label, error) {
	scanID = strings.TrimSpace(scanID)
	if scanID == "" {
		return nil, apperror.NewValidation("id is required").WithDetail("field", "id")
	}

	all, err := s.repo.All(ctx)
	if err != nil {
		return nil, storeError("lookup", err)
	}

	idx := newIndex(all)
	pos, ok := idx.first(scanID)
	if !ok {
		return nil, apperror.NewNotFound("label", scanID)
	}
	label := all[pos]
	return &label, nil
}

// LookupMany resolves scanned cage identifiers to labels, skipping blank IDs
// and returning each label at most once.
func (s *Service) LookupMany(ctx context.Context, ids []string) (*LookupResult, error) {
	return s.resolve(ctx, ids, true)
}

// LookupEach resolves every identifier, keeping repeated labels.
// Blank identifiers are skipped.
func (s *Service) LookupEach(ctx context.Context, ids []string) (*LookupResult, error) {
	return s.resolve(ctx, ids, false)
}

func (s *Service) resolve(ctx context.Context, ids []string, dedupe bool) (*LookupResult, error) {
	result := &LookupResult{Found: []Label{}, NotFound: []string{}}

	clean := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			clean = append(clean, id)
		}
	}
	if len(clean) == 0 {
		return result, nil
	}

	all, err := s.repo.All(ctx)
	if err != nil {
		return nil, storeError("lookup", err)
	}
	idx := newIndex(all)

	seen := make(map[string]struct{})
	for _, id := range clean {
		pos, ok := idx.byID[id]
		if !ok {
			result.NotFound = append(result.NotFound, id)
			continue
		}
		label := all[pos]
		if dedupe {
			if _, dup := seen[label.QRCode]; dup {
				continue
			}
			seen[label.QRCode] = struct{}{}
		}
		result.Found = append(result.Found, label)
	}
	return result, nil
}

// List returns one page of the table with table-wide stats.
func (s *Service) List(ctx context.Context, page, pageSize int) (*ListResult, error) {
	all, err := s.repo.All(ctx)
	if err != nil {
		return nil, storeError("list", err)
	}

	stats := ListStats{Total: len(all)}
	codes := make(map[string]struct{}, len(all))
	for i := range all {
		if all[i].Unlinked() {
			stats.Unlinked++
		}
		codes[all[i].QRCode] = struct{}{}
	}
	stats.Unique = len(codes)
	stats.Duplicates = stats.Total - stats.Unique

	return &ListResult{
		Page:     paginate(all, page, pageSize, s.config.DefaultPageSize),
		Stats:    stats,
		Exceeded: stats.Total > s.maxCode(),
	}, nil
}

// MarkPrinted increments the print counter of each known code and returns how many were marked.
func (s *Service) MarkPrinted(ctx context.Context, codes []string) (int, error) {
	clean := make([]string, 0, len(codes))
	for _, c := range codes {
		if c = strings.TrimSpace(c); c != "" {
			clean = append(clean, c)
		}
	}
	if len(clean) == 0 {
		return 0, nil
	}

	var marked int
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		marked, err = s.repo.MarkPrinted(ctx, clean, s.now().UTC())
		if err != nil {
			return storeError("mark printed", err)
		}
		return s.record(ctx, audit.ActionPrint, "", map[string]any{
			"codes":  clean,
			"marked": marked,
		})
	})
	if err != nil {
		return 0, err
	}
	return marked, nil
}

// PrintHistory returns printed labels, paginated.
func (s *Service) PrintHistory(ctx context.Context, page, pageSize int) (*Page, error) {
	all, err := s.repo.All(ctx)
	if err != nil {
		return nil, storeError("history", err)
	}

	printed := make([]Label, 0)
	for i := range all {
		if all[i].PrintCount > 0 {
			printed = append(printed, all[i])
		}
	}

	p := paginate(printed, page, pageSize, s.config.HistoryPageSize)
	return &p, nil
}

func (s *Service) maxCode() int {
	if s.config.MaxCode > 0 {
		return s.config.MaxCode
	}
	return labelcode.MaxCode
}

func (s *Service) record(ctx context.Context, action audit.Action, key string, changes map[string]any) error {
	entry := audit.Entry{
		Entity:    "label",
		EntityKey: key,
		Action:    action,
		Operator:  OperatorName(ctx),
		Changes:   changes,
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		return storeError("audit", err)
	}
	return nil
}

func isBlank(s *string) bool {
	return s == nil || *s == ""
}

// OperatorName renders the operator of ctx for audit records.
func OperatorName(ctx context.Context) string {
	op := appctx.GetOperator(ctx)
	if op == nil {
		return "system"
	}
	if op.SessionID == "" {
		return op.Subject
	}
	return op.Subject + "/" + op.SessionID
}

// storeError keeps domain errors raised by repositories and wraps everything else
// as a store failure.
func storeError(op string, err error) error {
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewDatabase(op, err)
}

// index maps identifiers to the first row carrying them.
type index struct {
	byCode map[string]int
	byID   map[string]int
}

func newIndex(all []Label) *index {
	idx := &index{
		byCode: make(map[string]int, len(all)),
		byID:   make(map[string]int, len(all)*2),
	}
	for i := range all {
		code := strings.ToUpper(all[i].QRCode)
		if _, ok := idx.byCode[code]; !ok {
			idx.byCode[code] = i
		}
		for _, id := range []string{all[i].IDUm, all[i].IDDois} {
			if id == "" {
				continue
			}
			if _, ok := idx.byID[id]; !ok {
				idx.byID[id] = i
			}
		}
	}
	return idx
}

// first returns the earliest row matching scanID by code or by identifier.
func (idx *index) first(scanID string) (int, bool) {
	byCode, codeOK := idx.byCode[strings.ToUpper(scanID)]
	byID, idOK := idx.byID[scanID]
	switch {
	case codeOK && idOK:
		return min(byCode, byID), true
	case codeOK:
		return byCode, true
	case idOK:
		return byID, true
	}
	return 0, false
}

func paginate(all []Label, page, pageSize, defaultSize int) Page {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultSize
	}

	total := len(all)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return Page{
		Labels:     all[start:end],
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + pageSize - 1) / pageSize,
	}
}
