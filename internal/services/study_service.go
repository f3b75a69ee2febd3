package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"

	"exposure-platform/internal/cache"
	"exposure-platform/internal/editors"
	"exposure-platform/internal/lookup"
	"exposure-platform/internal/model"
	"exposure-platform/internal/models"
	"exposure-platform/internal/repository"
	"exposure-platform/internal/validation"
	"exposure-platform/pkg/logging"
	"exposure-platform/pkg/metrics"
)

// Event is a cache notification of one kind, forwarded to service subscribers
type Event struct {
	Kind  models.Kind  `json:"kind"`
	Type  string       `json:"type"`
	ID    string       `json:"id"`
	Entry editors.View `json:"entry"`
}

// KindSummary describes the open entries of one kind
type KindSummary struct {
	Kind    models.Kind `json:"kind"`
	Loaded  bool        `json:"loaded"`
	Entries int         `json:"entries"`
	Valid   bool        `json:"valid"`
}

// ChangeSet is the pending difference between the committed and the working
// copy of an entry, as a diff-match-patch patch over their JSON forms
type ChangeSet struct {
	Kind  models.Kind `json:"kind"`
	ID    string      `json:"id"`
	Dirty bool        `json:"dirty"`
	Patch string      `json:"patch"`
	Diffs []Change    `json:"diffs"`
}

// Change is one run of a diff
type Change struct {
	Op   string `json:"op"`
	Text string `json:"text"`
}

// StudyService is the editing workspace: one entry cache per record kind,
// filled lazily from the repository. All operations are serialized; cache
// notifications and subscriber callbacks run while the workspace is locked,
// so subscribers must not call back into the service.
type StudyService struct {
	repo    repository.RecordRepository
	lookups lookup.Source
	catalog validation.Catalog
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
	now     func() time.Time

	mu          sync.Mutex
	caches      map[models.Kind]*cache.Cache[editors.Editor]
	loaded      map[models.Kind]bool
	subscribers map[int]func(Event)
	subOrder    []int
	nextSub     int
}

// NewStudyService creates the workspace. A nil lookups source selects the
// built-in tables and a nil catalog the default messages.
func NewStudyService(repo repository.RecordRepository, lookups lookup.Source, catalog validation.Catalog, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *StudyService {
	if lookups == nil {
		lookups = lookup.Default
	}
	s := &StudyService{
		repo:        repo,
		lookups:     lookups,
		catalog:     catalog,
		logger:      logger,
		metrics:     metricsCollector,
		now:         time.Now,
		caches:      make(map[models.Kind]*cache.Cache[editors.Editor], len(models.Kinds)),
		loaded:      make(map[models.Kind]bool, len(models.Kinds)),
		subscribers: make(map[int]func(Event)),
	}
	for _, kind := range models.Kinds {
		c := cache.New[editors.Editor](string(kind), logger, metricsCollector)
		c.Subscribe(func(ev cache.Event[editors.Editor]) { s.publish(kind, ev) })
		s.caches[kind] = c
	}
	return s
}

// Subscribe registers fn for every cache event of every kind. The returned
// function unregisters it.
func (s *StudyService) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	s.subOrder = append(s.subOrder, id)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
		s.subOrder = slices.DeleteFunc(s.subOrder, func(v int) bool { return v == id })
	}
}

func (s *StudyService) publish(kind models.Kind, ev cache.Event[editors.Editor]) {
	out := Event{
		Kind:  kind,
		Type:  ev.Type.String(),
		ID:    ev.Entry.ID().String(),
		Entry: ev.Entry.View(),
	}
	for _, id := range slices.Clone(s.subOrder) {
		if fn, ok := s.subscribers[id]; ok {
			fn(out)
		}
	}
}

func (s *StudyService) factory(kind models.Kind) (editors.Factory, error) {
	f, err := editors.Lookup(kind)
	if err != nil {
		return editors.Factory{}, &models.ValidationError{Field: "kind", Value: string(kind), Message: err.Error()}
	}
	return f, nil
}

// watch reports rejected input of e to metrics and the debug log.
func (s *StudyService) watch(e editors.Editor) editors.Editor {
	e.OnFailure(func(kind models.Kind, fe *validation.FieldError) {
		reason := "other"
		switch {
		case errors.Is(fe, validation.ErrParse):
			reason = "parse"
		case errors.Is(fe, validation.ErrRange):
			reason = "range"
		case errors.Is(fe, validation.ErrChoice):
			reason = "choice"
		}
		s.metrics.RecordValidationFailure(string(kind), reason)
		s.logger.Debug(context.Background(), "[EDIT_REJECTED] Field input rejected", logging.Fields{
			"kind":    kind,
			"field":   fe.Field,
			"value":   fe.Value,
			"message": fe.Message,
		})
	})
	return e
}

// Load (re)reads every stored record of kind into its cache. Records that
// cannot be decoded are skipped and logged.
func (s *StudyService) Load(ctx context.Context, kind models.Kind) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx, kind)
}

func (s *StudyService) load(ctx context.Context, kind models.Kind) (int, error) {
	f, err := s.factory(kind)
	if err != nil {
		return 0, err
	}

	start := time.Now()
	recs, err := s.repo.List(ctx, kind)
	if err != nil {
		return 0, fmt.Errorf("failed to load %s records: %w", kind, err)
	}

	entries := make([]editors.Editor, 0, len(recs))
	for _, rec := range recs {
		e, err := f.Decode(rec.Payload, lookup.Take(s.lookups), s.catalog)
		if err != nil {
			s.logger.Warn(ctx, "[LOAD_DECODE_ERROR] Stored record skipped", logging.Fields{
				"kind":  kind,
				"id":    rec.ID,
				"error": err.Error(),
			})
			continue
		}
		entries = append(entries, s.watch(e))
	}

	c := s.caches[kind]
	c.Clear()
	c.Add(entries...)
	s.loaded[kind] = true

	s.metrics.ObserveProcessing("load", time.Since(start))
	s.logger.Info(ctx, "[LOAD_COMPLETE] Records loaded", logging.Fields{
		"kind":    kind,
		"stored":  len(recs),
		"loaded":  len(entries),
		"invalid": countInvalid(entries),
	})
	return len(entries), nil
}

func countInvalid(entries []editors.Editor) int {
	n := 0
	for _, e := range entries {
		if !e.IsValid() {
			n++
		}
	}
	return n
}

func (s *StudyService) cacheOf(ctx context.Context, kind models.Kind) (*cache.Cache[editors.Editor], error) {
	c, ok := s.caches[kind]
	if !ok {
		_, err := s.factory(kind)
		return nil, err
	}
	if !s.loaded[kind] {
		if _, err := s.load(ctx, kind); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (s *StudyService) entry(ctx context.Context, kind models.Kind, id string) (editors.Editor, *cache.Cache[editors.Editor], error) {
	c, err := s.cacheOf(ctx, kind)
	if err != nil {
		return nil, nil, err
	}
	e, ok := c.Find(func(e editors.Editor) bool { return e.ID().String() == id })
	if !ok {
		return nil, nil, &repository.NotFoundError{Resource: string(kind), ID: id}
	}
	return e, c, nil
}

// Create opens a new default entry of kind and adds it to the cache. The
// entry is stored only when it is first saved.
func (s *StudyService) Create(ctx context.Context, kind models.Kind) (editors.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.factory(kind)
	if err != nil {
		return editors.View{}, err
	}
	c, err := s.cacheOf(ctx, kind)
	if err != nil {
		return editors.View{}, err
	}

	e := s.watch(f.New(lookup.Take(s.lookups), s.catalog))
	c.AddEntry(e)

	s.logger.Info(ctx, "[ENTRY_CREATE] Entry created", logging.Fields{
		"kind": kind,
		"id":   e.ID().String(),
	})
	return e.View(), nil
}

// Get returns one entry
func (s *StudyService) Get(ctx context.Context, kind models.Kind, id string) (editors.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, _, err := s.entry(ctx, kind, id)
	if err != nil {
		return editors.View{}, err
	}
	return e.View(), nil
}

// List returns every open entry of kind in cache order
func (s *StudyService) List(ctx context.Context, kind models.Kind) ([]editors.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.cacheOf(ctx, kind)
	if err != nil {
		return nil, err
	}
	views := make([]editors.View, 0, c.Len())
	for _, e := range c.Entries() {
		views = append(views, e.View())
	}
	return views, nil
}

// SetField passes raw input to one field of an entry. Rejected input is
// returned as a *validation.FieldError together with the updated view.
func (s *StudyService) SetField(ctx context.Context, kind models.Kind, id, field, text, unit string) (editors.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, _, err := s.entry(ctx, kind, id)
	if err != nil {
		return editors.View{}, err
	}
	err = e.Set(field, text, unit)
	return e.View(), err
}

// SetUnit changes the display unit of a quantity field
func (s *StudyService) SetUnit(ctx context.Context, kind models.Kind, id, field, unit string) (editors.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, _, err := s.entry(ctx, kind, id)
	if err != nil {
		return editors.View{}, err
	}
	err = e.SetUnit(field, unit)
	return e.View(), err
}

// Save stores an entry, commits it and notifies subscribers. An invalid entry
// is rejected with a *model.CommitError and left as it is; so is an entry the
// repository fails to store.
func (s *StudyService) Save(ctx context.Context, kind models.Kind, id string) (editors.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, c, err := s.entry(ctx, kind, id)
	if err != nil {
		return editors.View{}, err
	}

	start := time.Now()
	at := s.now().UTC()
	err = e.Commit(func(doc models.Document) error {
		rec, err := models.Encode(doc, at)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", doc.Label(), err)
		}
		if err := s.repo.Upsert(ctx, rec); err != nil {
			return fmt.Errorf("failed to store %s: %w", doc.Label(), err)
		}
		return nil
	})
	switch {
	case errors.Is(err, model.ErrInvalid):
		s.metrics.RecordSave(string(kind), "invalid")
		all, _ := e.AllErrors()
		s.logger.Warn(ctx, "[SAVE_REJECTED] Entry has validation errors", logging.Fields{
			"kind":   kind,
			"id":     id,
			"errors": all,
		})
		return e.View(), err
	case err != nil:
		s.metrics.RecordSave(string(kind), "store_error")
		s.logger.Error(ctx, "[SAVE_STORE_ERROR] Entry could not be stored, edits kept", logging.Fields{
			"kind": kind,
			"id":   id,
		}, err)
		return e.View(), err
	}
	e.Stamp(at)

	c.UpdateEntry(e)

	s.metrics.RecordSave(string(kind), "ok")
	s.metrics.ObserveProcessing("save", time.Since(start))
	s.logger.Info(ctx, "[SAVE_COMPLETE] Entry saved", logging.Fields{
		"kind": kind,
		"id":   id,
		"name": e.Name(),
	})
	return e.View(), nil
}

// Cancel discards the pending edits of an entry
func (s *StudyService) Cancel(ctx context.Context, kind models.Kind, id string) (editors.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, c, err := s.entry(ctx, kind, id)
	if err != nil {
		return editors.View{}, err
	}
	e.Cancel()
	c.UpdateEntry(e)

	s.logger.Debug(ctx, "[ENTRY_CANCEL] Edits discarded", logging.Fields{
		"kind": kind,
		"id":   id,
	})
	return e.View(), nil
}

// Delete removes an entry from storage and from the cache. Entries that were
// never saved exist only in the cache.
func (s *StudyService) Delete(ctx context.Context, kind models.Kind, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, c, err := s.entry(ctx, kind, id)
	if err != nil {
		return err
	}

	var nf *repository.NotFoundError
	if err := s.repo.Delete(ctx, kind, id); err != nil && !errors.As(err, &nf) {
		return fmt.Errorf("failed to delete %s: %w", e.Name(), err)
	}
	c.DeleteEntry(e)

	s.logger.Info(ctx, "[ENTRY_DELETE] Entry deleted", logging.Fields{
		"kind": kind,
		"id":   id,
	})
	return nil
}

// Changes returns the pending edits of an entry as a patch from the committed
// record to the working copy.
func (s *StudyService) Changes(ctx context.Context, kind models.Kind, id string) (*ChangeSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, _, err := s.entry(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	before, err := json.MarshalIndent(e.OriginalDocument(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode original: %w", err)
	}
	after, err := json.MarshalIndent(e.WorkingDocument(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode working copy: %w", err)
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(string(before), string(after), false))

	cs := &ChangeSet{
		Kind:  kind,
		ID:    id,
		Dirty: e.IsDirty(),
		Patch: dmp.PatchToText(dmp.PatchMake(string(before), diffs)),
	}
	for _, d := range diffs {
		if d.Type == diffmatchpatch.DiffEqual {
			continue
		}
		cs.Diffs = append(cs.Diffs, Change{Op: diffOp(d.Type), Text: d.Text})
	}
	return cs, nil
}

func diffOp(t diffmatchpatch.Operation) string {
	switch t {
	case diffmatchpatch.DiffInsert:
		return "insert"
	case diffmatchpatch.DiffDelete:
		return "delete"
	}
	return "equal"
}

// Summary reports the open entries of every kind
func (s *StudyService) Summary() []KindSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]KindSummary, 0, len(models.Kinds))
	for _, kind := range models.Kinds {
		c := s.caches[kind]
		out = append(out, KindSummary{
			Kind:    kind,
			Loaded:  s.loaded[kind],
			Entries: c.Len(),
			Valid:   c.IsValid(),
		})
	}
	return out
}

// HealthCheck checks the backing repository
func (s *StudyService) HealthCheck(ctx context.Context) error {
	return s.repo.HealthCheck(ctx)
}
