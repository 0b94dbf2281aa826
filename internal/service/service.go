package service

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/morozRed/lineage/internal/events"
	"github.com/morozRed/lineage/internal/family"
	"github.com/morozRed/lineage/internal/graph"
	"github.com/morozRed/lineage/internal/metrics"
	"github.com/morozRed/lineage/internal/search"
	"github.com/morozRed/lineage/internal/state"
)

// Source names where Init found its data.
type Source string

const (
	SourcePersisted Source = "persisted"
	SourceSeed      Source = "seed"
	SourceDefault   Source = "default"
)

type Options struct {
	// SeedFile is a snapshot document used when nothing is persisted, and by
	// Reset.
	SeedFile string
	Metrics  *metrics.Metrics
	Now      func() time.Time
}

// Listener receives the freshly built tree after each committed change.
type Listener func(*graph.Tree)

// derived is everything computed from one store version. It is never mutated
// after publication.
type derived struct {
	tree        *graph.Tree
	levels      graph.Levels
	generations []graph.GenerationLevel
	index       *search.Index
	records     []family.Person
}

// Service owns the record store and keeps the derived tree current. Every
// mutation runs store change, rebuild and publish under one lock;
// notifications are delivered in mutation order. A Listener must not call back
// into a mutating method synchronously.
type Service struct {
	mu    sync.Mutex
	pubMu sync.Mutex

	store   *family.Store
	repo    *state.Repository
	info    family.Info
	current atomic.Pointer[derived]

	subMu        sync.Mutex
	listeners    []subscription
	nextListener int

	opts   Options
	logger *zap.Logger
}

// storageAction is what a commit does to persisted state once published.
type storageAction int

const (
	storageKeep storageAction = iota
	storageSave
	storageClear
)

type subscription struct {
	id int
	fn Listener
}

// New wires a service around store. repo may be nil, in which case nothing is
// persisted.
func New(store *family.Store, repo *state.Repository, opts Options, logger *zap.Logger) *Service {
	if store == nil {
		store = family.NewStore()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &Service{
		store:  store,
		repo:   repo,
		opts:   opts,
		logger: logger,
	}
	s.current.Store(s.rebuild())
	return s
}

// Init loads the persisted snapshot, else the seed file, else the built-in
// dataset, and publishes the resulting tree. Unreadable sources are logged
// and skipped.
func (s *Service) Init() Source {
	snapshot, source := s.loadInitial()

	s.mu.Lock()
	s.replaceLocked(snapshot)
	s.commitLocked("init", storageKeep)

	s.logger.Debug("family data loaded",
		zap.String("source", string(source)),
		zap.Int("members", len(snapshot.FamilyMembers)),
	)
	return source
}

func (s *Service) loadInitial() (*family.Snapshot, Source) {
	if s.repo != nil {
		snapshot, err := s.repo.Load()
		switch {
		case err == nil:
			return snapshot, SourcePersisted
		case errors.Is(err, state.ErrNotFound):
		case errors.Is(err, state.ErrMalformedSnapshot):
			s.logger.Warn("persisted snapshot is malformed, falling back", zap.Error(err))
		default:
			s.logger.Error("failed to read persisted snapshot, falling back", zap.Error(err))
		}
	}
	return s.fallbackSnapshot()
}

func (s *Service) fallbackSnapshot() (*family.Snapshot, Source) {
	if s.opts.SeedFile != "" {
		snapshot, err := state.LoadSeed(s.opts.SeedFile)
		if err == nil {
			return snapshot, SourceSeed
		}
		s.logger.Warn("failed to load seed file, using built-in data",
			zap.String("path", s.opts.SeedFile),
			zap.Error(err),
		)
	}
	return family.DefaultSnapshot(s.opts.Now()), SourceDefault
}

// Tree returns the latest derived tree.
func (s *Service) Tree() *graph.Tree {
	return s.current.Load().tree
}

// Levels returns the generation of every member of the latest tree.
func (s *Service) Levels() graph.Levels {
	return s.current.Load().levels
}

// Generations returns the display levels of the latest tree.
func (s *Service) Generations() []graph.GenerationLevel {
	return s.current.Load().generations
}

// View returns the serializable projection of the latest tree.
func (s *Service) View() graph.TreeView {
	return s.current.Load().tree.View()
}

// Subscribe registers fn for every future commit. The returned func removes
// the registration; calling it more than once is harmless.
func (s *Service) Subscribe(fn Listener) (cancel func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.nextListener++
	id := s.nextListener
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			defer s.subMu.Unlock()
			for i, sub := range s.listeners {
				if sub.id == id {
					s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// ListAllMembers returns the stored members in order. An empty store yields an
// empty list; the placeholder exists only in the derived tree.
func (s *Service) ListAllMembers() []family.Person {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.List()
}

func (s *Service) MemberByID(id string) (family.Person, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Get(id)
}

// PotentialParents lists the members old enough to be a parent.
func (s *Service) PotentialParents() []family.Person {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.ListAdults()
}

// Add validates and inserts p. Validation and duplicate-id failures are
// returned and leave everything unchanged.
func (s *Service) Add(p family.Person) error {
	s.mu.Lock()
	if err := s.store.Add(p); err != nil {
		s.mu.Unlock()
		s.opts.Metrics.CountMutation("add", false)
		return err
	}
	s.commitLocked("add", storageSave)
	return nil
}

// Update applies patch to the member with the given id and reports whether
// the member existed.
func (s *Service) Update(id string, patch family.Patch) bool {
	s.mu.Lock()
	if !s.store.Update(id, patch) {
		s.mu.Unlock()
		s.opts.Metrics.CountMutation("update", false)
		return false
	}
	s.commitLocked("update", storageSave)
	return true
}

// Delete removes a member, clearing references to it, and reports whether the
// member existed.
func (s *Service) Delete(id string) bool {
	s.mu.Lock()
	if !s.store.Delete(id) {
		s.mu.Unlock()
		s.opts.Metrics.CountMutation("delete", false)
		return false
	}
	s.commitLocked("delete", storageSave)
	return true
}

// Import replaces the whole collection with a snapshot document.
func (s *Service) Import(data []byte) error {
	snapshot, err := state.Decode(data)
	if err != nil {
		s.opts.Metrics.CountMutation("import", false)
		return fmt.Errorf("import rejected: %w", err)
	}

	s.mu.Lock()
	s.replaceLocked(snapshot)
	s.commitLocked("import", storageSave)
	return nil
}

// Export renders the current collection and refreshed family info.
func (s *Service) Export() ([]byte, error) {
	s.mu.Lock()
	snapshot := s.snapshotLocked(s.current.Load())
	s.mu.Unlock()
	return state.Encode(snapshot)
}

// Save writes the current collection to storage. Unlike the saves that
// follow mutations, its failure is returned.
func (s *Service) Save() error {
	s.mu.Lock()
	snapshot := s.snapshotLocked(s.current.Load())
	s.info = snapshot.FamilyInfo
	s.pubMu.Lock()
	s.mu.Unlock()
	defer s.pubMu.Unlock()

	if s.repo == nil {
		return nil
	}
	return s.repo.Save(snapshot)
}

// Reset reloads the seed or built-in data and clears the persisted snapshot.
// The in-memory reset always happens; a failure to clear storage is returned.
func (s *Service) Reset() error {
	snapshot, source := s.fallbackSnapshot()

	s.mu.Lock()
	s.replaceLocked(snapshot)
	err := s.commitLocked("reset", storageClear)

	s.logger.Info("family data reset", zap.String("source", string(source)))
	if err != nil {
		return fmt.Errorf("failed to clear persisted snapshot: %w", err)
	}
	return nil
}

// Info returns the family metadata with live member and generation counts.
func (s *Service) Info() family.Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	info := s.info
	info.TotalMembers = s.store.Len()
	info.Generations = len(s.current.Load().generations)
	return info
}

// Search looks members up by name, relation, occupation and places. fuzzy
// restricts matching to edit distance on names.
func (s *Service) Search(query string, limit int, fuzzy bool) []search.Result {
	index := s.current.Load().index
	if fuzzy {
		return search.Fuzzy(index, query, limit)
	}
	return search.Search(index, query, limit)
}

// Path returns the kinship path between two members, or nil.
func (s *Service) Path(fromID, toID string) []graph.PathStep {
	return graph.KinshipPath(s.current.Load().tree, fromID, toID)
}

// Upcoming lists birthdays within the next days days.
func (s *Service) Upcoming(days int) []events.Occurrence {
	records := s.current.Load().records
	return events.Upcoming(events.BirthdayEvents(records), s.opts.Now(), days)
}

func (s *Service) replaceLocked(snapshot *family.Snapshot) {
	if dropped := s.store.Replace(snapshot.FamilyMembers); len(dropped) > 0 {
		s.logger.Warn("dropped members with duplicate ids", zap.Strings("ids", dropped))
	}
	s.info = snapshot.FamilyInfo
}

// commitLocked rebuilds from the store, publishes, then applies action to
// storage. It must be called with mu held and releases it; pubMu is taken
// before mu is released so commits are delivered and stored in order. Only a
// failed clear is returned; save failures are logged.
func (s *Service) commitLocked(op string, action storageAction) error {
	d := s.rebuild()
	s.current.Store(d)
	var snapshot *family.Snapshot
	if action == storageSave {
		snapshot = s.snapshotLocked(d)
		s.info = snapshot.FamilyInfo
	}
	s.opts.Metrics.CountMutation(op, true)

	s.pubMu.Lock()
	s.mu.Unlock()
	defer s.pubMu.Unlock()

	s.publish(d.tree)

	if s.repo == nil {
		return nil
	}
	switch action {
	case storageSave:
		s.persist(op, snapshot)
	case storageClear:
		if err := s.repo.Clear(); err != nil {
			s.opts.Metrics.CountPersistFailure()
			s.logger.Error("failed to clear persisted snapshot", zap.Error(err))
			return err
		}
	}
	return nil
}

func (s *Service) rebuild() *derived {
	started := time.Now()
	records := s.store.List()
	tree := graph.Build(records)
	levels := graph.ComputeLevels(tree)
	d := &derived{
		tree:        tree,
		levels:      levels,
		generations: graph.LevelsFrom(tree, levels),
		index:       search.Build(records),
		records:     records,
	}
	s.opts.Metrics.ObserveRebuild(time.Since(started), tree.Len(), len(d.generations))
	return d
}

func (s *Service) snapshotLocked(d *derived) *family.Snapshot {
	snapshot := &family.Snapshot{
		Version:       family.CurrentSnapshotVersion,
		FamilyMembers: s.store.List(),
		FamilyInfo:    s.info,
	}
	snapshot.Refresh(len(d.generations), s.opts.Now())
	return snapshot
}

func (s *Service) publish(tree *graph.Tree) {
	s.subMu.Lock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, sub := range s.listeners {
		listeners = append(listeners, sub.fn)
	}
	s.subMu.Unlock()

	for _, fn := range listeners {
		fn(tree)
	}
}

func (s *Service) persist(op string, snapshot *family.Snapshot) {
	if err := s.repo.Save(snapshot); err != nil {
		s.opts.Metrics.CountPersistFailure()
		s.logger.Warn("failed to persist snapshot, keeping in-memory state",
			zap.String("op", op),
			zap.Error(err),
		)
	}
}

// Close releases the underlying storage.
func (s *Service) Close() error {
	if s.repo == nil {
		return nil
	}
	return s.repo.Close()
}
