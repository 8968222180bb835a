// Package memory is an in-process implementation of the repositories used
// for development without PostgreSQL and in tests. One RWMutex guards every
// table; a transaction holds the write lock for its whole duration and
// restores a snapshot on error.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/acesped/portal/internal/app/models"
	"github.com/acesped/portal/internal/app/repositories"
)

type tables struct {
	seq map[string]int64

	users         map[int64]models.User
	applications  map[int64]models.Application
	exercises     map[string]models.AdmissionExercise
	students      map[int64]models.Student
	programmes    map[int64]models.StudentProgramme
	programs      map[int64]models.Program
	courses       map[int64]models.Course
	registrations map[int64]models.Registration
	accessCodes   map[string]models.AccessCode
	projects      map[int64]models.Project
	settings      map[string]models.SystemSetting
}

func newTables() *tables {
	return &tables{
		seq:           make(map[string]int64),
		users:         make(map[int64]models.User),
		applications:  make(map[int64]models.Application),
		exercises:     make(map[string]models.AdmissionExercise),
		students:      make(map[int64]models.Student),
		programmes:    make(map[int64]models.StudentProgramme),
		programs:      make(map[int64]models.Program),
		courses:       make(map[int64]models.Course),
		registrations: make(map[int64]models.Registration),
		accessCodes:   make(map[string]models.AccessCode),
		projects:      make(map[int64]models.Project),
		settings:      make(map[string]models.SystemSetting),
	}
}

func (t *tables) nextID(table string) int64 {
	t.seq[table]++
	return t.seq[table]
}

func (t *tables) clone() *tables {
	c := newTables()
	for k, v := range t.seq {
		c.seq[k] = v
	}
	for k, v := range t.users {
		c.users[k] = v
	}
	for k, v := range t.applications {
		c.applications[k] = v
	}
	for k, v := range t.exercises {
		v.Components = cloneComponents(v.Components)
		c.exercises[k] = v
	}
	for k, v := range t.students {
		c.students[k] = v
	}
	for k, v := range t.programmes {
		c.programmes[k] = v
	}
	for k, v := range t.programs {
		c.programs[k] = v
	}
	for k, v := range t.courses {
		v.LecturerIDs = cloneIDs(v.LecturerIDs)
		c.courses[k] = v
	}
	for k, v := range t.registrations {
		c.registrations[k] = v
	}
	for k, v := range t.accessCodes {
		v.AccessTo = cloneIDs(v.AccessTo)
		c.accessCodes[k] = v
	}
	for k, v := range t.projects {
		c.projects[k] = v
	}
	for k, v := range t.settings {
		c.settings[k] = v
	}
	return c
}

func cloneIDs(ids []int64) []int64 {
	if ids == nil {
		return nil
	}
	out := make([]int64, len(ids))
	copy(out, ids)
	return out
}

func cloneComponents(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Store is the shared in-memory database.
type Store struct {
	mu sync.RWMutex
	t  *tables
}

func NewStore() *Store {
	return &Store{t: newTables()}
}

// conn is what each repository holds. Outside a transaction it takes the
// store's lock per call; inside one the lock is already held.
type conn struct {
	store *Store
	inTx  bool
}

func (c conn) read(fn func(t *tables) error) error {
	if !c.inTx {
		c.store.mu.RLock()
		defer c.store.mu.RUnlock()
	}
	return fn(c.store.t)
}

func (c conn) write(fn func(t *tables) error) error {
	if !c.inTx {
		c.store.mu.Lock()
		defer c.store.mu.Unlock()
	}
	return fn(c.store.t)
}

// NewRepositories returns repositories backed by s.
func NewRepositories(s *Store) *repositories.Repositories {
	repos := newRepositories(conn{store: s})
	repos.Transactor = &transactor{store: s}
	return repos
}

func newRepositories(c conn) *repositories.Repositories {
	return &repositories.Repositories{
		Users:         &userRepository{c},
		Applications:  &applicationRepository{c},
		Exercises:     &exerciseRepository{c},
		Students:      &studentRepository{c},
		Programmes:    &programmeRepository{c},
		Programs:      &programRepository{c},
		Courses:       &courseRepository{c},
		Registrations: &registrationRepository{c},
		AccessCodes:   &accessCodeRepository{c},
		Projects:      &projectRepository{c},
		Settings:      &settingRepository{c},
	}
}

type transactor struct {
	store *Store
}

func (tx *transactor) WithinTransaction(ctx context.Context, fn repositories.TxFn) (err error) {
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()

	snapshot := tx.store.t.clone()
	defer func() {
		if r := recover(); r != nil {
			tx.store.t = snapshot
			panic(r)
		}
		if err != nil {
			tx.store.t = snapshot
		}
	}()

	repos := newRepositories(conn{store: tx.store, inTx: true})
	repos.Transactor = nestedTransactor{repos: repos}
	return fn(ctx, repos)
}

type nestedTransactor struct {
	repos *repositories.Repositories
}

func (n nestedTransactor) WithinTransaction(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx, n.repos)
}
