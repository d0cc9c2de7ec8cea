// Package habits owns the habit lifecycle: create, edit in place, soft delete
// with restore, and irreversible purge.
package habits

import (
	stderrors "errors"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/julianstephens/tally/internal/constants"
	"github.com/julianstephens/tally/internal/errors"
	"github.com/julianstephens/tally/internal/logger"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/validation"
)

// Store is the habit persistence the service needs
type Store interface {
	AddHabit(models.Habit) error
	GetHabit(id string) (models.Habit, error)
	GetHabitByName(ownerID, name string) (models.Habit, error)
	GetAllHabits(ownerID string, includeDeleted bool) ([]models.Habit, error)
	UpdateHabit(models.Habit) error
	DeleteHabit(id string) error
	RestoreHabit(id string) error
	PurgeHabit(id string) error
}

// Cache is told when a habit's entries no longer exist
type Cache interface {
	Forget(habitID string)
}

type Service struct {
	store Store
	cache Cache
	now   func() time.Time
	log   *log.Logger
}

// NewService creates a service over store. cache may be nil.
func NewService(store Store, cache Cache) *Service {
	return &Service{
		store: store,
		cache: cache,
		now:   time.Now,
		log:   logger.Component("habits"),
	}
}

// SetClock replaces the service's notion of "now". Intended for tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Create fills defaults, validates and stores a new habit
func (s *Service) Create(h models.Habit) (models.Habit, error) {
	now := s.now()
	if h.ID == "" {
		h.ID = uuid.New().String()
	}
	if h.OwnerID == "" {
		h.OwnerID = constants.GuestOwnerID
	}
	if h.Kind == "" {
		h.Kind = constants.HabitKindFormation
	}
	if h.Schedule.Type == "" {
		h.Schedule.Type = constants.ScheduleDaily
	}
	if h.GoalAmount == 0 && h.Kind == constants.HabitKindFormation {
		h.GoalAmount = 1
	}
	if h.StartDate == "" {
		h.StartDate = now.Format(constants.DateFormat)
	}
	h.Name = strings.TrimSpace(h.Name)
	h.CreatedAt = now
	h.UpdatedAt = now
	h.SyncedAt = nil
	h.DeletedAt = nil

	if err := validation.ValidateHabit(h); err != nil {
		return models.Habit{}, err
	}
	if err := s.ensureNameFree(h.OwnerID, h.Name, h.ID); err != nil {
		return models.Habit{}, err
	}

	if err := s.store.AddHabit(h); err != nil {
		s.log.Error("Failed to add habit", "name", h.Name, "error", err)
		return models.Habit{}, wrap("add habit", err)
	}
	s.log.Info("Created habit", "id", h.ID, "name", h.Name, "owner", h.OwnerID)
	return h, nil
}

// Update edits a habit in place. The edit is stamped and the habit is marked
// for re-sync. CreatedAt and the owner cannot change.
func (s *Service) Update(h models.Habit) (models.Habit, error) {
	existing, err := s.Get(h.ID)
	if err != nil {
		return models.Habit{}, err
	}

	h.Name = strings.TrimSpace(h.Name)
	h.OwnerID = existing.OwnerID
	h.CreatedAt = existing.CreatedAt
	h.DeletedAt = existing.DeletedAt
	h.Touch(s.now())

	if err := validation.ValidateHabit(h); err != nil {
		return models.Habit{}, err
	}
	if !strings.EqualFold(h.Name, existing.Name) {
		if err := s.ensureNameFree(h.OwnerID, h.Name, h.ID); err != nil {
			return models.Habit{}, err
		}
	}

	if err := s.store.UpdateHabit(h); err != nil {
		s.log.Error("Failed to update habit", "id", h.ID, "error", err)
		return models.Habit{}, wrap("update habit", err)
	}
	s.log.Info("Updated habit", "id", h.ID, "name", h.Name)
	return h, nil
}

// Get returns an active habit by id
func (s *Service) Get(id string) (models.Habit, error) {
	h, err := s.store.GetHabit(id)
	if err != nil {
		return models.Habit{}, wrap("get habit", err)
	}
	return h, nil
}

// GetByName returns an active habit of the owner by case-insensitive name
func (s *Service) GetByName(ownerID, name string) (models.Habit, error) {
	h, err := s.store.GetHabitByName(ownerID, strings.TrimSpace(name))
	if err != nil {
		return models.Habit{}, wrap("get habit", err)
	}
	return h, nil
}

// Resolve finds a habit of the owner by id or by name. Deleted habits are
// only matched when includeDeleted is set.
func (s *Service) Resolve(ownerID, ref string, includeDeleted bool) (models.Habit, error) {
	ref = strings.TrimSpace(ref)
	if !includeDeleted {
		if h, err := s.GetByName(ownerID, ref); err == nil {
			return h, nil
		} else if !stderrors.Is(err, errors.ErrNotFound) {
			return models.Habit{}, err
		}
	}

	all, err := s.List(ownerID, includeDeleted)
	if err != nil {
		return models.Habit{}, err
	}
	var byName *models.Habit
	for i := range all {
		if all[i].ID == ref {
			return all[i], nil
		}
		if byName == nil && strings.EqualFold(all[i].Name, ref) {
			byName = &all[i]
		}
	}
	if byName != nil {
		return *byName, nil
	}
	return models.Habit{}, errors.NotFound("habit " + ref)
}

// List returns the owner's habits in creation order
func (s *Service) List(ownerID string, includeDeleted bool) ([]models.Habit, error) {
	habits, err := s.store.GetAllHabits(ownerID, includeDeleted)
	if err != nil {
		return nil, wrap("list habits", err)
	}
	return habits, nil
}

// Delete soft-deletes a habit. Its entries are kept.
func (s *Service) Delete(id string) error {
	if err := s.store.DeleteHabit(id); err != nil {
		return wrap("delete habit", err)
	}
	s.log.Info("Deleted habit", "id", id)
	return nil
}

// Restore clears a habit's tombstone. It fails if another active habit
// took the name in the meantime.
func (s *Service) Restore(ownerID, id string) (models.Habit, error) {
	deleted, err := s.Resolve(ownerID, id, true)
	if err != nil {
		return models.Habit{}, err
	}
	if !deleted.IsDeleted() {
		return models.Habit{}, errors.Invalid("habit %q is not deleted", deleted.Name)
	}
	if err := s.ensureNameFree(deleted.OwnerID, deleted.Name, deleted.ID); err != nil {
		return models.Habit{}, err
	}
	if err := s.store.RestoreHabit(deleted.ID); err != nil {
		return models.Habit{}, wrap("restore habit", err)
	}
	s.log.Info("Restored habit", "id", deleted.ID)
	return s.Get(deleted.ID)
}

// Purge permanently removes a habit and all of its completion entries
func (s *Service) Purge(id string) error {
	if err := s.store.PurgeHabit(id); err != nil {
		return wrap("purge habit", err)
	}
	if s.cache != nil {
		s.cache.Forget(id)
	}
	s.log.Warn("Purged habit", "id", id)
	return nil
}

func (s *Service) ensureNameFree(ownerID, name, selfID string) error {
	other, err := s.store.GetHabitByName(ownerID, name)
	switch {
	case err == nil && other.ID != selfID:
		return errors.Invalid("habit with name %q already exists", name)
	case err == nil, stderrors.Is(err, errors.ErrNotFound):
		return nil
	default:
		return wrap("check habit name", err)
	}
}

// wrap passes through errors that already carry a kind and marks the rest as
// storage failures.
func wrap(op string, err error) error {
	if errors.Kind(err) != nil {
		return err
	}
	return errors.Storage(op, err)
}
