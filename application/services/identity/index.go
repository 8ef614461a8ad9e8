package identity

import (
	"context"

	"facegate.io/application/constants"
	"facegate.io/application/repository"
	"facegate.io/entities"
	"facegate.io/infrastructure/database/repository/cache"
	"facegate.io/infrastructure/logger"
)

// Store is the mongo-backed enrolled population with redis-driven change
// notifications. It satisfies the detection loop's identity store contract.
type Store struct{}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) LoadAll(ctx context.Context) ([]entities.Employee, error) {
	return repository.EmployeeRepo().FindMany(ctx, map[string]interface{}{
		"active":    true,
		"deletedAt": nil,
	})
}

// Subscribe reloads the whole population whenever anything publishes to the
// employees-changed channel. Notifications carry no payload; the reload is
// the source of truth.
func (s *Store) Subscribe(ctx context.Context, onChange func([]entities.Employee)) error {
	return cache.Cache.Subscribe(ctx, constants.EMPLOYEES_CHANGED_CHANNEL, func(string) {
		employees, err := s.LoadAll(ctx)
		if err != nil {
			logger.Error("reloading employees after change notification failed", logger.LoggerOptions{
				Key:  "error",
				Data: err,
			})
			return
		}
		onChange(employees)
	})
}

// NotifyChanged tells every running session to reload the population.
func NotifyChanged() {
	cache.Cache.Publish(constants.EMPLOYEES_CHANGED_CHANNEL, "changed")
}
