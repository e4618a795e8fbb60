package memory

import (
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/jms/internal/domain"
)

// timelineRepositoryInMemory хранит события жизненного цикла заказов в памяти.
type timelineRepositoryInMemory struct {
	mu     sync.RWMutex
	events map[string][]domain.TimelineEvent
}

// NewTimelineRepository возвращает in-memory хранилище timeline-событий.
func NewTimelineRepository() domain.TimelineRepository {
	return &timelineRepositoryInMemory{
		events: make(map[string][]domain.TimelineEvent),
	}
}

// Append добавляет событие в историю заказа.
func (r *timelineRepositoryInMemory) Append(event domain.TimelineEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events[event.OrderID] = append(r.events[event.OrderID], event)
	return nil
}

// List возвращает события заказа в хронологическом порядке.
func (r *timelineRepositoryInMemory) List(orderID string) ([]domain.TimelineEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	events := r.events[orderID]
	result := make([]domain.TimelineEvent, len(events))
	copy(result, events)

	sort.Slice(result, func(i, j int) bool {
		return result[i].Occurred.Before(result[j].Occurred)
	})

	return result, nil
}

// DeleteByOrder удаляет историю заказа и возвращает число удалённых событий.
func (r *timelineRepositoryInMemory) DeleteByOrder(orderID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	deleted := len(r.events[orderID])
	delete(r.events, orderID)
	return deleted, nil
}

var _ domain.TimelineRepository = (*timelineRepositoryInMemory)(nil)
