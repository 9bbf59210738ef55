package scripting

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/roomkit/internal/room"
)

// Manager creates Lua-backed function containers and tracks the live ones.
//
// Manager is safe for concurrent use.
type Manager struct {
	mu         sync.Mutex
	dir        string
	limit      int
	containers map[string]*Container
	logger     *zap.Logger
}

var _ room.ContainerFactory = (*Manager)(nil)

// NewManager creates a Manager loading behaviours from behaviorDir.
//
// Precondition: behaviorDir must be a readable directory; instLimit >= 0.
// Postcondition: Returns a non-nil Manager with no live containers, or an error.
func NewManager(behaviorDir string, instLimit int, logger *zap.Logger) (*Manager, error) {
	info, err := os.Stat(behaviorDir)
	if err != nil {
		return nil, fmt.Errorf("scripting: behavior dir %q: %w", behaviorDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scripting: behavior dir %q is not a directory", behaviorDir)
	}
	if instLimit < 0 {
		return nil, fmt.Errorf("scripting: instruction limit must be >= 0, got %d", instLimit)
	}
	return &Manager{
		dir:        behaviorDir,
		limit:      instLimit,
		containers: make(map[string]*Container),
		logger:     logger,
	}, nil
}

// NewContainer implements room.ContainerFactory.
//
// Postcondition: the returned container is tracked until it is released.
func (m *Manager) NewContainer(name string) (room.FunctionContainer, error) {
	if name == "" {
		return nil, errors.New("scripting: container name must not be empty")
	}
	c := newContainer(name, m.dir, m.limit, m.logger)
	c.onRelease = m.forget

	m.mu.Lock()
	m.containers[c.id] = c
	m.mu.Unlock()

	m.logger.Debug("scripting: container created",
		zap.String("container", name),
		zap.String("id", c.id),
	)
	return c, nil
}

// Live returns the number of containers not yet released.
func (m *Manager) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.containers)
}

// Close releases every live container.
//
// Postcondition: Live() == 0; the returned error joins every release failure.
func (m *Manager) Close() error {
	m.mu.Lock()
	live := make([]*Container, 0, len(m.containers))
	for _, c := range m.containers {
		live = append(live, c)
	}
	m.mu.Unlock()

	var errs []error
	for _, c := range live {
		if err := c.Release(); err != nil && !errors.Is(err, room.ErrContainerReleased) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Manager) forget(c *Container) {
	m.mu.Lock()
	delete(m.containers, c.id)
	m.mu.Unlock()
}
