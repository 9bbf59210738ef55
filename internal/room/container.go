package room

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// FunctionContainer is an opaque handle to behaviour shared by one or more
// rooms of the same kind. The extractor only names, attaches and releases it.
type FunctionContainer interface {
	// Name returns the container's display name.
	Name() string
	// AttachBehavior adds a named room behaviour to the container.
	AttachBehavior(behavior string) error
	// Release frees the container's resources. Further use is an error.
	Release() error
}

// ContainerFactory creates fresh function containers.
type ContainerFactory interface {
	NewContainer(name string) (FunctionContainer, error)
}

// ContainerSuffix is appended to a room name to name its own container.
const ContainerSuffix = "FunctionContainer"

// ErrContainerReleased is returned when a released container is used.
var ErrContainerReleased = errors.New("function container released")

// BasicContainer is an in-memory FunctionContainer that records the names
// of its behaviours.
type BasicContainer struct {
	mu        sync.Mutex
	id        string
	name      string
	behaviors []string
	released  bool
}

var _ FunctionContainer = (*BasicContainer)(nil)

// NewBasicContainer returns a container with a fresh instance id.
func NewBasicContainer(name string) *BasicContainer {
	return &BasicContainer{id: uuid.New().String(), name: name, behaviors: []string{}}
}

// ID returns the unique instance id.
func (c *BasicContainer) ID() string { return c.id }

// Name implements FunctionContainer.
func (c *BasicContainer) Name() string { return c.name }

// AttachBehavior implements FunctionContainer.
func (c *BasicContainer) AttachBehavior(behavior string) error {
	if behavior == "" {
		return fmt.Errorf("container %q: behavior name must not be empty", c.name)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return fmt.Errorf("container %q: %w", c.name, ErrContainerReleased)
	}
	c.behaviors = append(c.behaviors, behavior)
	return nil
}

// Behaviors returns a copy of the attached behaviour names.
func (c *BasicContainer) Behaviors() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.behaviors...)
}

// Release implements FunctionContainer.
func (c *BasicContainer) Release() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return fmt.Errorf("container %q: %w", c.name, ErrContainerReleased)
	}
	c.released = true
	c.behaviors = nil
	return nil
}

// BasicContainerFactory creates BasicContainers.
type BasicContainerFactory struct{}

var _ ContainerFactory = BasicContainerFactory{}

// NewBasicContainerFactory returns the default container factory.
func NewBasicContainerFactory() BasicContainerFactory { return BasicContainerFactory{} }

// NewContainer implements ContainerFactory.
func (BasicContainerFactory) NewContainer(name string) (FunctionContainer, error) {
	if name == "" {
		return nil, errors.New("container name must not be empty")
	}
	return NewBasicContainer(name), nil
}
