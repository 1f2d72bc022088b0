// Package usecase implements the business operations of the system behind
// one generic execution pipeline: schema validation, seven-point lifecycle
// hooks, and transactional persistence through the unit of work.
package usecase

import (
	"errors"
	"fmt"

	"github.com/wolfeidau/tenantd/internal/models"
	"github.com/wolfeidau/tenantd/internal/schema"
	"github.com/wolfeidau/tenantd/internal/store"
)

// Config customizes a Service: lifecycle hooks keyed by operation name,
// per-entity custom-field schemas, and replaceable ports.
type Config struct {
	Hooks        map[string]Hooks
	CustomFields map[string]schema.Config

	Clock   Clock
	IDs     IDGenerator
	Metrics Metrics
}

// Service exposes one method per use case. Merged validators are built
// once at construction and reused for every invocation.
type Service struct {
	uow     store.UnitOfWork
	clock   Clock
	ids     IDGenerator
	metrics Metrics
	hooks   map[string]Hooks

	validators  map[string]*schema.Merged // per operation
	translators map[string]*schema.Merged // per entity, custom fields only
	cores       map[string]schema.Definition
}

// New builds a Service over the unit of work. Construction fails with a
// SchemaConflictError when a custom field collides with a core field or
// when two fields map onto the same storage column.
func New(uow store.UnitOfWork, cfg Config) (*Service, error) {
	s := &Service{
		uow:         uow,
		clock:       cfg.Clock,
		ids:         cfg.IDs,
		metrics:     cfg.Metrics,
		hooks:       cfg.Hooks,
		validators:  make(map[string]*schema.Merged),
		translators: make(map[string]*schema.Merged),
		cores:       make(map[string]schema.Definition),
	}
	if s.clock == nil {
		s.clock = SystemClock{}
	}
	if s.ids == nil {
		s.ids = UUIDGenerator{}
	}
	if s.metrics == nil {
		s.metrics = nopMetrics{}
	}
	if s.hooks == nil {
		s.hooks = make(map[string]Hooks)
	}

	for name := range s.hooks {
		if _, known := opSchemas()[name]; !known {
			return nil, fmt.Errorf("hooks registered for unknown operation %q", name)
		}
	}

	for entity, entityCfg := range cfg.CustomFields {
		switch entity {
		case EntityUser, EntityOrganization, EntityMembership:
		default:
			return nil, fmt.Errorf("custom fields configured for unknown entity %q", entity)
		}
		translator, err := schema.Merge(schema.Definition{}, entityCfg)
		if err != nil {
			return nil, err
		}
		s.translators[entity] = translator
	}

	for name, os := range opSchemas() {
		entityCfg := schema.Config{}
		if os.entity != "" {
			entityCfg = cfg.CustomFields[os.entity]
		}
		// The validator merges custom fields for validation only; renaming
		// to storage shape goes through the entity translator.
		merged, err := schema.Merge(os.core, schema.Config{Custom: entityCfg.Custom})
		if err != nil {
			return nil, err
		}
		s.validators[name] = merged
		s.cores[name] = os.core
	}

	return s, nil
}

// toStorage translates external custom field names into storage shape.
func (s *Service) toStorage(entity string, custom map[string]any) map[string]any {
	if custom == nil {
		return nil
	}
	if t, ok := s.translators[entity]; ok {
		return t.ToStorage(custom)
	}
	return custom
}

// fromStorage is the inverse of toStorage.
func (s *Service) fromStorage(entity string, custom map[string]any) map[string]any {
	if len(custom) == 0 {
		return nil
	}
	if t, ok := s.translators[entity]; ok {
		return t.FromStorage(custom)
	}
	return custom
}

// translateStoreError maps store sentinel errors onto domain error kinds.
// PersistenceErrors pass through unchanged.
func translateStoreError(err error) error {
	switch {
	case errors.Is(err, store.ErrUserNotFound):
		return &models.NotFoundError{Resource: "user"}
	case errors.Is(err, store.ErrOrganizationNotFound):
		return &models.NotFoundError{Resource: "organization"}
	case errors.Is(err, store.ErrMembershipNotFound):
		return &models.NotFoundError{Resource: "membership"}
	case errors.Is(err, store.ErrUserAlreadyExists):
		return &models.ConflictError{Reason: "user already exists"}
	case errors.Is(err, store.ErrMembershipAlreadyExists):
		return &models.ConflictError{Reason: "user already has a membership in this organization"}
	case errors.Is(err, store.ErrOwnerAlreadyExists):
		return &models.ConflictError{Reason: "organization already has an owner"}
	}
	return err
}
