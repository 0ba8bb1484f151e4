// internal/app/system/syncer/mutations.go
package syncer

import (
	"context"
	"errors"

	"github.com/dalemusser/labcarbon/internal/app/system/datasource"
	"github.com/dalemusser/labcarbon/internal/app/system/events"
	"github.com/dalemusser/labcarbon/internal/domain/models"
	"go.uber.org/zap"
)

// mutationSource returns the source for the current scope.
func (o *Orchestrator) mutationSource() (datasource.DataSource, Scope, error) {
	scope := o.Scope()
	src, skip := o.source(scope)
	if skip {
		return nil, scope, datasource.ErrNoOrganization
	}
	return src, scope, nil
}

// remoteFailed stores a failed mutation's message. Unknown ids are the
// caller's mistake and leave the store's error alone.
func (o *Orchestrator) remoteFailed(op string, err error) {
	o.metrics.ObserveMutation(op, err)
	if errors.Is(err, datasource.ErrNotFound) {
		return
	}
	o.store.SetError("failed to " + op + " equipment: " + err.Error())
	o.logger.Warn("equipment mutation failed", zap.String("op", op), zap.Error(err))
}

// AddEquipment validates eq, persists it through the source and then adds
// the stored item to the store.
func (o *Orchestrator) AddEquipment(ctx context.Context, eq models.Equipment) (models.Equipment, error) {
	if problems := eq.Validate(); len(problems) > 0 {
		return models.Equipment{}, &ValidationError{Fields: problems}
	}
	src, scope, err := o.mutationSource()
	if err != nil {
		return models.Equipment{}, err
	}

	stored, err := src.Add(ctx, scope.OrganizationID, eq)
	if err != nil {
		o.remoteFailed("add", err)
		return models.Equipment{}, err
	}
	o.metrics.ObserveMutation("add", nil)
	o.store.AddEquipment(stored)
	o.events.Publish(ctx, events.Event{
		Type:           events.EquipmentAdded,
		OrganizationID: scope.OrganizationID,
		Payload:        stored,
	})
	return stored, nil
}

// UpdateEquipment validates patch, applies it through the source and then
// merges it into the store.
func (o *Orchestrator) UpdateEquipment(ctx context.Context, id string, patch models.EquipmentPatch) (models.Equipment, error) {
	if problems := patch.Validate(); len(problems) > 0 {
		return models.Equipment{}, &ValidationError{Fields: problems}
	}
	src, scope, err := o.mutationSource()
	if err != nil {
		return models.Equipment{}, err
	}

	updated, err := src.Update(ctx, scope.OrganizationID, id, patch)
	if err != nil {
		o.remoteFailed("update", err)
		return models.Equipment{}, err
	}
	o.metrics.ObserveMutation("update", nil)
	o.store.UpdateEquipment(id, patch)
	o.events.Publish(ctx, events.Event{
		Type:           events.EquipmentUpdated,
		OrganizationID: scope.OrganizationID,
		Payload:        updated,
	})
	return updated, nil
}

// RemoveEquipment deletes id through the source and then from the store.
func (o *Orchestrator) RemoveEquipment(ctx context.Context, id string) error {
	src, scope, err := o.mutationSource()
	if err != nil {
		return err
	}
	if err := src.Remove(ctx, scope.OrganizationID, id); err != nil {
		o.remoteFailed("remove", err)
		return err
	}
	o.metrics.ObserveMutation("remove", nil)
	o.store.RemoveEquipment(id)
	o.events.Publish(ctx, events.Event{
		Type:           events.EquipmentRemoved,
		OrganizationID: scope.OrganizationID,
		Payload:        map[string]string{"id": id},
	})
	return nil
}
