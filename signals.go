package goform

import "github.com/zoobzio/capitan"

// Form lifecycle signals.
var (
	// FormCreated is emitted when New finishes wiring a form.
	FormCreated = capitan.NewSignal(
		"goform.form.created",
		"Form constructed and wired",
	)

	// FormClosed is emitted when Close releases a form's subscriptions.
	FormClosed = capitan.NewSignal(
		"goform.form.closed",
		"Form subscriptions released",
	)
)

// Field state signals.
var (
	// FieldDisabled is emitted when a disable rule turns a field off.
	FieldDisabled = capitan.NewSignal(
		"goform.field.disabled",
		"Field disabled by rule",
	)

	// FieldEnabled is emitted when a disable rule turns a field back on.
	FieldEnabled = capitan.NewSignal(
		"goform.field.enabled",
		"Field enabled by rule",
	)

	// ArrayRealigned is emitted when an array field grows or shrinks to match
	// an incoming value.
	ArrayRealigned = capitan.NewSignal(
		"goform.array.realigned",
		"Array element count realigned",
	)

	// ValidatorsUpdated is emitted after UpdateValidators attaches validators.
	ValidatorsUpdated = capitan.NewSignal(
		"goform.validators.updated",
		"Validators attached to fields",
	)

	// SelectSyncFailed is emitted when a field value cannot be mirrored into
	// its select model.
	SelectSyncFailed = capitan.NewSignal(
		"goform.select.sync.failed",
		"Select model rejected field value",
	)
)

// Dependency signals.
var (
	// DependencyScheduled is emitted when a change to a source field queues
	// revalidation of a dependent field.
	DependencyScheduled = capitan.NewSignal(
		"goform.dependency.scheduled",
		"Dependent field queued for revalidation",
	)

	// DependenciesSettled is emitted after queued dependent fields were
	// revalidated.
	DependenciesSettled = capitan.NewSignal(
		"goform.dependencies.settled",
		"Queued dependent fields revalidated",
	)
)
