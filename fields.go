package goform

import "github.com/zoobzio/capitan"

// Field keys for form events.
var (
	// KeyField is the name of the field the event concerns.
	KeyField = capitan.NewStringKey("field")

	// KeyTarget is the dependent field being revalidated.
	KeyTarget = capitan.NewStringKey("target")

	// KeyFrom is the element count of an array before realignment.
	KeyFrom = capitan.NewIntKey("from")

	// KeyTo is the element count of an array after realignment.
	KeyTo = capitan.NewIntKey("to")

	// KeyCount is the number of items an event covers.
	KeyCount = capitan.NewIntKey("count")

	// KeyError is the error message when an operation fails.
	KeyError = capitan.NewStringKey("error")

	// KeyDebounce is the configured settle delay.
	KeyDebounce = capitan.NewDurationKey("debounce")
)
