// Package events provides types and interfaces for an event-driven architecture.
//
// This package defines event types and handler interfaces that allow for loose
// coupling between components in the system. The API-facing services emit
// batch requests without knowing which handlers will process them; the handler
// side builds the batch job and hands it to the supervising registry. This
// keeps the HTTP layer free of pipeline dependencies and avoids circular
// imports between services and the batch package.
//
// The primary components are:
// - BatchRequestEvent: Represents a request to run a generation batch
// - EventHandler: Interface for components that can handle events
// - EventEmitter: Interface for components that can emit events
package events
