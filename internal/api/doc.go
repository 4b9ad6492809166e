// Package api handles incoming HTTP requests, request validation, and
// response formatting for the generation endpoints, including the NDJSON
// progress stream. It adapts between external clients and the application
// services, translating HTTP concerns to business operations.
package api
