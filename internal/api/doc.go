// Package api exposes the task board over HTTP: account and session
// endpoints, task CRUD, and the /ws websocket that streams task changes. It
// decodes and validates requests, calls the services, and maps domain errors
// onto status codes and safe messages.
package api
