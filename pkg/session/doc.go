/*
Package session implements session management and persistence orchestration.

It keeps one live toolshed.Controller per session id, serializes access per
session (and across replicas when a distributed locker is configured) and
saves a snapshot to a ports.SnapshotStore after every operation, so a session
survives a restart with its route, compare tray, wizards and user intact.
Toasts and pending checkouts are transient and do not survive.
*/
package session
