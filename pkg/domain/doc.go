/*
Package domain contains the core models of the toolshed coordination layer.

It defines the closed set of screens, the typed routes that carry each
screen's parameters, the catalog and comparison records, notifications,
the session context and the serializable Snapshot of a controller. The
package is pure: no I/O, no timers, no persistence.

# Key Entities

  - Screen: one member of the closed set of views (landing, discover, ...).
  - Route: a sum type with one struct per screen (ToolDetail, Discover, ...).
  - Tool / ComparisonItem: catalog records and their compare-tray projection.
  - Notification: a transient toast with severity and time-to-live.
  - Snapshot: what a session persists (route, tray, wizards, context).
*/
package domain
