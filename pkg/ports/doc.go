/*
Package ports defines the driven ports (interfaces) of the toolshed controller.

These interfaces decouple the coordination layer from its collaborators, so the
mocked catalog, auth and payment providers of the prototype can be swapped for
real ones without touching the controller.

# Key Interfaces

  - Catalog: read-only access to tool records (builtin seed, file, Loam).
  - Authenticator: signs users in.
  - PaymentGateway: settles simulated charges after a delay.
  - SnapshotStore: persists session snapshots (memory, Redis, SQLite).
  - DistributedLocker: coordinates session access across replicas.
  - IDGenerator: produces notification and charge identifiers.
*/
package ports
