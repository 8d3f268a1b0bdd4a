/*
Package ports defines the driven ports (interfaces) of the node graph core.

These interfaces decouple the editor and executor from external implementations,
so documents, thumbnail caches and locks can live in memory, on disk or in Redis.

# Key Interfaces

  - DocumentLoader: loads node networks by name (e.g., from files or memory).
  - ThumbnailStore: caches rendered per-node thumbnails keyed by document, layer and node path.
  - DistributedLocker: serializes edits to one document across multiple instances.
  - IDGenerator: supplies fresh node ids to insert, duplicate and paste.
*/
package ports
