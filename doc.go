package manifests

// This package defines common methods and operations for producing IIIF Presentation (v3) Manifest and Collection documents from archival description records. Common operations include: resolving archival hierarchies (EAD finding aids, JSON feeds, CSV document registers), building manifests at inventory or document granularity, grouping manifests in to collections and publishing the resulting JSON-LD documents.
