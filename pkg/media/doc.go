// Package media owns the lifecycle of stored image assets.
//
// A Media row points at an original file and, optionally, at the default variant
// (thumb_path). Rows are cheap to duplicate: several rows may point at the same
// physical files, for example when one product image is attached to a category
// banner as well. Because of that, bytes are only removed when no other row still
// references them.
//
// The Manager ingests uploads (validate, store the original, encode variants,
// persist one row) and deletes them (ask the Ledger about every path, delete the
// unreferenced files, remove the row). The Ledger always queries the record store;
// its answers must not be cached.
//
// Check-then-delete is not atomic. Two concurrent deletions of rows sharing a path
// may both see the other row and both keep the file. The orphan is accepted; the
// reverse outcome (deleting a file a live row displays) is not possible with this
// ordering because a row is only removed after its own checks.
package media
