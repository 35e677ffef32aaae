// Package pkgfile contains file helpers shared by the file-backed stores.
//
// WriteAtomic is the only way stores put bytes on disk: data goes to a
// temporary sibling, is synced, and is renamed over the target, so a reader
// sees either the old or the new content and never a partial write.
package pkgfile
