// Package history tracks and persists the user's completed downloads.
package history

import (
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/metafates/gache"
	"github.com/tokgrab-cli/tokgrab/filesystem"
	"github.com/tokgrab-cli/tokgrab/media"
	"github.com/tokgrab-cli/tokgrab/where"
	"golang.org/x/exp/slices"
)

// cacher provides an abstracted, disk-backed registry for download records.
var cacher = gache.New[map[string]*SavedDownload](
	&gache.Options{
		Path:       where.History(),
		FileSystem: &filesystem.GacheFs{},
	},
)

// Get returns the complete collection of download records from the
// persistent store.
func Get() (map[string]*SavedDownload, error) {
	cached, expired, err := cacher.Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return make(map[string]*SavedDownload), nil
	}
	return cached, nil
}

// Save persists one completed download to the history registry. Re-downloading
// the same reference overwrites the previous record.
func Save(reference string, result media.Media, path string) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	record := newSavedDownload(reference, result, path)
	saved[record.encode()] = record

	return cacher.Set(saved)
}

// Remove permanently deletes a specific download record from the registry.
func Remove(record *SavedDownload) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	delete(saved, record.encode())
	return cacher.Set(saved)
}

// Search returns the records whose author, description or reference fuzzily
// matches the query, newest first.
func Search(query string) ([]*SavedDownload, error) {
	saved, err := Get()
	if err != nil {
		return nil, err
	}

	var matched []*SavedDownload
	for _, record := range saved {
		if fuzzy.MatchFold(query, record.Author) ||
			fuzzy.MatchFold(query, record.Description) ||
			fuzzy.MatchFold(query, record.Reference) {
			matched = append(matched, record)
		}
	}

	slices.SortFunc(matched, func(a, b *SavedDownload) int {
		return b.DownloadedAt.Compare(a.DownloadedAt)
	})

	return matched, nil
}
