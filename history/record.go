package history

import (
	"fmt"
	"time"

	"github.com/tokgrab-cli/tokgrab/media"
)

// SavedDownload represents a single completed download preserved in the
// user's history.
type SavedDownload struct {
	Reference    string    `json:"reference"`
	Provider     string    `json:"provider"`
	Author       string    `json:"author"`
	Description  string    `json:"description"`
	Quality      string    `json:"quality"`
	Path         string    `json:"path"`
	DownloadedAt time.Time `json:"downloaded_at"`
}

func (s *SavedDownload) encode() string {
	return s.Reference
}

func (s *SavedDownload) String() string {
	author := s.Author
	if author == "" {
		author = "unknown author"
	}
	return fmt.Sprintf("%s via %s (%s)", author, s.Provider, s.DownloadedAt.Format("2006-01-02 15:04"))
}

func newSavedDownload(reference string, result media.Media, path string) *SavedDownload {
	return &SavedDownload{
		Reference:    reference,
		Provider:     result.Provider,
		Author:       result.Author,
		Description:  result.Description,
		Quality:      result.Quality.String(),
		Path:         path,
		DownloadedAt: time.Now(),
	}
}
