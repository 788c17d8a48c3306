// Package extractor recognizes the known URL shapes of short-form-video
// references, extracts the video identifier, and canonicalizes short links by
// following their redirects.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/tokgrab-cli/tokgrab/log"
	"github.com/tokgrab-cli/tokgrab/util"
)

// ErrInvalidReference indicates the input matches no known link shape and
// redirect resolution did not produce one either.
var ErrInvalidReference = errors.New("reference does not match any known video link shape")

// longForm matches the canonical desktop share link.
var longForm = regexp.MustCompile(`^https?://(?:www\.|m\.)?tiktok\.com/@(?P<user>[\w.\-]+)/video/(?P<id>\d+)`)

// shortForm matches the mobile share links that redirect to the long form.
var shortForm = regexp.MustCompile(`^https?://(?:vm|vt)\.tiktok\.com/(?P<code>[\w]+)`)

// legacyForm matches the old mobile web player links.
var legacyForm = regexp.MustCompile(`^https?://m\.tiktok\.com/v/(?P<id>\d+)`)

// Normalize trims surrounding whitespace and lowercases the scheme and host.
// Path and query are preserved byte-for-byte since identifiers are
// case-sensitive. The result is what the engine hashes for cache keys.
func Normalize(reference string) string {
	reference = strings.TrimSpace(reference)

	schemeEnd := strings.Index(reference, "://")
	if schemeEnd < 0 {
		return reference
	}

	rest := reference[schemeEnd+3:]
	hostEnd := strings.IndexAny(rest, "/?#")
	if hostEnd < 0 {
		hostEnd = len(rest)
	}

	return strings.ToLower(reference[:schemeEnd+3]+rest[:hostEnd]) + rest[hostEnd:]
}

// VideoID extracts the numeric video identifier from a long-form or legacy
// reference. Short links carry no identifier before redirect resolution.
func VideoID(reference string) (string, bool) {
	for _, pattern := range []*regexp.Regexp{longForm, legacyForm} {
		if groups := util.ReGroups(pattern, reference); groups["id"] != "" {
			return groups["id"], true
		}
	}
	return "", false
}

// IsShortLink reports whether the reference is a redirecting share link.
func IsShortLink(reference string) bool {
	return shortForm.MatchString(reference)
}

// Matches reports whether the reference has any known shape.
func Matches(reference string) bool {
	return longForm.MatchString(reference) ||
		shortForm.MatchString(reference) ||
		legacyForm.MatchString(reference)
}

// Canonicalize validates and normalizes a reference, following redirects for
// short links so that every equivalent input maps to the same canonical URL.
// It fails with ErrInvalidReference when no shape matches.
func Canonicalize(ctx context.Context, reference string, client *http.Client) (string, error) {
	reference = Normalize(reference)

	if longForm.MatchString(reference) || legacyForm.MatchString(reference) {
		return reference, nil
	}

	if !shortForm.MatchString(reference) {
		return "", fmt.Errorf("%w: %s", ErrInvalidReference, reference)
	}

	resolved, err := followRedirect(ctx, reference, client)
	if err != nil {
		log.Errorf("resolving short link %s: %v", reference, err)
		return "", fmt.Errorf("%w: %s", ErrInvalidReference, reference)
	}

	resolved = Normalize(resolved)
	if !longForm.MatchString(resolved) && !legacyForm.MatchString(resolved) {
		return "", fmt.Errorf("%w: %s", ErrInvalidReference, reference)
	}

	return resolved, nil
}

// followRedirect issues a single HEAD request and reports where the short
// link points. Share links answer with one 301 hop.
func followRedirect(ctx context.Context, reference string, client *http.Client) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, reference, nil)
	if err != nil {
		return "", err
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	// The client follows redirects itself; the final request URL is the target.
	return resp.Request.URL.String(), nil
}
