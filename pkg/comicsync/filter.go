package comicsync

import (
	"strings"

	"github.com/comicfinder/comicfinder/pkg/comicvine"
	"github.com/comicfinder/comicfinder/pkg/config"
)

// PublisherFilter decides whether an issue's volume belongs to the tracked
// publisher.
type PublisherFilter struct {
	Name string
	// Exact switches from a case-insensitive substring match to case-sensitive
	// equality.
	Exact bool
}

func NewPublisherFilter(cfg *config.Config) PublisherFilter {
	return PublisherFilter{
		Name:  cfg.PublisherName,
		Exact: cfg.PublisherMatch == config.PublisherMatchExact,
	}
}

// Accept reports whether issues of vol should be kept. A nil volume means the
// issue had no volume reference or the lookup didn't return it, and is
// accepted since there's nothing to reject it on.
func (f PublisherFilter) Accept(vol *comicvine.Volume) bool {
	if vol == nil {
		return true
	}

	publisher := ""
	if vol.Publisher != nil {
		publisher = strings.TrimSpace(vol.Publisher.Name)
	}

	if f.Exact {
		return publisher == f.Name
	}
	return strings.Contains(strings.ToLower(publisher), strings.ToLower(f.Name))
}
