package api

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annotune/annotune-api/internal/domain"
	"github.com/annotune/annotune-api/internal/store"
)

func TestParseTaskFilter(t *testing.T) {
	t.Parallel()

	t.Run("builds a full filter", func(t *testing.T) {
		t.Parallel()
		query := url.Values{
			"page":        {"2"},
			"page_size":   {"10"},
			"keyword":     {"sonata"},
			"status":      {"tagged"},
			"tagger_id":   {"7"},
			"reviewer_id": {"9"},
		}

		filter, err := parseTaskFilter(query)
		require.NoError(t, err)
		assert.Equal(t, store.TaskFilter{
			Page:       2,
			PageSize:   10,
			Keyword:    "sonata",
			Status:     domain.TaskTagged,
			TaggerID:   7,
			ReviewerID: 9,
		}, filter)
	})

	t.Run("leaves absent parameters at their zero values", func(t *testing.T) {
		t.Parallel()
		filter, err := parseTaskFilter(url.Values{})
		require.NoError(t, err)
		assert.Equal(t, store.TaskFilter{}, filter)
	})

	t.Run("rejects non-numeric parameters", func(t *testing.T) {
		t.Parallel()
		cases := map[string]string{
			"page":        "page must be an integer",
			"page_size":   "page_size must be an integer",
			"tagger_id":   "tagger_id must be an integer",
			"reviewer_id": "reviewer_id must be an integer",
		}
		for param, message := range cases {
			_, err := parseTaskFilter(url.Values{param: {"nope"}})
			require.Error(t, err)
			assert.Equal(t, message, err.Error())
		}
	})
}
