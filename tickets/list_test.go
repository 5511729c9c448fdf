package tickets

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeList(t *testing.T) {
	for name, body := range map[string]string{
		"bare array": `[{"id":1,"title":"a"},{"id":2,"title":"b"}]`,
		"paginated":  `{"count":2,"next":null,"previous":null,"results":[{"id":1,"title":"a"},{"id":2,"title":"b"}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			var out []Ticket
			require.NoError(t, decodeList(json.RawMessage(body), &out))
			require.Len(t, out, 2)
			require.Equal(t, "b", out[1].Title)
		})
	}

	t.Run("empty", func(t *testing.T) {
		var out []Ticket
		require.NoError(t, decodeList(nil, &out))
		require.Empty(t, out)
	})

	t.Run("malformed", func(t *testing.T) {
		var out []Ticket
		require.Error(t, decodeList(json.RawMessage(`{"results":`), &out))
	})
}

func TestNormalize(t *testing.T) {
	p, err := NormalizePriority(" HIGH ")
	require.NoError(t, err)
	require.Equal(t, PriorityHigh, p)

	_, err = NormalizePriority("critical")
	require.ErrorIs(t, err, ErrInvalidTicket)

	s, err := NormalizeStatus("Closed")
	require.NoError(t, err)
	require.Equal(t, StatusClosed, s)
}
