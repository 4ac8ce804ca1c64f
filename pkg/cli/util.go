package cli

import (
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/flowctl/flowctl/pkg/apperr"
)

func jsonUnmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func secondsToDuration(s int) time.Duration {
	return time.Duration(s) * time.Second
}

func readFileOrError(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindNotFound, apperr.CodeENOENT, "read "+path, err)
	}
	return data, nil
}

// parseHeaderFlags turns repeated "key:value" --header flags into a map,
// the shape remote.WebhookRequest.Headers expects.
func parseHeaderFlags(raw []string) map[string]string {
	if len(raw) == 0 {
		return nil
	}
	out := make(map[string]string, len(raw))
	for _, kv := range raw {
		parts := strings.SplitN(kv, ":", 2)
		if len(parts) != 2 {
			continue
		}
		out[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}
	return out
}
