package dedup

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/gentoomaniac/rmqbackup/pkg/dump"
)

// Stats summarizes one dedup pass.
type Stats struct {
	Read int
	Kept int
}

func (s Stats) Removed() int {
	return s.Read - s.Kept
}

// File removes duplicate logical messages from one dump file in a single
// forward pass, first occurrence wins. With inplace the file is rewritten via
// a temporary sibling and an atomic rename; otherwise a .dedup sibling is
// produced and the original stays untouched.
func File(path string, inplace bool) (Stats, error) {
	var stats Stats

	if _, err := os.Stat(path); err != nil {
		return stats, err
	}

	outPath := strings.TrimSuffix(path, dump.Suffix) + ".dedup" + dump.Suffix
	if inplace {
		outPath = path + ".tmp"
	}

	src, err := dump.Open(path)
	if err != nil {
		return stats, err
	}
	defer src.Close()

	dst, err := dump.Create(outPath)
	if err != nil {
		return stats, err
	}

	seen := make(map[string]struct{})
	for {
		line, ok := src.Next()
		if !ok {
			break
		}
		stats.Read++

		var record dump.Record
		if err := json.Unmarshal(line, &record); err != nil {
			log.Warn().Err(err).Str("file", path).Int("line", stats.Read).Msg("skipping invalid record")
			continue
		}
		fingerprint, err := record.Fingerprint()
		if err != nil {
			log.Warn().Err(err).Str("file", path).Int("line", stats.Read).Msg("skipping invalid record")
			continue
		}
		if _, dup := seen[fingerprint]; dup {
			continue
		}
		seen[fingerprint] = struct{}{}

		if err := dst.WriteRaw(line); err != nil {
			dst.Close()
			os.Remove(outPath)
			return stats, err
		}
		stats.Kept++
	}
	if err := src.Err(); err != nil {
		dst.Close()
		os.Remove(outPath)
		return stats, err
	}
	if err := dst.Close(); err != nil {
		os.Remove(outPath)
		return stats, err
	}

	if inplace {
		if err := os.Rename(outPath, path); err != nil {
			return stats, err
		}
	}

	log.Info().Str("file", path).Int("read", stats.Read).Int("kept", stats.Kept).
		Int("removed", stats.Removed()).Msg("dedup finished")
	return stats, nil
}
