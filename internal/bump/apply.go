package bump

import "github.com/rs/zerolog"

// Apply bumps every configured manifest and returns the paths that
// changed on disk. In strict mode the first failure aborts; otherwise
// failures are logged and the file is skipped so the release continues.
func Apply(files []string, newVersion string, strict bool, log zerolog.Logger) ([]string, error) {
	var changed []string
	for _, path := range files {
		ok, err := File(path, newVersion)
		if err != nil {
			if strict {
				return changed, err
			}
			log.Warn().Err(err).Str("file", path).Msg("skipping version file")
			continue
		}
		if ok {
			changed = append(changed, path)
			log.Info().Str("file", path).Str("version", newVersion).Msg("bumped version file")
		}
	}
	return changed, nil
}
