package checker

import (
	"context"
	"os"

	"go.uber.org/zap"

	"aimawatch/pkg/logger"
)

const artifactFileMode = 0o600

// keepArtifact stores the last body that failed to parse so the markup can be
// inspected after a portal layout change. The slot is overwritten on every
// failure, so at most one artifact exists at a time.
func (c *checker) keepArtifact(ctx context.Context, body []byte) {
	if c.options.ArtifactPath == "" {
		return
	}

	if err := os.WriteFile(c.options.ArtifactPath, body, artifactFileMode); err != nil {
		logger.Warn(ctx, "could not store parse failure artifact",
			zap.String("path", c.options.ArtifactPath),
			zap.Error(err))

		return
	}

	logger.Info(ctx, "stored parse failure artifact",
		zap.String("path", c.options.ArtifactPath),
		zap.Int("bytes", len(body)))
}
