package email

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/javierwelch/challenge-latam/src/logger"
)

// AttachmentHandler writes fetched dataset attachments into the data
// directory, where the file monitor picks them up.
type AttachmentHandler struct {
	dataDir string
	log     *logger.Logger
}

func NewAttachmentHandler(dataDir string, log *logger.Logger) *AttachmentHandler {
	return &AttachmentHandler{
		dataDir: dataDir,
		log:     log.Named("email-handler"),
	}
}

// Handle saves an attachment under a timestamped name and returns the
// saved path. A nil attachment is a no-op.
func (h *AttachmentHandler) Handle(att *Attachment) (string, error) {
	if att == nil {
		return "", nil
	}
	if err := os.MkdirAll(h.dataDir, 0o755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}

	name := fmt.Sprintf("%s_%s", time.Now().Format("20060102150405"), filepath.Base(att.Filename))
	path := filepath.Join(h.dataDir, name)
	if err := os.WriteFile(path, att.Content, 0o644); err != nil {
		return "", fmt.Errorf("save attachment: %w", err)
	}

	h.log.Info("saved dataset attachment",
		logger.String("file", path),
		logger.Int("bytes", len(att.Content)))
	return path, nil
}
