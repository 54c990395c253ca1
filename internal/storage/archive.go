package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"myblog/internal/domain"
)

// EntrySnapshot is the archived form of a deleted blog entry.
type EntrySnapshot struct {
	Entry     domain.BlogEntry `json:"entry"`
	Comments  []domain.Comment `json:"comments"`
	DeletedAt time.Time        `json:"deleted_at"`
}

// Archive writes snapshots of deleted entries under <prefix>/<owner id>/.
type Archive struct {
	svc       Service
	bucket    string
	keyPrefix string
}

func NewArchive(svc Service, bucket, keyPrefix string) *Archive {
	return &Archive{
		svc:       svc,
		bucket:    bucket,
		keyPrefix: strings.Trim(keyPrefix, "/"),
	}
}

// Store uploads the snapshot and returns its s3:// location.
func (a *Archive) Store(ctx context.Context, snapshot EntrySnapshot) (string, error) {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	key := fmt.Sprintf("%s%d-%s.json", a.ownerPrefix(snapshot.Entry.OwnerID), snapshot.Entry.ID, uuid.NewString())
	return a.svc.PutObject(ctx, a.bucket, key, bytes.NewReader(payload), "application/json")
}

// List returns the snapshots archived for ownerID.
func (a *Archive) List(ctx context.Context, ownerID int64) ([]ObjectInfo, error) {
	return a.svc.ListObjects(ctx, a.bucket, a.ownerPrefix(ownerID))
}

func (a *Archive) ownerPrefix(ownerID int64) string {
	if a.keyPrefix == "" {
		return fmt.Sprintf("%d/", ownerID)
	}
	return fmt.Sprintf("%s/%d/", a.keyPrefix, ownerID)
}
