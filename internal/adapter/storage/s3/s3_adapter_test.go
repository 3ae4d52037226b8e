package s3

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/Abdurahmanit/GroupProject/rental-listing/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/rental-listing/internal/platform/logger"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
)

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(minio.ErrorResponse{Code: "NoSuchKey"}))
	assert.True(t, isNotFound(fmt.Errorf("stat: %w", minio.ErrorResponse{StatusCode: http.StatusNotFound})))
	assert.False(t, isNotFound(minio.ErrorResponse{Code: "AccessDenied", StatusCode: http.StatusForbidden}))
	assert.False(t, isNotFound(errors.New("dial tcp: refused")))
}

func TestWrapClassifiesErrors(t *testing.T) {
	s := &S3Storage{bucket: "listing-images", logger: logger.NewNop()}

	err := s.wrap("copy", "a/b.png", minio.ErrorResponse{Code: "NoSuchKey"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NotErrorIs(t, err, domain.ErrStorage)

	err = s.wrap("put", "a/b.png", errors.New("connection reset"))
	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.Contains(t, err.Error(), "listing-images/a/b.png")
}
