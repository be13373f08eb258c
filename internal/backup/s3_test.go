package backup

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/lockbox/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeObjectAPI implements objectAPI for unit tests.
type fakeObjectAPI struct {
	PutErr error
	GetErr error
	GetRet []byte

	LastPutBucket string
	LastPutKey    string
	LastPutBody   []byte

	LastGetBucket string
	LastGetKey    string
}

func (f *fakeObjectAPI) PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.LastPutBucket = *in.Bucket
	f.LastPutKey = *in.Key
	if in.Body != nil {
		body, err := io.ReadAll(in.Body)
		if err != nil {
			return nil, err
		}
		f.LastPutBody = body
	}
	if f.PutErr != nil {
		return nil, f.PutErr
	}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjectAPI) GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.LastGetBucket = *in.Bucket
	f.LastGetKey = *in.Key
	if f.GetErr != nil {
		return nil, f.GetErr
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(string(f.GetRet)))}, nil
}

func TestS3Backup_Upload(t *testing.T) {
	dir := t.TempDir()
	vaultPath := filepath.Join(dir, "test.vault")
	require.NoError(t, os.WriteFile(vaultPath, []byte("envelope-blob"), 0o600))

	fake := &fakeObjectAPI{}
	b := newS3Backup(fake, "bkt", "lockbox/")

	key, err := b.Upload(context.Background(), vaultPath)
	require.NoError(t, err)

	assert.Equal(t, "bkt", fake.LastPutBucket)
	assert.Equal(t, key, fake.LastPutKey)
	assert.True(t, strings.HasPrefix(key, "lockbox/"))
	assert.True(t, strings.HasSuffix(key, ".vault"))
	assert.Equal(t, []byte("envelope-blob"), fake.LastPutBody)
}

func TestS3Backup_UploadMissingVault(t *testing.T) {
	fake := &fakeObjectAPI{}
	b := newS3Backup(fake, "bkt", "lockbox/")

	_, err := b.Upload(context.Background(), filepath.Join(t.TempDir(), "absent.vault"))
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestS3Backup_UploadPutError(t *testing.T) {
	dir := t.TempDir()
	vaultPath := filepath.Join(dir, "test.vault")
	require.NoError(t, os.WriteFile(vaultPath, []byte("blob"), 0o600))

	fake := &fakeObjectAPI{PutErr: assert.AnError}
	b := newS3Backup(fake, "bkt", "")

	_, err := b.Upload(context.Background(), vaultPath)
	require.ErrorIs(t, err, assert.AnError)
}

func TestS3Backup_Download(t *testing.T) {
	dir := t.TempDir()
	vaultPath := filepath.Join(dir, "restored.vault")

	fake := &fakeObjectAPI{GetRet: []byte("envelope-blob")}
	b := newS3Backup(fake, "bkt", "lockbox/")

	err := b.Download(context.Background(), "lockbox/xyz.vault", vaultPath)
	require.NoError(t, err)

	assert.Equal(t, "bkt", fake.LastGetBucket)
	assert.Equal(t, "lockbox/xyz.vault", fake.LastGetKey)

	data, err := os.ReadFile(vaultPath)
	require.NoError(t, err)
	assert.Equal(t, []byte("envelope-blob"), data)

	info, err := os.Stat(vaultPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestS3Backup_DownloadRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	vaultPath := filepath.Join(dir, "existing.vault")
	require.NoError(t, os.WriteFile(vaultPath, []byte("live data"), 0o600))

	fake := &fakeObjectAPI{GetRet: []byte("backup data")}
	b := newS3Backup(fake, "bkt", "")

	err := b.Download(context.Background(), "key", vaultPath)
	require.Error(t, err)

	// The existing vault is untouched.
	data, err := os.ReadFile(vaultPath)
	require.NoError(t, err)
	assert.Equal(t, []byte("live data"), data)
}

func TestS3Backup_MakeObjectKeyIsUniqueAndSortable(t *testing.T) {
	b := newS3Backup(&fakeObjectAPI{}, "bkt", "p/")
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	k1 := b.makeObjectKey(now)
	k2 := b.makeObjectKey(now)

	assert.True(t, strings.HasPrefix(k1, "p/20260831T120000Z-"))
	assert.NotEqual(t, k1, k2)
}
