package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanbanforge/kanband/internal/eventbus"
	"github.com/kanbanforge/kanband/internal/types"
)

type fakeSnapshotter struct {
	snap      *types.Backup
	snapErr   error
	verifyErr error
}

func (f *fakeSnapshotter) Snapshot(ctx context.Context, backupType types.BackupType, retentionDays int, parentBackupID string) (*types.Backup, error) {
	if f.snapErr != nil {
		return nil, f.snapErr
	}
	b := *f.snap
	b.Type = backupType
	b.ParentBackupID = parentBackupID
	b.RetentionDays = retentionDays
	return &b, nil
}

func (f *fakeSnapshotter) Verify(b *types.Backup) error { return f.verifyErr }

func TestRunBackup_PersistsMetadataAndPublishesEvents(t *testing.T) {
	svc, _, hub := newTestService(t)
	ctx := context.Background()

	sub := hub.Subscribe(eventbus.AllBoards, nil)
	defer sub.Close()

	fake := &fakeSnapshotter{snap: &types.Backup{
		Name: "full-20260731", SizeBytes: 1024, Checksum: "deadbeef", Status: types.BackupVerified,
	}}

	b, err := svc.RunBackup(ctx, fake, types.BackupFull, 30)
	require.NoError(t, err)
	require.NotEmpty(t, b.ID)

	listed, err := svc.ListBackups(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, b.ID, listed[0].ID)

	var sawStarted, sawCompleted bool
	for i := 0; i < 2; i++ {
		evt := <-sub.C
		switch evt.Type {
		case types.EventBackupStarted:
			sawStarted = true
		case types.EventBackupCompleted:
			sawCompleted = true
		}
	}
	assert.True(t, sawStarted)
	assert.True(t, sawCompleted)
}

func TestRunBackup_SnapshotFailurePublishesFailedEvent(t *testing.T) {
	svc, _, hub := newTestService(t)
	ctx := context.Background()

	sub := hub.Subscribe(eventbus.AllBoards, nil)
	defer sub.Close()

	fake := &fakeSnapshotter{snapErr: assert.AnError}
	_, err := svc.RunBackup(ctx, fake, types.BackupFull, 30)
	require.Error(t, err)

	var sawFailed bool
	for i := 0; i < 2; i++ {
		evt := <-sub.C
		if evt.Type == types.EventBackupFailed {
			sawFailed = true
		}
	}
	assert.True(t, sawFailed)
}

func TestSweepExpiredBackups_ReturnsEmptyWhenNoneExpired(t *testing.T) {
	svc, _, _ := newTestService(t)
	expired, err := svc.SweepExpiredBackups(context.Background())
	require.NoError(t, err)
	assert.Empty(t, expired)
}
