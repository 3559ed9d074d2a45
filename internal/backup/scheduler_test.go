package backup_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanbanforge/kanband/internal/backup"
)

func TestParseSchedule_AcceptsValidTime(t *testing.T) {
	hour, minute, err := backup.ParseSchedule("02:30")
	require.NoError(t, err)
	assert.Equal(t, 2, hour)
	assert.Equal(t, 30, minute)
}

func TestParseSchedule_RejectsMalformed(t *testing.T) {
	_, _, err := backup.ParseSchedule("not-a-time")
	require.Error(t, err)

	_, _, err = backup.ParseSchedule("24:00")
	require.Error(t, err)

	_, _, err = backup.ParseSchedule("10:60")
	require.Error(t, err)
}
