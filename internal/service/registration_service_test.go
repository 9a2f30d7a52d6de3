package service

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/edudash/edudash-backend/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistrationSheetRoundTrip(t *testing.T) {
	dob := time.Date(2021, 3, 14, 0, 0, 0, 0, time.UTC)
	regs := []model.RegistrationRequest{
		{
			ID:               uuid.New(),
			PreschoolID:      uuid.New(),
			GuardianName:     "Thandi Nkosi",
			GuardianEmail:    "thandi@example.com",
			GuardianPhone:    "+27821234567",
			StudentFirstName: "Lwazi",
			StudentLastName:  "Nkosi",
			StudentDOB:       &dob,
			Status:           model.RegistrationPending,
			SyncStatus:       model.SyncPending,
			CreatedAt:        time.Now().UTC(),
		},
		{
			ID:               uuid.New(),
			PreschoolID:      uuid.New(),
			GuardianName:     "Pieter van Wyk",
			GuardianEmail:    "Pieter@Example.com",
			GuardianPhone:    "",
			StudentFirstName: "Anke",
			StudentLastName:  "van Wyk",
			Status:           model.RegistrationApproved,
			SyncStatus:       model.SyncSynced,
			CreatedAt:        time.Now().UTC(),
		},
	}

	f, err := buildRegistrationWorkbook(regs)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	parsed, err := parseRegistrationSheet(&buf)
	require.NoError(t, err)
	require.Len(t, parsed, 2)

	assert.Equal(t, "Thandi Nkosi", parsed[0].GuardianName)
	assert.Equal(t, "thandi@example.com", parsed[0].GuardianEmail)
	assert.Equal(t, "+27821234567", parsed[0].GuardianPhone)
	assert.Equal(t, "Lwazi", parsed[0].StudentFirstName)
	require.NotNil(t, parsed[0].StudentDOB)
	assert.Equal(t, dob, parsed[0].StudentDOB.UTC())

	// Emails come back lowercased and imported rows always restart the
	// review workflow as pending.
	assert.Equal(t, "pieter@example.com", parsed[1].GuardianEmail)
	assert.Equal(t, model.RegistrationPending, parsed[1].Status)
	assert.Equal(t, model.SyncPending, parsed[1].SyncStatus)
	assert.Nil(t, parsed[1].StudentDOB)
}

func TestParseRegistrationSheetSkipsIncompleteRows(t *testing.T) {
	regs := []model.RegistrationRequest{
		{
			GuardianName:  "Complete Row",
			GuardianEmail: "complete@example.com",

			StudentFirstName: "A",
			StudentLastName:  "B",
			Status:           model.RegistrationPending,
			SyncStatus:       model.SyncPending,
			CreatedAt:        time.Now(),
		},
		{
			GuardianName:     "", // missing guardian name
			GuardianEmail:    "orphan@example.com",
			StudentFirstName: "C",
			StudentLastName:  "D",
			Status:           model.RegistrationPending,
			SyncStatus:       model.SyncPending,
			CreatedAt:        time.Now(),
		},
	}

	f, err := buildRegistrationWorkbook(regs)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	parsed, err := parseRegistrationSheet(&buf)
	require.NoError(t, err)
	require.Len(t, parsed, 1)
	assert.Equal(t, "Complete Row", parsed[0].GuardianName)
}

func TestParseRegistrationSheetRejectsGarbage(t *testing.T) {
	_, err := parseRegistrationSheet(strings.NewReader("not an xlsx file"))
	assert.ErrorIs(t, err, ErrImportInvalid)
}

func TestParseRegistrationSheetRejectsHeaderOnly(t *testing.T) {
	f, err := buildRegistrationWorkbook(nil)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	_, err = parseRegistrationSheet(&buf)
	assert.ErrorIs(t, err, ErrImportInvalid)
}
