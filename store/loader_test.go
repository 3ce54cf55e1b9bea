package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestCSVLoaderMergesDatasets(t *testing.T) {
	base := t.TempDir()

	writeCSV(t, filepath.Join(base, "enrolment"), "enrol.csv",
		"date,state,district,pincode,age_0_5,age_5_17,age_18_greater\n"+
			"01-06-2025,Kerala,Thiruvananthapuram,695001,10,40,50\n"+
			"02-06-2025,Kerala,Thiruvananthapuram,695001,5,25,30\n"+
			"bad-date,Kerala,Thiruvananthapuram,695001,1,1,1\n")
	writeCSV(t, filepath.Join(base, "biometric"), "bio.csv",
		"date,state,district,pincode,bio_age_5_17,bio_age_17_\n"+
			"01-06-2025,Kerala,Thiruvananthapuram,695001,7,13\n")
	writeCSV(t, filepath.Join(base, "demographic"), "demo.csv",
		"date,state,district,pincode,demo_age_5_17,demo_age_17_\n"+
			"01-06-2025,Kerala,Thiruvananthapuram,695001,3,9\n"+
			"01-06-2025,Bihar,Patna,800001,2,4\n")

	loader := &CSVLoader{BasePath: base}
	records, err := loader.Load(context.Background())
	require.NoError(t, err)

	// Three distinct (date, state, district, pincode) keys survive; the
	// unparseable date row is dropped.
	require.Len(t, records, 3)

	byKey := make(map[string]int64)
	for _, rec := range records {
		byKey[rec.Date.Format("2006-01-02")+"|"+rec.Pincode] = rec.Enrolments
		if rec.Pincode == "695001" && rec.Date.Day() == 1 {
			assert.Equal(t, int64(100), rec.Enrolments)
			assert.Equal(t, int64(20), rec.BiometricUpdates)
			assert.Equal(t, int64(12), rec.DemographicUpdates)
			assert.Equal(t, "Kerala", rec.StateName)
		}
	}
	assert.Contains(t, byKey, "2025-06-01|800001")
	assert.Contains(t, byKey, "2025-06-02|695001")

	// Sorted by date, then pincode.
	assert.Equal(t, "695001", records[0].Pincode)
	assert.Equal(t, "800001", records[1].Pincode)
	assert.True(t, !records[2].Date.Before(records[1].Date))
}

func TestCSVLoaderMissingFolder(t *testing.T) {
	loader := &CSVLoader{BasePath: t.TempDir()}
	_, err := loader.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no CSV files found")
}
