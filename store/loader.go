package store

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/SharmARohitt/Gati-sub001/models"
)

// RecordLoader supplies the full raw record set. The store does not care
// about transport, only that Load returns everything or fails.
type RecordLoader interface {
	Load(ctx context.Context) ([]models.RawUpdateRecord, error)
}

// PostgresLoader reads the consolidated identity_updates table.
type PostgresLoader struct {
	DB *sql.DB
}

func (l *PostgresLoader) Load(ctx context.Context) ([]models.RawUpdateRecord, error) {
	rows, err := l.DB.QueryContext(ctx, `
        SELECT
            pincode,
            district_name,
            state_name,
            date,
            COALESCE(age_0_5, 0),
            COALESCE(age_5_17, 0),
            COALESCE(age_18_plus, 0),
            COALESCE(biometric_updates, 0),
            COALESCE(demographic_updates, 0)
        FROM identity_updates
        ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("error querying identity_updates: %v", err)
	}
	defer rows.Close()

	var records []models.RawUpdateRecord
	for rows.Next() {
		var rec models.RawUpdateRecord
		if err := rows.Scan(
			&rec.Pincode,
			&rec.DistrictName,
			&rec.StateName,
			&rec.Date,
			&rec.AgeBuckets.Age0To5,
			&rec.AgeBuckets.Age5To17,
			&rec.AgeBuckets.Age18Plus,
			&rec.BiometricUpdates,
			&rec.DemographicUpdates,
		); err != nil {
			log.Printf("Error scanning identity_updates row: %v", err)
			continue
		}
		rec.Enrolments = rec.AgeBuckets.Age0To5 + rec.AgeBuckets.Age5To17 + rec.AgeBuckets.Age18Plus
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading identity_updates rows: %v", err)
	}

	log.Printf("Loaded %d raw records from PostgreSQL", len(records))
	return records, nil
}

// csvDateFormat matches the upstream UIDAI export format (dd-mm-yyyy).
const csvDateFormat = "02-01-2006"

// CSVLoader reads the three UIDAI dataset folders (enrolment, biometric,
// demographic) and merges them into one record per
// (date, state, district, pincode).
type CSVLoader struct {
	BasePath string
}

type datasetSpec struct {
	name   string
	folder string
}

var csvDatasets = []datasetSpec{
	{name: "enrolment", folder: "enrolment"},
	{name: "biometric", folder: "biometric"},
	{name: "demographic", folder: "demographic"},
}

func (l *CSVLoader) Load(ctx context.Context) ([]models.RawUpdateRecord, error) {
	merged := make(map[string]*models.RawUpdateRecord)

	// The three datasets are independent files, so read them
	// concurrently and merge under a single mutex.
	var wg sync.WaitGroup
	var mu sync.Mutex
	errs := make(chan error, len(csvDatasets))

	for _, ds := range csvDatasets {
		wg.Add(1)
		go func(ds datasetSpec) {
			defer wg.Done()
			if err := l.loadDataset(ctx, ds, merged, &mu); err != nil {
				errs <- fmt.Errorf("loading %s dataset: %v", ds.name, err)
			}
		}(ds)
	}
	wg.Wait()
	close(errs)

	if err := <-errs; err != nil {
		return nil, err
	}

	records := make([]models.RawUpdateRecord, 0, len(merged))
	for _, rec := range merged {
		records = append(records, *rec)
	}
	sort.Slice(records, func(i, j int) bool {
		if !records[i].Date.Equal(records[j].Date) {
			return records[i].Date.Before(records[j].Date)
		}
		return records[i].Pincode < records[j].Pincode
	})

	log.Printf("Loaded %d merged raw records from CSV datasets", len(records))
	return records, nil
}

func (l *CSVLoader) loadDataset(ctx context.Context, ds datasetSpec, merged map[string]*models.RawUpdateRecord, mu *sync.Mutex) error {
	folder := filepath.Join(l.BasePath, ds.folder)
	files, err := filepath.Glob(filepath.Join(folder, "*.csv"))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no CSV files found in %s", folder)
	}

	log.Printf("Loading %d files for %s dataset...", len(files), ds.name)

	for _, file := range files {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := l.loadFile(file, ds.name, merged, mu); err != nil {
			log.Printf("Failed to load %s: %v", file, err)
		}
	}
	return nil
}

func (l *CSVLoader) loadFile(path, dataset string, merged map[string]*models.RawUpdateRecord, mu *sync.Mutex) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return err
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}

	rowCount := 0
	for {
		row, err := r.Read()
		if err != nil {
			break
		}

		date, err := time.Parse(csvDateFormat, strings.TrimSpace(field(row, col, "date")))
		if err != nil {
			// Rows with unparseable dates are dropped, same as the
			// ingestion pipeline's coerce-and-drop behaviour.
			continue
		}

		state := strings.TrimSpace(field(row, col, "state"))
		district := strings.TrimSpace(field(row, col, "district"))
		pincode := strings.TrimSpace(field(row, col, "pincode"))
		if state == "" || pincode == "" {
			continue
		}

		key := date.Format("2006-01-02") + "|" + state + "|" + district + "|" + pincode

		mu.Lock()
		rec, ok := merged[key]
		if !ok {
			rec = &models.RawUpdateRecord{
				Pincode:      pincode,
				DistrictName: district,
				StateName:    state,
				Date:         date,
			}
			merged[key] = rec
		}

		switch dataset {
		case "enrolment":
			rec.AgeBuckets.Age0To5 += numField(row, col, "age_0_5")
			rec.AgeBuckets.Age5To17 += numField(row, col, "age_5_17")
			rec.AgeBuckets.Age18Plus += numField(row, col, "age_18_greater")
			rec.Enrolments = rec.AgeBuckets.Age0To5 + rec.AgeBuckets.Age5To17 + rec.AgeBuckets.Age18Plus
		case "biometric":
			rec.BiometricUpdates += numField(row, col, "bio_age_5_17") + numField(row, col, "bio_age_17_")
		case "demographic":
			rec.DemographicUpdates += numField(row, col, "demo_age_5_17") + numField(row, col, "demo_age_17_")
		}
		mu.Unlock()
		rowCount++
	}

	log.Printf("Loaded %d rows from %s", rowCount, filepath.Base(path))
	return nil
}

func field(row []string, col map[string]int, name string) string {
	if i, ok := col[name]; ok && i < len(row) {
		return row[i]
	}
	return ""
}

func numField(row []string, col map[string]int, name string) int64 {
	raw := strings.TrimSpace(field(row, col, name))
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0
	}
	return int64(v)
}

// StaticLoader serves a fixed record set. Used by tests and fixtures.
type StaticLoader struct {
	Records []models.RawUpdateRecord
	Err     error
}

func (l *StaticLoader) Load(ctx context.Context) ([]models.RawUpdateRecord, error) {
	if l.Err != nil {
		return nil, l.Err
	}
	out := make([]models.RawUpdateRecord, len(l.Records))
	copy(out, l.Records)
	return out, nil
}
