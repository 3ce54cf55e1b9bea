package store

import (
	"fmt"

	"github.com/SharmARohitt/Gati-sub001/models"
)

// buildQualityReport audits a freshly loaded record set: uniqueness
// counts, date continuity and negative values. The report is computed
// once per load and served unchanged until the next reload.
func buildQualityReport(records []models.RawUpdateRecord) models.DataQualityReport {
	report := models.DataQualityReport{TotalRecords: len(records)}
	if len(records) == 0 {
		report.Issues = []string{"no records loaded"}
		report.Recommendations = []string{"Verify the raw data source before serving analytics"}
		return report
	}

	states := make(map[string]struct{})
	districts := make(map[string]struct{})
	pincodes := make(map[string]struct{})
	days := make(map[string]struct{})

	report.DateRangeStart = records[0].Date
	report.DateRangeEnd = records[0].Date

	for _, rec := range records {
		states[rec.StateName] = struct{}{}
		districts[rec.StateName+"|"+rec.DistrictName] = struct{}{}
		pincodes[rec.Pincode] = struct{}{}
		days[rec.Date.Format("2006-01-02")] = struct{}{}

		if rec.Date.Before(report.DateRangeStart) {
			report.DateRangeStart = rec.Date
		}
		if rec.Date.After(report.DateRangeEnd) {
			report.DateRangeEnd = rec.Date
		}
		if rec.Enrolments < 0 || rec.BiometricUpdates < 0 || rec.DemographicUpdates < 0 {
			report.NegativeValues++
		}
	}

	report.UniqueStates = len(states)
	report.UniqueDistricts = len(districts)
	report.UniquePincodes = len(pincodes)

	expectedDays := int(report.DateRangeEnd.Sub(report.DateRangeStart).Hours()/24) + 1
	if missing := expectedDays - len(days); missing > 0 {
		report.MissingDays = missing
	}

	if report.NegativeValues > 0 {
		report.Issues = append(report.Issues,
			fmt.Sprintf("%d records carry negative counts", report.NegativeValues))
		report.Recommendations = append(report.Recommendations,
			"Investigate negative counts at the source; they are excluded from freshness weighting")
	}
	// More than 20% of the range missing suggests a collection gap, not
	// ordinary sparse reporting.
	if expectedDays > 0 && len(days) < expectedDays*4/5 {
		report.Issues = append(report.Issues,
			fmt.Sprintf("missing data for %d of %d days in the date range", report.MissingDays, expectedDays))
		report.Recommendations = append(report.Recommendations,
			"Check the upstream collection process for gaps")
	}

	if len(report.Issues) == 0 {
		report.Issues = []string{"no critical issues detected"}
		report.Recommendations = []string{"Data quality is acceptable for analytics"}
	}
	return report
}
